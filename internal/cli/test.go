package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
)

func newTestCommand() *cobra.Command {
	var timeoutSec int
	cmd := &cobra.Command{
		Use:   "test [formula]",
		Short: "Run the formula smoke test against the install prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd.Context(), formulaPath(args), resolveInt(cmd, timeoutSec, "verify_timeout", "timeout"))
		},
	}
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "Smoke test timeout in seconds")
	return cmd
}

func runTest(ctx context.Context, path string, timeoutSec int) error {
	service := newAppService()
	result, err := service.Test(ctx, app.TestRequest{
		FormulaPath: path,
		IndexPath:   viper.GetString("index"),
		Prefix:      viper.GetString("prefix"),
		TimeoutSec:  timeoutSec,
	})
	if err != nil {
		return err
	}
	fmt.Print(result.Verify.Output)
	fmt.Printf("test passed: %s\n", result.Name)
	return nil
}
