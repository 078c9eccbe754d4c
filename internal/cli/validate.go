package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"slack-thread-dump-tap/internal/app"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [formula]",
		Short: "Validate a formula file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), formulaPath(args))
		},
	}
}

func runValidate(ctx context.Context, path string) error {
	service := newAppService()
	result, err := service.Validate(ctx, app.ValidateRequest{FormulaPath: path})
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	fmt.Printf("validated: %s %s\n", result.Name, result.Version)
	return nil
}
