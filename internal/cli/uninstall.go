package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
)

func newUninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <name>",
		Short: "Remove an installed formula using its receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUninstall(cmd.Context(), args[0])
		},
	}
}

func runUninstall(ctx context.Context, name string) error {
	service := newAppService()
	result, err := service.Uninstall(ctx, app.UninstallRequest{
		Name:   name,
		Prefix: viper.GetString("prefix"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("uninstalled %s %s (%d files)\n", result.Name, result.Version, result.Removed)
	return nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List formulas installed under the prefix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd.Context())
		},
	}
}

func runList(ctx context.Context) error {
	service := newAppService()
	result, err := service.List(ctx, app.ListRequest{Prefix: viper.GetString("prefix")})
	if err != nil {
		return err
	}
	for _, receipt := range result.Receipts {
		fmt.Printf("%s %s\t%s\n", receipt.Name, receipt.Version, receipt.InstalledAt)
	}
	return nil
}
