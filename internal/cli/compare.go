package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"slack-thread-dump-tap/internal/app"
)

func newCompareCommand() *cobra.Command {
	var scheme string
	cmd := &cobra.Command{
		Use:   "compare <a> <b>",
		Short: "Compare two versions and print -1, 0 or 1",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), scheme, args[0], args[1])
		},
	}
	cmd.Flags().StringVar(&scheme, "scheme", "semver", "Version scheme (semver, deb, pep440)")
	return cmd
}

func runCompare(ctx context.Context, scheme string, a string, b string) error {
	service := newAppService()
	result, err := service.Compare(ctx, app.CompareRequest{Scheme: scheme, A: a, B: b})
	if err != nil {
		return err
	}
	fmt.Println(result.Result)
	return nil
}

func newConvertCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "convert [formula]",
		Short: "Rewrite a formula as YAML, TOML or JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), formulaPath(args), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; the extension picks the format")
	return cmd
}

func runConvert(ctx context.Context, path string, output string) error {
	service := newAppService()
	result, err := service.Convert(ctx, app.ConvertRequest{FormulaPath: path, OutputPath: output})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", result.OutputPath)
	return nil
}
