package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
	"slack-thread-dump-tap/internal/types"
)

type resolveOptions struct {
	Mode             string
	SkipRecommended  bool
	RequireSatisfied bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [formula]",
		Short: "Resolve formula dependencies against the package index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.Context(), cmd, formulaPath(args), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Mode, "mode", "install", "Dependency mode (install or test)")
	cmd.Flags().BoolVar(&opts.SkipRecommended, "skip-recommended", false, "Skip recommended dependencies")
	cmd.Flags().BoolVar(&opts.RequireSatisfied, "require-satisfied", false, "Fail when a dependency is not installed")
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, path string, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		FormulaPath:      path,
		IndexPath:        viper.GetString("index"),
		Prefix:           viper.GetString("prefix"),
		Mode:             opts.Mode,
		SkipRecommended:  resolveBool(cmd, opts.SkipRecommended, "skip_recommended", "skip-recommended"),
		RequireSatisfied: resolveBool(cmd, opts.RequireSatisfied, "require_satisfied", "require-satisfied"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", result.Name, result.Version)
	printDependencies(result.Dependencies)
	return nil
}

func printDependencies(deps []types.ResolvedDependency) {
	if len(deps) == 0 {
		fmt.Println("  no dependencies")
		return
	}
	for _, dep := range deps {
		state := "missing"
		if dep.Satisfied {
			state = "installed"
		}
		tag := ""
		if dep.Tag != types.DependencyTagRuntime {
			tag = fmt.Sprintf(" [%s]", dep.Tag)
		}
		fmt.Printf("  %s %s%s (%s)\n", dep.Name, dep.Version, tag, state)
	}
}
