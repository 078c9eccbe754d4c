package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
	"slack-thread-dump-tap/internal/types"
)

type installOptions struct {
	DryRun           bool
	SkipVerify       bool
	SkipRecommended  bool
	RequireSatisfied bool
	VerifyTimeoutSec int
}

func newInstallCommand() *cobra.Command {
	opts := installOptions{}
	cmd := &cobra.Command{
		Use:   "install [formula]",
		Short: "Resolve, fetch, install and smoke-test a formula",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), cmd, formulaPath(args), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Resolve and print the plan without installing")
	cmd.Flags().BoolVar(&opts.SkipVerify, "skip-verify", false, "Skip the smoke test")
	cmd.Flags().BoolVar(&opts.SkipRecommended, "skip-recommended", false, "Skip recommended dependencies")
	cmd.Flags().BoolVar(&opts.RequireSatisfied, "require-satisfied", false, "Fail when a dependency is not installed")
	cmd.Flags().IntVar(&opts.VerifyTimeoutSec, "verify-timeout", 0, "Smoke test timeout in seconds")
	_ = viper.BindPFlag("verify_timeout", cmd.Flags().Lookup("verify-timeout"))
	return cmd
}

func runInstall(ctx context.Context, cmd *cobra.Command, path string, opts installOptions) error {
	service := newAppService()
	result, err := service.Install(ctx, app.InstallRequest{
		FormulaPath:      path,
		IndexPath:        viper.GetString("index"),
		Prefix:           viper.GetString("prefix"),
		WorkDir:          viper.GetString("work_dir"),
		DryRun:           opts.DryRun,
		SkipVerify:       opts.SkipVerify,
		SkipRecommended:  resolveBool(cmd, opts.SkipRecommended, "skip_recommended", "skip-recommended"),
		RequireSatisfied: resolveBool(cmd, opts.RequireSatisfied, "require_satisfied", "require-satisfied"),
		VerifyTimeoutSec: resolveInt(cmd, opts.VerifyTimeoutSec, "verify_timeout", "verify-timeout"),
	})
	if err != nil {
		return err
	}
	report := result.Report
	if report.DryRun {
		fmt.Printf("would install %s %s\n", report.Formula, report.Version)
		printDependencies(report.Dependencies)
		return nil
	}
	for _, file := range report.Install.Files {
		fmt.Printf("  %s\n", file.Path)
	}
	fmt.Printf("installed %s %s (%d files, %d unchanged)\n", report.Formula, report.Version, len(report.Install.Files), report.Install.Unchanged)
	printTimings(report.Timings)
	return nil
}

func printTimings(timings []types.StageTiming) {
	for _, timing := range timings {
		fmt.Printf("  %-8s %s\n", timing.Stage, timing.Duration.Round(time.Millisecond))
	}
}
