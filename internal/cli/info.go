package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info [formula]",
		Short: "Show formula metadata and install state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), formulaPath(args))
		},
	}
}

func runInfo(ctx context.Context, path string) error {
	service := newAppService()
	result, err := service.Info(ctx, app.InfoRequest{
		FormulaPath: path,
		Prefix:      viper.GetString("prefix"),
	})
	if err != nil {
		return err
	}
	formula := result.Formula
	fmt.Println(titleStyle.Render(fmt.Sprintf("%s %s", formula.Name, formula.Version)))
	fmt.Println(formula.Desc)
	printField("homepage", formula.Homepage)
	printField("license", formula.License)
	source := formula.Source.URL
	if formula.Source.Branch != "" {
		source += " (" + formula.Source.Branch + ")"
	}
	printField("source", fmt.Sprintf("%s [%s]", source, result.SourceKind))
	if len(formula.Dependencies) > 0 {
		deps := make([]string, 0, len(formula.Dependencies))
		for _, dep := range formula.Dependencies {
			entry := dep.Name
			if dep.Constraint != "" {
				entry += " " + dep.Constraint
			}
			deps = append(deps, entry)
		}
		printField("depends on", strings.Join(deps, ", "))
	}
	if result.Installed {
		printField("installed", okStyle.Render(fmt.Sprintf("%s (%s)", result.Receipt.Version, result.Receipt.InstalledAt)))
	} else {
		printField("installed", warnStyle.Render("no"))
	}
	return nil
}

func printField(label string, value string) {
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value))
}
