package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
)

func newFetchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [formula]",
		Short: "Fetch the formula source into the work directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), formulaPath(args))
		},
	}
}

func runFetch(ctx context.Context, path string) error {
	workDir := strings.TrimSpace(viper.GetString("work_dir"))
	if workDir == "" {
		dir, err := os.MkdirTemp("", "tap-fetch-")
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create work directory").
				WithCause(err)
		}
		workDir = dir
	}
	service := newAppService()
	result, err := service.Fetch(ctx, app.FetchRequest{FormulaPath: path, WorkDir: workDir})
	if err != nil {
		return err
	}
	if result.Source.Revision != "" {
		fmt.Printf("fetched %s source at %s\n", result.Source.Kind, result.Source.Revision)
	} else {
		fmt.Printf("fetched %s source\n", result.Source.Kind)
	}
	fmt.Println(result.Source.Dir)
	return nil
}
