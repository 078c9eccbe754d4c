package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"slack-thread-dump-tap/internal/app"
	"slack-thread-dump-tap/internal/core"
	"slack-thread-dump-tap/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "TAP"

type RootConfig struct {
	ConfigFile     string
	LogLevel       string
	Prefix         string
	Index          string
	Formula        string
	WorkDir        string
	HTTPTimeoutSec int
	HTTPRetries    int
	MaxDownloadMB  int
	LockTimeoutSec int
}

// newAppService builds the service from the resolved configuration.
var newAppService = func() app.Service {
	return app.NewService(app.ServiceConfig{
		HTTPTimeoutSec: viper.GetInt("http_timeout"),
		HTTPRetries:    viper.GetInt("http_retries"),
		MaxDownloadMB:  viper.GetInt("max_download_mb"),
		LockTimeoutSec: viper.GetInt("lock_timeout"),
		Progress:       os.Stderr,
	})
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tap: %s\n", describeError(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "tap",
		Short:         "Validate, install and test slack-thread-dump from its formula",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	flags.StringVar(&cfg.Prefix, "prefix", defaultPrefix(), "Install prefix")
	flags.StringVar(&cfg.Index, "index", "", "Package index file (default <prefix>/var/tap/index.yaml)")
	flags.StringVar(&cfg.Formula, "formula", "formula/slack-thread-dump.yaml", "Formula file")
	flags.StringVar(&cfg.WorkDir, "work-dir", "", "Work directory for fetched sources")
	flags.IntVar(&cfg.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds")
	flags.IntVar(&cfg.HTTPRetries, "http-retries", 3, "HTTP retries for archive downloads")
	flags.IntVar(&cfg.MaxDownloadMB, "max-download-mb", 512, "Maximum archive download size in MiB")
	flags.IntVar(&cfg.LockTimeoutSec, "lock-timeout", 30, "Seconds to wait for the prefix lock")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("prefix", flags.Lookup("prefix"))
	_ = viper.BindPFlag("index", flags.Lookup("index"))
	_ = viper.BindPFlag("formula", flags.Lookup("formula"))
	_ = viper.BindPFlag("work_dir", flags.Lookup("work-dir"))
	_ = viper.BindPFlag("http_timeout", flags.Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", flags.Lookup("http-retries"))
	_ = viper.BindPFlag("max_download_mb", flags.Lookup("max-download-mb"))
	_ = viper.BindPFlag("lock_timeout", flags.Lookup("lock-timeout"))

	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInfoCommand())
	cmd.AddCommand(newResolveCommand())
	cmd.AddCommand(newFetchCommand())
	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newTestCommand())
	cmd.AddCommand(newUninstallCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newCompareCommand())
	cmd.AddCommand(newConvertCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("tap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/tap")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func defaultPrefix() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.local"
	}
	return "/usr/local"
}

// exitCodeForError maps pipeline stage failures to 3..6 and everything
// else by errbuilder code.
func exitCodeForError(err error) int {
	if stage, ok := core.StageOf(err); ok {
		switch stage {
		case types.StageResolve:
			return 3
		case types.StageFetch:
			return 4
		case types.StageInstall:
			return 5
		case types.StageVerify:
			return 6
		}
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodeNotFound, errbuilder.CodeInternal, errbuilder.CodeFailedPrecondition, errbuilder.CodePermissionDenied:
		return 7
	default:
		return 1
	}
}

func describeError(err error) string {
	if stage, ok := core.StageOf(err); ok {
		return fmt.Sprintf("%s failed: %s", stage, err.Error())
	}
	message := errorMessage(err)
	if cause := errors.Unwrap(err); cause != nil && !strings.Contains(message, cause.Error()) {
		return message + ": " + cause.Error()
	}
	return message
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
