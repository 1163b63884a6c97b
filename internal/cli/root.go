// Package cli defines the sagtrack command line: the TUI entry point, scripted
// read and write commands against the backend, and the mock backend.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/config"
	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/logging"
	"github.com/five82/sagtrack/internal/prefs"
	"github.com/five82/sagtrack/internal/sagapi"
)

const envPrefix = "SAGTRACK"

// Version is set by the linker at build time.
var Version = "dev"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	apiBind    string
	logFile    string
	prefsPath  string
	lang       string
	timeout    time.Duration
	debug      bool
}

// runtime is the resolved environment a command runs with.
type runtime struct {
	flags  globalFlags
	cfg    config.Config
	logger *zap.Logger
	client *sagapi.Client
	tr     *i18n.Translator
}

// annotationConsoleLog marks commands that also log to stderr.
const annotationConsoleLog = "sagtrack/console-log"

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "sagtrack: %v\n", err)
		return 1
	}
	return 0
}

// NewRootCmd builds the command tree. Running it without a subcommand starts
// the TUI.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}
	v := viper.New()

	root := &cobra.Command{
		Use:           "sagtrack",
		Short:         "Track suspension sag and damping settings",
		Long:          "sagtrack shows live sag readings and keeps a history of spring and damping changes recorded through the sag tracking backend.",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(cmd, v)
			return rt.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if rt.logger != nil {
				_ = rt.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, rt)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rt.flags.configPath, "config", "", "config file (default ~/.config/sagtrack/config.toml)")
	pf.StringVar(&rt.flags.apiBind, "api-bind", "", "backend host:port or URL (overrides api_bind)")
	pf.StringVar(&rt.flags.logFile, "log-file", "", "log file (overrides log_file)")
	pf.StringVar(&rt.flags.prefsPath, "prefs", "", "preferences file (default ~/.config/sagtrack/prefs.toml)")
	pf.StringVar(&rt.flags.lang, "lang", "", "language for labels: fi or en")
	pf.DurationVar(&rt.flags.timeout, "timeout", 0, "request timeout (overrides request_timeout)")
	pf.BoolVar(&rt.flags.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newTUICmd(rt),
		newHistoryCmd(rt),
		newCurrentCmd(rt),
		newStatusCmd(rt),
		newEventCmd(rt),
		newResetSagCmd(rt),
		newCommentCmd(rt),
		newUnitsCmd(rt),
		newMarkerCmd(rt),
		newMockCmd(rt),
	)
	return root
}

// setup resolves configuration, logging, the API client and the translator.
func (rt *runtime) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rt.flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("api-bind") {
		cfg.APIBind = strings.TrimSpace(rt.flags.apiBind)
	}
	if flags.Changed("log-file") {
		cfg.LogFile = config.ExpandPath(rt.flags.logFile)
	}
	if flags.Changed("timeout") {
		if rt.flags.timeout <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		cfg.RequestTimeout = rt.flags.timeout
	}
	rt.cfg = cfg

	logger, err := logging.New(logging.Options{
		File:   cfg.LogFile,
		Stderr: cmd.Annotations[annotationConsoleLog] == "true",
		Debug:  rt.flags.debug,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	rt.logger = logger

	client, err := sagapi.NewClient(cfg.APIBind, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	rt.client = client

	lang := strings.ToLower(strings.TrimSpace(rt.flags.lang))
	if lang == "" {
		userPrefs, _ := prefs.Load(rt.flags.prefsPath)
		lang = userPrefs.Language()
	}
	tr, err := i18n.New(lang)
	if err != nil {
		return fmt.Errorf("--lang: %w", err)
	}
	rt.tr = tr
	return nil
}

// bindFlags applies SAGTRACK_* environment variables to flags the user did
// not set, e.g. SAGTRACK_API_BIND for --api-bind.
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		envName := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, envName); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "could not bind env var %s: %v\n", envName, err)
			return
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "could not set flag %s from %s: %v\n", f.Name, envName, err)
			}
		}
	})
}

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool {
	return isTerminal(os.Stdout)
}
