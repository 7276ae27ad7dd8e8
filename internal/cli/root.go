// Package cli wires the sxtx commands: the interactive TUI and the headless
// transfer commands.
package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/config"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/logging"
	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/metrics"
)

// Version is set at build time.
var Version = "dev"

// app is the state shared by all commands of one invocation.
type app struct {
	v        *viper.Viper
	settings config.Settings
	profiles *config.ProfileManager
	logger   zerolog.Logger

	registry *prometheus.Registry
	metrics  *metrics.Collector

	stopMetrics context.CancelFunc
	closers     []func()
}

// flagKeys maps persistent flag names to setting keys.
var flagKeys = map[string]string{
	"host":            config.KeyHost,
	"port":            config.KeyPort,
	"user":            config.KeyUser,
	"password":        config.KeyPassword,
	"profile":         config.KeyProfile,
	"known-hosts":     config.KeyKnownHosts,
	"buffer-size":     config.KeyBufferSize,
	"connect-timeout": config.KeyConnectTimeout,
	"command-timeout": config.KeyCommandTimeout,
	"archive-timeout": config.KeyArchiveTimeout,
	"remote-temp-dir": config.KeyRemoteTempDir,
	"log-level":       config.KeyLogLevel,
	"log-file":        config.KeyLogFile,
	"metrics-addr":    config.KeyMetricsAddr,
}

func newApp() *app {
	return &app{v: viper.New(), logger: zerolog.Nop()}
}

// NewRootCommand builds the sxtx command tree. Without a subcommand the
// interactive transfer UI starts.
func NewRootCommand() *cobra.Command {
	return newApp().command()
}

func (a *app) command() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "sxtx",
		Short: "SSH-X-Transfer - file and folder transfers over SSH",
		Long: `SSH-X-Transfer moves files and folders between this machine and a remote
host over a single SSH connection. Folders travel as gzip tar archives and
are unpacked on arrival.

Run without a command for the interactive UI, or use the commands below
for scripted transfers. Every flag can also be set as SXTX_<NAME> in the
environment or in ~/.config/ssh-x-transfer/config.yaml.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, cfgFile, cmd == cmd.Root())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	flags.String("host", "", "Remote host")
	flags.IntP("port", "p", 22, "Remote SSH port")
	flags.StringP("user", "u", "", "Remote user")
	flags.String("password", "", "Password (prompted for when missing)")
	flags.String("profile", "", "Saved connection profile, by name or ID")
	flags.String("known-hosts", "", "known_hosts file that records host keys (empty accepts any key)")
	flags.String("buffer-size", "32KiB", "Copy buffer size, e.g. 64KiB")
	flags.Duration("connect-timeout", 12*time.Second, "Timeout for connecting")
	flags.Duration("command-timeout", 60*time.Second, "Timeout for short remote commands")
	flags.Duration("archive-timeout", 300*time.Second, "Timeout for remote tar commands")
	flags.String("remote-temp-dir", "/tmp", "Remote directory for temporary archives")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-file", "", "Log file (the UI logs to ~/.config/ssh-x-transfer/sxtx.log by default)")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	for name, key := range flagKeys {
		_ = a.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newLsCommand(a),
		newMkdirCommand(a),
		newPutCommand(a),
		newGetCommand(a),
		newPutDirCommand(a),
		newGetDirCommand(a),
		newProfileCommand(a),
	)
	return root
}

// setup resolves settings, opens the profile store and sets up logging. The
// UI owns the terminal, so it always logs to a file.
func (a *app) setup(cmd *cobra.Command, cfgFile string, tui bool) error {
	if err := config.Init(a.v, cfgFile); err != nil {
		return err
	}
	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if a.profiles, err = config.NewProfileManager(dir); err != nil {
		return err
	}

	switch {
	case tui || settings.LogFile != "":
		f, err := logging.OpenFile(settings.LogFile, dir)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = f.Close() })
		a.logger = logging.New(f, settings.LogLevel)
	default:
		a.logger = logging.NewConsole(cmd.ErrOrStderr(), settings.LogLevel)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.NewCollector(a.registry)
	a.startMetrics(cmd.Context())
	return nil
}

func (a *app) startMetrics(parent context.Context) {
	if a.settings.MetricsAddr == "" {
		return
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	a.stopMetrics = cancel

	logger := a.logger.With().Str("addr", a.settings.MetricsAddr).Logger()
	go func() {
		logger.Info().Msg("serving metrics")
		if err := metrics.Serve(ctx, a.settings.MetricsAddr, a.registry); err != nil {
			logger.Error().Err(err).Msg("metrics listener stopped")
		}
	}()
}

// close runs the cleanups in reverse order. Failed commands skip
// PersistentPostRun, so Execute calls it again; the second call is a no-op.
func (a *app) close() {
	if a.stopMetrics != nil {
		a.stopMetrics()
		a.stopMetrics = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := newApp()
	defer a.close()

	root := a.command()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		// Interrupted by a signal.
		if ctx.Err() != nil {
			return 130
		}
		return 1
	}
	return 0
}

// ExecuteMain runs sxtx with the process arguments.
func ExecuteMain(ctx context.Context) int {
	return Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
