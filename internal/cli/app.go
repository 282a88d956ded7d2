// Package cli implements the avatarctl command line using Cobra.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cristianadrielbraun/avatarstudio/internal/config"
)

// ConfigLoader loads configuration from an optional file path.
type ConfigLoader func(path string) (*config.Config, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig ConfigLoader
	isTerminal func(w io.Writer) bool
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer

	cfgFile string
	verbose bool
	cfg     *config.Config
	log     *slog.Logger

	genBackground   string
	genPrompt       string
	genOut          string
	genKeepOriginal bool
}

// WithConfigLoader injects a config loader.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// WithTerminalCheck overrides how the app decides whether a writer is a
// terminal.
func WithTerminalCheck(fn func(io.Writer) bool) AppOption {
	return func(a *App) {
		if fn != nil {
			a.isTerminal = fn
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewApp creates the CLI with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig: config.Load,
		isTerminal: isTerminal,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "avatarctl",
		Short: "ETHMumbai avatar studio from the terminal",
		Long: `avatarctl restyles a portrait through Gemini and frames it as an
ETHMumbai avatar, or serves the studio web app.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default $AVATAR_CONFIG)")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newGenerateCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newBackgroundsCommand())
	root.AddCommand(a.newServeCommand())
	return root
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = os.Getenv("AVATAR_CONFIG")
	}
	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.log = slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

// Execute runs the CLI with args.
func (a *App) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.root.ExecuteContext(ctx)
}
