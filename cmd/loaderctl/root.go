package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hyeniworld/loaderkit/internal/app"
	"github.com/hyeniworld/loaderkit/internal/domain"
	"github.com/hyeniworld/loaderkit/internal/logging"
	"github.com/hyeniworld/loaderkit/internal/storage/config"
)

var (
	version = "0.3.0"

	// Global flags
	configDir  string
	dataDir    string
	verbose    bool
	jsonOutput bool
	noColor    bool

	// configureService lets tests point the service at local servers
	configureService func(*app.ServiceConfig)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "loaderctl",
	Short: "Install and manage Minecraft mod loaders",
	Long: `loaderctl resolves, downloads and installs Fabric, NeoForge and Quilt
loaders into a game directory, sharing libraries between instances.

Use subcommands for operations. Run 'loaderctl --help' for available commands.`,
	Version:       version,
	SilenceUsage:  true, // Runtime errors should not print usage
	SilenceErrors: true, // We handle error output in Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory or file (default: ~/.config/loaderctl)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default: ~/.local/share/loaderctl)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command. Exit codes: 0 = success, 1 = error.
// When --json is set and an error occurs, prints {"error":"..."} to stdout.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if jsonOutput {
			fmt.Printf(`{"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

// colorEnabled returns true if colored output should be used (respects --no-color and NO_COLOR env).
func colorEnabled() bool {
	if noColor {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func render(style lipgloss.Style, s string) string {
	if !colorEnabled() {
		return s
	}
	return style.Render(s)
}

func colorGreen(s string) string  { return render(okStyle, s) }
func colorRed(s string) string    { return render(errStyle, s) }
func colorYellow(s string) string { return render(warnStyle, s) }
func bold(s string) string        { return render(headerStyle, s) }

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// getServiceConfig returns the service configuration with defaults.
// Returns an error if UserHomeDir fails and defaults are needed.
func getServiceConfig() (app.ServiceConfig, error) {
	cfg := app.ServiceConfig{}

	if configDir == "" || dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("home directory: %w", err)
		}
		if configDir == "" {
			configDir = filepath.Join(homeDir, ".config", "loaderctl")
		}
		if dataDir == "" {
			dataDir = filepath.Join(homeDir, ".local", "share", "loaderctl")
		}
	}

	configFile, err := config.ResolvePath(configDir)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	cfg.ConfigFile = configFile
	cfg.DataDir = dataDir
	return cfg, nil
}

// newLogger builds the stderr logger. --verbose wins over log_level.
func newLogger(level string) (*slog.Logger, error) {
	if verbose {
		level = "debug"
	}
	return logging.New(level, os.Stderr)
}

// initService creates and initializes the app service
func initService() (*app.Service, error) {
	cfg, err := getServiceConfig()
	if err != nil {
		return nil, err
	}

	appConfig, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Config = appConfig

	logger, err := newLogger(appConfig.LogLevel)
	if err != nil {
		return nil, err
	}
	cfg.Logger = logger

	if configureService != nil {
		configureService(&cfg)
	}

	return app.NewService(cfg)
}

// parseVariant parses the <variant> positional argument
func parseVariant(arg string) (domain.LoaderVariant, error) {
	return domain.ParseLoaderVariant(arg)
}

// progressPrinter writes install milestones to w, or nothing in JSON mode
func progressPrinter(w io.Writer) domain.ProgressFunc {
	if jsonOutput {
		return nil
	}
	return func(message string, current, total int) {
		fmt.Fprintf(w, "[%d/%d] %s\n", current, total, message)
	}
}
