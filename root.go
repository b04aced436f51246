package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/tonimelisma/azshare-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool

	// Share coordinates, shared by upload and watch.
	flagAccountURL    string
	flagShareName     string
	flagDirectoryPath string
	flagVaultKey      string
	flagVaultField    string
)

// resolvedCfg holds the effective configuration loaded by
// PersistentPreRunE. It is available to all subcommands after the root
// pre-run phase completes.
var resolvedCfg *config.Config

// newRootCmd builds and returns the fully-assembled root command with
// all subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "azshare",
		Short:   "Upload documents to an Azure Files share",
		Long:    "azshare manages a local document repository and uploads documents to an Azure Files share using large-file-safe chunked transfers.",
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.PersistentFlags().StringVar(&flagAccountURL, "account-url", "", "storage account URL (e.g. https://acct.file.core.windows.net)")
	cmd.PersistentFlags().StringVar(&flagShareName, "share", "", "file share name")
	cmd.PersistentFlags().StringVar(&flagDirectoryPath, "dir", "", "directory path on the share (created if missing)")
	cmd.PersistentFlags().StringVar(&flagVaultKey, "vault-key", "", "secrets store key holding the SAS token")
	cmd.PersistentFlags().StringVar(&flagVaultField, "vault-field", "", "field name under the secrets store key")

	// Register subcommands.
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newDocsCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the override
// chain and stores the result in resolvedCfg for use by subcommands.
// A .env file in the working directory is folded into the environment
// first; a missing one is not an error.
func loadConfig() error {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cli := config.CLIOverrides{
		ConfigPath:    flagConfigPath,
		AccountURL:    flagAccountURL,
		ShareName:     flagShareName,
		DirectoryPath: flagDirectoryPath,
		VaultKey:      flagVaultKey,
		VaultField:    flagVaultField,
	}

	cfg, err := config.Load(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	resolvedCfg = cfg

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config
// and CLI flags. Config-file log level provides the baseline; --verbose
// and --quiet override it because CLI flags always win. With a log
// file configured, output goes to both stderr and a rotating file.
func buildLogger() *slog.Logger {
	level := slog.LevelInfo

	switch resolvedCfg.Logging.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	var out io.Writer = os.Stderr

	if resolvedCfg.Logging.LogFile != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   resolvedCfg.Logging.LogFile,
			MaxSize:    resolvedCfg.Logging.MaxSizeMB,
			MaxBackups: resolvedCfg.Logging.MaxBackups,
		})
	}

	opts := &slog.HandlerOptions{Level: level}

	if useJSONHandler(resolvedCfg.Logging.LogFormat) {
		return slog.New(slog.NewJSONHandler(out, opts))
	}

	return slog.New(slog.NewTextHandler(out, opts))
}

// useJSONHandler decides the log encoding. "auto" means text on a
// terminal and JSON when output is redirected.
func useJSONHandler(format string) bool {
	switch format {
	case "json":
		return true
	case "text":
		return false
	default:
		return !isatty.IsTerminal(os.Stderr.Fd())
	}
}
