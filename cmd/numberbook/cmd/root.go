package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inkbound/numberbook/internal/config"
	"github.com/inkbound/numberbook/internal/version"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "numberbook",
	Short: "Build number images from public-domain book scans",
	Long: `numberbook assembles the raw material for a printed book showing the
numbers 1 to 50,000, each clipped from scans of public-domain books
rather than set in a font.

The pipeline locates numbers in OCR layout data, crops their images
from the page scans, composes missing values from images of their
parts, and lays the completed collection out as book pages.

Examples:
  numberbook fetch --collection americana --email you@example.com
  numberbook extract
  numberbook compose
  numberbook assemble --merge`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.PersistentFlags().GetBool("version"); v {
			ver, commit, date := version.Info()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "numberbook version %s\n", ver)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", commit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", date)
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/numberbook, /etc/numberbook)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("raw-dir", "", "directory of downloaded book scans")
	rootCmd.PersistentFlags().String("numbers-dir", "", "directory of extracted number images")
	rootCmd.PersistentFlags().Int("max-number", 0, "largest number to cover (default 50000)")
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}

		var logLevel slog.Level
		if globalConfig.Verbose {
			logLevel = slog.LevelDebug
		} else {
			switch globalConfig.LogLevel {
			case "debug":
				logLevel = slog.LevelDebug
			case "warn":
				logLevel = slog.LevelWarn
			case "error":
				logLevel = slog.LevelError
			default:
				logLevel = slog.LevelInfo
			}
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the global configuration with persistent flag
// overrides applied.
func GetConfig(cmd *cobra.Command) *config.Config {
	if globalConfig == nil {
		initConfig()
	}
	cfg := *globalConfig

	if cmd.Flags().Changed("raw-dir") {
		cfg.Data.RawDir, _ = cmd.Flags().GetString("raw-dir")
	}
	if cmd.Flags().Changed("numbers-dir") {
		cfg.Data.NumbersDir, _ = cmd.Flags().GetString("numbers-dir")
	}
	if cmd.Flags().Changed("max-number") {
		cfg.Pipeline.MaxNumber, _ = cmd.Flags().GetInt("max-number")
	}
	return &cfg
}
