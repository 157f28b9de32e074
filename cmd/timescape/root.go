package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/timescape/pkg/timescape/config"
	"github.com/jamesainslie/timescape/pkg/timescape/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "timescape [path]",
		Short: "Browse a photo library as a zoomable timeline",
		Long: `Timescape indexes the capture times of a photo library and renders it
as a zoomable timeline: decades of years, years of months, down to
minutes of seconds. Empty stretches of time stay visible, so the shape
of the library is preserved.

Examples:
  timescape                        # Index the configured library
  timescape ~/Pictures             # Index a specific directory
  timescape -z months ~/Pictures   # Open at the months zoom level
  timescape --pivot 2023-06-01 .   # Center the window on a date
  timescape -o plain .             # Tab-separated output for scripting
  timescape --watch ~/Pictures     # Keep indexing new photos`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScan,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/timescape/config.yaml)")
	rootCmd.PersistentFlags().StringP("zoom", "z", "", "zoom level: years, months, days, hours, minutes, seconds")
	rootCmd.PersistentFlags().String("pivot", "", "center the window on a date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().IntP("buffer", "b", 0, "buckets kept on each side of the pivot (0=config default)")
	rootCmd.PersistentFlags().StringSliceP("extensions", "e", nil, "image extensions to index (can be specified multiple times)")
	rootCmd.PersistentFlags().Bool("no-recursive", false, "do not descend into subdirectories")
	rootCmd.PersistentFlags().Int("max-depth", 0, "directory recursion limit (0=config default)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format: pretty, plain")
	rootCmd.PersistentFlags().BoolP("watch", "w", false, "keep watching the library after the scan")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the capture-time cache")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("timeline.zoom", rootCmd.PersistentFlags().Lookup("zoom"))
	_ = viper.BindPFlag("pivot", rootCmd.PersistentFlags().Lookup("pivot"))
	_ = viper.BindPFlag("timeline.buffer_size", rootCmd.PersistentFlags().Lookup("buffer"))
	_ = viper.BindPFlag("library.extensions", rootCmd.PersistentFlags().Lookup("extensions"))
	_ = viper.BindPFlag("no_recursive", rootCmd.PersistentFlags().Lookup("no-recursive"))
	_ = viper.BindPFlag("library.max_depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("watch", rootCmd.PersistentFlags().Lookup("watch"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "timescape"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "timescape"))
		}
	}

	viper.SetEnvPrefix("TIMESCAPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Set defaults from config package
	viper.SetDefault("library.path", config.DefaultLibraryPath)
	viper.SetDefault("library.extensions", config.DefaultExtensions)
	viper.SetDefault("library.max_depth", config.DefaultMaxDepth)
	viper.SetDefault("timeline.buffer_size", config.DefaultBufferSize)
	viper.SetDefault("timeline.zoom", config.DefaultZoom)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("logging.level", "info")

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging sets up file logging per config, with console output in
// verbose mode.
func initLogging() error {
	if err := config.EnsureStateDir(); err != nil {
		return err
	}

	cfg := logging.Config{
		Level:      viper.GetString("logging.level"),
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
	}
	if getVerbose() {
		cfg.Level = "debug"
		cfg.ConsoleLevel = "debug"
	}
	return logging.Init(cfg)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}
