package cmd

import (
	"fmt"
	"os"

	"sofie/core/config"
	"sofie/core/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "sofie",
	Short: "Single-handler HTTP application server",
	Long: `Sofie resolves a listener configuration (config file, environment or defaults),
binds one virtual host and routes every request to a single handler.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	envFile    string
	noEnv      bool

	// settings merges logging flags with LOG_LEVEL and LOG_FORMAT.
	settings = viper.New()
)

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console/debug gives ISO8601 timestamps, which reads better on a terminal.
		l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath, "configuration file (toml, yaml or json)")
	flags.StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file consulted when the configuration file is not used")
	flags.BoolVar(&noEnv, "no-env", false, "ignore PORT and INTERFACE")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "json", "log format (json, console)")

	_ = settings.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = settings.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = settings.BindEnv("log.level", "LOG_LEVEL")
	_ = settings.BindEnv("log.format", "LOG_FORMAT")
}

func logConfig() *logger.Config {
	return &logger.Config{
		Level:  settings.GetString("log.level"),
		Format: settings.GetString("log.format"),
	}
}

func configSource() config.Source {
	return config.Source{Path: configPath, EnvFile: envFile, Env: !noEnv}
}
