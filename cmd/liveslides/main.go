package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/xpanvictor/liveslides/internal/config"
	"github.com/xpanvictor/liveslides/pkg/Logger"
)

var rootCmd = &cobra.Command{
	Use:   "liveslides",
	Short: "Turns a live talk into presentation slides as you speak.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			viper.SetConfigFile(path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ./config_<env>.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd, replayCmd)
}

// loadSettings reads the config and builds the global logger.
func loadSettings() (*config.Settings, *Logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := Logger.New(cfg.Debug)
	logger.Debugf("config loaded (env=%s file=%q)", cfg.Env, viper.ConfigFileUsed())
	return cfg, logger, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
