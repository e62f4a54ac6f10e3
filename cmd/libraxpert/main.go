// cmd/libraxpert/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/config"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:           "libraxpert",
		Short:         "LibraXpert is a library management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// loadConfig reads the options and installs the process logger.
func loadConfig() (*config.Options, error) {
	opts, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log.Init(log.Options{
		Level:      opts.LogLevel,
		File:       opts.LogFile,
		MaxSize:    opts.LogFileMaxSize,
		MaxBackups: opts.LogFileMaxBackups,
		MaxAge:     opts.LogFileMaxAge,
		Compress:   opts.LogCompress,
	})
	return opts, nil
}

func main() {
	defer log.Logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		log.Logger.Sugar().Errorf("libraxpert: %v", err)
		log.Logger.Sync()
		os.Exit(1)
	}
}
