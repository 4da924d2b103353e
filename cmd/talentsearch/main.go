// Command talentsearch runs the conversational people and company search
// assistant as an HTTP service or an interactive terminal chat.
package main

import (
	"fmt"
	"os"

	"github.com/kataras/golog"
	"github.com/spf13/cobra"

	"github.com/smallnest/talentsearch/config"
	"github.com/smallnest/talentsearch/log"
)

var (
	// Global flags
	configPath string
	envFile    string
	logLevel   string

	cfg    *config.Config
	logger log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "talentsearch",
	Short: "Conversational people and company search",
	Long: `talentsearch turns a conversation into structured search filters.

Each message is classified, its filters are extracted and merged with the
session's search, and the assistant either asks for a missing detail or runs
the search once the user confirms.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}
		var err error
		cfg, err = config.Load(configPath, envFiles...)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}

		gl := log.NewGologLogger(golog.New())
		gl.SetLevel(cfg.LogLevel())
		logger = gl
		log.SetDefaultLogger(gl)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "talentsearch.yaml", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, chatCmd, reapCmd, graphCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
