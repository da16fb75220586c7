package main

import (
	"os"
	"strings"

	"github.com/apex/log"
	jsonhandler "github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/spf13/cobra"
)

var logFormat string

var rootCmd = &cobra.Command{
	Use:           "gateway",
	Short:         "NestMind agent gateway",
	Long:          `NestMind answers student questions through housing, budget, guide, career and chat agents backed by a configurable model provider.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		path, loaded, err := loadEnvFile()
		if err != nil {
			return err
		}
		if loaded > 0 {
			log.WithFields(log.Fields{"path": path, "keys": loaded}).Debug("env file loaded")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	rootCmd.AddCommand(newServeCmd(), newAskCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("gateway failed")
		os.Exit(1)
	}
}

// configureLogging sets the process-wide apex/log handler and level. Unknown
// levels fall back to info.
func configureLogging(level, format string) {
	if strings.EqualFold(format, "json") {
		log.SetHandler(jsonhandler.New(os.Stderr))
	} else {
		log.SetHandler(text.New(os.Stderr))
	}
	parsed, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		log.WithField("level", level).Warn("unknown log level, using info")
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
