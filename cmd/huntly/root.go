package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/constadinisio/huntly/internal/config"
	"github.com/constadinisio/huntly/internal/model"
	"github.com/constadinisio/huntly/internal/notifier"
	"github.com/constadinisio/huntly/internal/telegram"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "huntly",
	Short: "Workana review bot — scrape, review, propose",
	Long:  "Huntly watches a Workana search feed, prompts you per listing on Telegram, drafts proposals with an LLM and submits the ones you approve.",
	// Default to `start` so that `huntly` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: HUNTLY_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > HUNTLY_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("HUNTLY_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// setupTelegramClient builds the bot client, or nil when the channel is off.
func setupTelegramClient(cfg *config.Config, logger *slog.Logger) *telegram.Client {
	if !cfg.Telegram.Enabled {
		return nil
	}
	httpClient := &http.Client{Timeout: cfg.Telegram.PollTimeout + 10*time.Second}
	return telegram.NewClient(telegram.DefaultBaseURL, cfg.Telegram.Token, cfg.Telegram.ChatID, httpClient, logger)
}

// setupNotifier assembles the summary-notice fan-out from the enabled channels.
func setupNotifier(cfg *config.Config, tgClient *telegram.Client, logger *slog.Logger) model.Notifier {
	var channels []model.Notifier
	if cfg.Email.Enabled {
		logger.Info("using email notifier", "to", cfg.Email.To)
		channels = append(channels, notifier.NewEmailNotifier(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.To,
			logger,
		))
	}
	if tgClient != nil {
		channels = append(channels, notifier.NewTelegramNotifier(tgClient, logger))
	}
	if len(channels) == 0 {
		return notifier.NewLogNotifier(logger)
	}
	return notifier.NewMultiNotifier(channels...)
}
