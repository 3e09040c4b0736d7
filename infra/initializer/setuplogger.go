package initializer

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/venuehq/payouts/pkg/config"
)

func setupLogger(cfg config.Log) *slog.Logger {
	formatter := log.JSONFormatter
	if cfg.Format == "text" {
		formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Level:           log.Level(cfg.Level),
		Formatter:       formatter,
	})

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
