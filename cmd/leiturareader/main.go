package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/iafilius/LeituraViewer/src/config"
	"github.com/iafilius/LeituraViewer/src/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Errorf("config: %v", err)
		os.Exit(1)
	}
	logger := logging.New(cfg, version, "leiturareader")
	slog.SetDefault(logger)
	logging.Debugf("leiturareader %s, LEITURA_DB=%q", version, cfg.DBPath)

	root := setupCommands(&app{cfg: cfg, logger: logger, loc: time.Local})
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
