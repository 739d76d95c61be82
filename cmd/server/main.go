// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/TarVK/themCards/internal/cards"
	"github.com/TarVK/themCards/internal/config"
	"github.com/TarVK/themCards/internal/game"
	"github.com/TarVK/themCards/internal/handlers"
	"github.com/TarVK/themCards/internal/journal"
	"github.com/TarVK/themCards/internal/socket"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	library, err := cards.LoadLibrary(cfg.CardPacksDir, logger)
	if err != nil {
		log.Fatalf("failed to load card packs: %v", err)
	}

	var j *journal.Journal
	if cfg.RedisAddr != "" {
		j, err = journal.Connect(cfg.RedisAddr, cfg.JournalQueue, logger)
		if err != nil {
			logger.Warnf("event journal disabled: %v", err)
		}
	}

	loop := socket.NewLoop()
	go loop.Run(context.Background())

	registry := game.NewRegistry(library, j, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlers.PingHandler)
	mux.Handle("/ws", handlers.SocketHandler(logger, loop, registry))
	mux.Handle("/", handlers.LogMiddleware(logger)(http.FileServer(http.Dir(cfg.PublicDir))))

	addr := ":" + cfg.Port
	logger.Infof("listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
