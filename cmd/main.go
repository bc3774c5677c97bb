package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/charbxl/nine999/nine999-backend/handlers"
	"github.com/charbxl/nine999/nine999-backend/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	srv := handlers.New(cfg)

	log.Info().Str("addr", cfg.Addr).Str("turn_policy", cfg.TurnPolicy).Msg("server listening")
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
