// Package app assembles the server from its parts: configuration, state,
// router, bot and the connection manager.
package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ircserv/internal/bot"
	"github.com/vovakirdan/ircserv/internal/config"
	"github.com/vovakirdan/ircserv/internal/router"
	"github.com/vovakirdan/ircserv/internal/server"
	"github.com/vovakirdan/ircserv/internal/state"
)

// App is the fully wired server.
type App struct {
	cfg config.Config
	log *zerolog.Logger
	srv *server.Server
}

// New wires state, router, bot and connection manager from the configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	st := state.New(cfg.Password, cfg.MOTD)
	st.OperName = cfg.OperName
	st.OperPass = cfg.OperPass
	st.Clients[state.BotID] = bot.NewClient()

	b := bot.New(router.New())
	srv := server.New(cfg.Addr(), cfg.MaxClients, st, b.Route, logger)

	return &App{cfg: cfg, log: logger, srv: srv}
}

// Run serves until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.log.Info().Int("port", a.cfg.Port).Msg("starting server")
	return a.srv.Run(ctx)
}
