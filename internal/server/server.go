package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/scythe504/basta-backend/internal/config"
	"github.com/scythe504/basta-backend/internal/game"
)

type Server struct {
	port          int
	allowedOrigin string
	game          *game.Service
}

func NewServer(cfg *config.Config, svc *game.Service) *http.Server {
	s := &Server{
		port:          cfg.Port,
		allowedOrigin: cfg.AllowedOrigin,
		game:          svc,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
