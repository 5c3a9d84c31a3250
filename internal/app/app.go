package app

import (
	"go.uber.org/zap"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/lobby"
	"ciphera-lobby/internal/relay"
	"ciphera-lobby/internal/services/auth"
	"ciphera-lobby/internal/services/message"
	"ciphera-lobby/internal/telemetry"
)

// Server bundles the relay's dependency graph.
type Server struct {
	Directory *lobby.Directory
	Auth      *auth.Service
	Messages  *message.Service
	Relay     *relay.Server
	Metrics   *telemetry.Metrics
}

// NewServer constructs the relay from a validated cfg.
func NewServer(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.New()
	}

	dir := lobby.New(
		lobby.WithCapacity(cfg.MaxMembers),
		lobby.WithLogger(logger),
		lobby.WithMetrics(metrics),
	)
	verifier := crypto.Ed25519Verifier{}
	authSvc := auth.New(dir, verifier, logger, metrics)
	messageSvc := message.New(dir, verifier, logger, metrics)

	return &Server{
		Directory: dir,
		Auth:      authSvc,
		Messages:  messageSvc,
		Relay:     relay.NewServer(dir, authSvc, messageSvc, logger, metrics, cfg.RelayOptions()),
		Metrics:   metrics,
	}
}
