// Package main runs the Ciphera lobby relay.
//
// Clients connect over WebSocket, prove ownership of an Ed25519 identity key
// by signing the literal challenge "auth", and may then exchange signed text
// messages with any other identity that is online. Everyone present is told
// when an identity joins or leaves.
//
// Routes
//
//	GET /ws       lobby WebSocket endpoint
//	GET /healthz  liveness plus the current member count
//	GET /metrics  Prometheus collectors (when enabled)
//
// Behaviour
//
//   - All state is held in memory and lost on process exit. Nothing is
//     persisted or queued for offline recipients.
//   - Settings come from a YAML file (--config or CIPHERA_RELAY_CONFIG), then
//     from explicit flags, and are validated before the server starts.
//   - Logs are structured (zap). The default listen address is :8080.
//   - SIGINT or SIGTERM closes every connection and exits.
package main
