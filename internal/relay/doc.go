// Package relay is the WebSocket transport of the lobby.
//
// Server accepts connections on /ws. Each connection gets a fresh ConnID and
// a bounded outbound queue drained by a single writer goroutine; that queue
// is the connection's domain.Outbound. The first inbound frame must be an
// auth frame and must arrive within the auth timeout. Once admitted, every
// inbound frame goes through the message pipeline and rejections are
// answered with an error frame to the sender only. When the connection ends
// the identity is released, unless a newer connection already owns it.
//
// The server also answers /healthz and, when metrics are enabled, exposes
// Prometheus collectors.
//
// Client is the matching dialer used by the CLI and by tests:
//
//	c, err := relay.Dial(ctx, "ws://127.0.0.1:8080/ws", id)
//	roster, err := c.Authenticate()
//	err = c.Send(peer, "hello")
//	frame, err := c.Next(ctx)
package relay
