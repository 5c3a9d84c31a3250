// Package app wires application dependencies for both binaries.
//
// For the relay it loads Config from YAML, builds the logger, and assembles
// the directory, services and WebSocket server (NewServer). For the CLI it
// builds the identity store and service and dials the relay (ClientWire).
package app
