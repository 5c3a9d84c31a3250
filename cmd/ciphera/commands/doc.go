// Package commands defines the ciphera CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init           Create the local identity
//   - fingerprint    Print the identity key and its fingerprint
//   - online         List identities currently in the lobby
//   - send           Sign and send a message to an online peer
//   - listen         Stay online and print lobby events and messages
//
// # Implementation
//
// The root command builds the client wiring (identity store and service,
// relay URL) before any subcommand runs. Commands that talk to the relay
// authenticate a fresh WebSocket connection and close it when done.
package commands
