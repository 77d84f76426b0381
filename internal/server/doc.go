// Package server implements the HTTP and WebSocket boundary of the relay.
//
// The implementation is organized into specialized files for configuration,
// the hub that adapts WebSocket connections to chat sessions, client pumps,
// routing, HTTP handlers and application wiring. Room state and fan-out live
// in package chat.
package server
