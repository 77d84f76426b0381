// Package server wires HTTP handlers into a ServeMux for the relay via
// routing helpers.
package server

import "net/http"

// SetupRoutes configures and returns an HTTP ServeMux with all application routes.
// It sets up handlers for health check, WebSocket endpoint, test page and metrics.
func SetupRoutes(ws http.Handler, metricsHandler http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", HealthHandler)
	mux.Handle("/ws", ws)
	mux.HandleFunc("/test", TestPageHandler)
	mux.Handle("/metrics", metricsHandler)
	return mux
}
