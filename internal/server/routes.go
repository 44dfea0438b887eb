// -----------------------------------------------------------------------
// Last Modified: Friday, 16th October 2026 11:27:55 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents
	mux.HandleFunc("/api/documents/assemble", s.app.DocumentHandler.AssembleHandler) // POST - multipart upload, returns PDF
	mux.HandleFunc("/api/documents/inspect", s.app.DocumentHandler.InspectHandler)   // POST - multipart upload, returns page info

	// API routes - Config
	mux.HandleFunc("/api/config", s.handleConfigRoute) // GET - sanitized running config

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleConfigRoute serves the read-only config view
func (s *Server) handleConfigRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet: s.app.ConfigHandler.GetConfig,
	})
}
