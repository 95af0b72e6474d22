package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Invest routes, all behind bearer-token auth
	invest := r.PathPrefix("/invest").Subrouter()
	invest.Use(handler.authMiddleware)
	invest.HandleFunc("/accounts", handler.GetAccounts).Methods("GET")
	invest.HandleFunc("/portfolio/{accountId}", handler.GetPortfolio).Methods("GET")
	invest.HandleFunc("/positions/{accountId}", handler.GetPositions).Methods("GET")
	invest.HandleFunc("/set-tinkoff-token", handler.SetTinkoffToken).Methods("PATCH")

	return r
}
