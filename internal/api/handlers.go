package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dkazakov/invest-aggregator/internal/invest"
	"github.com/dkazakov/invest-aggregator/internal/models"
	"github.com/dkazakov/invest-aggregator/internal/tinkoff"
)

// InvestService is the aggregation surface the handlers depend on.
type InvestService interface {
	GetAccounts(ctx context.Context, user *models.User) ([]*models.BrokerageAccount, error)
	GetPortfolio(ctx context.Context, user *models.User, accountID string) (*models.PortfolioSnapshot, error)
	GetPositions(ctx context.Context, user *models.User, accountID string) (models.PositionsSnapshot, error)
	GetInstrumentByFigi(ctx context.Context, user *models.User, figi string) (*models.InstrumentInfo, error)
}

// UserStore resolves and updates API users.
type UserStore interface {
	GetUserByAPIToken(token string) (*models.User, error)
	UpdateTinkoffToken(userID int, token string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	invest InvestService
	users  UserStore
	log    zerolog.Logger
}

// NewHandler creates a new Handler
func NewHandler(investService InvestService, users UserStore, log zerolog.Logger) *Handler {
	return &Handler{
		invest: investService,
		users:  users,
		log:    log,
	}
}

// GetAccounts handles GET /invest/accounts
func (h *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.invest.GetAccounts(r.Context(), userFrom(r))
	if err != nil {
		message := err.Error()
		switch {
		case strings.Contains(message, "400 Bad Request"):
			message = "Invalid request format or parameters"
		case strings.Contains(message, "401"):
			message = "Authentication failed. Check your API token"
		}
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"success":    false,
			"error":      message,
			"suggestion": "Check your API token and request format",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    accounts,
	})
}

// GetPortfolio handles GET /invest/portfolio/{accountId}
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]

	snapshot, err := h.invest.GetPortfolio(r.Context(), userFrom(r), accountID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// GetPositions handles GET /invest/positions/{accountId}. With
// ?instruments=true each figi-bearing entry is decorated with cached
// instrument details.
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["accountId"]
	user := userFrom(r)

	snapshot, err := h.invest.GetPositions(r.Context(), user, accountID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if r.URL.Query().Get("instruments") != "true" {
		respondJSON(w, http.StatusOK, snapshot)
		return
	}

	enriched, err := h.enrichPositions(r.Context(), user, snapshot)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, enriched)
}

// enrichPositions attaches instrument details under an `instrument` key on
// every entry that carries a figi.
func (h *Handler) enrichPositions(ctx context.Context, user *models.User, snapshot models.PositionsSnapshot) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		var item map[string]any
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, err
		}

		if figi, ok := item["figi"].(string); ok && figi != "" {
			info, err := h.invest.GetInstrumentByFigi(ctx, user, figi)
			if err != nil {
				return nil, err
			}
			item["instrument"] = info
		}
		out = append(out, item)
	}
	return out, nil
}

// SetTinkoffToken handles PATCH /invest/set-tinkoff-token
func (h *Handler) SetTinkoffToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TinkoffToken string `json:"tinkoff_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "invalid request body",
		})
		return
	}
	if req.TinkoffToken == "" || len(req.TinkoffToken) > 512 {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"status":  "error",
			"message": "tinkoff_token is required and must not exceed 512 characters",
		})
		return
	}

	user := userFrom(r)
	if err := h.users.UpdateTinkoffToken(user.ID, req.TinkoffToken); err != nil {
		h.log.Error().Err(err).Int("user_id", user.ID).Msg("failed to save tinkoff token")
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": "Failed to save token",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Tinkoff API token successfully saved",
		"user_id": user.ID,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// respondError translates pipeline errors into client-facing payloads.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validationErr *invest.ValidationError
	var formatErr *invest.FormatError
	var remoteErr *tinkoff.RemoteAPIError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, invest.ErrNoTinkoffToken):
		status = http.StatusBadRequest
	case errors.As(err, &validationErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &formatErr):
		status = http.StatusBadGateway
	case errors.As(err, &remoteErr):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
