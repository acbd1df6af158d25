package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"daybrief/pkg/daybrief"
)

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getSummary returns one archived digest. Date defaults to today at the
// exchange; language and country default to en/US at the store boundary.
func (h *handler) getSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daybrief.TodayISOAtExchange()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, daybrief.NewError(daybrief.ErrCodeInvalidInput, "date must be YYYY-MM-DD"))
		return
	}

	record, err := h.core.Store().Load(date, r.URL.Query().Get("lang"), r.URL.Query().Get("country"))
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, err)
		return
	}
	writeSuccess(w, record)
}

func (h *handler) listSummaries(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.core.Store().ListAll())
}

// refreshSummary runs the manual generation path. The four outcomes carry
// distinct messages: generated, quota exceeded, timed out, failed.
func (h *handler) refreshSummary(w http.ResponseWriter, r *http.Request) {
	err := h.core.TriggerManual(r.Context())
	switch {
	case err == nil:
		writeSuccessWithMessage(w, "summary generated", h.core.Status())
	case errors.Is(err, daybrief.ErrQuotaExceeded):
		writeErrorResponse(w, http.StatusTooManyRequests, err)
	case errors.Is(err, daybrief.ErrGenerationTimeout):
		writeErrorResponse(w, http.StatusGatewayTimeout, err)
	case errors.Is(err, daybrief.ErrGenerationInFlight):
		writeErrorResponse(w, http.StatusConflict, err)
	case errors.Is(err, daybrief.ErrInsufficientData):
		writeErrorResponse(w, http.StatusServiceUnavailable, err)
	default:
		writeErrorResponse(w, http.StatusBadGateway, err)
	}
}

func (h *handler) generationStatus(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, h.core.Status())
}

func (h *handler) getWatchlist(w http.ResponseWriter, _ *http.Request) {
	symbols, err := h.core.GetWatchSymbols()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccess(w, symbols)
}

func (h *handler) addWatchSymbol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, daybrief.NewError(daybrief.ErrCodeInvalidInput, "invalid JSON body"))
		return
	}
	if err := h.core.AddWatchSymbol(req.Symbol, req.Name); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccessWithMessage(w, "symbol added", nil)
}

func (h *handler) removeWatchSymbol(w http.ResponseWriter, r *http.Request) {
	if err := h.core.RemoveWatchSymbol(chi.URLParam(r, "symbol")); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeSuccessWithMessage(w, "symbol removed", nil)
}

// adminGenerate kicks off a forced out-of-schedule pass and returns
// immediately; progress is visible via the status endpoint.
func (h *handler) adminGenerate(w http.ResponseWriter, _ *http.Request) {
	if h.core.Status().IsGenerating {
		writeErrorResponse(w, http.StatusConflict, daybrief.ErrGenerationInFlight)
		return
	}
	go func() {
		if err := h.core.ForceGenerate(context.Background()); err != nil {
			h.logger.Warn("admin-triggered generation failed", "err", err)
		}
	}()
	writeJSON(w, http.StatusAccepted, Response{Code: 0, Message: "generation started"})
}
