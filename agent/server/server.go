// Package server exposes the caller boundary over HTTP: trigger the agent,
// read the product record, and inject dashboard scenarios.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

// Agent is the slice of the orchestrator the server needs.
type Agent interface {
	Run(ctx context.Context, trigger contractx.TriggerReason) contractx.Outcome
}

type Server struct {
	agent     Agent
	store     contractx.ScenarioStore
	productID string
}

type invokeRequest struct {
	TriggerReason string `json:"trigger_reason"`
}

type invokeResponse struct {
	Status int                   `json:"status"`
	Body   string                `json:"body"`
	RunID  string                `json:"run_id"`
	State  contractx.RunState    `json:"state"`
	Turns  int                   `json:"turns"`
	Audit  contractx.AuditReport `json:"audit"`
}

func New(agent Agent, store contractx.ScenarioStore, productID string) (*Server, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	if store == nil {
		return nil, errors.New("scenario store is required")
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("product id is required")
	}
	return &Server{agent: agent, store: store, productID: productID}, nil
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invoke", s.handleInvoke)
	mux.HandleFunc("GET /product", s.handleProduct)
	mux.HandleFunc("POST /scenario/stockout", s.handleStockout)
	mux.HandleFunc("POST /scenario/competitor-drop", s.handleCompetitorDrop)
	mux.HandleFunc("POST /scenario/reset", s.handleReset)
	return logRequests(mux)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req invokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	trigger := contractx.TriggerReason(strings.TrimSpace(req.TriggerReason))
	if trigger == "" {
		trigger = contractx.TriggerGeneralCheck
	}

	out := s.agent.Run(r.Context(), trigger)
	writeJSON(w, out.StatusCode, invokeResponse{
		Status: out.StatusCode,
		Body:   out.Body,
		RunID:  out.RunID,
		State:  out.State,
		Turns:  out.Turns,
		Audit:  out.Audit,
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), s.productID)
	if err != nil {
		if errors.Is(err, contractx.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleStockout forces a critical stock level, mirroring the dashboard's
// stockout injection.
func (s *Server) handleStockout(w http.ResponseWriter, r *http.Request) {
	if err := s.store.SetStock(r.Context(), s.productID, 50); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Warn().Str("product_id", s.productID).Msg("scenario_stockout_injected")
	writeJSON(w, http.StatusOK, map[string]string{"status": "injected"})
}

func (s *Server) handleCompetitorDrop(w http.ResponseWriter, r *http.Request) {
	if err := s.store.AddCompetitorPrice(r.Context(), s.productID, -20); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Warn().Str("product_id", s.productID).Msg("scenario_competitor_drop_injected")
	writeJSON(w, http.StatusOK, map[string]string{"status": "injected"})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), s.productID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rec.StockLevel = 3000
	rec.CurrentPrice = 120
	rec.CompetitorPrice = 130
	if err := s.store.Put(r.Context(), rec); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Info().Str("product_id", s.productID).Msg("scenario_reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		log.Info().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("http_request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
