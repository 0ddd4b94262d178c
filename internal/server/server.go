// Package server exposes the scoring service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/leadscore/internal/leadio"
	"github.com/sells-group/leadscore/internal/model"
	"github.com/sells-group/leadscore/internal/scoring"
	"github.com/sells-group/leadscore/internal/store"
)

// maxUploadBytes bounds lead CSV uploads.
const maxUploadBytes = 10 << 20 // 10 MB

// Server routes scoring requests to the store and engine.
type Server struct {
	store  store.Store
	engine *scoring.Engine
}

// New creates a Server.
func New(st store.Store, engine *scoring.Engine) *Server {
	return &Server{store: st, engine: engine}
}

// Router builds the HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/offer", s.handleCreateOffer)
	r.Post("/leads/upload", s.handleUploadLeads)
	r.Post("/score", s.handleScore)
	r.Get("/results", s.handleResults)
	r.Get("/results/export", s.handleExport)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string   `json:"name"`
		ValueProps    []string `json:"value_props"`
		IdealUseCases []string `json:"ideal_use_cases"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	offer, err := s.store.CreateOffer(r.Context(), model.Offer{
		Name:          req.Name,
		ValueProps:    req.ValueProps,
		IdealUseCases: req.IdealUseCases,
	})
	if errors.Is(err, store.ErrOfferExists) {
		writeError(w, http.StatusBadRequest, "offer already exists")
		return
	}
	if err != nil {
		zap.L().Error("create offer failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create offer failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"name":    offer.Name,
		"message": "offer created",
	})
}

func (s *Server) handleUploadLeads(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "file must be a CSV")
		return
	}

	leads, err := leadio.ReadLeads(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid CSV file")
		return
	}

	count, err := s.store.ReplaceLeads(r.Context(), leads)
	if err != nil {
		zap.L().Error("lead upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lead upload failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%d leads uploaded successfully. Previous data cleared.", count),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromQuery(w, r)
	if !ok {
		return
	}

	leads, err := s.store.ListLeads(r.Context())
	if err != nil {
		zap.L().Error("list leads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list leads failed")
		return
	}
	if len(leads) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    offer.Name,
			"message": fmt.Sprintf("no leads found to score for offer %q", offer.Name),
		})
		return
	}

	results := s.engine.ScoreBulk(r.Context(), leads, *offer)

	leadIDs := make([]string, len(leads))
	for i, lead := range leads {
		leadIDs[i] = lead.ID
	}

	saved, err := s.store.ReplaceResults(r.Context(), offer.ID, leadIDs, results)
	if err != nil {
		zap.L().Error("save results failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save results failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"name":    offer.Name,
		"message": fmt.Sprintf("scored %d leads for offer %q. Previous results cleared.", saved, offer.Name),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromQuery(w, r)
	if !ok {
		return
	}

	results, err := s.store.ListResults(r.Context(), offer.ID)
	if err != nil {
		zap.L().Error("list results failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list results failed")
		return
	}

	type resultResponse struct {
		Name      string       `json:"name"`
		Role      string       `json:"role"`
		Company   string       `json:"company"`
		Intent    model.Intent `json:"intent"`
		Score     int          `json:"score"`
		Reasoning string       `json:"reasoning"`
	}

	out := make([]resultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, resultResponse{
			Name:      res.Lead.Name,
			Role:      res.Lead.Role,
			Company:   res.Lead.Company,
			Intent:    res.Intent,
			Score:     res.Score,
			Reasoning: res.Reasoning,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	offer, ok := s.offerFromQuery(w, r)
	if !ok {
		return
	}

	results, err := s.store.ListResults(r.Context(), offer.ID)
	if err != nil {
		zap.L().Error("list results failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list results failed")
		return
	}
	if len(results) == 0 {
		writeError(w, http.StatusNotFound, "no results found for this offer")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_results.csv", offer.Name))
	if err := leadio.WriteResults(w, results); err != nil {
		zap.L().Error("export results failed", zap.Error(err))
	}
}

// offerFromQuery resolves the ?offer= query parameter, writing the error
// response itself when the parameter is missing or unknown.
func (s *Server) offerFromQuery(w http.ResponseWriter, r *http.Request) (*model.Offer, bool) {
	name := r.URL.Query().Get("offer")
	if name == "" {
		writeError(w, http.StatusBadRequest, "offer query parameter is required")
		return nil, false
	}

	offer, err := s.store.GetOfferByName(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "offer not found")
		return nil, false
	}
	if err != nil {
		zap.L().Error("get offer failed", zap.String("offer", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get offer failed")
		return nil, false
	}
	return offer, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}
