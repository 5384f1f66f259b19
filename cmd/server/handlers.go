package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/scenarios/internal/store"
)

const (
	defaultMargin     = 0.10
	defaultDollarRate = 5.25
)

type productPayload struct {
	Name      string   `json:"name"`
	BaseValue *float64 `json:"base_value"`
}

type scenarioPayload struct {
	Name       string           `json:"name"`
	Margin     *float64         `json:"margin"`
	DollarRate *float64         `json:"dollar_rate"`
	Products   []productPayload `json:"products"`
}

type scenarioFields struct {
	Name       string
	Margin     float64
	DollarRate float64
	Products   []store.ProductInput
}

// validate applies explicit boundary checks so nothing downstream ever
// computes with garbage. Omitted margin/dollar_rate fall back to the
// scenario defaults.
func (p scenarioPayload) validate() (scenarioFields, error) {
	fields := scenarioFields{
		Name:       strings.TrimSpace(p.Name),
		Margin:     defaultMargin,
		DollarRate: defaultDollarRate,
	}

	if fields.Name == "" {
		return fields, fmt.Errorf("name is required")
	}
	if p.Margin != nil {
		if *p.Margin < 0 {
			return fields, fmt.Errorf("margin must be greater than or equal to 0")
		}
		fields.Margin = *p.Margin
	}
	if p.DollarRate != nil {
		if *p.DollarRate < 0 {
			return fields, fmt.Errorf("dollar_rate must be greater than or equal to 0")
		}
		fields.DollarRate = *p.DollarRate
	}

	fields.Products = make([]store.ProductInput, len(p.Products))
	for i, product := range p.Products {
		input := store.ProductInput{Name: product.Name}
		if product.BaseValue != nil {
			if *product.BaseValue < 0 {
				return fields, fmt.Errorf("products[%d].base_value must be greater than or equal to 0", i)
			}
			input.BaseValue = *product.BaseValue
		}
		fields.Products[i] = input
	}

	return fields, nil
}

type scenarioSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Margin     float64 `json:"margin"`
	DollarRate float64 `json:"dollar_rate"`
	CreatedAt  string  `json:"createdAt"`
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "API de cenários financeiros no ar"})
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("list scenarios", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list scenarios")
		return
	}

	summaries := make([]scenarioSummary, len(scenarios))
	for i, sc := range scenarios {
		summaries[i] = scenarioSummary{
			ID:         sc.ID,
			Name:       sc.Name,
			Margin:     sc.Margin,
			DollarRate: sc.DollarRate,
			CreatedAt:  sc.CreatedAt,
		}
	}

	respondJSON(w, http.StatusOK, summaries)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := scenarioID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	scenario, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "scenario not found")
		return
	}
	if err != nil {
		s.log.Error("get scenario", zap.Int64("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load scenario")
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload scenarioPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields, err := payload.validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.Create(r.Context(), fields.Name, fields.Margin, fields.DollarRate, fields.Products)
	if errors.Is(err, store.ErrNameTaken) {
		respondError(w, http.StatusBadRequest, "a scenario with this name already exists")
		return
	}
	if err != nil {
		s.log.Error("create scenario", zap.String("name", fields.Name), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create scenario")
		return
	}

	respondJSON(w, http.StatusCreated, created)
}

func (s *server) handleReplace(w http.ResponseWriter, r *http.Request) {
	id, err := scenarioID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	var payload scenarioPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields, err := payload.validate()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	replaced, err := s.store.Replace(r.Context(), id, fields.Name, fields.Margin, fields.DollarRate, fields.Products)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, "scenario not found")
		return
	case errors.Is(err, store.ErrNameTaken):
		respondError(w, http.StatusBadRequest, "a scenario with this name already exists")
		return
	case err != nil:
		// The store rolled back; prior state is intact.
		s.log.Error("replace scenario", zap.Int64("id", id), zap.Error(err))
		respondError(w, http.StatusBadRequest, "failed to save scenario")
		return
	}

	respondJSON(w, http.StatusOK, replaced)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := scenarioID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	changes, err := s.store.Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete scenario", zap.Int64("id", id), zap.Error(err))
		respondError(w, http.StatusBadRequest, "failed to delete scenario")
		return
	}

	respondJSON(w, http.StatusOK, map[string]int64{"changes": changes})
}

func (s *server) handleDuplicate(w http.ResponseWriter, r *http.Request) {
	id, err := scenarioID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid scenario id")
		return
	}

	newID, err := s.store.Duplicate(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "original scenario not found")
		return
	}
	if err != nil {
		s.log.Error("duplicate scenario", zap.Int64("id", id), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to duplicate scenario")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": newID})
}

func scenarioID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid scenario id")
	}
	return id, nil
}
