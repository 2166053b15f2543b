package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/repo"
)

// ListFlows возвращает список всех flows.
// GET /api/v1/flows
func (h *Handler) ListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := h.flowRepo.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FlowResponse, len(flows))
	for i, f := range flows {
		result[i] = FlowFromDomain(f)
	}

	List(w, result, len(result))
}

// CreateFlow создаёт новый flow.
// POST /api/v1/flows
//
// Определение проходит структурную валидацию до записи: невалидный
// flow не сохраняется никогда.
func (h *Handler) CreateFlow(w http.ResponseWriter, r *http.Request) {
	var req CreateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.ID == "" {
		BadRequest(w, "id is required")
		return
	}
	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	now := time.Now()
	flow := &domain.Flow{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		StartTask:   req.StartTask,
		Tasks:       req.Tasks,
		Conditions:  req.Conditions,
		IsActive:    true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		flow.IsActive = *req.IsActive
	}

	if ok, problems := h.engine.ValidateStructure(flow); !ok {
		InvalidFlow(w, problems)
		return
	}

	if err := h.flowRepo.Create(r.Context(), flow); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			Conflict(w, "flow already exists")
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FlowFromDomain(*flow))
}

// GetFlow возвращает flow по ID.
// GET /api/v1/flows/{id}
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.flowRepo.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	Success(w, FlowFromDomain(*flow))
}

// UpdateFlow обновляет метаданные flow и поднимает версию.
// PUT /api/v1/flows/{id}
//
// Определение (tasks, conditions, start_task) после создания
// неизменяемо.
func (h *Handler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	var req UpdateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flow, err := h.flowRepo.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	if req.Name != nil {
		flow.Name = *req.Name
	}
	if req.Description != nil {
		flow.Description = *req.Description
	}
	if req.IsActive != nil {
		flow.IsActive = *req.IsActive
	}
	flow.BumpVersion()

	if err := h.flowRepo.Update(r.Context(), flow); err != nil {
		if HandleRepoError(w, h.logger, err, "flow not found") {
			return
		}
	}

	Success(w, FlowFromDomain(*flow))
}

// DeleteFlow удаляет flow вместе с его выполнениями и расписаниями.
// DELETE /api/v1/flows/{id}
func (h *Handler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	err := h.flowRepo.Delete(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	NoContent(w)
}

// ValidateFlow проверяет выполнимость сохранённого flow.
// POST /api/v1/flows/{id}/validate
//
// Помимо структуры проверяется, что каждая задача определения
// зарегистрирована в registry.
func (h *Handler) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.flowRepo.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	valid, problems := h.engine.ValidateExecutable(flow)
	Success(w, ValidationResponse{Valid: valid, Errors: problems})
}
