package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
)

// ExecuteFlow запускает flow синхронно и возвращает итоговую запись.
// POST /api/v1/flows/{id}/executions
//
// Ответ приходит после терминального статуса: completed → 201,
// failure → тоже 201, неуспех flow не является ошибкой API.
func (h *Handler) ExecuteFlow(w http.ResponseWriter, r *http.Request) {
	var req ExecuteFlowRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	flow, err := h.flowRepo.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	if problems, err := h.engine.EnsureRunnable(flow); err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrFlowInactive):
			InvalidState(w, err.Error())
		case errors.Is(err, orchestrator.ErrFlowNotExecutable):
			InvalidFlow(w, problems)
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	exec, err := h.engine.Execute(r.Context(), flow, req.InputContext)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	resp := ExecutionFromDomain(*exec)
	if tasks, err := h.execRepo.ListTasksByExecution(r.Context(), exec.ID); err == nil {
		resp.TaskExecutions = taskExecutionsFromDomain(tasks)
	}

	Created(w, resp)
}

// ListExecutions возвращает список выполнений с фильтрацией.
// GET /api/v1/executions?flow_id=&status=&limit=&offset=
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	filter := repo.ExecutionFilter{
		FlowID: r.URL.Query().Get("flow_id"),
		Status: domain.ExecutionStatus(r.URL.Query().Get("status")),
		Limit:  queryLimit(r),
		Offset: queryInt(r, "offset", 0),
	}

	execs, err := h.execRepo.List(r.Context(), filter)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ExecutionResponse, len(execs))
	for i, e := range execs {
		result[i] = ExecutionFromDomain(e)
	}

	List(w, result, len(result))
}

// GetExecution возвращает выполнение по ID.
// GET /api/v1/executions/{id}?include_tasks=true
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	exec, err := h.execRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "execution not found") {
		return
	}

	resp := ExecutionFromDomain(*exec)
	if r.URL.Query().Get("include_tasks") == "true" {
		tasks, err := h.execRepo.ListTasksByExecution(r.Context(), id)
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		resp.TaskExecutions = taskExecutionsFromDomain(tasks)
	}

	Success(w, resp)
}

// ListExecutionTasks возвращает задачи выполнения в порядке запуска.
// GET /api/v1/executions/{id}/tasks
func (h *Handler) ListExecutionTasks(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequest(w, "invalid execution id")
		return
	}

	if _, err := h.execRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "execution not found") {
		return
	}

	tasks, err := h.execRepo.ListTasksByExecution(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, taskExecutionsFromDomain(tasks), len(tasks))
}

// taskExecutionsFromDomain конвертирует срез записей о задачах.
func taskExecutionsFromDomain(tasks []domain.TaskExecution) []TaskExecutionResponse {
	result := make([]TaskExecutionResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskExecutionFromDomain(t)
	}
	return result
}

// Лимиты постраничного вывода.
const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// queryInt читает целочисленный query-параметр со значением по умолчанию.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// queryLimit читает limit с ограничением сверху: запрошенный размер
// страницы не превышает maxListLimit независимо от параметра.
func queryLimit(r *http.Request) int {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
