package api

import (
	"net/http"
	"sort"
)

// ListTasks возвращает каталог зарегистрированных задач.
// GET /api/v1/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	catalog := h.registry.List()

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]TaskInfoResponse, len(names))
	for i, name := range names {
		result[i] = TaskInfoResponse{Name: name, Description: catalog[name]}
	}

	List(w, result, len(result))
}
