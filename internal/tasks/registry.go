package tasks

import (
	"log/slog"
	"sync"
)

// Registry — реестр задач по имени.
//
// Реестр конструируется один раз и передаётся движку при создании.
// Отсутствие задачи — нормальная, сообщаемая ситуация, а не сбой:
// Get возвращает ok=false, движок превращает это в результат failure.
// Потокобезопасен.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]Task
	logger *slog.Logger
}

// NewRegistry создаёт пустой реестр.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tasks:  make(map[string]Task),
		logger: logger,
	}
}

// DefaultRegistry создаёт реестр со стандартным набором задач.
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)

	r.Register(NewFetchDataTask())
	r.Register(NewProcessDataTask())
	r.Register(NewStoreDataTask())
	r.Register(NewValidateDataTask())
	r.Register(NewSendNotificationTask())

	return r
}

// Register регистрирует задачу в реестре.
// Если задача с таким именем уже существует, она перезаписывается
// с предупреждением в лог — жёсткой ошибки нет.
func (r *Registry) Register(task Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.Name()]; exists {
		r.logger.Warn("task already registered, overwriting", "task", task.Name())
	}
	r.tasks[task.Name()] = task
	r.logger.Debug("registered task", "task", task.Name())
}

// Get возвращает задачу по имени.
func (r *Registry) Get(name string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[name]
	return task, ok
}

// Has проверяет, зарегистрирована ли задача.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[name]
	return ok
}

// List возвращает имена всех задач с описаниями.
func (r *Registry) List() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.tasks))
	for name, task := range r.tasks {
		out[name] = task.Description()
	}
	return out
}

// Count возвращает количество зарегистрированных задач.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Unregister удаляет задачу из реестра.
// Возвращает true, если задача была зарегистрирована.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[name]; !ok {
		return false
	}
	delete(r.tasks, name)
	return true
}
