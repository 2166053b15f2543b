package engine

import "errors"

// Ошибки валидации определения flow.
var (
	// ErrNoTasks — flow не содержит задач.
	ErrNoTasks = errors.New("flow has no tasks")

	// ErrStartTaskMissing — start_task отсутствует в списке задач.
	ErrStartTaskMissing = errors.New("start task not found in tasks")

	// ErrDuplicateTaskName — несколько задач с одинаковым именем.
	ErrDuplicateTaskName = errors.New("duplicate task name")

	// ErrEmptyTaskName — задача без имени.
	ErrEmptyTaskName = errors.New("task has empty name")

	// ErrUnknownTaskRef — условие ссылается на несуществующую задачу.
	ErrUnknownTaskRef = errors.New("condition references unknown task")
)

// Ошибки условий маршрутизации.
var (
	// ErrMissingConditionField — у условия отсутствует обязательное поле.
	ErrMissingConditionField = errors.New("condition is missing required field")

	// ErrInvalidOutcome — недопустимое значение outcome.
	ErrInvalidOutcome = errors.New("invalid condition outcome")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	TaskName string // имя задачи или source_task условия
	Field    string // поле, вызвавшее ошибку
	Message  string // описание ошибки
	Err      error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.TaskName != "" {
		return "task " + e.TaskName + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(taskName, field, message string, err error) *ValidationError {
	return &ValidationError{
		TaskName: taskName,
		Field:    field,
		Message:  message,
		Err:      err,
	}
}
