package domain

// TaskResult — результат выполнения одной задачи.
//
// Результат записывается в контекст выполнения под именем задачи,
// так последующие задачи видят выходные данные предыдущих.
type TaskResult struct {
	// Status — исход выполнения: "success" или "failure".
	Status ExecutionStatus `json:"status"`

	// Data — выходные данные задачи (при успехе).
	Data map[string]any `json:"data,omitempty"`

	// Error — сообщение об ошибке (при неудаче).
	Error string `json:"error,omitempty"`

	// Trace — стек вызовов, если задача упала с паникой.
	Trace string `json:"-"`
}

// Succeeded возвращает true, если задача завершилась успешно.
func (r TaskResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Failed возвращает true, если задача завершилась с ошибкой.
func (r TaskResult) Failed() bool {
	return r.Status == StatusFailure
}

// SuccessResult создаёт успешный результат с данными.
func SuccessResult(data map[string]any) TaskResult {
	return TaskResult{Status: StatusSuccess, Data: data}
}

// FailureResult создаёт результат с ошибкой.
func FailureResult(err string) TaskResult {
	return TaskResult{Status: StatusFailure, Error: err}
}
