package domain

// ExecutionStatus — статус выполнения flow или отдельной задачи.
//
// Один enum обслуживает оба уровня записей:
//
//	FlowExecution: pending → running → completed | failure
//	TaskExecution: pending → running → success | failure
//
// Переход в терминальный статус происходит ровно один раз,
// запись никогда не "переоткрывается".
type ExecutionStatus string

const (
	// StatusPending — запись создана, выполнение ещё не началось.
	StatusPending ExecutionStatus = "pending"

	// StatusRunning — выполнение в процессе.
	StatusRunning ExecutionStatus = "running"

	// StatusSuccess — задача успешно завершена (только TaskExecution).
	StatusSuccess ExecutionStatus = "success"

	// StatusFailure — выполнение завершилось с ошибкой.
	StatusFailure ExecutionStatus = "failure"

	// StatusCompleted — flow успешно прошёл до конца (только FlowExecution).
	StatusCompleted ExecutionStatus = "completed"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusCompleted:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s ExecutionStatus) String() string {
	return string(s)
}

// Outcome — ожидаемый исход задачи в условии маршрутизации.
type Outcome string

const (
	// OutcomeSuccess — условие срабатывает при успехе задачи.
	OutcomeSuccess Outcome = "success"

	// OutcomeFailure — условие срабатывает при ошибке задачи.
	OutcomeFailure Outcome = "failure"

	// OutcomeAny — условие срабатывает при любом исходе.
	OutcomeAny Outcome = "any"
)

// IsValid проверяет, что значение outcome допустимо.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeFailure, OutcomeAny:
		return true
	default:
		return false
	}
}

// Matches проверяет, соответствует ли фактический статус задачи
// ожидаемому исходу. OutcomeAny соответствует всегда.
func (o Outcome) Matches(status ExecutionStatus) bool {
	if o == OutcomeAny {
		return true
	}
	return string(o) == string(status)
}
