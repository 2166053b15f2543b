package repo

import "errors"

// Общие ошибки репозиториев. Слой API сопоставляет их с HTTP-кодами
// через errors.Is, не завися от деталей pgx.
var (
	// ErrNotFound — flow, выполнение или расписание не найдены.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — flow с таким id уже существует.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — операция невозможна в текущем состоянии
	// записи (например, запуск неактивного flow).
	ErrInvalidState = errors.New("invalid state")
)
