package orchestrator

import "errors"

// Ошибки движка.
var (
	// ErrFlowNotExecutable — flow не прошёл проверку исполнимости.
	ErrFlowNotExecutable = errors.New("flow is not executable")

	// ErrFlowInactive — flow помечен неактивным.
	ErrFlowInactive = errors.New("flow is not active")

	// ErrNilFlow — движку передан nil flow.
	ErrNilFlow = errors.New("flow is nil")
)
