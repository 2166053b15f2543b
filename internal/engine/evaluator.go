package engine

import (
	"fmt"

	"github.com/shaiso/Conductor/internal/domain"
)

// Evaluate вычисляет условие по результату задачи и возвращает имя
// следующей задачи (или "end").
//
// Если outcome условия — "any" или совпадает со статусом результата,
// возвращается target_task_success, иначе target_task_failure.
// Функция чистая: никакого состояния и побочных эффектов.
func Evaluate(cond domain.Condition, result domain.TaskResult) string {
	if cond.Outcome.Matches(result.Status) {
		if cond.TargetTaskSuccess == "" {
			return domain.EndTask
		}
		return cond.TargetTaskSuccess
	}
	if cond.TargetTaskFailure == "" {
		return domain.EndTask
	}
	return cond.TargetTaskFailure
}

// FindCondition возвращает ПЕРВОЕ условие в порядке объявления,
// у которого source_task совпадает с именем задачи.
//
// Если для одной задачи объявлено несколько условий, все кроме
// первого игнорируются — это зафиксированное поведение движка,
// а не упущение (см. тест TestFindCondition_FirstMatchWins).
func FindCondition(taskName string, conds []domain.Condition) (domain.Condition, bool) {
	for _, c := range conds {
		if c.SourceTask == taskName {
			return c, true
		}
	}
	return domain.Condition{}, false
}

// ValidateCondition проверяет, что у условия заполнены все четыре
// обязательных поля и outcome имеет допустимое значение.
func ValidateCondition(cond domain.Condition) error {
	if cond.SourceTask == "" {
		return fmt.Errorf("%w: source_task", ErrMissingConditionField)
	}
	if cond.Outcome == "" {
		return fmt.Errorf("%w: outcome", ErrMissingConditionField)
	}
	if cond.TargetTaskSuccess == "" {
		return fmt.Errorf("%w: target_task_success", ErrMissingConditionField)
	}
	if cond.TargetTaskFailure == "" {
		return fmt.Errorf("%w: target_task_failure", ErrMissingConditionField)
	}
	if !cond.Outcome.IsValid() {
		return fmt.Errorf("%w: %q (must be success, failure or any)", ErrInvalidOutcome, cond.Outcome)
	}
	return nil
}
