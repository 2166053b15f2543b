package engine

import (
	"fmt"

	"github.com/shaiso/Conductor/internal/domain"
)

// ValidateStructure выполняет структурную валидацию определения flow.
//
// Проверяет:
//   - Наличие хотя бы одной задачи
//   - Что start_task присутствует в списке задач
//   - Уникальность имён задач
//   - Что каждое условие заполнено и ссылается на существующие
//     задачи (целью может быть "end")
//
// Возвращает список ошибок; пустой список означает валидный flow.
// Собираются все ошибки сразу, а не только первая — API отдаёт
// полный отчёт за один запрос. Каждая ошибка несёт базовый sentinel
// через Unwrap, так что вызывающие могут матчить errors.Is.
func ValidateStructure(flow *domain.Flow) []*ValidationError {
	var errs []*ValidationError

	if len(flow.Tasks) == 0 {
		errs = append(errs, NewValidationError("", "tasks", ErrNoTasks.Error(), ErrNoTasks))
		return errs
	}

	names := make(map[string]bool, len(flow.Tasks))
	for i := range flow.Tasks {
		name := flow.Tasks[i].Name
		if name == "" {
			errs = append(errs, NewValidationError("", "name",
				fmt.Sprintf("task %d: %s", i, ErrEmptyTaskName), ErrEmptyTaskName))
			continue
		}
		if names[name] {
			errs = append(errs, NewValidationError(name, "name",
				fmt.Sprintf("%s: %q", ErrDuplicateTaskName, name), ErrDuplicateTaskName))
		}
		names[name] = true
	}

	if flow.StartTask == "" || !names[flow.StartTask] {
		errs = append(errs, NewValidationError("", "start_task",
			fmt.Sprintf("%s: %q", ErrStartTaskMissing, flow.StartTask), ErrStartTaskMissing))
	}

	for i, cond := range flow.Conditions {
		if err := ValidateCondition(cond); err != nil {
			errs = append(errs, NewValidationError(cond.SourceTask, "condition",
				fmt.Sprintf("condition %d: %s", i, err), err))
			continue
		}
		if !names[cond.SourceTask] {
			errs = append(errs, NewValidationError(cond.SourceTask, "source_task",
				fmt.Sprintf("condition %d: %s: source_task %q",
					i, ErrUnknownTaskRef, cond.SourceTask), ErrUnknownTaskRef))
		}
		if !isTaskOrEnd(cond.TargetTaskSuccess, names) {
			errs = append(errs, NewValidationError(cond.SourceTask, "target_task_success",
				fmt.Sprintf("condition %d: %s: target_task_success %q",
					i, ErrUnknownTaskRef, cond.TargetTaskSuccess), ErrUnknownTaskRef))
		}
		if !isTaskOrEnd(cond.TargetTaskFailure, names) {
			errs = append(errs, NewValidationError(cond.SourceTask, "target_task_failure",
				fmt.Sprintf("condition %d: %s: target_task_failure %q",
					i, ErrUnknownTaskRef, cond.TargetTaskFailure), ErrUnknownTaskRef))
		}
	}

	return errs
}

// isTaskOrEnd проверяет, что цель условия — существующая задача или "end".
func isTaskOrEnd(target string, names map[string]bool) bool {
	return target == domain.EndTask || names[target]
}
