package domain

import "time"

// EndTask — сентинельное имя задачи, означающее завершение flow.
// Условие может направить выполнение в "end" вместо реальной задачи.
const EndTask = "end"

// Flow — определение рабочего процесса.
//
// Flow — это статический "рецепт": упорядоченный список задач
// и условия маршрутизации между ними. Определение неизменяемо
// после создания, редактируются только метаданные (имя, описание,
// активность), что инкрементирует версию.
type Flow struct {
	// ID — уникальный идентификатор flow, задаётся при создании
	// (например, "data-pipeline", "daily-report").
	ID string `json:"id"`

	// Name — человекочитаемое имя flow.
	Name string `json:"name"`

	// Description — описание назначения flow.
	Description string `json:"description,omitempty"`

	// StartTask — имя задачи, с которой начинается выполнение.
	// Обязано присутствовать в Tasks.
	StartTask string `json:"start_task"`

	// Version — номер версии. Растёт при редактировании метаданных.
	Version int `json:"version"`

	// IsActive — флаг активности. Неактивные flows не запускаются
	// по расписанию.
	IsActive bool `json:"is_active"`

	// Tasks — упорядоченный список определений задач.
	// Имена задач уникальны в рамках flow.
	Tasks []TaskDef `json:"tasks"`

	// Conditions — правила маршрутизации между задачами.
	Conditions []Condition `json:"conditions,omitempty"`

	// CreatedAt — время создания flow.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления метаданных.
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskDef — определение задачи внутри flow.
//
// Определение связывает имя задачи с исполняемой capability
// из реестра. Config зарезервирован под параметры задачи
// (таймауты, retry) — пока хранится, но не интерпретируется.
type TaskDef struct {
	// Name — уникальное имя задачи в рамках flow.
	// По этому имени задача ищется в реестре capabilities.
	Name string `json:"name"`

	// Description — описание задачи.
	Description string `json:"description,omitempty"`

	// Config — конфигурация задачи.
	Config map[string]any `json:"config,omitempty"`
}

// Condition — правило маршрутизации, привязанное к задаче-источнику.
//
// После завершения source_task движок сравнивает статус результата
// с outcome: при совпадении (или outcome="any") выполнение идёт
// в target_task_success, иначе — в target_task_failure.
// Любая цель может быть именем задачи или "end".
type Condition struct {
	// Name — имя условия (необязательное, для читаемости определения).
	Name string `json:"name,omitempty"`

	// Description — описание условия.
	Description string `json:"description,omitempty"`

	// SourceTask — задача, после которой применяется условие.
	SourceTask string `json:"source_task"`

	// Outcome — ожидаемый исход: "success", "failure" или "any".
	Outcome Outcome `json:"outcome"`

	// TargetTaskSuccess — следующая задача при совпадении исхода.
	TargetTaskSuccess string `json:"target_task_success"`

	// TargetTaskFailure — следующая задача при несовпадении исхода.
	TargetTaskFailure string `json:"target_task_failure"`
}

// TaskByName возвращает определение задачи по имени.
func (f *Flow) TaskByName(name string) (*TaskDef, bool) {
	for i := range f.Tasks {
		if f.Tasks[i].Name == name {
			return &f.Tasks[i], true
		}
	}
	return nil, false
}

// TaskNames возвращает имена всех задач в порядке определения.
func (f *Flow) TaskNames() []string {
	names := make([]string, 0, len(f.Tasks))
	for i := range f.Tasks {
		if f.Tasks[i].Name != "" {
			names = append(names, f.Tasks[i].Name)
		}
	}
	return names
}

// ConditionsForTask возвращает все условия, у которых задача
// является источником, в порядке объявления.
func (f *Flow) ConditionsForTask(name string) []Condition {
	var conds []Condition
	for _, c := range f.Conditions {
		if c.SourceTask == name {
			conds = append(conds, c)
		}
	}
	return conds
}

// BumpVersion инкрементирует версию после редактирования метаданных.
func (f *Flow) BumpVersion() {
	f.Version++
	f.UpdatedAt = time.Now()
}
