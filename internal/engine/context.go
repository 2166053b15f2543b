package engine

import (
	"maps"

	"github.com/shaiso/Conductor/internal/domain"
)

// Context — контекст одного выполнения flow.
//
// Контекст несёт входные данные запуска и результаты завершённых
// задач, ключованные именем задачи в порядке выполнения. Каждая
// следующая задача видит выходы предыдущих через Result().
//
// Порядок вставки сохраняется: Names() возвращает задачи в том
// порядке, в котором они выполнялись.
type Context struct {
	inputs  map[string]any
	order   []string
	results map[string]domain.TaskResult
}

// NewContext создаёт контекст с входными данными запуска.
// Входная map копируется: контекст не делит состояние с вызывающим.
func NewContext(inputs map[string]any) *Context {
	copied := make(map[string]any, len(inputs))
	maps.Copy(copied, inputs)
	return &Context{
		inputs:  copied,
		results: make(map[string]domain.TaskResult),
	}
}

// Input возвращает входное значение по ключу.
func (c *Context) Input(key string) (any, bool) {
	v, ok := c.inputs[key]
	return v, ok
}

// Inputs возвращает копию входных данных запуска.
func (c *Context) Inputs() map[string]any {
	out := make(map[string]any, len(c.inputs))
	maps.Copy(out, c.inputs)
	return out
}

// SetResult записывает результат задачи в контекст.
// Повторная запись под тем же именем перезаписывает результат,
// не дублируя позицию в порядке выполнения.
func (c *Context) SetResult(taskName string, result domain.TaskResult) {
	if _, exists := c.results[taskName]; !exists {
		c.order = append(c.order, taskName)
	}
	c.results[taskName] = result
}

// Result возвращает результат задачи по имени.
func (c *Context) Result(taskName string) (domain.TaskResult, bool) {
	r, ok := c.results[taskName]
	return r, ok
}

// Names возвращает имена задач в порядке выполнения.
func (c *Context) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len возвращает количество записанных результатов.
func (c *Context) Len() int {
	return len(c.order)
}

// Snapshot возвращает плоский снимок контекста: входные данные
// плюс результаты задач под их именами. Снимок независим от
// контекста и пригоден для персистентного хранения
// (TaskExecution.input_data, FlowExecution.output_data).
func (c *Context) Snapshot() map[string]any {
	snap := make(map[string]any, len(c.inputs)+len(c.order))
	maps.Copy(snap, c.inputs)
	for _, name := range c.order {
		r := c.results[name]
		entry := map[string]any{"status": string(r.Status)}
		if r.Data != nil {
			entry["data"] = r.Data
		}
		if r.Error != "" {
			entry["error"] = r.Error
		}
		snap[name] = entry
	}
	return snap
}
