package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Conductor/internal/domain"
	"github.com/shaiso/Conductor/internal/engine"
)

// Имена стандартных задач.
const (
	TaskFetchData        = "fetch_data"
	TaskProcessData      = "process_data"
	TaskStoreData        = "store_data"
	TaskValidateData     = "validate_data"
	TaskSendNotification = "send_notification"
)

// record — одна запись в демонстрационном наборе данных.
type record struct {
	ID    int     `json:"id"`
	Value float64 `json:"value"`
}

// FetchDataTask — задача получения данных из источника.
//
// Если во входных данных запуска есть ключ "records"
// ([]map с полями id/value), используются они; иначе — встроенный
// демонстрационный набор.
type FetchDataTask struct{}

// NewFetchDataTask создаёт FetchDataTask.
func NewFetchDataTask() *FetchDataTask {
	return &FetchDataTask{}
}

// Name возвращает имя задачи.
func (t *FetchDataTask) Name() string { return TaskFetchData }

// Description возвращает описание задачи.
func (t *FetchDataTask) Description() string { return "Fetch data from source" }

// Execute получает записи и кладёт их в результат.
func (t *FetchDataTask) Execute(_ context.Context, fc *engine.Context) (domain.TaskResult, error) {
	records := []map[string]any{
		{"id": 1, "value": float64(100)},
		{"id": 2, "value": float64(200)},
		{"id": 3, "value": float64(300)},
	}

	if v, ok := fc.Input("records"); ok {
		custom, ok := v.([]map[string]any)
		if !ok {
			return domain.TaskResult{}, fmt.Errorf("input %q has unexpected type %T", "records", v)
		}
		records = custom
	}

	return domain.SuccessResult(map[string]any{
		"records":         records,
		"total_count":     len(records),
		"fetch_timestamp": time.Now().Unix(),
	}), nil
}

// ProcessDataTask — задача обработки полученных данных.
//
// Ожидает в контексте результат fetch_data; считает сумму, среднее
// и раскладывает записи по категориям.
type ProcessDataTask struct{}

// NewProcessDataTask создаёт ProcessDataTask.
func NewProcessDataTask() *ProcessDataTask {
	return &ProcessDataTask{}
}

// Name возвращает имя задачи.
func (t *ProcessDataTask) Name() string { return TaskProcessData }

// Description возвращает описание задачи.
func (t *ProcessDataTask) Description() string { return "Process and transform data" }

// Execute обрабатывает записи из результата fetch_data.
func (t *ProcessDataTask) Execute(_ context.Context, fc *engine.Context) (domain.TaskResult, error) {
	prev, ok := fc.Result(TaskFetchData)
	if !ok || prev.Data == nil {
		return domain.TaskResult{}, fmt.Errorf("no data from %s to process", TaskFetchData)
	}

	records := extractRecords(prev.Data["records"])
	if len(records) == 0 {
		return domain.TaskResult{}, fmt.Errorf("no records in %s output", TaskFetchData)
	}

	var total float64
	processed := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		total += rec.Value

		category := "low"
		if rec.Value > 150 {
			category = "high"
		}
		processed = append(processed, map[string]any{
			"id":            rec.ID,
			"value":         rec.Value,
			"doubled_value": rec.Value * 2,
			"category":      category,
		})
	}

	return domain.SuccessResult(map[string]any{
		"total_value":       total,
		"average_value":     total / float64(len(records)),
		"record_count":      len(records),
		"processed_records": processed,
	}), nil
}

// extractRecords приводит значение "records" к типизированному виду.
// Данные могут прийти напрямую из задачи или после JSON round-trip
// из персистентного снимка, поэтому допускаются оба представления.
func extractRecords(v any) []record {
	raw, ok := v.([]map[string]any)
	if !ok {
		anySlice, ok := v.([]any)
		if !ok {
			return nil
		}
		for _, item := range anySlice {
			if m, ok := item.(map[string]any); ok {
				raw = append(raw, m)
			}
		}
	}

	records := make([]record, 0, len(raw))
	for _, m := range raw {
		var rec record
		switch id := m["id"].(type) {
		case int:
			rec.ID = id
		case float64:
			rec.ID = int(id)
		}
		switch val := m["value"].(type) {
		case int:
			rec.Value = float64(val)
		case float64:
			rec.Value = val
		}
		records = append(records, rec)
	}
	return records
}

// StoreDataTask — задача сохранения обработанных данных.
//
// Ожидает в контексте результат process_data. Хранилище
// симулируется: задача формирует метаданные о "записанном" наборе.
type StoreDataTask struct{}

// NewStoreDataTask создаёт StoreDataTask.
func NewStoreDataTask() *StoreDataTask {
	return &StoreDataTask{}
}

// Name возвращает имя задачи.
func (t *StoreDataTask) Name() string { return TaskStoreData }

// Description возвращает описание задачи.
func (t *StoreDataTask) Description() string { return "Store processed data" }

// Execute сохраняет данные из результата process_data.
func (t *StoreDataTask) Execute(_ context.Context, fc *engine.Context) (domain.TaskResult, error) {
	prev, ok := fc.Result(TaskProcessData)
	if !ok || prev.Data == nil {
		return domain.TaskResult{}, fmt.Errorf("no processed data from %s to store", TaskProcessData)
	}

	var count int
	switch n := prev.Data["record_count"].(type) {
	case int:
		count = n
	case float64:
		count = int(n)
	}

	now := time.Now()
	return domain.SuccessResult(map[string]any{
		"storage_id":        fmt.Sprintf("store_%d", now.Unix()),
		"records_stored":    count,
		"storage_timestamp": now.Unix(),
	}), nil
}

// ValidateDataTask — задача валидации входных данных запуска.
//
// Проверяет наличие ключей, перечисленных в input "required_keys".
// Без required_keys всегда успешна.
type ValidateDataTask struct{}

// NewValidateDataTask создаёт ValidateDataTask.
func NewValidateDataTask() *ValidateDataTask {
	return &ValidateDataTask{}
}

// Name возвращает имя задачи.
func (t *ValidateDataTask) Name() string { return TaskValidateData }

// Description возвращает описание задачи.
func (t *ValidateDataTask) Description() string { return "Validate input data" }

// Execute проверяет входные данные запуска.
func (t *ValidateDataTask) Execute(_ context.Context, fc *engine.Context) (domain.TaskResult, error) {
	required, ok := fc.Input("required_keys")
	if !ok {
		return domain.SuccessResult(map[string]any{"validation_passed": true}), nil
	}

	keys, ok := required.([]any)
	if !ok {
		return domain.TaskResult{}, fmt.Errorf("input %q must be a list of keys", "required_keys")
	}

	var missing []string
	for _, k := range keys {
		name, ok := k.(string)
		if !ok {
			continue
		}
		if _, present := fc.Input(name); !present {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return domain.TaskResult{}, fmt.Errorf("missing required input keys: %v", missing)
	}
	return domain.SuccessResult(map[string]any{"validation_passed": true}), nil
}

// SendNotificationTask — задача уведомления о завершении flow.
//
// Реальной доставки нет: задача фиксирует факт и адресата
// (input "notify_target", по умолчанию "log").
type SendNotificationTask struct{}

// NewSendNotificationTask создаёт SendNotificationTask.
func NewSendNotificationTask() *SendNotificationTask {
	return &SendNotificationTask{}
}

// Name возвращает имя задачи.
func (t *SendNotificationTask) Name() string { return TaskSendNotification }

// Description возвращает описание задачи.
func (t *SendNotificationTask) Description() string { return "Send completion notification" }

// Execute отправляет уведомление.
func (t *SendNotificationTask) Execute(_ context.Context, fc *engine.Context) (domain.TaskResult, error) {
	target := "log"
	if v, ok := fc.Input("notify_target"); ok {
		if s, ok := v.(string); ok && s != "" {
			target = s
		}
	}

	return domain.SuccessResult(map[string]any{
		"notification_sent": true,
		"target":            target,
		"tasks_completed":   fc.Len(),
	}), nil
}
