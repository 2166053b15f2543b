package orchestrator

import (
	"context"
	"fmt"

	"github.com/shaiso/Conductor/internal/metrics"
)

// abandonedMessage — текст ошибки для брошенных выполнений.
const abandonedMessage = "execution abandoned: engine restarted"

// RecoverAbandoned помечает выполнения, застрявшие в нетерминальных
// статусах, как failure.
//
// Выполнение строго синхронно и живёт внутри одного процесса:
// если процесс упал посреди цикла, запись остаётся в running
// навсегда — возобновления нет. Политика восстановления явная:
// при старте движка все такие записи финализируются с ошибкой
// abandonedMessage, частичный трейл задач сохраняется как есть.
//
// Возвращает количество восстановленных записей.
func (e *Engine) RecoverAbandoned(ctx context.Context) (int, error) {
	stuck, err := e.store.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unfinished executions: %w", err)
	}

	recovered := 0
	for i := range stuck {
		exec := &stuck[i]

		exec.MarkFailed(abandonedMessage, "")
		if err := e.store.UpdateExecution(ctx, exec); err != nil {
			e.logger.Error("failed to recover execution",
				"execution_id", exec.ID,
				"error", err,
			)
			continue
		}

		metrics.ExecutionsRecovered.Inc()
		recovered++

		e.logger.Warn("recovered abandoned execution",
			"execution_id", exec.ID,
			"flow_id", exec.FlowID,
			"tasks_executed", exec.TotalTasksExecuted,
		)
	}

	return recovered, nil
}
