// Package scheduler реализует планировщик запусков flows.
//
// Scheduler периодически проверяет schedules с истекшим next_due_at
// и запускает соответствующие flows через движок.
//
// Структура:
//   - scheduler.go — основная логика Scheduler (Tick, processSchedule)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{
//	    ScheduleRepo: scheduleRepo,
//	    FlowRepo:     flowRepo,
//	    Engine:       engine,
//	    Logger:       logger,
//	})
//
//	// Вызывается каждый тик (обычно раз в секунду)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Выполнение синхронное: flow отрабатывает целиком внутри тика,
// запись о выполнении остаётся в БД как и при запуске через API.
package scheduler
