// Package orchestrator содержит движок выполнения flow.
//
// Движок (Engine) — центральный компонент системы:
//   - создаёт FlowExecution и ведёт его через жизненный цикл
//     pending → running → completed|failure
//   - разрешает задачи через реестр capabilities и выполняет их
//     строго по одной, синхронно
//   - после каждой задачи спрашивает evaluator, куда идти дальше
//   - персистит каждый переход состояния отдельно и немедленно,
//     чтобы трейл был виден даже после падения процесса
//
// Сбои задач и сбои самого цикла превращаются в персистентные
// данные и никогда не выходят за границу движка; наружу
// распространяются только ошибки предварительной валидации.
package orchestrator
