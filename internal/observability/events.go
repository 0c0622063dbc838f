package observability

import (
	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/event"
)

// TraceEvents logs every event published on bus. Gameplay milestones are
// logged at info; per-tick chatter (production, state snapshots) at debug.
//
// Postcondition: Returns a function that stops the tracing.
func TraceEvents(bus *event.Bus, logger *zap.Logger) (stop func()) {
	logger = logger.Named("events")
	return bus.SubscribeAll(func(e event.Event) {
		name := zap.String("event", string(e.EventName()))
		switch ev := e.(type) {
		case event.StateUpdatedEvent:
			logger.Debug("state updated", name)
		case event.ResourceChangedEvent:
			logger.Debug("resource produced", name,
				zap.String("category", string(ev.Category)),
				zap.Float64("delta", ev.Delta),
			)
		case event.EncounterGeneratedEvent:
			logger.Info("encounter", name,
				zap.String("id", ev.EncounterID),
				zap.String("type", string(ev.Type)),
				zap.String("region", ev.Region),
			)
		case event.EncounterCompletedEvent:
			logger.Info("encounter resolved", name,
				zap.String("id", ev.EncounterID),
				zap.String("result", ev.Result),
			)
		case event.CombatActionEvent:
			logger.Info("combat action", name,
				zap.String("action", ev.ActionID),
				zap.Bool("success", ev.Success),
				zap.Int("turn", ev.Turn),
				zap.String("enemy_action", ev.EnemyActionID),
			)
		case event.CombatEndedEvent:
			logger.Info("combat ended", name,
				zap.String("enemy", ev.EnemyID),
				zap.String("outcome", string(ev.Outcome)),
				zap.Any("rewards", ev.Rewards),
			)
		default:
			logger.Info("event", name)
		}
	})
}
