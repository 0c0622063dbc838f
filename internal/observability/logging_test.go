package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/derelict-dawn/derelict/internal/config"
	"github.com/derelict-dawn/derelict/internal/game/event"
	"github.com/derelict-dawn/derelict/internal/game/state"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger("derelictd", cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger("", cfg)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger("derelictd", cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger("derelictd", cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger("derelictd", cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestTraceEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := event.NewBus(nil)
	stop := TraceEvents(bus, zap.New(core))

	bus.Publish(event.ResourceChangedEvent{Category: state.Reactor, Delta: 1})
	bus.Publish(event.CombatEndedEvent{EnemyID: "mining-drone", Outcome: state.OutcomeVictory})
	require.Equal(t, 1, logs.Len(), "production is traced below info")
	entry := logs.All()[0]
	assert.Equal(t, "combat ended", entry.Message)
	assert.Equal(t, "victory", entry.ContextMap()["outcome"])

	stop()
	bus.Publish(event.StartCombatEvent{EnemyID: "mining-drone"})
	assert.Equal(t, 1, logs.Len())
}
