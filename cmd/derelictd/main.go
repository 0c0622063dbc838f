// Package main provides the headless Derelict Dawn engine: it loads content,
// restores the last save, runs the production tick and autosaves until it is
// signalled to stop.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/config"
	"github.com/derelict-dawn/derelict/internal/game/combat"
	"github.com/derelict-dawn/derelict/internal/game/content"
	"github.com/derelict-dawn/derelict/internal/game/dice"
	"github.com/derelict-dawn/derelict/internal/game/engine"
	"github.com/derelict-dawn/derelict/internal/observability"
	"github.com/derelict-dawn/derelict/internal/save"
	"github.com/derelict-dawn/derelict/internal/scripting"
	"github.com/derelict-dawn/derelict/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	fresh := flag.Bool("new", false, "ignore any existing save and start a new game")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger("derelictd", cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	var src dice.Source
	if cfg.Random.Seed != 0 {
		src = dice.NewSeededSource(cfg.Random.Seed)
		logger.Info("using seeded random source", zap.Uint64("seed", cfg.Random.Seed))
	} else {
		src = dice.NewCryptoSource()
	}
	src = dice.NewLoggedSource(src, logger.Named("dice"))

	contentStart := time.Now()
	catalog, err := content.Load(cfg.Content.Dir)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}
	logger.Info("content loaded",
		zap.Int("player_actions", len(catalog.PlayerActionIDs())),
		zap.Int("regions", len(catalog.RegionIDs())),
		zap.Duration("elapsed", time.Since(contentStart)),
	)

	var scripts combat.ScriptEvaluator
	if cfg.Combat.ScriptDir != "" {
		ev := scripting.NewEvaluator(cfg.Combat.InstructionLimit, src, logger.Named("scripting"))
		defer ev.Close()
		if err := ev.LoadDir(cfg.Combat.ScriptDir); err != nil {
			logger.Fatal("loading condition scripts", zap.String("dir", cfg.Combat.ScriptDir), zap.Error(err))
		}
		scripts = ev
	}

	store := save.NewFileStore(cfg.Save.Path, logger.Named("save"))
	var doc *save.Document
	if !*fresh {
		doc, err = store.Load(ctx)
		switch {
		case errors.Is(err, save.ErrNotFound):
			logger.Info("no save found, starting a new game", zap.String("path", store.Path()))
		case err != nil:
			logger.Fatal("loading save", zap.Error(err))
		}
	}

	tables := make(map[string]content.EncounterTable, len(cfg.Encounters.Tables))
	for region, w := range cfg.Encounters.Tables {
		tables[region] = content.EncounterTable{Combat: w.Combat, Empty: w.Empty, Story: w.Story}
	}

	game, err := engine.New(engine.Options{
		Catalog: catalog,
		Source:  src,
		Scripts: scripts,
		Combat: combat.Config{
			DefeatPenalty:  cfg.Combat.DefeatPenalty,
			RetreatPenalty: cfg.Combat.RetreatPenalty,
			DefeatRecovery: cfg.Combat.DefeatRecovery,
		},
		EncounterTables: tables,
		Logger:          logger,
	}, doc)
	if err != nil {
		logger.Fatal("creating game", zap.Error(err))
	}
	stopTrace := observability.TraceEvents(game.Bus(), logger)
	defer stopTrace()

	persist := func(ctx context.Context) error {
		return store.Save(ctx, game.Document(time.Now()))
	}

	lc := server.NewLifecycle(logger, 5*time.Second)

	simulation := engine.NewTicker(cfg.Simulation.TickInterval, cfg.Simulation.MaxDelta, logger.Named("ticker"))
	simulation.RegisterTick("production", func(delta time.Duration) {
		game.Tick(delta.Seconds())
	})
	lc.Add("simulation", simulation)

	if cfg.Save.AutosaveInterval > 0 {
		autosave := engine.NewTicker(cfg.Save.AutosaveInterval, 0, logger.Named("autosave"))
		autosave.RegisterTick("save", func(time.Duration) {
			if err := persist(ctx); err != nil {
				logger.Error("autosave failed", zap.Error(err))
			}
		})
		lc.Add("autosave", autosave)
	}
	lc.OnShutdown(persist)

	logger.Info("derelictd ready",
		zap.String("region", game.Snapshot().Navigation.CurrentRegion),
		zap.Duration("tick_interval", cfg.Simulation.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Error("derelictd stopped with error", zap.Error(err))
	}
}
