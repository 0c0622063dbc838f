package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/derelict-dawn/derelict/internal/game/dice"
)

// ErrUnknownScript is returned when a condition names a Lua function that
// no loaded script defines.
var ErrUnknownScript = errors.New("scripting: unknown script function")

// ConditionContext is the combat snapshot handed to a condition function as
// a Lua table with snake_case keys.
type ConditionContext struct {
	Turn            int
	EnemyID         string
	Health          int
	MaxHealth       int
	Shield          int
	MaxShield       int
	PlayerHealth    int
	PlayerMaxHealth int
	PlayerShield    int
	PlayerMaxShield int
}

// Evaluator owns one sandboxed VM holding every condition script.
//
// Evaluator is safe for concurrent use; calls into the VM are serialised.
type Evaluator struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	src    dice.Source
	logger *zap.Logger
}

// NewEvaluator creates an Evaluator with an empty VM.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit. A nil src uses
// the crypto source; a nil logger discards output.
// Postcondition: Returns a non-nil Evaluator; the caller must Close it.
func NewEvaluator(instLimit int, src dice.Source, logger *zap.Logger) *Evaluator {
	if src == nil {
		src = dice.NewCryptoSource()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Evaluator{
		L:      NewSandboxedState(instLimit),
		limit:  instLimit,
		src:    src,
		logger: logger,
	}
	e.registerModules()
	return e
}

// registerModules installs the engine.* table available to scripts:
//
//	engine.log(msg)     writes msg to the debug log
//	engine.chance(p)    rolls the engine's random source
func (e *Evaluator) registerModules() {
	engine := e.L.NewTable()
	e.L.SetField(engine, "log", e.L.NewFunction(func(L *lua.LState) int {
		e.logger.Debug("script log", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	e.L.SetField(engine, "chance", e.L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(dice.Chance(e.src, p)))
		return 1
	}))
	e.L.SetGlobal("engine", engine)
}

// LoadDir executes every *.lua file in dir in lexical order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Functions defined by the files are callable; returns an
// error naming the first file that fails.
func (e *Evaluator) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, ent := range entries {
		if !ent.IsDir() && filepath.Ext(ent.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, ent.Name()))
		}
	}
	sort.Strings(files)

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, path := range files {
		release := withBudget(e.L, e.limit)
		err := e.L.DoFile(path)
		release()
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		e.logger.Debug("loaded condition script", zap.String("path", path))
	}
	return nil
}

// LoadString executes code as a chunk called name.
func (e *Evaluator) LoadString(name, code string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	release := withBudget(e.L, e.limit)
	defer release()
	fn, err := e.L.LoadString(code)
	if err != nil {
		return fmt.Errorf("scripting: compiling %q: %w", name, err)
	}
	e.L.Push(fn)
	if err := e.L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("scripting: running %q: %w", name, err)
	}
	return nil
}

// Defined reports whether fn is a global Lua function.
func (e *Evaluator) Defined(fn string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.L.GetGlobal(fn).Type() == lua.LTFunction
}

// EvalCondition calls the global function fn with ctx and reports the truthiness
// of its first return value.
//
// Postcondition: Returns ErrUnknownScript when fn is undefined, a wrapped error
// on a Lua runtime error or exhausted instruction budget, otherwise the result.
func (e *Evaluator) EvalCondition(fn string, ctx ConditionContext) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return false, fmt.Errorf("%w: %q", ErrUnknownScript, fn)
	}

	release := withBudget(e.L, e.limit)
	defer release()
	if err := e.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, e.contextTable(ctx)); err != nil {
		return false, fmt.Errorf("scripting: calling %q: %w", fn, err)
	}
	ret := e.L.Get(-1)
	e.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

func (e *Evaluator) contextTable(ctx ConditionContext) *lua.LTable {
	t := e.L.NewTable()
	t.RawSetString("turn", lua.LNumber(ctx.Turn))
	t.RawSetString("enemy_id", lua.LString(ctx.EnemyID))
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	t.RawSetString("shield", lua.LNumber(ctx.Shield))
	t.RawSetString("max_shield", lua.LNumber(ctx.MaxShield))
	t.RawSetString("player_health", lua.LNumber(ctx.PlayerHealth))
	t.RawSetString("player_max_health", lua.LNumber(ctx.PlayerMaxHealth))
	t.RawSetString("player_shield", lua.LNumber(ctx.PlayerShield))
	t.RawSetString("player_max_shield", lua.LNumber(ctx.PlayerMaxShield))
	return t
}

// Close releases the VM.
func (e *Evaluator) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.L.Close()
}
