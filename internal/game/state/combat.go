package state

// StatusEffectType identifies a timed combat modifier.
type StatusEffectType string

const (
	// Weaken increases damage taken by Magnitude (0.25 = +25%).
	Weaken StatusEffectType = "WEAKEN"
	// Expose gives incoming damage a Magnitude chance to bypass shields.
	Expose StatusEffectType = "EXPOSE"
	// Stun makes the affected combatant skip its turns.
	Stun StatusEffectType = "STUN"
	// Disable reduces outgoing damage by Magnitude.
	Disable StatusEffectType = "DISABLE"
)

// StatusEffect is the static description of an effect.
type StatusEffect struct {
	Type      StatusEffectType `json:"type" yaml:"type"`
	Duration  int              `json:"duration" yaml:"duration"`
	Magnitude float64          `json:"magnitude" yaml:"magnitude"`
}

// StatusEffectInstance is a live effect attached to a combatant.
type StatusEffectInstance struct {
	StatusEffect
	RemainingTurns int    `json:"remainingTurns"`
	Source         string `json:"source,omitempty"`
}

// Combatant is the live health/shield block of the player or the enemy.
type Combatant struct {
	Health        int                    `json:"health"`
	MaxHealth     int                    `json:"maxHealth"`
	Shield        int                    `json:"shield"`
	MaxShield     int                    `json:"maxShield"`
	StatusEffects []StatusEffectInstance `json:"statusEffects"`
}

// HealthFraction returns Health/MaxHealth, or 0 when MaxHealth is 0.
func (c *Combatant) HealthFraction() float64 {
	if c.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Health) / float64(c.MaxHealth)
}

// ShieldFraction returns Shield/MaxShield, or 0 when MaxShield is 0.
func (c *Combatant) ShieldFraction() float64 {
	if c.MaxShield <= 0 {
		return 0
	}
	return float64(c.Shield) / float64(c.MaxShield)
}

// LogSource identifies who produced a battle log entry.
type LogSource string

const (
	LogPlayer LogSource = "player"
	LogEnemy  LogSource = "enemy"
	LogSystem LogSource = "system"
)

// BattleLogEntry is one line of the battle log.
type BattleLogEntry struct {
	Turn    int       `json:"turn"`
	Source  LogSource `json:"source"`
	Message string    `json:"message"`
}

// EnemyIntention is the telegraphed next action of the enemy.
type EnemyIntention struct {
	ActionID string `json:"actionId"`
	Name     string `json:"name"`
	Damage   int    `json:"damage"`
}

// CombatOutcome is the terminal result of a battle.
type CombatOutcome string

const (
	OutcomeNone    CombatOutcome = ""
	OutcomeVictory CombatOutcome = "victory"
	OutcomeDefeat  CombatOutcome = "defeat"
	OutcomeRetreat CombatOutcome = "retreat"
)

// Combat is the live battle block of the GameState.
//
// Invariant: Combat.Active and Encounters.Active are never both true.
type Combat struct {
	Active             bool                     `json:"active"`
	CurrentEnemy       string                   `json:"currentEnemy,omitempty"`
	CurrentRegion      string                   `json:"currentRegion,omitempty"`
	Turn               int                      `json:"turn"`
	PlayerStats        Combatant                `json:"playerStats"`
	EnemyStats         Combatant                `json:"enemyStats"`
	AvailableActions   []string                 `json:"availableActions"`
	Cooldowns          map[string]int           `json:"cooldowns"`
	EnemyCooldowns     map[string]int           `json:"enemyCooldowns"`
	BattleLog          []BattleLogEntry         `json:"battleLog"`
	EncounterCompleted bool                     `json:"encounterCompleted"`
	EnemyIntentions    *EnemyIntention          `json:"enemyIntentions"`
	Rewards            map[ResourceType]float64 `json:"rewards"`
	Outcome            CombatOutcome            `json:"outcome,omitempty"`
}

// Log appends a battle log entry stamped with the current turn.
func (c *Combat) Log(src LogSource, msg string) {
	c.BattleLog = append(c.BattleLog, BattleLogEntry{Turn: c.Turn, Source: src, Message: msg})
}
