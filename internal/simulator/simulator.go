// Package simulator runs deterministic skirmishes between teams of actors.
//
// A skirmish exercises every piece of a session: actors take turns from the
// timeline, pick targets on the "ai" stream, resolve attacks on the
// "combat" stream and draw drops on the "loot" stream. The same seed and
// scenario always produce the same turn log and final snapshot.
package simulator

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/apd/v3"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/turncore/internal/config"
	"github.com/lox/turncore/internal/fixed"
	"github.com/lox/turncore/internal/order"
	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/schedule"
	"github.com/lox/turncore/internal/session"
)

// Stream names used by a skirmish.
const (
	StreamAI     = "ai"
	StreamCombat = "combat"
	StreamLoot   = "loot"
)

// Config holds configuration for running a skirmish
type Config struct {
	Scenario *config.Config
	Seed     uint64
	Turns    int
	Logger   *log.Logger
	Clock    quartz.Clock
	Tracer   rng.Tracer
}

// FromScenario builds a Config that takes seed and turn limit from the
// scenario itself.
func FromScenario(scenario *config.Config) Config {
	return Config{
		Scenario: scenario,
		Seed:     scenario.Seed,
		Turns:    scenario.Turns,
	}
}

// Turn is one resolved action.
type Turn struct {
	Number   int    `json:"number" yaml:"number"`
	Time     string `json:"time" yaml:"time"`
	Actor    string `json:"actor" yaml:"actor"`
	Target   string `json:"target,omitempty" yaml:"target,omitempty"`
	Roll     int    `json:"roll" yaml:"roll"`
	Hit      bool   `json:"hit" yaml:"hit"`
	Critical bool   `json:"critical,omitempty" yaml:"critical,omitempty"`
	Damage   string `json:"damage,omitempty" yaml:"damage,omitempty"`
	TargetHP string `json:"target_hp,omitempty" yaml:"target_hp,omitempty"`
	Killed   bool   `json:"killed,omitempty" yaml:"killed,omitempty"`
	Loot     string `json:"loot,omitempty" yaml:"loot,omitempty"`
}

// Survivor is an actor still standing when the skirmish ends.
type Survivor struct {
	Name string   `json:"name" yaml:"name"`
	Team string   `json:"team" yaml:"team"`
	HP   string   `json:"hp" yaml:"hp"`
	Loot []string `json:"loot,omitempty" yaml:"loot,omitempty"`
}

// Result is the outcome of one skirmish. Winner is empty when the turn
// limit ran out with more than one team standing. Elapsed is wall-clock
// time and is left out of encoded results so they depend only on the seed.
type Result struct {
	Seed      uint64           `json:"seed" yaml:"seed"`
	Winner    string           `json:"winner" yaml:"winner"`
	Turns     []Turn           `json:"turns" yaml:"turns"`
	Survivors []Survivor       `json:"survivors" yaml:"survivors"`
	Snapshot  session.Snapshot `json:"snapshot" yaml:"snapshot"`
	Elapsed   time.Duration    `json:"-" yaml:"-"`
}

type actor struct {
	name    string
	team    string
	hp      fixed.Fixed
	speed   *apd.Decimal
	cost    *apd.Decimal
	attack  int
	defense int
	damage  rng.Dice
	loot    []string
}

func (a *actor) alive() bool {
	return a.hp.Cmp(fixed.Zero) > 0
}

// Simulator runs skirmishes
type Simulator struct {
	config Config
}

// New creates a new simulator, filling in a default scenario, a silent
// logger and the real clock where none are given.
func New(cfg Config) *Simulator {
	if cfg.Scenario == nil {
		cfg.Scenario = config.Default()
	}
	if cfg.Turns == 0 {
		cfg.Turns = cfg.Scenario.Turns
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	return &Simulator{config: cfg}
}

// Run plays one skirmish to completion or until the turn limit.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	start := s.config.Clock.Now()
	logger := s.config.Logger.With("seed", s.config.Seed)

	if err := s.config.Scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	opts := []session.Option{session.WithLogger(s.config.Logger)}
	if s.config.Tracer != nil {
		opts = append(opts, session.WithTracer(s.config.Tracer))
	}
	sess := session.New(s.config.Seed, opts...)
	timeline := sess.Timeline()

	actors, err := buildActors(s.config.Scenario.Actors)
	if err != nil {
		return nil, err
	}
	names := order.SortedKeys(actors)
	for _, name := range names {
		a := actors[name]
		if _, err := timeline.Schedule(name, timeline.Now(), a.cost, a.speed); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", name, err)
		}
	}

	loot := make([]rng.Weighted[string], len(s.config.Scenario.Loot))
	for i, l := range s.config.Scenario.Loot {
		loot[i] = rng.Weighted[string]{Item: l.Name, Weight: l.Weight}
	}

	result := &Result{Seed: s.config.Seed}
	for number := 1; number <= s.config.Turns; number++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("skirmish interrupted at turn %d: %w", number, err)
		}
		if len(teamsAlive(actors, names)) < 2 {
			break
		}

		entry, err := timeline.Next()
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", number, err)
		}
		a := actors[entry.Actor]

		turn, err := s.act(sess, a, actors, names, loot)
		if err != nil {
			return nil, fmt.Errorf("turn %d (%s): %w", number, a.name, err)
		}
		turn.Number = number
		turn.Time = schedule.Format(entry.Time)
		result.Turns = append(result.Turns, turn)

		if turn.Killed {
			logger.Debug("Actor defeated", "actor", turn.Target, "by", a.name, "turn", number)
		}

		if _, err := timeline.Schedule(a.name, entry.Time, a.cost, a.speed); err != nil {
			return nil, fmt.Errorf("reschedule %s: %w", a.name, err)
		}
	}

	if teams := teamsAlive(actors, names); len(teams) == 1 {
		result.Winner = teams[0]
	}
	for _, name := range names {
		a := actors[name]
		if !a.alive() {
			continue
		}
		result.Survivors = append(result.Survivors, Survivor{
			Name: a.name,
			Team: a.team,
			HP:   a.hp.String(),
			Loot: slices.Clone(a.loot),
		})
	}
	result.Snapshot = sess.Snapshot()
	result.Elapsed = s.config.Clock.Now().Sub(start)

	logger.Info("Skirmish finished", "turns", len(result.Turns), "winner", result.Winner, "survivors", len(result.Survivors))
	return result, nil
}

// act resolves a single attack by a.
func (s *Simulator) act(sess *session.Session, a *actor, actors map[string]*actor, names []string, loot []rng.Weighted[string]) (Turn, error) {
	turn := Turn{Actor: a.name}

	target, err := chooseTarget(sess.Stream(StreamAI), a, actors, names)
	if err != nil {
		return turn, err
	}
	turn.Target = target.name

	combat := sess.Stream(StreamCombat)
	natural, err := combat.Roll(1, 20, 0, "to-hit "+a.name)
	if err != nil {
		return turn, err
	}
	turn.Roll = natural
	turn.Critical = natural == 20
	turn.Hit = turn.Critical || (natural != 1 && natural+a.attack >= 10+target.defense)
	if !turn.Hit {
		return turn, nil
	}

	rolled, err := a.damage.Roll(combat, "damage "+a.name)
	if err != nil {
		return turn, err
	}
	damage, err := fixed.FromIntChecked(max(rolled, 0))
	if err != nil {
		return turn, fmt.Errorf("damage: %w", err)
	}
	if turn.Critical {
		damage = damage.Mul(fixed.One.Add(fixed.Half))
	}
	target.hp = target.hp.Sub(damage)
	turn.Damage = damage.String()
	turn.TargetHP = fixed.Max(target.hp, fixed.Zero).String()

	if target.alive() {
		return turn, nil
	}
	turn.Killed = true
	sess.Timeline().Remove(target.name)

	if len(loot) == 0 {
		return turn, nil
	}
	lootStream := sess.Stream(StreamLoot)
	drop, err := lootStream.Check(s.config.Scenario.DropChance, "drop "+target.name)
	if err != nil || !drop {
		return turn, err
	}
	item, err := rng.Choose(lootStream, loot, "loot "+target.name)
	if err != nil {
		return turn, err
	}
	a.loot = append(a.loot, item)
	turn.Loot = item
	return turn, nil
}

// chooseTarget shuffles living enemies on the ai stream, then stably
// orders them by remaining hp so the weakest is attacked and ties are
// broken by the shuffle.
func chooseTarget(ai *rng.Generator, a *actor, actors map[string]*actor, names []string) (*actor, error) {
	var enemies []*actor
	for _, name := range names {
		e := actors[name]
		if e.team != a.team && e.alive() {
			enemies = append(enemies, e)
		}
	}
	if len(enemies) == 0 {
		return nil, fmt.Errorf("%s has no living enemies", a.name)
	}

	if err := order.Shuffle(ai, enemies, "target "+a.name); err != nil {
		return nil, err
	}
	order.SortStableBy(enemies, func(e *actor) int32 { return e.hp.Raw() })
	return enemies[0], nil
}

func buildActors(cfgs []config.ActorConfig) (map[string]*actor, error) {
	actors := make(map[string]*actor, len(cfgs))
	for _, c := range cfgs {
		speed, err := schedule.Decimal(c.Speed)
		if err != nil {
			return nil, fmt.Errorf("actor %s speed: %w", c.Name, err)
		}
		cost, err := schedule.Decimal(c.Cost)
		if err != nil {
			return nil, fmt.Errorf("actor %s cost: %w", c.Name, err)
		}
		damage, err := rng.ParseDice(c.Damage)
		if err != nil {
			return nil, fmt.Errorf("actor %s damage: %w", c.Name, err)
		}
		hp, err := fixed.FromIntChecked(c.HP)
		if err != nil {
			return nil, fmt.Errorf("actor %s hp: %w", c.Name, err)
		}
		actors[c.Name] = &actor{
			name:    c.Name,
			team:    c.Team,
			hp:      hp,
			speed:   speed,
			cost:    cost,
			attack:  c.Attack,
			defense: c.Defense,
			damage:  damage,
		}
	}
	return actors, nil
}

// teamsAlive returns the teams with at least one living actor, in the
// order their first member appears in names.
func teamsAlive(actors map[string]*actor, names []string) []string {
	var teams []string
	for _, name := range names {
		a := actors[name]
		if a.alive() && !slices.Contains(teams, a.team) {
			teams = append(teams, a.team)
		}
	}
	return teams
}

// RunMany plays one skirmish per seed in parallel. Each run owns its
// session; results are returned in seed order.
func RunMany(ctx context.Context, cfg Config, seeds []uint64) ([]*Result, error) {
	results := make([]*Result, len(seeds))
	g, ctx := errgroup.WithContext(ctx)

	for i, seed := range seeds {
		runCfg := cfg
		runCfg.Seed = seed
		g.Go(func() error {
			res, err := New(runCfg).Run(ctx)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Tally counts wins per team across results. Draws are counted under "".
func Tally(results []*Result) map[string]int {
	wins := make(map[string]int)
	for _, r := range results {
		wins[r.Winner]++
	}
	return wins
}

// PrintSummary writes a human readable summary of one skirmish.
func PrintSummary(w io.Writer, r *Result) {
	fmt.Fprintf(w, "\n=== SKIRMISH seed %d ===\n", r.Seed)
	fmt.Fprintf(w, "Turns played: %d (%v)\n", len(r.Turns), r.Elapsed)
	if r.Winner == "" {
		fmt.Fprintf(w, "Winner: none (turn limit)\n")
	} else {
		fmt.Fprintf(w, "Winner: %s\n", r.Winner)
	}

	hits, crits, kills := 0, 0, 0
	for _, t := range r.Turns {
		if t.Hit {
			hits++
		}
		if t.Critical {
			crits++
		}
		if t.Killed {
			kills++
		}
	}
	if len(r.Turns) > 0 {
		fmt.Fprintf(w, "Hits: %d (%.1f%%), criticals: %d, kills: %d\n",
			hits, float64(hits)/float64(len(r.Turns))*100, crits, kills)
	}

	fmt.Fprintf(w, "\n=== SURVIVORS ===\n")
	for _, sv := range r.Survivors {
		fmt.Fprintf(w, "%s (%s): %s hp", sv.Name, sv.Team, sv.HP)
		if len(sv.Loot) > 0 {
			fmt.Fprintf(w, ", loot %v", sv.Loot)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "\nTimeline now: %s, pending: %d\n", r.Snapshot.Now, len(r.Snapshot.Entries))
}
