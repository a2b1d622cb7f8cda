package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lox/turncore/internal/config"
	"github.com/lox/turncore/internal/fixed"
	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/session"
)

// duel pits an overwhelming hero against a single fragile dummy.
func duel() *config.Config {
	return &config.Config{
		Seed:       1,
		Turns:      50,
		LogLevel:   "info",
		DropChance: 100,
		Actors: []config.ActorConfig{
			{Name: "hero", Team: "a", HP: 1000, Speed: "2", Cost: "100", Attack: 100, Damage: "1d1+5"},
			{Name: "dummy", Team: "b", HP: 1, Speed: "1", Cost: "100", Attack: -100, Damage: "1d1-1"},
		},
		Loot: []config.LootConfig{{Name: "gold", Weight: 1}},
	}
}

func newTestSimulator(t *testing.T, scenario *config.Config, seed uint64) *Simulator {
	return New(Config{
		Scenario: scenario,
		Seed:     seed,
		Clock:    quartz.NewMock(t),
	})
}

func TestNew(t *testing.T) {
	sim := New(Config{Seed: 7})
	assert.NotNil(t, sim.config.Scenario)
	assert.Equal(t, 200, sim.config.Turns)
	assert.NotNil(t, sim.config.Logger)
	assert.NotNil(t, sim.config.Clock)

	cfg := FromScenario(duel())
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, 50, cfg.Turns)
}

func TestRun_Duel(t *testing.T) {
	res, err := newTestSimulator(t, duel(), 3).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "a", res.Winner)
	require.NotEmpty(t, res.Turns)

	first := res.Turns[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "hero", first.Actor, "faster actor acts first")
	assert.Equal(t, "50", first.Time)
	assert.Equal(t, "dummy", first.Target)

	last := res.Turns[len(res.Turns)-1]
	assert.True(t, last.Killed)
	assert.Equal(t, "hero", last.Actor)
	assert.Equal(t, "gold", last.Loot)
	assert.Equal(t, "0", last.TargetHP)

	require.Len(t, res.Survivors, 1)
	assert.Equal(t, Survivor{Name: "hero", Team: "a", HP: "1000", Loot: []string{"gold"}}, res.Survivors[0])

	require.Len(t, res.Snapshot.Entries, 1, "dead actors leave the timeline")
	assert.Equal(t, "hero", res.Snapshot.Entries[0].Actor)
	assert.Equal(t, uint64(3), res.Snapshot.Seed)
}

func TestRun_Deterministic(t *testing.T) {
	a, err := newTestSimulator(t, config.Default(), 12345).Run(context.Background())
	require.NoError(t, err)
	b, err := newTestSimulator(t, config.Default(), 12345).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Zero(t, a.Elapsed, "mock clock never advances")
}

func TestRun_SeedsDiffer(t *testing.T) {
	a, err := newTestSimulator(t, config.Default(), 1).Run(context.Background())
	require.NoError(t, err)
	b, err := newTestSimulator(t, config.Default(), 2).Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, a.Turns, b.Turns)
}

func TestRun_SnapshotResumes(t *testing.T) {
	res, err := newTestSimulator(t, config.Default(), 99).Run(context.Background())
	require.NoError(t, err)

	sess, err := session.Restore(res.Snapshot)
	require.NoError(t, err)
	assert.Equal(t, res.Snapshot, sess.Snapshot())
	assert.Equal(t, len(res.Survivors), sess.Timeline().Len())
}

func TestRun_TurnLimit(t *testing.T) {
	scenario := config.Default()
	res, err := New(Config{Scenario: scenario, Seed: 5, Turns: 3, Clock: quartz.NewMock(t)}).Run(context.Background())
	require.NoError(t, err)

	// No actor in the default scenario can wipe a team in three turns.
	assert.Len(t, res.Turns, 3)
	assert.Empty(t, res.Winner)
	assert.Len(t, res.Snapshot.Entries, len(res.Survivors))
}

func TestRun_TracesEveryStream(t *testing.T) {
	// A second dummy gives the hero a choice of targets.
	scenario := duel()
	scenario.Actors = append(scenario.Actors, config.ActorConfig{
		Name: "dummy2", Team: "b", HP: 1, Speed: "1", Cost: "100", Attack: -100, Damage: "1d1-1",
	})

	rec := &rng.Recorder{}
	sim := New(Config{Scenario: scenario, Seed: 3, Clock: quartz.NewMock(t), Tracer: rec})
	_, err := sim.Run(context.Background())
	require.NoError(t, err)

	streams := make(map[string]bool)
	for _, d := range rec.Draws {
		streams[d.Stream] = true
	}
	assert.True(t, streams[StreamAI])
	assert.True(t, streams[StreamCombat])
	assert.True(t, streams[StreamLoot])
	assert.False(t, streams[rng.RootStream], "skirmish draws only from named streams")
}

func TestRun_Errors(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newTestSimulator(t, config.Default(), 1).Run(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("invalid scenario", func(t *testing.T) {
		scenario := duel()
		scenario.Actors[0].Speed = "0"
		_, err := newTestSimulator(t, scenario, 1).Run(context.Background())
		assert.ErrorContains(t, err, "invalid scenario")
	})

	t.Run("hp beyond fixed-point range", func(t *testing.T) {
		scenario := duel()
		scenario.Actors[0].HP = 40000
		res, err := newTestSimulator(t, scenario, 1).Run(context.Background())
		assert.ErrorContains(t, err, "hp 40000 exceeds")
		assert.Nil(t, res)
	})
}

func TestBuildActorsRejectsOverflowingHP(t *testing.T) {
	actors := duel().Actors
	actors[0].HP = 40000
	_, err := buildActors(actors)
	assert.ErrorIs(t, err, fixed.ErrOverflow)

	actors[0].HP = config.MaxHP
	built, err := buildActors(actors)
	require.NoError(t, err)
	assert.True(t, built["hero"].alive())
	assert.Equal(t, "32767", built["hero"].hp.String())
}

func TestResultEncodingOmitsElapsed(t *testing.T) {
	res, err := newTestSimulator(t, duel(), 3).Run(context.Background())
	require.NoError(t, err)
	res.Elapsed = 3 * time.Second

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "elapsed")

	data, err = yaml.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "elapsed")
}

func TestRunMany_MatchesSequential(t *testing.T) {
	seeds := []uint64{1, 2, 3, 4, 5, 6, 7, 8}
	cfg := Config{Scenario: config.Default(), Clock: quartz.NewMock(t)}

	parallel, err := RunMany(context.Background(), cfg, seeds)
	require.NoError(t, err)
	require.Len(t, parallel, len(seeds))

	for i, seed := range seeds {
		runCfg := cfg
		runCfg.Seed = seed
		sequential, err := New(runCfg).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, sequential, parallel[i], "seed %d", seed)
	}
}

func TestRunMany_PropagatesErrors(t *testing.T) {
	scenario := duel()
	scenario.Actors[1].Team = "a"
	_, err := RunMany(context.Background(), Config{Scenario: scenario}, []uint64{1, 2})
	assert.ErrorContains(t, err, "at least 2 teams")
}

func TestTally(t *testing.T) {
	wins := Tally([]*Result{{Winner: "a"}, {Winner: "b"}, {Winner: "a"}, {}})
	assert.Equal(t, map[string]int{"a": 2, "b": 1, "": 1}, wins)
}

func TestPrintSummary(t *testing.T) {
	res, err := newTestSimulator(t, duel(), 3).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintSummary(&buf, res)
	out := buf.String()
	assert.Contains(t, out, "=== SKIRMISH seed 3 ===")
	assert.Contains(t, out, "Winner: a")
	assert.Contains(t, out, "(0s)", "elapsed time from the mock clock")
	assert.Contains(t, out, "hero (a): 1000 hp, loot [gold]")
	assert.Contains(t, out, "pending: 1")
}

func BenchmarkSimulator_Run(b *testing.B) {
	scenario := config.Default()
	for i := 0; i < b.N; i++ {
		_, _ = New(Config{Scenario: scenario, Seed: uint64(i)}).Run(context.Background())
	}
}
