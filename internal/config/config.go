// Package config loads skirmish definitions from HCL files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/turncore/internal/fixed"
	"github.com/lox/turncore/internal/rng"
	"github.com/lox/turncore/internal/schedule"
)

// Bounds keep every hp and damage value inside the fixed-point range,
// including a critical hit of 1.5x landing on a 1 hp actor.
const (
	MaxHP     = fixed.MaxInt
	MaxDamage = fixed.MaxInt / 2
)

// Config describes one skirmish.
type Config struct {
	Seed       uint64        `hcl:"seed,optional"`
	Turns      int           `hcl:"turns,optional"`
	LogLevel   string        `hcl:"log_level,optional"`
	DropChance int           `hcl:"drop_chance,optional"`
	Actors     []ActorConfig `hcl:"actor,block"`
	Loot       []LootConfig  `hcl:"loot,block"`
}

// ActorConfig defines a combatant. Speed and cost are decimal strings so
// they stay exact.
type ActorConfig struct {
	Name    string `hcl:"name,label"`
	Team    string `hcl:"team"`
	HP      int    `hcl:"hp"`
	Speed   string `hcl:"speed,optional"`
	Cost    string `hcl:"cost,optional"`
	Attack  int    `hcl:"attack,optional"`
	Defense int    `hcl:"defense,optional"`
	Damage  string `hcl:"damage,optional"`
}

// LootConfig is one weighted loot table row.
type LootConfig struct {
	Name   string `hcl:"name,label"`
	Weight int    `hcl:"weight"`
}

// Default returns a small two-team skirmish.
func Default() *Config {
	return &Config{
		Seed:       12345,
		Turns:      200,
		LogLevel:   "info",
		DropChance: 40,
		Actors: []ActorConfig{
			{Name: "knight", Team: "heroes", HP: 30, Speed: "1.0", Cost: "100", Attack: 4, Defense: 4, Damage: "1d8+2"},
			{Name: "ranger", Team: "heroes", HP: 22, Speed: "1.37", Cost: "100", Attack: 5, Defense: 2, Damage: "1d6+1"},
			{Name: "goblin", Team: "raiders", HP: 12, Speed: "1.5", Cost: "100", Attack: 2, Defense: 1, Damage: "1d6"},
			{Name: "ogre", Team: "raiders", HP: 40, Speed: "0.75", Cost: "100", Attack: 3, Defense: 2, Damage: "2d6+1"},
			{Name: "wolf", Team: "raiders", HP: 14, Speed: "1.25", Cost: "100", Attack: 3, Defense: 1, Damage: "1d4+1"},
		},
		Loot: []LootConfig{
			{Name: "gold", Weight: 60},
			{Name: "potion", Weight: 25},
			{Name: "scroll", Weight: 10},
			{Name: "relic", Weight: 5},
		},
	}
}

// Load reads an HCL file. A missing file yields Default.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, filename)
}

// Parse decodes HCL source and fills defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Turns == 0 {
		c.Turns = 200
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	for i := range c.Actors {
		if c.Actors[i].Speed == "" {
			c.Actors[i].Speed = "1"
		}
		if c.Actors[i].Cost == "" {
			c.Actors[i].Cost = "100"
		}
		if c.Actors[i].Damage == "" {
			c.Actors[i].Damage = "1d4"
		}
	}
}

// Validate checks that every value can be used by the simulator.
func (c *Config) Validate() error {
	if c.Turns < 1 {
		return fmt.Errorf("turns must be positive, got %d", c.Turns)
	}
	if c.DropChance < 0 || c.DropChance > 100 {
		return fmt.Errorf("drop_chance %d outside [0,100]", c.DropChance)
	}
	if len(c.Actors) < 2 {
		return fmt.Errorf("need at least 2 actors, got %d", len(c.Actors))
	}

	names := make(map[string]bool)
	teams := make(map[string]bool)
	for _, a := range c.Actors {
		if a.Name == "" {
			return fmt.Errorf("actor name cannot be empty")
		}
		if names[a.Name] {
			return fmt.Errorf("duplicate actor name: %s", a.Name)
		}
		names[a.Name] = true
		teams[a.Team] = true

		if a.HP < 1 {
			return fmt.Errorf("actor %s: hp must be positive", a.Name)
		}
		if a.HP > MaxHP {
			return fmt.Errorf("actor %s: hp %d exceeds %d", a.Name, a.HP, MaxHP)
		}
		speed, err := schedule.Decimal(a.Speed)
		if err != nil {
			return fmt.Errorf("actor %s: speed: %w", a.Name, err)
		}
		if speed.Sign() <= 0 {
			return fmt.Errorf("actor %s: speed must be positive", a.Name)
		}
		cost, err := schedule.Decimal(a.Cost)
		if err != nil {
			return fmt.Errorf("actor %s: cost: %w", a.Name, err)
		}
		if cost.Sign() < 0 {
			return fmt.Errorf("actor %s: cost cannot be negative", a.Name)
		}
		dice, err := rng.ParseDice(a.Damage)
		if err != nil {
			return fmt.Errorf("actor %s: damage: %w", a.Name, err)
		}
		if dice.Max() > MaxDamage {
			return fmt.Errorf("actor %s: damage %s can exceed %d", a.Name, dice, MaxDamage)
		}
	}
	if len(teams) < 2 {
		return fmt.Errorf("need at least 2 teams")
	}

	for _, l := range c.Loot {
		if l.Weight <= 0 {
			return fmt.Errorf("loot %s: weight must be positive", l.Name)
		}
	}
	return nil
}
