// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	World      WorldConfig      `yaml:"world"`
	Population PopulationConfig `yaml:"population"`
	Food       FoodConfig       `yaml:"food"`
	Creature   CreatureConfig   `yaml:"creature"`
	Eye        EyeConfig        `yaml:"eye"`
	Neural     NeuralConfig     `yaml:"neural"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds simulation world dimensions.
// Zero means "same as the screen"; the renderer scales the world to fit.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PopulationConfig holds generation sizing.
type PopulationConfig struct {
	Size               int `yaml:"size"`
	TicksPerGeneration int `yaml:"ticks_per_generation"`
}

// FoodConfig holds food placement parameters.
type FoodConfig struct {
	Count   int     `yaml:"count"`
	Margin  float64 `yaml:"margin"`  // fraction of the world kept clear at each edge
	Respawn bool    `yaml:"respawn"` // false: eaten food disappears and the generation may end early
}

// CreatureConfig holds body and movement parameters.
type CreatureConfig struct {
	Size             float64 `yaml:"size"` // render radius
	SpeedMin         float64 `yaml:"speed_min"`
	SpeedMax         float64 `yaml:"speed_max"`
	SpeedAccel       float64 `yaml:"speed_accel"`
	RotationAccelDeg float64 `yaml:"rotation_accel_deg"`
	MouthDistance    float64 `yaml:"mouth_distance"`
	EatDistance      float64 `yaml:"eat_distance"`
	MaxEat           int     `yaml:"max_eat"`
}

// EyeConfig holds vision sensor parameters.
type EyeConfig struct {
	Range    float64 `yaml:"range"`
	AngleDeg float64 `yaml:"angle_deg"`
	Cells    int     `yaml:"cells"`
}

// NeuralConfig holds brain shape. Inputs and outputs are implied by the eye
// and the two motor outputs.
type NeuralConfig struct {
	Hidden []int `yaml:"hidden"`
}

// EvolutionConfig holds genetic algorithm parameters.
type EvolutionConfig struct {
	MutationChance float64 `yaml:"mutation_chance"`
	MutationCoeff  float64 `yaml:"mutation_coeff"`
	Selection      string  `yaml:"selection"` // roulette | tournament
	TournamentSize int     `yaml:"tournament_size"`
	Crossover      string  `yaml:"crossover"` // uniform | single_point
}

// TelemetryConfig holds stats and perf settings.
type TelemetryConfig struct {
	PerfCollectorWindow int `yaml:"perf_collector_window"` // ticks averaged per perf sample
	ProgressEvery       int `yaml:"progress_every"`        // headless progress log period, in generations
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	WorldW32        float32
	WorldH32        float32
	EyeAngle32      float32 // radians
	RotationAccel32 float32 // radians per tick
	Topology        []int   // eye cells, hidden..., 2
}

// NumOutputs is the brain output count: rotation delta and speed delta.
const NumOutputs = 2

// Load reads configuration from a YAML file, using embedded defaults for
// any missing values. If path is empty, only the defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Default returns the embedded defaults.
func Default() *Config {
	return MustLoad("")
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() error {
	c.computeDerived()
	return c.Validate()
}

func (c *Config) computeDerived() {
	// World dimensions default to screen size if not specified
	worldW := c.World.Width
	if worldW == 0 {
		worldW = float64(c.Screen.Width)
	}
	worldH := c.World.Height
	if worldH == 0 {
		worldH = float64(c.Screen.Height)
	}
	c.Derived.WorldW32 = float32(worldW)
	c.Derived.WorldH32 = float32(worldH)

	c.Derived.EyeAngle32 = float32(c.Eye.AngleDeg * math.Pi / 180)
	c.Derived.RotationAccel32 = float32(c.Creature.RotationAccelDeg * math.Pi / 180)

	topo := make([]int, 0, len(c.Neural.Hidden)+2)
	topo = append(topo, c.Eye.Cells)
	topo = append(topo, c.Neural.Hidden...)
	topo = append(topo, NumOutputs)
	c.Derived.Topology = topo
}

// Validate checks construction parameters. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	switch {
	case c.Derived.WorldW32 <= 0 || c.Derived.WorldH32 <= 0:
		return invalid("world size %vx%v must be positive", c.Derived.WorldW32, c.Derived.WorldH32)
	case c.Population.Size < 1:
		return invalid("population.size %d must be >= 1", c.Population.Size)
	case c.Population.TicksPerGeneration < 1:
		return invalid("population.ticks_per_generation %d must be >= 1", c.Population.TicksPerGeneration)
	case c.Food.Count < 1:
		return invalid("food.count %d must be >= 1", c.Food.Count)
	case c.Food.Margin < 0 || c.Food.Margin >= 0.5:
		return invalid("food.margin %v not in [0, 0.5)", c.Food.Margin)
	case c.Evolution.MutationChance < 0 || c.Evolution.MutationChance > 1:
		return invalid("evolution.mutation_chance %v not in [0, 1]", c.Evolution.MutationChance)
	case c.Evolution.MutationCoeff < 0:
		return invalid("evolution.mutation_coeff %v must be >= 0", c.Evolution.MutationCoeff)
	case c.Eye.Range <= 0 || c.Eye.AngleDeg <= 0 || c.Eye.Cells <= 0:
		return invalid("eye range %v, angle %v, cells %d must be positive", c.Eye.Range, c.Eye.AngleDeg, c.Eye.Cells)
	case c.Creature.SpeedMin > c.Creature.SpeedMax:
		return invalid("creature.speed_min %v > speed_max %v", c.Creature.SpeedMin, c.Creature.SpeedMax)
	case c.Creature.SpeedAccel < 0 || c.Creature.RotationAccelDeg < 0:
		return invalid("creature accelerations must be >= 0")
	}

	for i, n := range c.Neural.Hidden {
		if n <= 0 {
			return invalid("neural.hidden[%d] = %d must be positive", i, n)
		}
	}
	switch c.Evolution.Selection {
	case "", "roulette", "tournament":
	default:
		return invalid("unknown evolution.selection %q", c.Evolution.Selection)
	}
	switch c.Evolution.Crossover {
	case "", "uniform", "single_point":
	default:
		return invalid("unknown evolution.crossover %q", c.Evolution.Crossover)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
