// Package config loads a RunConfig describing one coordinator run: which
// transport to use, how to split the problem into cubes (or which
// bound-allocation strategy to use for a portfolio run), and an optional
// deadline. Grounded on reinforcement.TrainingConfig/FromYaml's two-stage
// viper (path/env-aware discovery) -> yaml.v3 (typed decode) pipeline.
package config

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// OuterConfig is the envelope every config file is wrapped in, mirroring
// the teacher's OuterConfig{Kind, Def}: Kind names the run mode, Def holds
// mode-specific settings re-marshaled into RunConfig.
type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// TransportConfig selects and parameterizes a transport.Transport.
type TransportConfig struct {
	// Kind is "thread" or "grpc".
	Kind string `yaml:"kind"`
	// WorkerCount is the number of worker ranks, not counting the
	// coordinator (rank 0), so a run has size = WorkerCount+1.
	WorkerCount int `yaml:"workercount"`
	// HubAddr is the address the grpc hub (rank 0) listens on and every
	// other rank dials.
	HubAddr string `yaml:"hubaddr"`
}

// CubeConfig selects and parameterizes a cube.Generator.
type CubeConfig struct {
	// Strategy is one of "lexicographic", "lexicographic-interval",
	// "cartesian", or "hypergraph-cutset".
	Strategy    string `yaml:"strategy"`
	NbCubesMax  int    `yaml:"nbcubesmax"`
	NbIntervals int    `yaml:"nbintervals"`
}

// BoundConfig selects and parameterizes a bounds.Strategy.
type BoundConfig struct {
	// Strategy is "range" or "aggressive-range".
	Strategy string `yaml:"strategy"`
	// RangeIterator is "linear" or "logarithmic".
	RangeIterator string `yaml:"rangeiterator"`
	// Min and Max bound the search space initially explored by every
	// worker, as decimal strings since a big.Int has no direct yaml tag.
	// Both default to "0" when omitted.
	Min string `yaml:"min"`
	Max string `yaml:"max"`
}

// Bounds parses Min/Max into big.Ints, defaulting either to 0 when empty.
func (cfg BoundConfig) Bounds() (min, max *big.Int, err error) {
	min, max = big.NewInt(0), big.NewInt(0)
	if cfg.Min != "" {
		if _, ok := min.SetString(cfg.Min, 10); !ok {
			return nil, nil, fmt.Errorf("config: invalid bound min %q", cfg.Min)
		}
	}
	if cfg.Max != "" {
		if _, ok := max.SetString(cfg.Max, 10); !ok {
			return nil, nil, fmt.Errorf("config: invalid bound max %q", cfg.Max)
		}
	}
	return min, max, nil
}

// RunConfig is the fully decoded configuration for one coordinator run.
type RunConfig struct {
	Transport TransportConfig `yaml:"transport"`
	Cube      CubeConfig      `yaml:"cube"`
	Bound     BoundConfig     `yaml:"bound"`
	// Deadline is a duration string (e.g. "30s"), empty meaning no deadline.
	Deadline     string `yaml:"deadline"`
	Minimization bool   `yaml:"minimization"`
}

// WithDeadline returns a context bound by cfg.Deadline if one was set,
// mirroring TrainingConfig.WithTrainingDeadline.
func (cfg *RunConfig) WithDeadline(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if cfg.Deadline == "" {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	d, err := time.ParseDuration(cfg.Deadline)
	if err != nil {
		return nil, nil, err
	}
	innerCtx, cancel := context.WithTimeout(ctx, d)
	return innerCtx, cancel, nil
}

// FromYaml loads a RunConfig from path via viper (for its path/env-aware
// file discovery), then re-marshals the "def" section through yaml.v3 into
// RunConfig, exactly as the teacher's FromYaml does for TrainingConfig.
func FromYaml(path string) (*RunConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outer := &OuterConfig{}
	if err := vp.Unmarshal(outer); err != nil {
		return nil, err
	}

	spec, err := yaml.Marshal(outer.Def)
	if err != nil {
		return nil, err
	}

	cfg := &RunConfig{}
	if err := yaml.Unmarshal(spec, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
