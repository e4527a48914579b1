package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"cookiegen/internal/corpus"
	"cookiegen/internal/logging"
	"cookiegen/pkg/cookiegen"
)

// runConfig is the YAML run configuration. Pointer fields distinguish an
// omitted key from an explicit zero.
type runConfig struct {
	Corpus struct {
		Path     string `yaml:"path"`
		Kind     string `yaml:"kind"`
		Taxonomy string `yaml:"taxonomy"`
	} `yaml:"corpus"`
	RunID          string   `yaml:"run_id"`
	Population     *int     `yaml:"population"`
	Generations    *int     `yaml:"generations"`
	TournamentSize *int     `yaml:"tournament_size"`
	MutationRate   *float64 `yaml:"mutation_rate"`
	EliteFraction  *float64 `yaml:"elite_fraction"`
	Seed           *int64   `yaml:"seed"`
	Top            *int     `yaml:"top"`
	LogEvery       *int     `yaml:"log_every"`
	Plots          *bool    `yaml:"plots"`
	Metrics        *bool    `yaml:"metrics"`
	RunsDir        string   `yaml:"runs_dir"`
	Log            struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

// cliSettings is everything the run command needs after the config file and
// flags are merged.
type cliSettings struct {
	Request cookiegen.RunRequest
	RunsDir string
	Log     logging.Config
}

func defaultSettings() cliSettings {
	return cliSettings{
		Request: cookiegen.DefaultRunRequest(corpus.Source{}),
		RunsDir: runsDir,
		Log:     logging.Config{Format: logging.FormatAuto},
	}
}

func loadRunConfig(path string) (runConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return runConfig{}, err
	}
	defer f.Close()

	var cfg runConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return runConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// apply copies every key present in the file onto s.
func (c runConfig) apply(s *cliSettings) {
	req := &s.Request
	if c.Corpus.Path != "" {
		req.Corpus.Path = c.Corpus.Path
	}
	if c.Corpus.Kind != "" {
		req.Corpus.Kind = corpus.Kind(c.Corpus.Kind)
	}
	if c.Corpus.Taxonomy != "" {
		req.Corpus.TaxonomyPath = c.Corpus.Taxonomy
	}
	if c.RunID != "" {
		req.RunID = c.RunID
	}
	if c.Population != nil {
		req.Population = *c.Population
	}
	if c.Generations != nil {
		req.Generations = *c.Generations
	}
	if c.TournamentSize != nil {
		req.TournamentSize = *c.TournamentSize
	}
	if c.MutationRate != nil {
		req.MutationRate = *c.MutationRate
	}
	if c.EliteFraction != nil {
		req.EliteFraction = *c.EliteFraction
	}
	if c.Seed != nil {
		req.Seed = *c.Seed
	}
	if c.Top != nil {
		req.Top = *c.Top
	}
	if c.LogEvery != nil {
		req.LogEvery = *c.LogEvery
	}
	if c.Plots != nil {
		req.Plots = *c.Plots
	}
	if c.Metrics != nil {
		req.Metrics = *c.Metrics
	}
	if c.RunsDir != "" {
		s.RunsDir = c.RunsDir
	}
	if c.Log.Level != "" {
		s.Log.Level = c.Log.Level
	}
	if c.Log.Format != "" {
		s.Log.Format = c.Log.Format
	}
	if c.Log.Output != "" {
		s.Log.Output = c.Log.Output
	}
}

// overrideFromFlags applies only the flags that were set on the command line,
// so explicit flags win over file values and unset flags keep them.
func overrideFromFlags(s *cliSettings, set map[string]bool, flagValue map[string]any) error {
	req := &s.Request
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "corpus":
			req.Corpus.Path = v.(string)
		case "corpus-kind":
			req.Corpus.Kind = corpus.Kind(v.(string))
		case "taxonomy":
			req.Corpus.TaxonomyPath = v.(string)
		case "run-id":
			req.RunID = v.(string)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "tournament":
			req.TournamentSize = v.(int)
		case "mutation-rate":
			req.MutationRate = v.(float64)
		case "elite-fraction":
			req.EliteFraction = v.(float64)
		case "seed":
			req.Seed = v.(int64)
		case "top":
			req.Top = v.(int)
		case "log-every":
			req.LogEvery = v.(int)
		case "plots":
			req.Plots = v.(bool)
		case "metrics":
			req.Metrics = v.(bool)
		case "runs-dir":
			s.RunsDir = v.(string)
		case "log-level":
			s.Log.Level = v.(string)
		case "log-format":
			s.Log.Format = v.(string)
		default:
			return fmt.Errorf("unsupported override flag: %s", name)
		}
	}
	return nil
}

// resolveSettings merges defaults, the optional config file, explicit flags
// and finally the log level environment variable.
func resolveSettings(configPath string, set map[string]bool, flagValue map[string]any) (cliSettings, error) {
	s := defaultSettings()
	if configPath != "" {
		cfg, err := loadRunConfig(configPath)
		if err != nil {
			return cliSettings{}, fmt.Errorf("load config: %w", err)
		}
		cfg.apply(&s)
	}
	if err := overrideFromFlags(&s, set, flagValue); err != nil {
		return cliSettings{}, err
	}
	s.Log.Level = logging.LevelFromEnv(s.Log.Level)

	if s.Request.Corpus.Path == "" {
		return cliSettings{}, errors.New("corpus path is required (--corpus or corpus.path)")
	}
	if s.Request.Population <= 0 {
		return cliSettings{}, errors.New("population must be > 0")
	}
	if s.Request.Generations < 0 {
		return cliSettings{}, errors.New("generations must be >= 0")
	}
	return s, nil
}
