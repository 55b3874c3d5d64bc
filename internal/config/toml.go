// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/chainpick/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Engine    EngineConfig `toml:"engine"`
	Self      ModesConfig  `toml:"self"`
	Spectator ModesConfig  `toml:"spectator"`
}

// EngineConfig maps engine-wide settings.
type EngineConfig struct {
	Lang           *string   `toml:"lang"`
	LexiconDir     *string   `toml:"lexicon-dir"`
	DBPath         *string   `toml:"db-path"`
	Limit          *int      `toml:"limit"`
	Priority       *[]string `toml:"priority"`
	Postfix        *string   `toml:"postfix"`
	PostfixEnabled *bool     `toml:"postfix-enabled"`
	Goals          *string   `toml:"goals"`
	GoalsEnabled   *bool     `toml:"goals-enabled"`
	AutoSuicide    *bool     `toml:"auto-suicide"`
	CacheTTL       *Duration `toml:"cache-ttl"`
	SubmitDelay    *Duration `toml:"submit-delay"`
	LogLevel       *string   `toml:"log-level"`
}

// ModesConfig maps the mode toggles of one context.
type ModesConfig struct {
	Foul         *bool   `toml:"foul"`
	Pokemon      *bool   `toml:"pokemon"`
	Minerals     *bool   `toml:"minerals"`
	Rare         *bool   `toml:"rare"`
	Coverage     *bool   `toml:"coverage"`
	Length       *bool   `toml:"length"`
	TargetLen    *int    `toml:"target-len"`
	Hyphen       *bool   `toml:"hyphen"`
	Contains     *bool   `toml:"contains"`
	ContainsText *string `toml:"contains-text"`
}

// Duration decodes TOML strings such as "5m" or "750ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply copies the set fields into settings.
func (c FileConfig) Apply(s *model.Settings) {
	e := c.Engine
	setString(&s.Lang, e.Lang)
	setInt(&s.Limit, e.Limit)
	if e.Priority != nil {
		order := make([]model.Criterion, 0, len(*e.Priority))
		for _, key := range *e.Priority {
			order = append(order, model.Criterion(key))
		}
		s.PriorityOrder = order
	}
	setString(&s.PostfixText, e.Postfix)
	setBool(&s.PostfixEnabled, e.PostfixEnabled)
	setString(&s.GoalSpec, e.Goals)
	setBool(&s.GoalsEnabled, e.GoalsEnabled)
	setBool(&s.AutoSuicide, e.AutoSuicide)
	if e.SubmitDelay != nil {
		s.SubmitDelay = e.SubmitDelay.Duration
	}
	c.Self.Apply(&s.Self)
	c.Spectator.Apply(&s.Spectator)
}

// Apply copies the set toggles into m.
func (c ModesConfig) Apply(m *model.Modes) {
	setBool(&m.Foul, c.Foul)
	setBool(&m.Pokemon, c.Pokemon)
	setBool(&m.Minerals, c.Minerals)
	setBool(&m.Rare, c.Rare)
	setBool(&m.Coverage, c.Coverage)
	setBool(&m.Length, c.Length)
	setInt(&m.TargetLen, c.TargetLen)
	setBool(&m.Hyphen, c.Hyphen)
	setBool(&m.Contains, c.Contains)
	setString(&m.ContainsText, c.ContainsText)
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}

func setBool(target, value *bool) {
	if value != nil {
		*target = *value
	}
}
