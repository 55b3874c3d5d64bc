package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/chainpick/internal/config"
	"github.com/verte-zerg/chainpick/internal/model"
)

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	var lines []string
	for _, line := range strings.Split(defaultConfigTemplate(), "\n") {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			line = strings.TrimPrefix(line, "# ")
		}
		lines = append(lines, line)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load uncommented template: %v", err)
	}
	if cfg.Engine.Limit == nil || *cfg.Engine.Limit != model.DefaultLimit {
		t.Fatalf("expected limit %d, got %v", model.DefaultLimit, cfg.Engine.Limit)
	}
	if cfg.Engine.CacheTTL == nil || cfg.Engine.CacheTTL.Duration != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %v", cfg.Engine.CacheTTL)
	}
	if cfg.Engine.Priority == nil || len(*cfg.Engine.Priority) != len(model.DefaultPriorityOrder) {
		t.Fatalf("expected full priority list, got %v", cfg.Engine.Priority)
	}
	if cfg.Spectator.TargetLen == nil || *cfg.Spectator.TargetLen != model.DefaultTargetLen {
		t.Fatalf("expected spectator target length, got %v", cfg.Spectator.TargetLen)
	}

	settings := model.DefaultSettings()
	cfg.Apply(&settings)
	if settings.GoalSpec != model.DefaultGoalSpec || settings.GoalsEnabled {
		t.Fatalf("unexpected goal settings: %q %v", settings.GoalSpec, settings.GoalsEnabled)
	}
}

func TestParsePriority(t *testing.T) {
	got := joinPriority(parsePriority(" length, coverage ,nope,length"))
	want := "length,coverage,contains,foul,hyphen"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	want := map[string]bool{"serve": false, "suggest": false, "stats": false, "langs": false, "config": false}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("missing %s command", name)
		}
	}
	if root.Flags().Lookup("target-len") == nil {
		t.Fatalf("expected engine flags on root")
	}
}
