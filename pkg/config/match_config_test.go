package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validMatchYAML = `
arenaHalfExtent: 15
fallbackAnchor: {x: 1, y: 2}
respawnGrace:
  radius: 1.5
  delay: 3
kinds: [drone, brute]
phases:
  - name: opening
    maxWaves: 3
    initialDelay: 2
    spawners:
      - name: drones
        waveMax: 2
        soundCue: spawn_drone
        waves:
          - kind: drone
            minSpacing: 1.5
            startSize: 2
            sizeStep: 1
            cycle: [grow, hold]
  - name: siege
    spawners:
      - waves:
          - kind: brute
            minSpacing: 3
            startSize: 1
`

func TestParseMatchConfig(t *testing.T) {
	cfg, err := ParseMatchConfig([]byte(validMatchYAML))
	if err != nil {
		t.Fatalf("ParseMatchConfig failed: %v", err)
	}

	if cfg.ArenaHalfExtent != 15 {
		t.Errorf("expected arenaHalfExtent = 15, got %g", cfg.ArenaHalfExtent)
	}
	if cfg.FallbackAnchor.X != 1 || cfg.FallbackAnchor.Y != 2 {
		t.Errorf("unexpected fallbackAnchor %+v", cfg.FallbackAnchor)
	}
	if cfg.RespawnGrace.Radius != 1.5 || cfg.RespawnGrace.Delay != 3 {
		t.Errorf("unexpected respawnGrace %+v", cfg.RespawnGrace)
	}
	if len(cfg.Kinds) != 2 || cfg.Kinds[0] != "drone" {
		t.Errorf("unexpected kinds %v", cfg.Kinds)
	}

	opening := cfg.Phases[0]
	if opening.MaxWaves != 3 || opening.InitialDelay != 2 {
		t.Errorf("unexpected opening phase %+v", opening)
	}
	drones := opening.Spawners[0]
	if drones.WaveMin != 1 || drones.WaveMax != 2 || drones.SoundCue != "spawn_drone" {
		t.Errorf("unexpected spawner %+v", drones)
	}
	if got := drones.Waves[0].Cycle; len(got) != 2 || got[0] != "grow" {
		t.Errorf("unexpected cycle %v", got)
	}
}

func TestParseMatchConfigDefaults(t *testing.T) {
	cfg, err := ParseMatchConfig([]byte(validMatchYAML))
	if err != nil {
		t.Fatalf("ParseMatchConfig failed: %v", err)
	}

	if cfg.ClearanceRadius != DefaultClearanceRadius {
		t.Errorf("expected default clearance %g, got %g", DefaultClearanceRadius, cfg.ClearanceRadius)
	}
	siege := cfg.Phases[1]
	if siege.WaveInterval != DefaultWaveInterval {
		t.Errorf("expected default wave interval, got %g", siege.WaveInterval)
	}
	if siege.Spawners[0].StaggerStep != DefaultStaggerStep {
		t.Errorf("expected default stagger step, got %g", siege.Spawners[0].StaggerStep)
	}
	if siege.Spawners[0].Name != "siege/0" {
		t.Errorf("expected generated spawner name, got %q", siege.Spawners[0].Name)
	}
	// 未指定 terminalPhase 时循环最后一个阶段
	if cfg.TerminalPhase != "siege" {
		t.Errorf("expected terminal phase siege, got %q", cfg.TerminalPhase)
	}
	if i, ok := cfg.PhaseIndex("siege"); !ok || i != 1 {
		t.Errorf("PhaseIndex(siege) = %d, %v, want 1, true", i, ok)
	}
	if i, ok := cfg.PhaseIndex("missing"); ok || i != -1 {
		t.Errorf("PhaseIndex(missing) = %d, %v, want -1, false", i, ok)
	}
}

func TestParseMatchConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{
			name:        "no phases",
			yamlContent: "kinds: [drone]\n",
			errContains: "at least one phase is required",
		},
		{
			name: "duplicate kind",
			yamlContent: `
kinds: [drone, drone]
phases: [{name: a, spawners: [{waves: [{kind: drone, minSpacing: 1}]}]}]
`,
			errContains: "duplicate kind",
		},
		{
			name: "zero spacing",
			yamlContent: `
phases: [{name: a, spawners: [{waves: [{kind: drone, minSpacing: 0}]}]}]
`,
			errContains: "minSpacing must be positive",
		},
		{
			name: "bad cycle step",
			yamlContent: `
phases: [{name: a, spawners: [{waves: [{kind: drone, minSpacing: 1, cycle: [grow, explode]}]}]}]
`,
			errContains: "must be one of none, hold, grow, shrink",
		},
		{
			name: "inverted wave range",
			yamlContent: `
phases: [{name: a, spawners: [{waveMin: 4, waveMax: 2, waves: [{kind: drone, minSpacing: 1}]}]}]
`,
			errContains: "waveMax 2 is below waveMin 4",
		},
		{
			name: "unknown terminal phase",
			yamlContent: `
terminalPhase: nowhere
phases: [{name: a, spawners: [{waves: [{kind: drone, minSpacing: 1}]}]}]
`,
			errContains: "terminalPhase",
		},
		{
			name: "duplicate phase",
			yamlContent: `
phases:
  - {name: a, spawners: [{waves: [{kind: drone, minSpacing: 1}]}]}
  - {name: a, spawners: [{waves: [{kind: drone, minSpacing: 1}]}]}
`,
			errContains: "duplicate phase name",
		},
		{
			name:        "malformed yaml",
			yamlContent: "phases: [\n",
			errContains: "failed to parse match config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMatchConfig([]byte(tt.yamlContent))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestLoadMatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.yaml")
	if err := os.WriteFile(path, []byte(validMatchYAML), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadMatchConfig(path)
	if err != nil {
		t.Fatalf("LoadMatchConfig failed: %v", err)
	}
	if len(cfg.Phases) != 2 {
		t.Errorf("expected 2 phases, got %d", len(cfg.Phases))
	}

	if _, err := LoadMatchConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
