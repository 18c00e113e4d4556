package app

import (
	"testing"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/types"
)

const testMatchYAML = `
arenaHalfExtent: 12
clearanceRadius: 0.3
respawnGrace:
  radius: 1
  delay: 2
kinds: [drone, brute, swarmer]
phases:
  - name: opening
    maxWaves: 2
    waveInterval: 1
    spawners:
      - name: drones
        staggerStep: 0.1
        soundCue: blip
        waves:
          - {kind: drone, minSpacing: 1, startSize: 2}
  - name: siege
    maxWaves: 1
    waveInterval: 1
    spawners:
      - waves:
          - {kind: brute, minSpacing: 2, startSize: 1}
terminalPhase: opening
`

type countingSound struct {
	count int
}

func (c *countingSound) PlayCue(string) { c.count++ }

func newTestMatch(t *testing.T, opts MatchOptions) *Match {
	t.Helper()
	cfg, err := config.ParseMatchConfig([]byte(testMatchYAML))
	if err != nil {
		t.Fatalf("ParseMatchConfig failed: %v", err)
	}
	if opts.Seed == 0 {
		opts.Seed = 21
	}
	m, err := NewMatch(cfg, opts)
	if err != nil {
		t.Fatalf("NewMatch failed: %v", err)
	}
	return m
}

func runMatch(m *Match, ticks int) {
	for i := 0; i < ticks; i++ {
		m.Update(0.1)
	}
}

// TestMatchRegistersKindsInConfigOrder 类型编码由配置顺序固定
func TestMatchRegistersKindsInConfigOrder(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})

	for i, name := range []string{"drone", "brute", "swarmer"} {
		kind := m.Kinds().LookupName(name)
		if int(kind.Code) != i+1 {
			t.Errorf("%s registered with code %d, want %d", name, kind.Code, i+1)
		}
	}
}

// TestMatchPhaseAdvanceAndTerminalLoop opening -> siege -> opening（循环）
func TestMatchPhaseAdvanceAndTerminalLoop(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})

	if got := m.Phase().Name(); got != "opening" {
		t.Fatalf("Expected to start in opening, got %q", got)
	}

	var visited []string
	last := ""
	for i := 0; i < 200; i++ {
		m.Update(0.1)
		if name := m.Phase().Name(); name != last {
			visited = append(visited, name)
			last = name
		}
	}

	if len(visited) < 4 || visited[0] != "opening" || visited[1] != "siege" || visited[2] != "opening" || visited[3] != "siege" {
		t.Errorf("Unexpected phase sequence %v", visited)
	}
	if m.PhasesCleared() < 3 {
		t.Errorf("Expected at least 3 cleared phases, got %d", m.PhasesCleared())
	}
	if m.Level() == 0 || m.Score() < m.Level() {
		t.Errorf("Unexpected level %d / score %d", m.Level(), m.Score())
	}
}

// TestMatchRetiredPhasesAreDestroyed 退役阶段在收尾后被销毁
func TestMatchRetiredPhasesAreDestroyed(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})
	runMatch(m, 200)

	if m.RetiredPhases() > 1 {
		t.Errorf("Retired phases should be destroyed once idle, %d still tracked", m.RetiredPhases())
	}
	phases := ecs.GetEntitiesWith1[*components.PhaseStateComponent](m.EntityManager())
	if len(phases) != 1+m.RetiredPhases() {
		t.Errorf("Expected %d phase entities, got %d", 1+m.RetiredPhases(), len(phases))
	}
}

// TestMatchRegistryMatchesEntities 注册表计数与场上敌人实体一致
func TestMatchRegistryMatchesEntities(t *testing.T) {
	sound := &countingSound{}
	m := newTestMatch(t, MatchOptions{EnemyLifetime: 1.5, Sound: sound})

	for i := 0; i < 150; i++ {
		m.Update(0.1)

		enemies := ecs.GetEntitiesWith1[*components.EnemyComponent](m.EntityManager())
		if got := m.Instances().CountTotal(); got != len(enemies) {
			t.Fatalf("tick %d: registry has %d instances, board has %d enemies", i, got, len(enemies))
		}

		sum := 0
		for _, kind := range m.Kinds().Kinds() {
			sum += m.Instances().CountByKind(kind)
		}
		if sum != m.Instances().CountTotal() {
			t.Fatalf("tick %d: per-kind sum %d != total %d", i, sum, m.Instances().CountTotal())
		}
	}

	if sound.count == 0 {
		t.Error("Expected spawn cues to play")
	}
}

// TestMatchRespawnSuppresses 重生期间不开新波次，重生后以宽限重置当前阶段
func TestMatchRespawnSuppresses(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})
	runMatch(m, 3)
	level := m.Level()

	m.Respawn()
	if m.State().HasPlayer {
		t.Error("Player should be gone while respawning")
	}
	runMatch(m, 50)
	if m.Level() != level {
		t.Errorf("No waves should start while respawning: level %d -> %d", level, m.Level())
	}
	if !m.State().Respawning {
		t.Error("Suppression flag should be written on Update")
	}

	m.FinishRespawn(types.Vec2{X: 100, Y: -3})
	if pos := m.State().Anchor(); pos.X != 12 || pos.Y != -3 {
		t.Errorf("Respawn position should be clamped to the arena, got %v", pos)
	}
	state := m.Phase().State()
	if state.WaveNumber != 0 || state.Countdown != 2 || state.SpacingBonus != 1 {
		t.Errorf("Phase should be reset with grace values, got %+v", state)
	}

	runMatch(m, 30)
	if m.Level() == level {
		t.Error("Waves should resume after respawn")
	}
}

// TestMatchMovePlayer 玩家位置同时写入实体和比赛状态
func TestMatchMovePlayer(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})
	m.MovePlayer(types.Vec2{X: 3, Y: 4})

	if m.State().Anchor() != (types.Vec2{X: 3, Y: 4}) {
		t.Errorf("Anchor = %v", m.State().Anchor())
	}
	players := ecs.GetEntitiesWith1[*components.PlayerComponent](m.EntityManager())
	if len(players) != 1 {
		t.Fatalf("Expected one player, got %d", len(players))
	}
	pos, _ := ecs.GetComponent[*components.PositionComponent](m.EntityManager(), players[0])
	if pos.Vec2 != (types.Vec2{X: 3, Y: 4}) {
		t.Errorf("Player entity at %v", pos.Vec2)
	}
}

// TestMatchRecords 战绩在内存模式下累计
func TestMatchRecords(t *testing.T) {
	records := game.NewRunRecordManager(nil)
	m := newTestMatch(t, MatchOptions{Records: records})
	runMatch(m, 100)

	record := records.Record()
	if record.Runs != 1 || record.BestWave == 0 || record.PhasesCleared == 0 {
		t.Errorf("Unexpected record %+v", record)
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close in memory mode should not fail: %v", err)
	}
}

// TestMatchFlashIntensity 波次完成后闪屏从 1 缓出到 0
func TestMatchFlashIntensity(t *testing.T) {
	m := newTestMatch(t, MatchOptions{})
	if m.FlashIntensity() != 0 {
		t.Errorf("No flash before the first wave, got %f", m.FlashIntensity())
	}

	m.OnWaveCompleted("opening", 1)
	if m.FlashIntensity() != 1 {
		t.Errorf("Flash should start at 1, got %f", m.FlashIntensity())
	}

	// 剩余一半时间：1 - EaseOutQuad(0.5) = 0.25
	m.flash = FlashDuration / 2
	if got := m.FlashIntensity(); got < 0.2499 || got > 0.2501 {
		t.Errorf("Flash at half time = %f, want 0.25", got)
	}

	m.flash = 0
	if m.FlashIntensity() != 0 {
		t.Errorf("Flash should be gone, got %f", m.FlashIntensity())
	}
}

func TestNewMatchRejectsEmptyConfig(t *testing.T) {
	if _, err := NewMatch(&config.MatchConfig{}, MatchOptions{}); err == nil {
		t.Error("Expected error for config without phases")
	}
}
