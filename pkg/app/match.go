package app

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/entities"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/systems"
	"github.com/decker502/arenawaves/pkg/types"
	"github.com/decker502/arenawaves/pkg/utils"
)

// FlashDuration 波次完成闪屏时长（秒）
const FlashDuration = 0.6

// MatchOptions 比赛运行参数
type MatchOptions struct {
	// Seed 放置随机种子，0 表示使用时间
	Seed int64
	// Sound 提示音播放，可为 nil
	Sound systems.SoundPlayer
	// Records 战绩管理器，可为 nil
	Records *game.RunRecordManager
	// EnemyLifetime 敌人寿命（秒），0 表示不自动销毁
	EnemyLifetime float64
	// Verbose 详细日志（配置中的 debug 也会打开）
	Verbose bool
}

// Match 比赛控制器
//
// 职责：
//   - 按配置顺序注册敌人类型，构造各阶段及其调度器
//   - 实现 systems.ScoreReporter：关卡计数、分数、闪屏
//   - 阶段完成后实例化下一个阶段，最后一个之后循环 terminalPhase
//   - 旧阶段退役后继续驱动到 Idle，再销毁
//   - 重生抑制标志的唯一写入者（每帧写一次）
type Match struct {
	cfg *config.MatchConfig

	entityManager *ecs.EntityManager
	state         *game.MatchState
	kinds         *game.KindRegistry
	instances     *game.InstanceRegistry

	rng       *utils.PRNGService
	collision *systems.CollisionQuery
	sampler   *systems.PlacementSampler
	factory   *entities.EnemyFactory
	lifetime  *systems.LifetimeSystem
	sound     systems.SoundPlayer
	records   *game.RunRecordManager

	phase          *systems.PhaseController
	phaseIndex     int
	retired        []*systems.PhaseController
	pendingAdvance bool

	playerID   ecs.EntityID
	respawning bool

	elapsed       float64
	level         int
	score         int
	flash         float64
	phasesCleared int

	verbose bool
}

// NewMatch 根据配置创建比赛，并开始第一个阶段
func NewMatch(cfg *config.MatchConfig, opts MatchOptions) (*Match, error) {
	if cfg == nil || len(cfg.Phases) == 0 {
		return nil, fmt.Errorf("match config has no phases: %w", game.ErrInvalidArgument)
	}

	m := &Match{
		cfg:           cfg,
		entityManager: ecs.NewEntityManager(),
		state:         game.NewMatchState(cfg.ArenaHalfExtent),
		kinds:         game.NewKindRegistry(),
		instances:     game.NewInstanceRegistry(),
		rng:           utils.NewPRNGService(opts.Seed),
		sound:         opts.Sound,
		records:       opts.Records,
		verbose:       opts.Verbose || cfg.Debug,
	}

	m.state.FallbackAnchor = types.Vec2{X: cfg.FallbackAnchor.X, Y: cfg.FallbackAnchor.Y}
	m.state.GraceRadius = cfg.RespawnGrace.Radius
	m.state.GraceDelay = cfg.RespawnGrace.Delay
	m.state.DebugLog = cfg.Debug

	// 按文件顺序注册，固定类型编码
	for _, name := range cfg.Kinds {
		if _, err := m.kinds.GetOrRegister(name); err != nil {
			return nil, fmt.Errorf("register kind %q: %w", name, err)
		}
	}

	m.collision = systems.NewCollisionQuery(m.entityManager)
	m.sampler = systems.NewPlacementSampler(cfg.ArenaHalfExtent, cfg.ClearanceRadius, m.collision, m.rng)
	m.factory = entities.NewEnemyFactory(m.entityManager, m.instances)
	m.factory.Lifetime = opts.EnemyLifetime
	m.lifetime = systems.NewLifetimeSystem(m.entityManager)

	m.playerID = entities.NewPlayerEntity(m.entityManager, m.state.FallbackAnchor, 0)
	m.state.SetPlayer(m.state.FallbackAnchor)

	phase, err := m.buildPhase(0)
	if err != nil {
		return nil, err
	}
	m.phase = phase

	m.SetVerbose(m.verbose)

	if m.records != nil {
		m.records.BeginRun()
	}

	log.Printf("[Match] Started with %d kinds, %d phases, seed %d", m.kinds.Len(), len(cfg.Phases), m.rng.Seed())
	return m, nil
}

// buildPhase 实例化第 index 个阶段
func (m *Match) buildPhase(index int) (*systems.PhaseController, error) {
	phaseCfg := m.cfg.Phases[index]
	phase, err := systems.NewPhaseControllerFromConfig(m.entityManager, m.state, phaseCfg,
		m.kinds, m.sampler, m.factory, m.sound, m)
	if err != nil {
		return nil, fmt.Errorf("build phase %q: %w", phaseCfg.Name, err)
	}
	phase.SetVerbose(m.verbose)
	m.phaseIndex = index
	return phase, nil
}

// SetVerbose 设置是否输出详细日志
func (m *Match) SetVerbose(verbose bool) {
	m.verbose = verbose
	m.sampler.SetVerbose(verbose)
	m.factory.SetVerbose(verbose)
	m.lifetime.SetVerbose(verbose)
	if m.phase != nil {
		m.phase.SetVerbose(verbose)
	}
}

// OnWaveCompleted 实现 systems.ScoreReporter
func (m *Match) OnWaveCompleted(phase string, wave int) {
	m.level++
	m.score += wave
	m.flash = FlashDuration

	if m.records != nil && m.records.ObserveWave(wave, m.level) && m.verbose {
		log.Printf("[Match] New best wave %d", wave)
	}
	if m.state.DebugLog {
		log.Printf("[Match] %s wave %d (level %d, score %d)", phase, wave, m.level, m.score)
	}
}

// OnPhaseCompleted 实现 systems.ScoreReporter
// 阶段切换推迟到本帧阶段更新结束后
func (m *Match) OnPhaseCompleted(phase string) {
	m.pendingAdvance = true
	m.phasesCleared++
	if m.records != nil {
		m.records.ObservePhaseCleared()
	}
	log.Printf("[Match] Phase %q completed", phase)
}

// Update 每帧调用
func (m *Match) Update(dt float64) {
	m.elapsed += dt
	m.factory.SetTime(m.elapsed)

	// 唯一写入点
	m.state.Respawning = m.respawning

	m.phase.Update(dt)

	kept := m.retired[:0]
	for _, old := range m.retired {
		old.Update(dt)
		if old.Idle() {
			old.Destroy()
			continue
		}
		kept = append(kept, old)
	}
	m.retired = kept

	if m.pendingAdvance {
		m.pendingAdvance = false
		m.advancePhase()
	}

	m.lifetime.Update(dt)
	m.entityManager.RemoveMarkedEntities()

	if m.flash > 0 {
		m.flash = math.Max(0, m.flash-dt)
	}
}

// advancePhase 退役当前阶段并实例化下一个（最后一个之后循环 terminalPhase）
func (m *Match) advancePhase() {
	next := m.phaseIndex + 1
	if next >= len(m.cfg.Phases) {
		next = m.terminalIndex()
	}

	phase, err := m.buildPhase(next)
	if err != nil {
		// 配置在加载时已校验，这里只可能是编程错误
		log.Printf("[Match] ERROR: %v", err)
		return
	}

	m.retired = append(m.retired, m.phase)
	m.phase = phase
	log.Printf("[Match] Advanced to phase %q", m.cfg.Phases[next].Name)
}

// terminalIndex 循环阶段的下标，未配置时为最后一个阶段
func (m *Match) terminalIndex() int {
	if i, ok := m.cfg.PhaseIndex(m.cfg.TerminalPhase); ok {
		return i
	}
	return len(m.cfg.Phases) - 1
}

// Respawn 玩家死亡：移除玩家并暂停所有调度器
func (m *Match) Respawn() {
	if m.respawning {
		return
	}
	m.respawning = true
	m.entityManager.DestroyEntity(m.playerID)
	m.playerID = ecs.InvalidEntity
	m.state.ClearPlayer()
	log.Printf("[Match] Player respawning, spawning suppressed")
}

// FinishRespawn 玩家在 pos 重生：恢复刷怪并以宽限值重置当前阶段
func (m *Match) FinishRespawn(pos types.Vec2) {
	if !m.respawning {
		return
	}
	m.respawning = false
	pos = m.clampToArena(pos)
	m.playerID = entities.NewPlayerEntity(m.entityManager, pos, 0)
	m.state.SetPlayer(pos)
	m.phase.ResetPhase(m.state.GraceDelay, m.state.GraceRadius)
	log.Printf("[Match] Player respawned at (%.2f, %.2f)", pos.X, pos.Y)
}

// ResetPhase 不带宽限地重置当前阶段
func (m *Match) ResetPhase() {
	m.phase.ResetPhase(0, 0)
}

// MovePlayer 移动玩家（限制在竞技场内），重生中忽略
func (m *Match) MovePlayer(pos types.Vec2) {
	if m.respawning || m.playerID == ecs.InvalidEntity {
		return
	}
	pos = m.clampToArena(pos)
	if comp, ok := ecs.GetComponent[*components.PositionComponent](m.entityManager, m.playerID); ok {
		comp.Vec2 = pos
	}
	m.state.SetPlayer(pos)
}

func (m *Match) clampToArena(p types.Vec2) types.Vec2 {
	h := m.state.ArenaHalfExtent
	return types.Vec2{
		X: math.Max(-h, math.Min(h, p.X)),
		Y: math.Max(-h, math.Min(h, p.Y)),
	}
}

// Close 保存战绩
func (m *Match) Close() error {
	if m.records == nil {
		return nil
	}
	if err := m.records.Save(); err != nil {
		return fmt.Errorf("save run records: %w", err)
	}
	return nil
}

// FlashIntensity 闪屏强度 [0, 1]，刚完成波次时为 1，随时间缓出
func (m *Match) FlashIntensity() float64 {
	progress := 1 - m.flash/FlashDuration
	return 1 - utils.EaseOutQuad(progress)
}

// EntityManager 实体管理器
func (m *Match) EntityManager() *ecs.EntityManager { return m.entityManager }

// State 比赛状态
func (m *Match) State() *game.MatchState { return m.state }

// Kinds 类型注册表
func (m *Match) Kinds() *game.KindRegistry { return m.kinds }

// Instances 实例注册表
func (m *Match) Instances() *game.InstanceRegistry { return m.instances }

// Phase 当前阶段
func (m *Match) Phase() *systems.PhaseController { return m.phase }

// RetiredPhases 已退役但仍在收尾的阶段数
func (m *Match) RetiredPhases() int { return len(m.retired) }

// Level 累计完成的波数
func (m *Match) Level() int { return m.level }

// Score 分数（累计波次编号之和）
func (m *Match) Score() int { return m.score }

// PhasesCleared 本局完成的阶段数
func (m *Match) PhasesCleared() int { return m.phasesCleared }

// Elapsed 比赛时间（秒）
func (m *Match) Elapsed() float64 { return m.elapsed }

// Respawning 是否在重生中
func (m *Match) Respawning() bool { return m.respawning }

// Seed 实际使用的随机种子
func (m *Match) Seed() int64 { return m.rng.Seed() }
