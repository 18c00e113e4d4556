package systems

import (
	"fmt"
	"log"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/types"
)

// SpawnRequest 交给实现层的单个刷怪请求
type SpawnRequest struct {
	Kind     types.EnemyKind
	Position types.Vec2
	Delay    float64      // 错峰延迟（秒）
	Marker   ecs.EntityID // MarkPending 返回的待生成标记
	Spawner  string       // 发起请求的调度器名称
}

// SpawnRealizer 刷怪实现层
//
// 波次触发时对每个点立即调用 MarkPending（预订位置，后续放置会避开），
// 错峰延迟到达后调用 Realize。所属阶段被销毁时，尚未实现的请求改为调用 Cancel。
type SpawnRealizer interface {
	MarkPending(req SpawnRequest) ecs.EntityID
	Realize(req SpawnRequest)
	Cancel(req SpawnRequest)
}

// SoundPlayer 音效播放
type SoundPlayer interface {
	PlayCue(cue string)
}

// WaveSchedulerConfig 调度器参数
type WaveSchedulerConfig struct {
	Name         string
	WaveMin      int     // 参与的最小波次
	WaveMax      int     // 参与的最大波次，0 表示无上限
	InitialDelay float64 // 接受波次后到触发的倒计时（秒）
	StaggerStep  float64 // 相邻刷怪点的错峰间隔（秒）
	SoundCue     string  // 每个刷怪点实现时播放，空则不播放
	Specs        []*WaveSpec
}

// WaveScheduler 单个刷怪点的波次状态机
//
// 状态：
//   - Idle：未参与当前波次，或本波已触发
//   - Counting：倒计时中；归零时（瞬时的"待触发"）采样所有 WaveSpec 并排队错峰生成，回到 Idle
//
// 架构说明：
//   - 状态存储在调度器实体的 WaveTimerComponent 上
//   - 错峰生成和音效通过 TimerQueue 调度；挂到阶段后使用阶段的队列
//   - 停止或重置只放弃倒计时，不撤回已排队的生成
type WaveScheduler struct {
	entityManager *ecs.EntityManager
	matchState    *game.MatchState
	cfg           WaveSchedulerConfig

	sampler  *PlacementSampler
	realizer SpawnRealizer
	sound    SoundPlayer

	queue     *TimerQueue
	ownsQueue bool

	// timerEntityID 计时器组件所在的实体ID
	timerEntityID ecs.EntityID

	verbose bool
}

// NewWaveScheduler 创建刷怪调度器
//
// 参数：
//   - em: 实体管理器
//   - ms: 比赛状态（提供放置锚点）
//   - cfg: 调度器参数
//   - sampler: 刷怪点采样器
//   - realizer: 实现层，可为 nil（只计算位置）
//   - sound: 音效，可为 nil
func NewWaveScheduler(em *ecs.EntityManager, ms *game.MatchState, cfg WaveSchedulerConfig,
	sampler *PlacementSampler, realizer SpawnRealizer, sound SoundPlayer) *WaveScheduler {
	s := &WaveScheduler{
		entityManager: em,
		matchState:    ms,
		cfg:           cfg,
		sampler:       sampler,
		realizer:      realizer,
		sound:         sound,
		queue:         NewTimerQueue(),
		ownsQueue:     true,
	}

	s.timerEntityID = em.CreateEntity()
	ecs.AddComponent(em, s.timerEntityID, &components.WaveTimerComponent{
		State:        components.SchedulerIdle,
		Countdown:    cfg.InitialDelay,
		InitialDelay: cfg.InitialDelay,
	})

	log.Printf("[WaveScheduler] Created scheduler %q (entity %d), waves [%d, %d], %d specs",
		cfg.Name, s.timerEntityID, cfg.WaveMin, cfg.WaveMax, len(cfg.Specs))

	return s
}

// NewWaveSchedulerFromConfig 从配置构造调度器，类型名经注册表解析
func NewWaveSchedulerFromConfig(em *ecs.EntityManager, ms *game.MatchState, cfg config.SpawnerConfig,
	kinds *game.KindRegistry, sampler *PlacementSampler, realizer SpawnRealizer, sound SoundPlayer) (*WaveScheduler, error) {
	specs := make([]*WaveSpec, 0, len(cfg.Waves))
	for i, waveCfg := range cfg.Waves {
		spec, err := NewWaveSpecFromConfig(waveCfg, kinds)
		if err != nil {
			return nil, fmt.Errorf("spawner %s wave %d: %w", cfg.Name, i, err)
		}
		specs = append(specs, spec)
	}

	return NewWaveScheduler(em, ms, WaveSchedulerConfig{
		Name:         cfg.Name,
		WaveMin:      cfg.WaveMin,
		WaveMax:      cfg.WaveMax,
		InitialDelay: cfg.InitialDelay,
		StaggerStep:  cfg.StaggerStep,
		SoundCue:     cfg.SoundCue,
		Specs:        specs,
	}, sampler, realizer, sound), nil
}

// SetVerbose 设置是否输出详细日志
func (s *WaveScheduler) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Name 调度器名称
func (s *WaveScheduler) Name() string {
	return s.cfg.Name
}

// attachQueue 改用阶段的延迟队列（由 PhaseController 调用）
func (s *WaveScheduler) attachQueue(q *TimerQueue) {
	s.queue = q
	s.ownsQueue = false
}

// getTimerComponent 获取计时器组件
func (s *WaveScheduler) getTimerComponent() *components.WaveTimerComponent {
	timer, ok := ecs.GetComponent[*components.WaveTimerComponent](s.entityManager, s.timerEntityID)
	if !ok {
		return nil
	}
	return timer
}

// Reset 重置所有 WaveSpec 计数器，回到 Idle，倒计时恢复初值
func (s *WaveScheduler) Reset() {
	for _, spec := range s.cfg.Specs {
		spec.Reset()
	}

	timer := s.getTimerComponent()
	if timer == nil {
		log.Printf("[WaveScheduler] ERROR: Timer component not found for %q", s.cfg.Name)
		return
	}
	timer.State = components.SchedulerIdle
	timer.Countdown = timer.InitialDelay
	timer.WaveNumber = 0
	timer.SpacingBonus = 0

	if s.verbose {
		log.Printf("[WaveScheduler] %q reset", s.cfg.Name)
	}
}

// InRange 波次编号是否在本调度器的参与范围内
func (s *WaveScheduler) InRange(waveNumber int) bool {
	if waveNumber < s.cfg.WaveMin {
		return false
	}
	return s.cfg.WaveMax == 0 || waveNumber <= s.cfg.WaveMax
}

// BeginWave 开始参与一个波次
//
// 只有 WaveMin <= waveNumber <= WaveMax（WaveMax 为 0 时无上限）才进入 Counting，
// 否则静默跳过本波。spacingBonus 叠加到本波所有 WaveSpec 的最小间距上。
//
// 返回：
//   - bool: 是否接受了该波次
func (s *WaveScheduler) BeginWave(waveNumber int, spacingBonus float64) bool {
	if !s.InRange(waveNumber) {
		return false
	}

	timer := s.getTimerComponent()
	if timer == nil {
		log.Printf("[WaveScheduler] ERROR: Timer component not found for %q", s.cfg.Name)
		return false
	}

	if timer.State == components.SchedulerCounting && s.verbose {
		log.Printf("[WaveScheduler] WARNING: %q wave %d still counting (%.2fs left), restarting for wave %d",
			s.cfg.Name, timer.WaveNumber, timer.Countdown, waveNumber)
	}

	timer.State = components.SchedulerCounting
	timer.Countdown = timer.InitialDelay
	timer.WaveNumber = waveNumber
	timer.SpacingBonus = max(spacingBonus, 0)

	if s.verbose {
		log.Printf("[WaveScheduler] %q begins wave %d, countdown %.2fs", s.cfg.Name, waveNumber, timer.Countdown)
	}
	return true
}

// Update 推进倒计时
//
// 参数：
//   - dt: 帧时间（秒）
//   - suppressed: 全局刷怪抑制（玩家重生中），为 true 时倒计时冻结
//
// 返回：
//   - []SpawnPoint: 本帧触发的刷怪点（未触发时为 nil）
func (s *WaveScheduler) Update(dt float64, suppressed bool) []SpawnPoint {
	var fired []SpawnPoint

	// 独立使用时自己驱动延迟队列；挂到阶段后由阶段驱动
	if s.ownsQueue {
		s.queue.Advance(dt)
	}

	timer := s.getTimerComponent()
	if timer != nil && timer.State == components.SchedulerCounting && !suppressed {
		timer.Countdown -= dt
		if timer.Countdown <= 0 {
			fired = s.fire(timer)
			timer.State = components.SchedulerIdle
		}
	}

	if s.ownsQueue {
		s.queue.Advance(0)
	}

	return fired
}

// fire 采样所有 WaveSpec 并排队错峰生成和音效
func (s *WaveScheduler) fire(timer *components.WaveTimerComponent) []SpawnPoint {
	requests := make([]PlacementRequest, 0, len(s.cfg.Specs))
	requested := 0
	for _, spec := range s.cfg.Specs {
		count := spec.Advance()
		if count == 0 {
			continue
		}
		requests = append(requests, PlacementRequest{
			Kind:       spec.Kind,
			MinSpacing: spec.MinSpacing + timer.SpacingBonus,
			Count:      count,
		})
		requested += count
	}

	timer.FiredWaves++
	timer.LastRequested = requested
	timer.LastPlaced = 0

	if requested == 0 {
		if s.verbose {
			log.Printf("[WaveScheduler] %q wave %d: nothing to spawn", s.cfg.Name, timer.WaveNumber)
		}
		return nil
	}

	if s.sampler == nil {
		log.Printf("[WaveScheduler] WARNING: %q has no placement sampler", s.cfg.Name)
		return nil
	}

	points, err := s.sampler.Place(s.matchState.Anchor(), requests, s.cfg.StaggerStep)
	if err != nil {
		log.Printf("[WaveScheduler] ERROR: %q wave %d placement failed: %v", s.cfg.Name, timer.WaveNumber, err)
		return nil
	}
	timer.LastPlaced = len(points)

	for _, p := range points {
		req := SpawnRequest{
			Kind:     p.Kind,
			Position: p.Position,
			Delay:    p.Delay,
			Spawner:  s.cfg.Name,
		}
		if s.realizer != nil {
			req.Marker = s.realizer.MarkPending(req)
			s.queue.ScheduleWithCancel(p.Delay,
				func() { s.realizer.Realize(req) },
				func() { s.realizer.Cancel(req) })
		}
		if s.sound != nil && s.cfg.SoundCue != "" {
			s.queue.Schedule(p.Delay, func() { s.sound.PlayCue(s.cfg.SoundCue) })
		}
	}

	log.Printf("[WaveScheduler] %q wave %d fired: placed %d/%d", s.cfg.Name, timer.WaveNumber, len(points), requested)
	return points
}

// Stop 放弃当前倒计时（已排队的生成不受影响）
func (s *WaveScheduler) Stop() {
	if timer := s.getTimerComponent(); timer != nil {
		timer.State = components.SchedulerIdle
	}
}

// Destroy 销毁计时器实体
func (s *WaveScheduler) Destroy() {
	s.entityManager.DestroyEntity(s.timerEntityID)
}

// State 当前状态
func (s *WaveScheduler) State() components.SchedulerState {
	if timer := s.getTimerComponent(); timer != nil {
		return timer.State
	}
	return components.SchedulerIdle
}

// Countdown 剩余倒计时（秒）
func (s *WaveScheduler) Countdown() float64 {
	if timer := s.getTimerComponent(); timer != nil {
		return timer.Countdown
	}
	return 0
}

// LastPlacement 最近一次触发的放置数与请求数
func (s *WaveScheduler) LastPlacement() (placed, requested int) {
	if timer := s.getTimerComponent(); timer != nil {
		return timer.LastPlaced, timer.LastRequested
	}
	return 0, 0
}

// PendingTasks 延迟队列中尚未执行的任务数
func (s *WaveScheduler) PendingTasks() int {
	return s.queue.Len()
}
