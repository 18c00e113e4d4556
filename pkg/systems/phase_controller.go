package systems

import (
	"fmt"
	"log"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/game"
)

// ScoreReporter 接收波次与阶段进度（比赛控制器实现）
type ScoreReporter interface {
	// OnWaveCompleted 阶段开启了第 wave 波（计分、等级、闪屏）
	OnWaveCompleted(phase string, wave int)
	// OnPhaseCompleted 阶段达到波次上限，每次重置之间只调用一次
	OnPhaseCompleted(phase string)
}

// PhaseControllerConfig 阶段参数
type PhaseControllerConfig struct {
	Name         string
	MaxWaves     int     // 0 表示无上限
	InitialDelay float64 // 第一波前的倒计时（秒）
	WaveInterval float64 // 之后每波的间隔（秒）
}

// PhaseController 刷怪阶段
//
// 职责：
//   - 倒计时归零时推进波次编号，通知所有子调度器 BeginWave
//   - 向 ScoreReporter 报告波次完成；到达 MaxWaves 时报告阶段完成（只报一次）
//   - 持有延迟队列，驱动所有子调度器排队的错峰生成和音效
//
// 阶段完成后不再开启新波次，但继续驱动子调度器和延迟队列直到最后一波落地（见 Idle）。
// 全局抑制（玩家重生中）期间倒计时冻结，延迟队列照常推进。
// 延迟 d 的任务在触发后第一个不早于 d 的帧边界执行；小于一帧的延迟归入下一帧。
type PhaseController struct {
	entityManager *ecs.EntityManager
	matchState    *game.MatchState
	cfg           PhaseControllerConfig
	reporter      ScoreReporter

	schedulers []*WaveScheduler
	queue      *TimerQueue

	// phaseEntityID 阶段状态组件所在的实体ID
	phaseEntityID ecs.EntityID
	destroyed     bool

	verbose bool
}

// NewPhaseController 创建阶段，初始为 Active
func NewPhaseController(em *ecs.EntityManager, ms *game.MatchState, cfg PhaseControllerConfig, reporter ScoreReporter) *PhaseController {
	p := &PhaseController{
		entityManager: em,
		matchState:    ms,
		cfg:           cfg,
		reporter:      reporter,
		queue:         NewTimerQueue(),
	}

	p.phaseEntityID = em.CreateEntity()
	ecs.AddComponent(em, p.phaseEntityID, &components.PhaseStateComponent{
		Name:      cfg.Name,
		MaxWaves:  cfg.MaxWaves,
		Countdown: cfg.InitialDelay,
		Active:    true,
	})

	log.Printf("[PhaseController] Created phase %q (entity %d), maxWaves=%d", cfg.Name, p.phaseEntityID, cfg.MaxWaves)
	return p
}

// NewPhaseControllerFromConfig 从配置构造阶段及其所有调度器
func NewPhaseControllerFromConfig(em *ecs.EntityManager, ms *game.MatchState, cfg config.PhaseConfig,
	kinds *game.KindRegistry, sampler *PlacementSampler, realizer SpawnRealizer, sound SoundPlayer,
	reporter ScoreReporter) (*PhaseController, error) {
	p := NewPhaseController(em, ms, PhaseControllerConfig{
		Name:         cfg.Name,
		MaxWaves:     cfg.MaxWaves,
		InitialDelay: cfg.InitialDelay,
		WaveInterval: cfg.WaveInterval,
	}, reporter)

	for _, spawnerCfg := range cfg.Spawners {
		scheduler, err := NewWaveSchedulerFromConfig(em, ms, spawnerCfg, kinds, sampler, realizer, sound)
		if err != nil {
			p.Destroy()
			return nil, fmt.Errorf("phase %s: %w", cfg.Name, err)
		}
		p.AddScheduler(scheduler)
	}

	return p, nil
}

// AddScheduler 挂载子调度器，调度器改用本阶段的延迟队列
func (p *PhaseController) AddScheduler(s *WaveScheduler) {
	s.attachQueue(p.queue)
	s.SetVerbose(p.verbose)
	p.schedulers = append(p.schedulers, s)
}

// Schedulers 子调度器
func (p *PhaseController) Schedulers() []*WaveScheduler {
	return p.schedulers
}

// Name 阶段名称
func (p *PhaseController) Name() string {
	return p.cfg.Name
}

// SetVerbose 设置是否输出详细日志（同时作用于子调度器）
func (p *PhaseController) SetVerbose(verbose bool) {
	p.verbose = verbose
	for _, s := range p.schedulers {
		s.SetVerbose(verbose)
	}
}

// getPhaseState 获取阶段状态组件
func (p *PhaseController) getPhaseState() *components.PhaseStateComponent {
	state, ok := ecs.GetComponent[*components.PhaseStateComponent](p.entityManager, p.phaseEntityID)
	if !ok {
		return nil
	}
	return state
}

// Update 每帧调用
func (p *PhaseController) Update(dt float64) {
	if p.destroyed {
		return
	}

	state := p.getPhaseState()
	if state == nil {
		log.Printf("[PhaseController] ERROR: Phase state not found for %q", p.cfg.Name)
		return
	}

	suppressed := p.matchState != nil && p.matchState.Respawning

	// 先推进队列时钟：本帧触发的错峰任务以帧末时刻为起点
	p.queue.Advance(dt)

	if state.Active && !suppressed {
		if state.Countdown <= 0 {
			p.startWave(state)
		} else {
			state.Countdown -= dt
		}
	}

	for _, s := range p.schedulers {
		s.Update(dt, suppressed)
	}

	// 零延迟任务（每波第一个刷怪点）在触发帧内落地
	p.queue.Advance(0)
}

// startWave 推进波次编号并通知子调度器
func (p *PhaseController) startWave(state *components.PhaseStateComponent) {
	state.WaveNumber++
	state.Countdown = p.cfg.WaveInterval

	bonus := state.SpacingBonus
	state.SpacingBonus = 0

	accepted := 0
	for _, s := range p.schedulers {
		if s.BeginWave(state.WaveNumber, bonus) {
			accepted++
		}
	}

	if p.verbose {
		log.Printf("[PhaseController] %q wave %d started, %d/%d schedulers participating",
			p.cfg.Name, state.WaveNumber, accepted, len(p.schedulers))
	}

	if p.reporter != nil {
		p.reporter.OnWaveCompleted(p.cfg.Name, state.WaveNumber)
	}

	if state.MaxWaves > 0 && state.WaveNumber >= state.MaxWaves && !state.Completed {
		state.Completed = true
		state.Active = false
		log.Printf("[PhaseController] %q complete after %d waves", p.cfg.Name, state.WaveNumber)
		if p.reporter != nil {
			p.reporter.OnPhaseCompleted(p.cfg.Name)
		}
	}
}

// ResetPhase 波次归零并重新武装所有子调度器
//
// 参数：
//   - graceDelay: 叠加到初始倒计时上的重生宽限（秒）
//   - graceRadius: 叠加到重置后第一波最小间距上的重生宽限
func (p *PhaseController) ResetPhase(graceDelay, graceRadius float64) {
	if p.destroyed {
		return
	}

	state := p.getPhaseState()
	if state == nil {
		log.Printf("[PhaseController] ERROR: Phase state not found for %q", p.cfg.Name)
		return
	}

	state.WaveNumber = 0
	state.Countdown = p.cfg.InitialDelay + max(graceDelay, 0)
	state.SpacingBonus = max(graceRadius, 0)
	state.Active = true
	state.Completed = false

	for _, s := range p.schedulers {
		s.Reset()
	}

	if p.verbose {
		log.Printf("[PhaseController] %q reset, first wave in %.2fs", p.cfg.Name, state.Countdown)
	}
}

// Stop 停止推进波次并放弃所有子调度器的倒计时
// 已排队的错峰生成仍会执行
func (p *PhaseController) Stop() {
	if state := p.getPhaseState(); state != nil {
		state.Active = false
	}
	for _, s := range p.schedulers {
		s.Stop()
	}
}

// Destroy 撤回所有排队任务并销毁阶段及子调度器的实体
func (p *PhaseController) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	p.queue.Clear()
	for _, s := range p.schedulers {
		s.Destroy()
	}
	p.entityManager.DestroyEntity(p.phaseEntityID)

	log.Printf("[PhaseController] Destroyed phase %q", p.cfg.Name)
}

// Idle 没有子调度器在倒计时，且延迟队列为空
func (p *PhaseController) Idle() bool {
	for _, s := range p.schedulers {
		if s.State() == components.SchedulerCounting {
			return false
		}
	}
	return p.queue.Len() == 0
}

// Destroyed 是否已销毁
func (p *PhaseController) Destroyed() bool {
	return p.destroyed
}

// State 阶段状态快照
func (p *PhaseController) State() components.PhaseStateComponent {
	if state := p.getPhaseState(); state != nil {
		return *state
	}
	return components.PhaseStateComponent{Name: p.cfg.Name}
}
