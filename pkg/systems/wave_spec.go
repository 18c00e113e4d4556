package systems

import (
	"fmt"

	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/types"
)

// SizeShift 每波对敌人数量的调整方式
type SizeShift int

const (
	// ShiftNone 本波不出这个类型（数量保持，贡献 0）
	ShiftNone SizeShift = iota
	// ShiftHold 数量不变
	ShiftHold
	// ShiftGrow 数量增加 SizeStep
	ShiftGrow
	// ShiftShrink 数量减少 SizeStep，不低于 0
	ShiftShrink
)

var sizeShiftNames = map[string]SizeShift{
	"none":   ShiftNone,
	"hold":   ShiftHold,
	"grow":   ShiftGrow,
	"shrink": ShiftShrink,
}

// ParseSizeShift 解析配置中的周期步骤名
func ParseSizeShift(s string) (SizeShift, error) {
	shift, ok := sizeShiftNames[s]
	if !ok {
		return ShiftNone, fmt.Errorf("unknown size shift %q: %w", s, game.ErrInvalidArgument)
	}
	return shift, nil
}

// String 返回步骤名
func (s SizeShift) String() string {
	switch s {
	case ShiftNone:
		return "none"
	case ShiftHold:
		return "hold"
	case ShiftGrow:
		return "grow"
	case ShiftShrink:
		return "shrink"
	default:
		return fmt.Sprintf("SizeShift(%d)", int(s))
	}
}

// WaveSpec 单个敌人类型在一个刷怪调度器中的波次规格
//
// 每次触发波次调用一次 Advance：按周期取当前步骤，调整数量，周期指针回绕。
// 数量始终 >= 0。
type WaveSpec struct {
	Kind       types.EnemyKind
	MinSpacing float64
	StartSize  int
	SizeStep   int
	Cycle      []SizeShift

	currentSize   int
	cyclePosition int
}

// NewWaveSpec 创建波次规格，计数器处于重置状态
func NewWaveSpec(kind types.EnemyKind, minSpacing float64, startSize, sizeStep int, cycle []SizeShift) *WaveSpec {
	spec := &WaveSpec{
		Kind:       kind,
		MinSpacing: minSpacing,
		StartSize:  startSize,
		SizeStep:   sizeStep,
		Cycle:      cycle,
	}
	spec.Reset()
	return spec
}

// NewWaveSpecFromConfig 从配置构造波次规格，类型名经注册表解析为编码
func NewWaveSpecFromConfig(cfg config.WaveSpecConfig, kinds *game.KindRegistry) (*WaveSpec, error) {
	kind, err := kinds.GetOrRegister(cfg.Kind)
	if err != nil {
		return nil, fmt.Errorf("wave spec kind: %w", err)
	}

	cycle := make([]SizeShift, 0, len(cfg.Cycle))
	for _, step := range cfg.Cycle {
		shift, err := ParseSizeShift(step)
		if err != nil {
			return nil, fmt.Errorf("wave spec %s: %w", cfg.Kind, err)
		}
		cycle = append(cycle, shift)
	}

	return NewWaveSpec(kind, cfg.MinSpacing, cfg.StartSize, cfg.SizeStep, cycle), nil
}

// Reset 恢复初始数量和周期位置
func (w *WaveSpec) Reset() {
	w.currentSize = max(w.StartSize, 0)
	w.cyclePosition = 0
}

// Advance 应用当前周期步骤并返回本波数量
// 空周期视为 Hold
func (w *WaveSpec) Advance() int {
	shift := ShiftHold
	if len(w.Cycle) > 0 {
		shift = w.Cycle[w.cyclePosition]
		w.cyclePosition = (w.cyclePosition + 1) % len(w.Cycle)
	}

	switch shift {
	case ShiftNone:
		return 0
	case ShiftGrow:
		w.currentSize += w.SizeStep
	case ShiftShrink:
		w.currentSize -= w.SizeStep
	}
	if w.currentSize < 0 {
		w.currentSize = 0
	}
	return w.currentSize
}

// CurrentSize 当前数量
func (w *WaveSpec) CurrentSize() int {
	return w.currentSize
}

// CyclePosition 下一次 Advance 将使用的周期下标
func (w *WaveSpec) CyclePosition() int {
	return w.cyclePosition
}

// SetCyclePosition 跳转到指定周期下标
func (w *WaveSpec) SetCyclePosition(i int) error {
	if i < 0 || i >= len(w.Cycle) {
		return fmt.Errorf("cycle position %d out of range [0, %d): %w", i, len(w.Cycle), game.ErrInvalidArgument)
	}
	w.cyclePosition = i
	return nil
}
