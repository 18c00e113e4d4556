package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	// DefaultArenaHalfExtent 竞技场默认半边长
	DefaultArenaHalfExtent = 20.0
	// DefaultClearanceRadius 放置点周围必须没有活动实体的半径
	DefaultClearanceRadius = 0.5
	// DefaultWaveInterval 阶段内两波之间的默认间隔（秒）
	DefaultWaveInterval = 8.0
	// DefaultStaggerStep 同一波内相邻敌人的默认错峰间隔（秒）
	DefaultStaggerStep = 0.1
)

// MatchConfig 比赛配置
// 定义竞技场参数、敌人类型注册顺序和有序的刷怪阶段
type MatchConfig struct {
	ArenaHalfExtent float64       `yaml:"arenaHalfExtent"` // 竞技场半边长（正方形，关于原点对称）
	ClearanceRadius float64       `yaml:"clearanceRadius"` // 放置点碰撞检查半径
	FallbackAnchor  PointConfig   `yaml:"fallbackAnchor"`  // 无玩家时的放置锚点
	RespawnGrace    GraceConfig   `yaml:"respawnGrace"`    // 重生宽限
	Debug           bool          `yaml:"debug"`           // 阶段/波次调试日志
	Kinds           []string      `yaml:"kinds"`           // 启动时按此顺序注册类型，固定编码
	Phases          []PhaseConfig `yaml:"phases"`          // 有序阶段列表
	TerminalPhase   string        `yaml:"terminalPhase"`   // 最后一个阶段完成后循环的阶段名，默认最后一个
}

// PointConfig 二维坐标
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// GraceConfig 重生宽限配置
type GraceConfig struct {
	Radius float64 `yaml:"radius"` // 叠加到最小间距上
	Delay  float64 `yaml:"delay"`  // 叠加到阶段初始倒计时上（秒）
}

// PhaseConfig 单个刷怪阶段
type PhaseConfig struct {
	Name         string          `yaml:"name"`
	MaxWaves     int             `yaml:"maxWaves"`     // 0 表示无上限
	InitialDelay float64         `yaml:"initialDelay"` // 第一波前的倒计时（秒）
	WaveInterval float64         `yaml:"waveInterval"` // 之后每波的间隔（秒），默认 DefaultWaveInterval
	Spawners     []SpawnerConfig `yaml:"spawners"`
}

// SpawnerConfig 单个刷怪调度器
type SpawnerConfig struct {
	Name         string           `yaml:"name"`
	WaveMin      int              `yaml:"waveMin"`      // 参与的最小波次，默认 1
	WaveMax      int              `yaml:"waveMax"`      // 参与的最大波次，0 表示无上限
	InitialDelay float64          `yaml:"initialDelay"` // 开始参与波次后的倒计时（秒）
	StaggerStep  float64          `yaml:"staggerStep"`  // 错峰间隔（秒），默认 DefaultStaggerStep
	SoundCue     string           `yaml:"soundCue"`     // 每个敌人实现时播放的提示音
	Waves        []WaveSpecConfig `yaml:"waves"`
}

// WaveSpecConfig 单个类型的波次规格
type WaveSpecConfig struct {
	Kind       string   `yaml:"kind"`
	MinSpacing float64  `yaml:"minSpacing"`
	StartSize  int      `yaml:"startSize"`
	SizeStep   int      `yaml:"sizeStep"`
	Cycle      []string `yaml:"cycle"` // none | hold | grow | shrink
}

// validCycleSteps 合法的周期步骤
var validCycleSteps = map[string]bool{
	"none":   true,
	"hold":   true,
	"grow":   true,
	"shrink": true,
}

// LoadMatchConfig 从YAML文件加载比赛配置
//
// 参数：
//
//	filepath - 配置文件路径
//
// 返回：
//
//	*MatchConfig - 解析后的配置（已应用默认值并通过校验）
//	error - 读取、解析或校验失败
func LoadMatchConfig(filepath string) (*MatchConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read match config file %s: %w", filepath, err)
	}

	cfg, err := ParseMatchConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return cfg, nil
}

// ParseMatchConfig 从内存中的 YAML 数据解析比赛配置（用于嵌入的默认配置）
func ParseMatchConfig(data []byte) (*MatchConfig, error) {
	var cfg MatchConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse match config YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateMatchConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid match config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults 为缺失的可选字段设置默认值
func applyDefaults(cfg *MatchConfig) {
	if cfg.ArenaHalfExtent == 0 {
		cfg.ArenaHalfExtent = DefaultArenaHalfExtent
	}
	if cfg.ClearanceRadius == 0 {
		cfg.ClearanceRadius = DefaultClearanceRadius
	}

	for i := range cfg.Phases {
		phase := &cfg.Phases[i]
		if phase.WaveInterval == 0 {
			phase.WaveInterval = DefaultWaveInterval
		}
		for j := range phase.Spawners {
			spawner := &phase.Spawners[j]
			if spawner.WaveMin == 0 {
				spawner.WaveMin = 1
			}
			if spawner.StaggerStep == 0 {
				spawner.StaggerStep = DefaultStaggerStep
			}
			if spawner.Name == "" {
				spawner.Name = fmt.Sprintf("%s/%d", phase.Name, j)
			}
		}
	}

	// TerminalPhase 为空时循环最后一个阶段
	if cfg.TerminalPhase == "" && len(cfg.Phases) > 0 {
		cfg.TerminalPhase = cfg.Phases[len(cfg.Phases)-1].Name
	}
}

// validateMatchConfig 验证配置的完整性和合法性
func validateMatchConfig(cfg *MatchConfig) error {
	if cfg.ArenaHalfExtent < 0 {
		return fmt.Errorf("arenaHalfExtent must be positive, got %g", cfg.ArenaHalfExtent)
	}
	if cfg.ClearanceRadius < 0 {
		return fmt.Errorf("clearanceRadius cannot be negative, got %g", cfg.ClearanceRadius)
	}
	if cfg.RespawnGrace.Radius < 0 || cfg.RespawnGrace.Delay < 0 {
		return fmt.Errorf("respawnGrace values cannot be negative")
	}

	kindSet := make(map[string]bool, len(cfg.Kinds))
	for i, kind := range cfg.Kinds {
		if kind == "" {
			return fmt.Errorf("kinds[%d]: name is required", i)
		}
		if kindSet[kind] {
			return fmt.Errorf("kinds[%d]: duplicate kind %q", i, kind)
		}
		kindSet[kind] = true
	}

	if len(cfg.Phases) == 0 {
		return fmt.Errorf("at least one phase is required")
	}

	phaseNames := make(map[string]bool, len(cfg.Phases))
	for i, phase := range cfg.Phases {
		if err := validatePhase(phase); err != nil {
			return fmt.Errorf("phase %d: %w", i, err)
		}
		if phaseNames[phase.Name] {
			return fmt.Errorf("phase %d: duplicate phase name %q", i, phase.Name)
		}
		phaseNames[phase.Name] = true
	}

	if _, ok := cfg.PhaseIndex(cfg.TerminalPhase); !ok {
		return fmt.Errorf("terminalPhase %q does not name a configured phase", cfg.TerminalPhase)
	}

	return nil
}

func validatePhase(phase PhaseConfig) error {
	if phase.Name == "" {
		return fmt.Errorf("name is required")
	}
	if phase.MaxWaves < 0 {
		return fmt.Errorf("maxWaves cannot be negative, got %d", phase.MaxWaves)
	}
	if phase.InitialDelay < 0 || phase.WaveInterval < 0 {
		return fmt.Errorf("delays cannot be negative")
	}
	if len(phase.Spawners) == 0 {
		return fmt.Errorf("at least one spawner is required")
	}

	for i, spawner := range phase.Spawners {
		if spawner.WaveMin < 1 {
			return fmt.Errorf("spawner %d: waveMin must be >= 1, got %d", i, spawner.WaveMin)
		}
		if spawner.WaveMax != 0 && spawner.WaveMax < spawner.WaveMin {
			return fmt.Errorf("spawner %d: waveMax %d is below waveMin %d", i, spawner.WaveMax, spawner.WaveMin)
		}
		if spawner.InitialDelay < 0 || spawner.StaggerStep < 0 {
			return fmt.Errorf("spawner %d: delays cannot be negative", i)
		}
		if len(spawner.Waves) == 0 {
			return fmt.Errorf("spawner %d: at least one wave spec is required", i)
		}

		for j, wave := range spawner.Waves {
			if wave.Kind == "" {
				return fmt.Errorf("spawner %d, wave %d: kind is required", i, j)
			}
			if wave.MinSpacing <= 0 {
				return fmt.Errorf("spawner %d, wave %d: minSpacing must be positive, got %g", i, j, wave.MinSpacing)
			}
			if wave.StartSize < 0 || wave.SizeStep < 0 {
				return fmt.Errorf("spawner %d, wave %d: startSize and sizeStep cannot be negative", i, j)
			}
			for k, step := range wave.Cycle {
				if !validCycleSteps[step] {
					return fmt.Errorf("spawner %d, wave %d, cycle[%d]: must be one of none, hold, grow, shrink, got %q", i, j, k, step)
				}
			}
		}
	}

	return nil
}

// PhaseIndex 按名称查找阶段在 Phases 中的下标
func (cfg *MatchConfig) PhaseIndex(name string) (int, bool) {
	for i, phase := range cfg.Phases {
		if phase.Name == name {
			return i, true
		}
	}
	return -1, false
}
