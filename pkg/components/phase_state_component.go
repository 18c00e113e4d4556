package components

// PhaseStateComponent 阶段状态组件
//
// 追踪一个刷怪阶段的波次推进：
//   - 波次编号从 0 开始，每次倒计时归零时递增并通知所有子调度器
//   - MaxWaves > 0 时，波次编号到达上限即发出"阶段完成"信号（只发一次）
//   - 完成后的阶段不再开启新波次，但仍驱动子调度器直到最后一波落地
type PhaseStateComponent struct {
	// Name 阶段名称（来自配置）
	Name string

	// WaveNumber 当前波次编号（0 表示尚未开始）
	WaveNumber int

	// MaxWaves 波次上限，0 表示无上限
	MaxWaves int

	// Countdown 距下一波的倒计时（秒）
	Countdown float64

	// Active 是否在推进波次
	// false 表示已停止或已完成
	Active bool

	// Completed 是否已发出阶段完成信号
	Completed bool

	// SpacingBonus 重置后第一波叠加的间距（重生宽限），开波后清零
	SpacingBonus float64
}
