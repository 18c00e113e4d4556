package components

// SchedulerState 刷怪调度器状态
type SchedulerState int

const (
	// SchedulerIdle 空闲：本波未参与或已触发完毕
	SchedulerIdle SchedulerState = iota
	// SchedulerCounting 倒计时中，归零时触发刷怪
	SchedulerCounting
)

// String 返回状态名称（日志用）
func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerCounting:
		return "counting"
	default:
		return "unknown"
	}
}

// WaveTimerComponent 刷怪点计时器组件
// 存储单个刷怪调度器的状态，供 WaveScheduler 使用
// 注意：遵循 ECS 原则，组件仅存储数据
//
// 时间单位：秒
type WaveTimerComponent struct {
	// State 当前状态
	State SchedulerState

	// Countdown 当前倒计时（秒），<= 0 时触发刷怪
	Countdown float64

	// InitialDelay 每次开始参与波次时的倒计时初值（秒）
	InitialDelay float64

	// WaveNumber 最近一次接受的波次编号（0 表示尚未参与）
	WaveNumber int

	// SpacingBonus 本波叠加到最小间距上的额外距离（重生宽限）
	SpacingBonus float64

	// FiredWaves 累计触发次数（调试用）
	FiredWaves int

	// LastPlaced / LastRequested 最近一次触发实际放置数与请求数（调试用）
	LastPlaced    int
	LastRequested int
}
