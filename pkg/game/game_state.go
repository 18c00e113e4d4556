package game

import "github.com/decker502/arenawaves/pkg/types"

// MatchState 比赛控制器提供给刷怪引擎的外部输入
//
// 由比赛控制器独占写入（每帧至多一次），引擎各组件只读。
// 不再是全局单例：每局比赛持有自己的实例，便于并行测试。
type MatchState struct {
	// 玩家位置；HasPlayer 为 false 时使用 FallbackAnchor
	PlayerPosition types.Vec2
	HasPlayer      bool
	FallbackAnchor types.Vec2

	// ArenaHalfExtent 竞技场半边长（正方形，关于原点对称）
	ArenaHalfExtent float64

	// Respawning 玩家重生中，为 true 时所有调度器暂停
	Respawning bool

	// 重生后的宽限：GraceRadius 叠加到间距上，GraceDelay 叠加到初始倒计时上
	GraceRadius float64
	GraceDelay  float64

	// DebugLog 阶段/波次调试日志开关
	DebugLog bool
}

// NewMatchState 创建比赛状态
func NewMatchState(halfExtent float64) *MatchState {
	return &MatchState{
		ArenaHalfExtent: halfExtent,
	}
}

// Anchor 返回放置锚点：玩家位置，若无玩家则为备用锚点
func (ms *MatchState) Anchor() types.Vec2 {
	if ms.HasPlayer {
		return ms.PlayerPosition
	}
	return ms.FallbackAnchor
}

// SetPlayer 更新玩家位置
func (ms *MatchState) SetPlayer(pos types.Vec2) {
	ms.PlayerPosition = pos
	ms.HasPlayer = true
}

// ClearPlayer 玩家不存在（死亡、尚未生成）
func (ms *MatchState) ClearPlayer() {
	ms.HasPlayer = false
}

// InBounds 判断点是否在竞技场范围内（边界包含在内）
func (ms *MatchState) InBounds(p types.Vec2) bool {
	return p.X >= -ms.ArenaHalfExtent && p.X <= ms.ArenaHalfExtent &&
		p.Y >= -ms.ArenaHalfExtent && p.Y <= ms.ArenaHalfExtent
}
