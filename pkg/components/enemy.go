package components

import "github.com/decker502/arenawaves/pkg/types"

// EnemyComponent 标记实体为已实现的敌人
type EnemyComponent struct {
	Kind types.EnemyKind

	// SpawnedAt 实现时刻（比赛时间，秒），调试用
	SpawnedAt float64
}

// PlayerComponent 标记玩家实体
type PlayerComponent struct{}
