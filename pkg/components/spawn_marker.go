package components

import "github.com/decker502/arenawaves/pkg/types"

// SpawnMarkerComponent 待生成标记
//
// 波次触发时立即为每个刷怪点创建标记实体，错峰延迟到达后由实现层删除并生成敌人。
// 标记带有 CategoryPendingSpawn 碰撞体，后续放置会避开这些位置。
type SpawnMarkerComponent struct {
	Kind types.EnemyKind

	// Delay 错峰延迟（秒）
	Delay float64
}
