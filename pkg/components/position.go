package components

import "github.com/decker502/arenawaves/pkg/types"

// PositionComponent 实体在竞技场中的世界坐标
type PositionComponent struct {
	types.Vec2
}
