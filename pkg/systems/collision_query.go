package systems

import (
	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/types"
)

// OverlapQuerier 碰撞层的点-半径重叠查询
// 刷怪放置只依赖这个接口，任何碰撞实现都可以注入
type OverlapQuerier interface {
	// Overlaps 以 p 为圆心、radius 为半径的圆内是否有 mask 类别的活动实体
	Overlaps(p types.Vec2, radius float64, mask components.CategoryMask) bool
}

// CollisionQuery 基于 ECS 的重叠查询
// 扫描拥有 PositionComponent 和 CollisionComponent 的实体，做圆与圆相交判断
type CollisionQuery struct {
	entityManager *ecs.EntityManager
}

// NewCollisionQuery 创建碰撞查询
func NewCollisionQuery(em *ecs.EntityManager) *CollisionQuery {
	return &CollisionQuery{entityManager: em}
}

// Overlaps 实现 OverlapQuerier
func (q *CollisionQuery) Overlaps(p types.Vec2, radius float64, mask components.CategoryMask) bool {
	return len(q.Query(p, radius, mask)) > 0
}

// Query 返回与圆相交的所有实体（按 ID 升序）
func (q *CollisionQuery) Query(p types.Vec2, radius float64, mask components.CategoryMask) []ecs.EntityID {
	if q.entityManager == nil {
		return nil
	}

	var hits []ecs.EntityID
	entities := ecs.GetEntitiesWith2[*components.PositionComponent, *components.CollisionComponent](q.entityManager)
	for _, id := range entities {
		collision, _ := ecs.GetComponent[*components.CollisionComponent](q.entityManager, id)
		if collision.Category&mask == 0 {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](q.entityManager, id)

		reach := radius + collision.Radius
		if pos.DistSq(p) < reach*reach {
			hits = append(hits, id)
		}
	}
	return hits
}
