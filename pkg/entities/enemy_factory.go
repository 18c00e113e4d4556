package entities

import (
	"log"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/systems"
	"github.com/decker502/arenawaves/pkg/types"
)

const (
	// DefaultEnemyRadius 敌人碰撞半径（世界单位）
	DefaultEnemyRadius = 0.4

	// DefaultMarkerRadius 待生成标记的碰撞半径
	// 后续放置会避开这个范围
	DefaultMarkerRadius = 0.5

	// DefaultPlayerRadius 玩家碰撞半径
	DefaultPlayerRadius = 0.5
)

// EnemyFactory 刷怪实现层
//
// 实现 systems.SpawnRealizer：
//   - MarkPending: 创建带 CategoryPendingSpawn 碰撞体的标记实体
//   - Realize: 删除标记，创建敌人实体并登记到实例注册表
//   - Cancel: 删除标记
//
// 敌人实体被销毁后，通过 EntityManager.OnRemoved 从实例注册表中移除。
type EnemyFactory struct {
	entityManager *ecs.EntityManager
	instances     *game.InstanceRegistry

	// EnemyRadius 敌人碰撞半径
	EnemyRadius float64
	// MarkerRadius 标记碰撞半径
	MarkerRadius float64
	// Lifetime 敌人寿命（秒），0 表示不自动销毁
	Lifetime float64

	now      float64
	realized int
	verbose  bool
}

// NewEnemyFactory 创建实现层并把实体删除事件接到实例注册表
func NewEnemyFactory(em *ecs.EntityManager, instances *game.InstanceRegistry) *EnemyFactory {
	f := &EnemyFactory{
		entityManager: em,
		instances:     instances,
		EnemyRadius:   DefaultEnemyRadius,
		MarkerRadius:  DefaultMarkerRadius,
	}

	em.OnRemoved(func(id ecs.EntityID) {
		if instances.RemoveHandle(id) && f.verbose {
			log.Printf("[EnemyFactory] Enemy %d removed from registry", id)
		}
	})

	return f
}

// SetVerbose 设置是否输出详细日志
func (f *EnemyFactory) SetVerbose(verbose bool) {
	f.verbose = verbose
}

// SetTime 设置比赛时间（写入 EnemyComponent.SpawnedAt）
func (f *EnemyFactory) SetTime(now float64) {
	f.now = now
}

// Realized 累计实现的敌人数
func (f *EnemyFactory) Realized() int {
	return f.realized
}

// MarkPending 实现 systems.SpawnRealizer
func (f *EnemyFactory) MarkPending(req systems.SpawnRequest) ecs.EntityID {
	id := f.entityManager.CreateEntity()
	ecs.AddComponent(f.entityManager, id, &components.PositionComponent{Vec2: req.Position})
	ecs.AddComponent(f.entityManager, id, &components.CollisionComponent{
		Radius:   f.MarkerRadius,
		Category: components.CategoryPendingSpawn,
	})
	ecs.AddComponent(f.entityManager, id, &components.SpawnMarkerComponent{
		Kind:  req.Kind,
		Delay: req.Delay,
	})
	return id
}

// Realize 实现 systems.SpawnRealizer
func (f *EnemyFactory) Realize(req systems.SpawnRequest) {
	f.dropMarker(req.Marker)

	if req.Kind.IsNone() {
		log.Printf("[EnemyFactory] WARNING: Refusing to realize sentinel kind at %v", req.Position)
		return
	}

	id := f.entityManager.CreateEntity()
	ecs.AddComponent(f.entityManager, id, &components.PositionComponent{Vec2: req.Position})
	ecs.AddComponent(f.entityManager, id, &components.CollisionComponent{
		Radius:   f.EnemyRadius,
		Category: components.CategoryEnemy,
	})
	ecs.AddComponent(f.entityManager, id, &components.EnemyComponent{
		Kind:      req.Kind,
		SpawnedAt: f.now,
	})
	if f.Lifetime > 0 {
		ecs.AddComponent(f.entityManager, id, &components.LifetimeComponent{MaxLifetime: f.Lifetime})
	}

	f.instances.Add(game.EnemyInstance{Kind: req.Kind, Handle: id})
	f.realized++

	if f.verbose {
		log.Printf("[EnemyFactory] Realized %s (entity %d) at (%.2f, %.2f) from %q",
			req.Kind, id, req.Position.X, req.Position.Y, req.Spawner)
	}
}

// Cancel 实现 systems.SpawnRealizer
func (f *EnemyFactory) Cancel(req systems.SpawnRequest) {
	f.dropMarker(req.Marker)
}

func (f *EnemyFactory) dropMarker(marker ecs.EntityID) {
	if marker == ecs.InvalidEntity {
		return
	}
	if ecs.HasComponent[*components.SpawnMarkerComponent](f.entityManager, marker) {
		f.entityManager.DestroyEntity(marker)
	}
}

// NewPlayerEntity 创建玩家实体（放置锚点，碰撞类别 CategoryPlayer）
func NewPlayerEntity(em *ecs.EntityManager, pos types.Vec2, radius float64) ecs.EntityID {
	if radius <= 0 {
		radius = DefaultPlayerRadius
	}
	id := em.CreateEntity()
	ecs.AddComponent(em, id, &components.PositionComponent{Vec2: pos})
	ecs.AddComponent(em, id, &components.CollisionComponent{
		Radius:   radius,
		Category: components.CategoryPlayer,
	})
	ecs.AddComponent(em, id, &components.PlayerComponent{})
	return id
}
