package systems

import (
	"log"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/ecs"
)

// LifetimeSystem 敌人寿命到期即销毁
// 演示场景中代替战斗造成的减员，销毁通过 EntityManager.OnRemoved 回传给实例注册表
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
	verbose       bool
}

// NewLifetimeSystem 创建生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// SetVerbose 设置是否输出详细日志
func (s *LifetimeSystem) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// Update 累加寿命，过期实体标记删除，返回本帧过期数
func (s *LifetimeSystem) Update(deltaTime float64) int {
	expired := 0
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	for _, id := range entities {
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok || lifetime.IsExpired {
			continue
		}

		lifetime.CurrentLifetime += deltaTime
		if lifetime.CurrentLifetime >= lifetime.MaxLifetime {
			lifetime.IsExpired = true
			s.entityManager.DestroyEntity(id)
			expired++
		}
	}

	if expired > 0 && s.verbose {
		log.Printf("[LifetimeSystem] %d entities expired", expired)
	}
	return expired
}
