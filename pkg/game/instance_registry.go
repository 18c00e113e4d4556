package game

import (
	"sort"

	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/types"
)

// EnemyInstance 场上的一个敌人实例
// Handle 是实现层分配的不透明句柄，注册表只做非拥有关联
type EnemyInstance struct {
	Kind   types.EnemyKind
	Handle ecs.EntityID
}

// instanceKey 全局表的键：(类型编码, 句柄)
type instanceKey struct {
	code   types.KindCode
	handle ecs.EntityID
}

func keyOf(inst EnemyInstance) instanceKey {
	return instanceKey{code: inst.Kind.Code, handle: inst.Handle}
}

// InstanceRegistry 单局内的存活实例注册表
//
// 同时按全局和按类型两级索引，Add/Remove/计数均为 O(1)。
// 不变量：一个 (kind, handle) 在全局表中出现，当且仅当它出现在对应类型的桶中，
// 因此 CountTotal() 恒等于各类型 CountByKind() 之和。
type InstanceRegistry struct {
	all    map[instanceKey]EnemyInstance
	byKind map[types.KindCode]map[ecs.EntityID]EnemyInstance
}

// NewInstanceRegistry 创建空的实例注册表
func NewInstanceRegistry() *InstanceRegistry {
	return &InstanceRegistry{
		all:    make(map[instanceKey]EnemyInstance),
		byKind: make(map[types.KindCode]map[ecs.EntityID]EnemyInstance),
	}
}

// Add 登记实例（全局表 + 类型桶，桶惰性创建）
//
// 返回：
//   - bool: 只要任一张表因此发生变化即返回 true；
//     哨兵类型（编码 0）直接返回 false 且不做任何修改
func (r *InstanceRegistry) Add(inst EnemyInstance) bool {
	if inst.Kind.IsNone() {
		return false
	}

	key := keyOf(inst)
	_, inAll := r.all[key]
	if !inAll {
		r.all[key] = inst
	}

	bucket, ok := r.byKind[inst.Kind.Code]
	if !ok {
		bucket = make(map[ecs.EntityID]EnemyInstance)
		r.byKind[inst.Kind.Code] = bucket
	}
	_, inBucket := bucket[inst.Handle]
	if !inBucket {
		bucket[inst.Handle] = inst
	}

	return !inAll || !inBucket
}

// Remove 注销实例
//
// 返回：
//   - bool: 从任一张表中删除了条目即返回 true
func (r *InstanceRegistry) Remove(inst EnemyInstance) bool {
	key := keyOf(inst)
	_, inAll := r.all[key]
	if inAll {
		delete(r.all, key)
	}

	inBucket := false
	if bucket, ok := r.byKind[inst.Kind.Code]; ok {
		if _, inBucket = bucket[inst.Handle]; inBucket {
			delete(bucket, inst.Handle)
		}
		if len(bucket) == 0 {
			delete(r.byKind, inst.Kind.Code)
		}
	}

	return inAll || inBucket
}

// RemoveHandle 按句柄注销实例（实现层只知道句柄时使用）
func (r *InstanceRegistry) RemoveHandle(handle ecs.EntityID) bool {
	removed := false
	for key, inst := range r.all {
		if key.handle == handle {
			removed = r.Remove(inst) || removed
		}
	}
	return removed
}

// CountTotal 场上实例总数
func (r *InstanceRegistry) CountTotal() int {
	return len(r.all)
}

// CountByKind 指定类型的实例数，类型不在场上时返回 0
func (r *InstanceRegistry) CountByKind(kind types.EnemyKind) int {
	return len(r.byKind[kind.Code])
}

// ListAll 所有实例的快照（按句柄升序），调用方可自由修改
func (r *InstanceRegistry) ListAll() []EnemyInstance {
	result := make([]EnemyInstance, 0, len(r.all))
	for _, inst := range r.all {
		result = append(result, inst)
	}
	sortInstances(result)
	return result
}

// ListByKind 指定类型实例的快照（按句柄升序）
func (r *InstanceRegistry) ListByKind(kind types.EnemyKind) []EnemyInstance {
	bucket := r.byKind[kind.Code]
	result := make([]EnemyInstance, 0, len(bucket))
	for _, inst := range bucket {
		result = append(result, inst)
	}
	sortInstances(result)
	return result
}

// KindsOnBoard 当前场上有实例的类型编码（升序）
func (r *InstanceRegistry) KindsOnBoard() []types.KindCode {
	result := make([]types.KindCode, 0, len(r.byKind))
	for code := range r.byKind {
		result = append(result, code)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func sortInstances(list []EnemyInstance) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Handle != list[j].Handle {
			return list[i].Handle < list[j].Handle
		}
		return list[i].Kind.Code < list[j].Kind.Code
	})
}
