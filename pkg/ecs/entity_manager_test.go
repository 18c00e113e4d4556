package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testPositionComponent struct {
	X, Y float64
}

type testMarkerComponent struct {
	Tag string
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// 测试实体ID唯一性
	if id1 == id2 {
		t.Error("Entity IDs should be unique")
	}

	// 测试ID从1开始，0 保留为无效句柄
	if id1 != 1 {
		t.Errorf("First entity ID should be 1, got %d", id1)
	}
	if id1 == InvalidEntity || id2 == InvalidEntity {
		t.Error("Created entity must never use the invalid handle")
	}
	if em.EntityCount() != 2 {
		t.Errorf("Expected 2 live entities, got %d", em.EntityCount())
	}
}

func TestGenericAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPositionComponent{X: 100, Y: 200})

	pos, ok := GetComponent[*testPositionComponent](em, id)
	if !ok {
		t.Fatal("Component should be found")
	}
	if pos.X != 100 || pos.Y != 200 {
		t.Errorf("Component data mismatch, expected (100, 200), got (%f, %f)", pos.X, pos.Y)
	}

	// 泛型与反射接口共享同一存储
	if !em.HasComponent(id, reflect.TypeOf(&testPositionComponent{})) {
		t.Error("Reflection API should see component added through generic API")
	}

	if _, ok := GetComponent[*testMarkerComponent](em, id); ok {
		t.Error("Missing component should not be found")
	}
}

func TestRemoveComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testMarkerComponent{Tag: "pending"})

	RemoveComponent[*testMarkerComponent](em, id)

	if HasComponent[*testMarkerComponent](em, id) {
		t.Error("Component should be removed")
	}
	if !em.IsAlive(id) {
		t.Error("Removing a component must not destroy the entity")
	}
}

func TestDestroyEntity(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testPositionComponent{})

	// 标记删除
	em.DestroyEntity(id)

	// 清理前实体仍存在
	if !em.IsAlive(id) {
		t.Error("Entity should still exist before cleanup")
	}

	// 清理后实体消失
	em.RemoveMarkedEntities()
	if em.IsAlive(id) {
		t.Error("Entity should be removed after cleanup")
	}
	if HasComponent[*testPositionComponent](em, id) {
		t.Error("Components should be removed with the entity")
	}
}

func TestOnRemovedHook(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	var removed []EntityID
	em.OnRemoved(func(id EntityID) {
		removed = append(removed, id)
	})

	// 同一实体重复标记只回调一次
	em.DestroyEntity(id2)
	em.DestroyEntity(id2)
	em.RemoveMarkedEntities()

	if len(removed) != 1 || removed[0] != id2 {
		t.Fatalf("Expected hook for [%d], got %v", id2, removed)
	}

	// 已删除实体再次标记不会回调
	em.DestroyEntity(id2)
	em.RemoveMarkedEntities()
	if len(removed) != 1 {
		t.Errorf("Destroying a removed entity should not fire the hook again, got %v", removed)
	}

	if !em.IsAlive(id1) {
		t.Error("id1 should still exist")
	}
}

func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	// 创建不同组件组合的实体
	id1 := em.CreateEntity()
	AddComponent(em, id1, &testPositionComponent{})
	AddComponent(em, id1, &testMarkerComponent{})

	id2 := em.CreateEntity()
	AddComponent(em, id2, &testPositionComponent{})

	id3 := em.CreateEntity()
	AddComponent(em, id3, &testMarkerComponent{})

	both := GetEntitiesWith2[*testPositionComponent, *testMarkerComponent](em)
	if len(both) != 1 || both[0] != id1 {
		t.Errorf("Expected only id1 with both components, got %v", both)
	}

	// 结果按ID升序
	posEntities := GetEntitiesWith1[*testPositionComponent](em)
	if len(posEntities) != 2 || posEntities[0] != id1 || posEntities[1] != id2 {
		t.Errorf("Expected [%d %d], got %v", id1, id2, posEntities)
	}
}

// TestGetEntitiesWithSortedByID 查询结果按实体ID升序（与 map 遍历顺序无关）
func TestGetEntitiesWithSortedByID(t *testing.T) {
	em := NewEntityManager()
	var want []EntityID
	for i := 0; i < 50; i++ {
		id := em.CreateEntity()
		if i%3 == 0 {
			continue
		}
		AddComponent(em, id, &testMarkerComponent{})
		want = append(want, id)
	}

	got := GetEntitiesWith1[*testMarkerComponent](em)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GetEntitiesWith1 = %v, want ascending %v", got, want)
	}
}
