package game

import (
	"fmt"

	"github.com/decker502/arenawaves/pkg/types"
)

// KindRegistry 敌人类型注册表
//
// 职责：
//   - 维护类型名称 <-> 数字编码的双向映射
//   - 首次引用新名称时惰性分配编码（最小的未使用正整数）
//
// 注意：
//   - 编码按注册顺序分配，跨运行不保证一致
//   - 需要稳定编码时，调用方应在启动时按固定顺序注册（见 MatchConfig.Kinds）
//   - 类型一经注册永不销毁，只有实例会增减
//   - 由比赛控制器持有并显式传递，不使用包级全局变量
type KindRegistry struct {
	byCode map[types.KindCode]types.EnemyKind
	byName map[string]types.EnemyKind
	order  []types.EnemyKind // 插入顺序

	// cursor 分配游标，始终指向最小的未使用编码
	cursor types.KindCode
}

// NewKindRegistry 创建空的类型注册表
func NewKindRegistry() *KindRegistry {
	return &KindRegistry{
		byCode: make(map[types.KindCode]types.EnemyKind),
		byName: make(map[string]types.EnemyKind),
		order:  make([]types.EnemyKind, 0),
		cursor: 1,
	}
}

// GetOrRegister 获取或注册类型（安全路径）
//
// 名称已存在时返回已有类型；否则分配最小的未使用正编码并双向绑定。
// 该路径先检查存在性，因此永远不会触发重复键错误。
//
// 返回：
//   - types.EnemyKind: 对应的类型
//   - error: name 为空时返回 ErrInvalidArgument
func (r *KindRegistry) GetOrRegister(name string) (types.EnemyKind, error) {
	if name == "" {
		return types.NoneKind, fmt.Errorf("%w: enemy kind name cannot be empty", ErrInvalidArgument)
	}

	if kind, ok := r.byName[name]; ok {
		return kind, nil
	}

	kind := types.EnemyKind{Code: r.cursor, Name: name}
	r.bind(kind)
	return kind, nil
}

// Register 以指定编码注册类型（底层不安全路径）
//
// 编码为 0、名称为空、编码或名称已被占用时返回 ErrInvalidArgument，不做任何修改。
func (r *KindRegistry) Register(code types.KindCode, name string) error {
	if code <= types.NoneKindCode {
		return fmt.Errorf("%w: kind code must be positive, got %d", ErrInvalidArgument, code)
	}
	if name == "" {
		return fmt.Errorf("%w: enemy kind name cannot be empty", ErrInvalidArgument)
	}
	if existing, ok := r.byCode[code]; ok {
		return fmt.Errorf("%w: kind code %d already bound to %q", ErrInvalidArgument, code, existing.Name)
	}
	if existing, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: kind name %q already bound to code %d", ErrInvalidArgument, name, existing.Code)
	}

	r.bind(types.EnemyKind{Code: code, Name: name})
	return nil
}

// bind 建立双向映射并把游标推进到下一个未使用编码
func (r *KindRegistry) bind(kind types.EnemyKind) {
	r.byCode[kind.Code] = kind
	r.byName[kind.Name] = kind
	r.order = append(r.order, kind)

	for {
		if _, used := r.byCode[r.cursor]; !used {
			break
		}
		r.cursor++
	}
}

// LookupCode 按编码查询，未找到返回 types.NoneKind
func (r *KindRegistry) LookupCode(code types.KindCode) types.EnemyKind {
	if kind, ok := r.byCode[code]; ok {
		return kind
	}
	return types.NoneKind
}

// LookupName 按名称查询，未找到返回 types.NoneKind
func (r *KindRegistry) LookupName(name string) types.EnemyKind {
	if kind, ok := r.byName[name]; ok {
		return kind
	}
	return types.NoneKind
}

// Kinds 按插入顺序返回所有已注册类型（副本）
func (r *KindRegistry) Kinds() []types.EnemyKind {
	result := make([]types.EnemyKind, len(r.order))
	copy(result, r.order)
	return result
}

// Len 已注册类型数量
func (r *KindRegistry) Len() int {
	return len(r.order)
}
