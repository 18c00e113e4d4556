// Package types 定义共享的基础类型
package types

import "fmt"

// KindCode 敌人类型的紧凑数字编码
// 0 保留给哨兵类型 NoneKind，合法编码从 1 开始
type KindCode int

// NoneKindCode 哨兵类型编码
const NoneKindCode KindCode = 0

// EnemyKind 敌人类型
// Code 与 Name 在同一个注册表内双向唯一
type EnemyKind struct {
	Code KindCode // 数字编码（运行时分配）
	Name string   // 可读名称，如 "drone"
}

// NoneKind 哨兵"无"类型
// 查询失败时返回，永远不会作为存活实例登记
var NoneKind = EnemyKind{Code: NoneKindCode, Name: "none"}

// IsNone 判断是否为哨兵类型
func (k EnemyKind) IsNone() bool {
	return k.Code == NoneKindCode
}

// String 返回 "name#code" 形式，便于日志输出
func (k EnemyKind) String() string {
	return fmt.Sprintf("%s#%d", k.Name, k.Code)
}
