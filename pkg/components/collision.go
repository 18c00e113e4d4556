package components

// CategoryMask 碰撞类别位掩码
// 重叠查询按掩码过滤：只关心玩家、敌人或待生成标记中的一部分
type CategoryMask uint8

const (
	// CategoryPlayer 玩家
	CategoryPlayer CategoryMask = 1 << iota
	// CategoryEnemy 存活敌人
	CategoryEnemy
	// CategoryPendingSpawn 已预订但尚未实现的刷怪点
	CategoryPendingSpawn

	// CategoryAll 所有类别
	CategoryAll = CategoryPlayer | CategoryEnemy | CategoryPendingSpawn
)

// CollisionComponent 定义实体的圆形碰撞范围
// 用于刷怪放置时的"该点附近是否有活动实体"查询
type CollisionComponent struct {
	Radius   float64      // 碰撞半径（世界单位）
	Category CategoryMask // 实体所属类别（单一位）
}
