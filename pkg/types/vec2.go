package types

import "math"

// Vec2 竞技场中的二维坐标（世界坐标，原点为竞技场中心）
type Vec2 struct {
	X, Y float64
}

// Add 向量加法
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub 向量减法
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len 向量长度
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist 两点间距离
func (v Vec2) Dist(o Vec2) float64 {
	return v.Sub(o).Len()
}

// DistSq 两点间距离的平方（避免开方，用于比较）
func (v Vec2) DistSq(o Vec2) float64 {
	dx := v.X - o.X
	dy := v.Y - o.Y
	return dx*dx + dy*dy
}

// FromPolar 由角度（弧度）和半径构造向量
func FromPolar(angle, radius float64) Vec2 {
	return Vec2{X: math.Cos(angle) * radius, Y: math.Sin(angle) * radius}
}
