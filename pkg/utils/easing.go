package utils

// 缓动函数：接受进度 t ∈ [0, 1]，返回缓动后的值 ∈ [0, 1]
// 超出范围的输入先被截断
//
// 参考：https://easings.net/

// Clamp01 将值限制在 [0, 1]
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// EaseOutQuad 二次方缓出（波次闪光的淡出曲线）
// 公式：f(t) = 1 - (1-t)²
func EaseOutQuad(t float64) float64 {
	t = Clamp01(t)
	return 1 - (1-t)*(1-t)
}

// Lerp 线性插值
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
