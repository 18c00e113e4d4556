package utils

import (
	"math/rand"
	"time"
)

// PRNGService 可设种子的随机数服务
// 刷怪放置算法通过它取随机数，测试用固定种子保证可复现
type PRNGService struct {
	rng  *rand.Rand
	seed int64
}

// NewPRNGService 创建随机数服务
// seed 为 0 时使用当前时间
func NewPRNGService(seed int64) *PRNGService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PRNGService{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed 实际使用的种子（便于复现问题时打印）
func (s *PRNGService) Seed() int64 {
	return s.seed
}

// Intn 返回 [0, n) 的随机整数
func (s *PRNGService) Intn(n int) int {
	return s.rng.Intn(n)
}

// Float64 返回 [0.0, 1.0) 的随机浮点数
func (s *PRNGService) Float64() float64 {
	return s.rng.Float64()
}

// Range 返回 [lo, hi) 的随机浮点数
func (s *PRNGService) Range(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}
