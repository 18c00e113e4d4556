package systems

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/types"
	"github.com/decker502/arenawaves/pkg/utils"
)

// DefaultRetryBudget 每个种子点连续失败多少次后被逐出采样池
const DefaultRetryBudget = 30

// PlacementRequest 一次放置中某个类型的数量需求
type PlacementRequest struct {
	Kind       types.EnemyKind
	MinSpacing float64
	Count      int
}

// SpawnPoint 放置结果
type SpawnPoint struct {
	Kind     types.EnemyKind
	Position types.Vec2
	Distance float64 // 到锚点的距离
	Delay    float64 // 错峰延迟（秒）
}

// PlacementSampler 刷怪点采样器（带重试上限的飞镖投掷）
//
// 一次 Place 调用同时解析所有类型的需求：
//  1. 按最小间距从大到小处理各需求（间距相同保持输入顺序）
//  2. 每个需求的采样池 = 锚点 + 本次已放置的所有点
//  3. 从池中随机取种子，在 [s, 2s) 的环内随机取候选点，
//     检查竞技场边界、碰撞层重叠、与所有已放置点的间距
//  4. 种子连续失败 RetryBudget 次则逐出采样池；池空即停止（数量不足不是错误）
//  5. 去掉锚点，按到锚点距离升序排列，依次分配递增的错峰延迟
type PlacementSampler struct {
	halfExtent float64
	clearance  float64
	collision  OverlapQuerier
	mask       components.CategoryMask
	rng        *utils.PRNGService

	// RetryBudget 每个种子的尝试次数
	RetryBudget int

	verbose bool
}

// NewPlacementSampler 创建采样器
//
// 参数：
//   - halfExtent: 竞技场半边长（边界包含在内）
//   - clearance: 候选点周围必须没有活动实体的半径
//   - collision: 碰撞层查询，可为 nil（不做重叠检查）
//   - rng: 随机数服务
func NewPlacementSampler(halfExtent, clearance float64, collision OverlapQuerier, rng *utils.PRNGService) *PlacementSampler {
	if rng == nil {
		rng = utils.NewPRNGService(0)
	}
	return &PlacementSampler{
		halfExtent:  halfExtent,
		clearance:   clearance,
		collision:   collision,
		mask:        components.CategoryAll,
		rng:         rng,
		RetryBudget: DefaultRetryBudget,
	}
}

// SetMask 设置重叠查询关心的碰撞类别
func (s *PlacementSampler) SetMask(mask components.CategoryMask) {
	s.mask = mask
}

// SetVerbose 设置是否输出详细日志
func (s *PlacementSampler) SetVerbose(verbose bool) {
	s.verbose = verbose
}

// placed 已提交的点，anchor 标记锚点
type placed struct {
	kind     types.EnemyKind
	position types.Vec2
	anchor   bool
}

// Place 为所有需求解析具体位置
//
// 返回的点已去掉锚点，按到锚点距离升序排列，第 i 个点的延迟为 i*staggerStep。
// 数量不足（竞技场太挤）时返回已放置的部分，不报错。
// MinSpacing <= 0、Count < 0 或 staggerStep < 0 返回 ErrInvalidArgument。
func (s *PlacementSampler) Place(anchor types.Vec2, requests []PlacementRequest, staggerStep float64) ([]SpawnPoint, error) {
	if staggerStep < 0 {
		return nil, fmt.Errorf("negative stagger step %g: %w", staggerStep, game.ErrInvalidArgument)
	}
	for _, req := range requests {
		if req.MinSpacing <= 0 {
			return nil, fmt.Errorf("kind %s: min spacing %g must be positive: %w", req.Kind, req.MinSpacing, game.ErrInvalidArgument)
		}
		if req.Count < 0 {
			return nil, fmt.Errorf("kind %s: negative count %d: %w", req.Kind, req.Count, game.ErrInvalidArgument)
		}
	}

	ordered := make([]PlacementRequest, len(requests))
	copy(ordered, requests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MinSpacing > ordered[j].MinSpacing
	})

	committed := []placed{{kind: types.NoneKind, position: anchor, anchor: true}}
	for _, req := range ordered {
		if req.Count == 0 {
			continue
		}
		before := len(committed)
		committed = s.fill(committed, req)
		if got := len(committed) - before; got < req.Count && s.verbose {
			log.Printf("[PlacementSampler] Underfill for %s: placed %d/%d (spacing %.2f)",
				req.Kind, got, req.Count, req.MinSpacing)
		}
	}

	points := make([]SpawnPoint, 0, len(committed)-1)
	for _, p := range committed {
		if p.anchor {
			continue
		}
		points = append(points, SpawnPoint{
			Kind:     p.kind,
			Position: p.position,
			Distance: p.position.Dist(anchor),
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Distance < points[j].Distance
	})
	for i := range points {
		points[i].Delay = float64(i) * staggerStep
	}

	return points, nil
}

// fill 为单个需求投掷候选点，返回追加后的已提交集合
func (s *PlacementSampler) fill(committed []placed, req PlacementRequest) []placed {
	pool := make([]types.Vec2, len(committed))
	for i, p := range committed {
		pool[i] = p.position
	}

	spacingSq := req.MinSpacing * req.MinSpacing
	remaining := req.Count

	for remaining > 0 && len(pool) > 0 {
		seedIndex := s.rng.Intn(len(pool))
		seed := pool[seedIndex]

		found := false
		for attempt := 0; attempt < s.RetryBudget; attempt++ {
			angle := s.rng.Range(0, 2*math.Pi)
			radius := s.rng.Range(req.MinSpacing, 2*req.MinSpacing)
			candidate := seed.Add(types.FromPolar(angle, radius))

			if !s.inBounds(candidate) {
				continue
			}
			if s.collision != nil && s.collision.Overlaps(candidate, s.clearance, s.mask) {
				continue
			}
			if tooClose(committed, candidate, spacingSq) {
				continue
			}

			committed = append(committed, placed{kind: req.Kind, position: candidate})
			pool = append(pool, candidate)
			remaining--
			found = true
			break
		}

		if !found {
			// 种子周围已无空间：逐出采样池（仍保留在已提交集合中）
			pool[seedIndex] = pool[len(pool)-1]
			pool = pool[:len(pool)-1]
		}
	}

	return committed
}

func (s *PlacementSampler) inBounds(p types.Vec2) bool {
	return math.Abs(p.X) <= s.halfExtent && math.Abs(p.Y) <= s.halfExtent
}

func tooClose(committed []placed, candidate types.Vec2, spacingSq float64) bool {
	for _, p := range committed {
		if p.position.DistSq(candidate) < spacingSq {
			return true
		}
	}
	return false
}
