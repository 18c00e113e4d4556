// verify_spacing 无界面刷怪放置校验工具
//
// 逐个阶段运行比赛配置，记录每次波次触发的刷怪点，检查：
//   - 同一次触发的刷怪点两两距离不小于各自的最小间距
//   - 刷怪点与锚点的距离不小于其最小间距
//   - 刷怪点都在竞技场内
//   - 实例注册表计数与场上敌人实体一致
//
// 用法：
//
//	go run ./cmd/verify_spacing --config data/match.yaml --seconds 120 --seed 7
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/entities"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/systems"
	"github.com/decker502/arenawaves/pkg/types"
	"github.com/decker502/arenawaves/pkg/utils"
)

const (
	tickDelta = 1.0 / 60.0
	epsilon   = 1e-9
)

var (
	configPath = flag.String("config", "data/match.yaml", "比赛配置文件路径")
	seconds    = flag.Float64("seconds", 60, "每个阶段的模拟时长（秒）")
	seed       = flag.Int64("seed", 1, "放置随机种子")
	lifetime   = flag.Float64("lifetime", 5, "敌人存活时间（秒）")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
)

// batchKey 一次触发：同一调度器在同一帧内的全部刷怪点
type batchKey struct {
	spawner string
	tick    int
}

// recordingRealizer 包装 EnemyFactory，记录每次触发的刷怪请求
type recordingRealizer struct {
	*entities.EnemyFactory
	tick    int
	anchor  types.Vec2
	batches map[batchKey][]systems.SpawnRequest
	order   []batchKey
}

func (r *recordingRealizer) MarkPending(req systems.SpawnRequest) ecs.EntityID {
	key := batchKey{spawner: req.Spawner, tick: r.tick}
	if _, ok := r.batches[key]; !ok {
		r.order = append(r.order, key)
	}
	r.batches[key] = append(r.batches[key], req)
	return r.EnemyFactory.MarkPending(req)
}

// waveCounter 实现 systems.ScoreReporter
type waveCounter struct {
	waves     int
	completed bool
}

func (w *waveCounter) OnWaveCompleted(string, int) { w.waves++ }
func (w *waveCounter) OnPhaseCompleted(string)     { w.completed = true }

// phaseReport 单个阶段的校验结果
type phaseReport struct {
	name       string
	waves      int
	completed  bool
	batches    int
	points     int
	minMargin  float64
	onBoard    []string
	violations []string
}

func main() {
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.LoadMatchConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, phaseCfg := range cfg.Phases {
		report, err := verifyPhase(cfg, phaseCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: phase %q: %v\n", phaseCfg.Name, err)
			os.Exit(1)
		}
		printReport(report)
		if len(report.violations) > 0 {
			failed = true
		}
	}

	if failed {
		fmt.Println("\n✗ 校验失败")
		os.Exit(1)
	}
	fmt.Println("\n✓ 所有阶段校验通过")
}

// verifyPhase 单独运行一个阶段并校验其全部放置结果
func verifyPhase(cfg *config.MatchConfig, phaseCfg config.PhaseConfig) (*phaseReport, error) {
	em := ecs.NewEntityManager()
	ms := game.NewMatchState(cfg.ArenaHalfExtent)
	ms.FallbackAnchor = types.Vec2{X: cfg.FallbackAnchor.X, Y: cfg.FallbackAnchor.Y}

	kinds := game.NewKindRegistry()
	for _, name := range cfg.Kinds {
		if _, err := kinds.GetOrRegister(name); err != nil {
			return nil, err
		}
	}
	instances := game.NewInstanceRegistry()

	entities.NewPlayerEntity(em, ms.FallbackAnchor, 0)
	ms.SetPlayer(ms.FallbackAnchor)

	factory := entities.NewEnemyFactory(em, instances)
	factory.Lifetime = *lifetime
	realizer := &recordingRealizer{
		EnemyFactory: factory,
		anchor:       ms.Anchor(),
		batches:      make(map[batchKey][]systems.SpawnRequest),
	}

	sampler := systems.NewPlacementSampler(cfg.ArenaHalfExtent, cfg.ClearanceRadius,
		systems.NewCollisionQuery(em), utils.NewPRNGService(*seed))
	counter := &waveCounter{}

	phase, err := systems.NewPhaseControllerFromConfig(em, ms, phaseCfg, kinds, sampler, realizer, nil, counter)
	if err != nil {
		return nil, err
	}
	phase.SetVerbose(*verbose)
	lifetimeSystem := systems.NewLifetimeSystem(em)

	report := &phaseReport{name: phaseCfg.Name, minMargin: math.Inf(1)}

	ticks := int(*seconds / tickDelta)
	elapsed := 0.0
	for i := 0; i < ticks; i++ {
		realizer.tick = i
		elapsed += tickDelta
		factory.SetTime(elapsed)

		phase.Update(tickDelta)
		lifetimeSystem.Update(tickDelta)
		em.RemoveMarkedEntities()

		enemies := ecs.GetEntitiesWith1[*components.EnemyComponent](em)
		if instances.CountTotal() != len(enemies) {
			report.violations = append(report.violations,
				fmt.Sprintf("tick %d: registry %d != enemies %d", i, instances.CountTotal(), len(enemies)))
		}
	}

	spacing := spacingTable(phaseCfg, kinds)
	for _, key := range realizer.order {
		checkBatch(report, key, realizer.batches[key], realizer.anchor, spacing[key.spawner], ms)
	}

	for _, code := range instances.KindsOnBoard() {
		kind := kinds.LookupCode(code)
		report.onBoard = append(report.onBoard, fmt.Sprintf("%s×%d", kind.Name, instances.CountByKind(kind)))
	}

	report.waves = counter.waves
	report.completed = counter.completed
	report.batches = len(realizer.order)
	return report, nil
}

// spacingTable 调度器名 -> 类型 -> 最小间距（同一类型出现多次时取最小值）
func spacingTable(phaseCfg config.PhaseConfig, kinds *game.KindRegistry) map[string]map[types.KindCode]float64 {
	table := make(map[string]map[types.KindCode]float64)
	for _, spawner := range phaseCfg.Spawners {
		byKind := make(map[types.KindCode]float64)
		for _, wave := range spawner.Waves {
			code := kinds.LookupName(wave.Kind).Code
			if old, ok := byKind[code]; !ok || wave.MinSpacing < old {
				byKind[code] = wave.MinSpacing
			}
		}
		table[spawner.Name] = byKind
	}
	return table
}

// checkBatch 校验一次触发内的全部刷怪点
func checkBatch(report *phaseReport, key batchKey, batch []systems.SpawnRequest, anchor types.Vec2,
	spacing map[types.KindCode]float64, ms *game.MatchState) {
	report.points += len(batch)

	for i, a := range batch {
		sa := spacing[a.Kind.Code]
		if !ms.InBounds(a.Position) {
			report.violations = append(report.violations,
				fmt.Sprintf("%s@%d: %s at (%.2f, %.2f) outside arena", key.spawner, key.tick, a.Kind, a.Position.X, a.Position.Y))
		}

		d := a.Position.Dist(anchor)
		report.minMargin = math.Min(report.minMargin, d-sa)
		if d < sa-epsilon {
			report.violations = append(report.violations,
				fmt.Sprintf("%s@%d: %s %.3f from anchor, need %.3f", key.spawner, key.tick, a.Kind, d, sa))
		}

		for _, b := range batch[i+1:] {
			need := math.Min(sa, spacing[b.Kind.Code])
			d := a.Position.Dist(b.Position)
			report.minMargin = math.Min(report.minMargin, d-need)
			if d < need-epsilon {
				report.violations = append(report.violations,
					fmt.Sprintf("%s@%d: %s/%s %.3f apart, need %.3f", key.spawner, key.tick, a.Kind, b.Kind, d, need))
			}
		}
	}
}

func printReport(r *phaseReport) {
	status := "✓"
	if len(r.violations) > 0 {
		status = "✗"
	}
	fmt.Printf("%s 阶段 %-12s 波次 %4d  触发 %4d  刷怪点 %5d  完成 %-5v  最小余量 %.3f\n",
		status, r.name, r.waves, r.batches, r.points, r.completed, r.minMargin)
	if len(r.onBoard) > 0 {
		fmt.Printf("    场上: %s\n", strings.Join(r.onBoard, " "))
	}
	for i, v := range r.violations {
		if i == 10 {
			fmt.Printf("    ... 另有 %d 条\n", len(r.violations)-10)
			break
		}
		fmt.Printf("    %s\n", v)
	}
}
