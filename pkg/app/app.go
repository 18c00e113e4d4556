// Package app 提供竞技场刷怪演示的应用包装器
//
// Match 是无界面的比赛控制器（测试与命令行工具直接使用），
// App 在其之上实现 ebiten.Game：绘制竞技场、处理按键。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/arenawaves/pkg/components"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/decker502/arenawaves/pkg/ecs"
	"github.com/decker502/arenawaves/pkg/game"
	"github.com/decker502/arenawaves/pkg/types"
	"github.com/decker502/arenawaves/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"
)

// 画面参数
const (
	ScreenWidth  = 800
	ScreenHeight = 800

	// arenaMargin 竞技场边框到窗口边缘的距离（像素）
	arenaMargin = 40

	// playerSpeed 玩家移动速度（世界单位/秒）
	playerSpeed = 8.0

	// tickDelta 固定帧时间
	tickDelta = 1.0 / 60.0

	// recordAppName gdata 存储名
	recordAppName = "arenawaves"
)

// kindPalette 按类型编码循环取色
var kindPalette = []color.RGBA{
	colornames.Tomato,
	colornames.Limegreen,
	colornames.Orchid,
	colornames.Orange,
	colornames.Turquoise,
	colornames.Khaki,
}

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Match 比赛配置
	Match *config.MatchConfig
	// Seed 放置随机种子，0 表示使用时间
	Seed int64
	// EnemyLifetime 敌人寿命（秒）
	EnemyLifetime float64
	// Mute 关闭提示音
	Mute bool
}

// App 竞技场演示，实现 ebiten.Game 接口
type App struct {
	match   *Match
	sound   *game.ToneSoundPlayer
	verbose bool
	paused  bool
}

// NewApp 创建并初始化应用
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	audioContext := audio.NewContext(game.ToneSampleRate)
	sound := game.NewToneSoundPlayer(audioContext)
	sound.SetEnabled(!cfg.Mute)

	storage, err := game.OpenRecordStorage(recordAppName)
	if err != nil {
		log.Printf("[App] WARNING: %v (records kept in memory only)", err)
	}
	records := game.NewRunRecordManager(storage)

	match, err := NewMatch(cfg.Match, MatchOptions{
		Seed:          cfg.Seed,
		Sound:         sound,
		Records:       records,
		EnemyLifetime: cfg.EnemyLifetime,
		Verbose:       cfg.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("比赛初始化失败: %w", err)
	}

	log.Printf("[App] Arena ready, seed %d", match.Seed())

	return &App{
		match:   match,
		sound:   sound,
		verbose: cfg.Verbose,
	}, nil
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if err := a.match.Close(); err != nil {
			log.Printf("[App] ERROR: %v", err)
		}
		return ebiten.Termination
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.paused = !a.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.sound.SetEnabled(!a.sound.Enabled())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.match.ResetPhase()
	}
	// R 切换死亡/重生，在原点重生
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if a.match.Respawning() {
			a.match.FinishRespawn(types.Vec2{})
		} else {
			a.match.Respawn()
		}
	}

	if a.paused {
		return nil
	}

	a.movePlayer()
	a.match.Update(tickDelta)
	return nil
}

// movePlayer 方向键 / WASD 移动玩家
func (a *App) movePlayer() {
	var dir types.Vec2
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		dir.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		dir.X++
	}
	// 屏幕 Y 轴向下，世界 Y 轴向上
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		dir.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		dir.Y--
	}
	if dir == (types.Vec2{}) {
		return
	}

	step := playerSpeed * tickDelta / dir.Len()
	pos := a.match.State().PlayerPosition
	a.match.MovePlayer(types.Vec2{X: pos.X + dir.X*step, Y: pos.Y + dir.Y*step})
}

// worldToScreen 世界坐标转屏幕坐标
func (a *App) worldToScreen(p types.Vec2) (float32, float32) {
	scale := a.pixelsPerUnit()
	return float32(ScreenWidth/2 + p.X*scale), float32(ScreenHeight/2 - p.Y*scale)
}

func (a *App) pixelsPerUnit() float64 {
	h := a.match.State().ArenaHalfExtent
	if h <= 0 {
		return 1
	}
	return float64(ScreenHeight-2*arenaMargin) / (2 * h)
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)

	em := a.match.EntityManager()
	scale := float32(a.pixelsPerUnit())

	// 竞技场边界
	side := float32(ScreenHeight - 2*arenaMargin)
	vector.StrokeRect(screen, float32(ScreenWidth-ScreenHeight)/2+arenaMargin, arenaMargin, side, side, 2, colornames.Lightsteelblue, true)

	// 待生成标记
	for _, id := range ecs.GetEntitiesWith1[*components.SpawnMarkerComponent](em) {
		marker, _ := ecs.GetComponent[*components.SpawnMarkerComponent](em, id)
		a.drawCollider(screen, id, scale, func(x, y, r float32) {
			vector.StrokeCircle(screen, x, y, r, 1.5, kindColor(marker.Kind), true)
		})
	}

	// 敌人
	for _, id := range ecs.GetEntitiesWith1[*components.EnemyComponent](em) {
		enemy, _ := ecs.GetComponent[*components.EnemyComponent](em, id)
		a.drawCollider(screen, id, scale, func(x, y, r float32) {
			vector.DrawFilledCircle(screen, x, y, r, kindColor(enemy.Kind), true)
		})
	}

	// 玩家
	for _, id := range ecs.GetEntitiesWith1[*components.PlayerComponent](em) {
		a.drawCollider(screen, id, scale, func(x, y, r float32) {
			vector.DrawFilledCircle(screen, x, y, r, colornames.Deepskyblue, true)
		})
	}

	// 波次完成闪屏
	if intensity := a.match.FlashIntensity(); intensity > 0 {
		alpha := uint8(utils.Lerp(0, 96, intensity))
		vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, color.RGBA{R: alpha, G: alpha, B: alpha, A: alpha}, false)
	}

	a.drawHUD(screen)
}

// drawCollider 以碰撞半径绘制实体
func (a *App) drawCollider(screen *ebiten.Image, id ecs.EntityID, scale float32, draw func(x, y, r float32)) {
	em := a.match.EntityManager()
	pos, ok := ecs.GetComponent[*components.PositionComponent](em, id)
	if !ok {
		return
	}
	radius := float32(0.3)
	if collision, ok := ecs.GetComponent[*components.CollisionComponent](em, id); ok {
		radius = float32(collision.Radius)
	}
	x, y := a.worldToScreen(pos.Vec2)
	draw(x, y, radius*scale)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	state := a.match.Phase().State()
	status := ""
	if a.match.Respawning() {
		status = "  [RESPAWNING]"
	}
	if a.paused {
		status += "  [PAUSED]"
	}

	hud := fmt.Sprintf("phase %s  wave %d/%s  next %.1fs%s\nlevel %d  score %d  enemies %d  phases cleared %d",
		state.Name, state.WaveNumber, maxWavesLabel(state.MaxWaves), state.Countdown, status,
		a.match.Level(), a.match.Score(), a.match.Instances().CountTotal(), a.match.PhasesCleared())
	ebitenutil.DebugPrintAt(screen, hud, 8, 4)

	y := ScreenHeight - 18*(a.match.Kinds().Len()+1)
	for _, kind := range a.match.Kinds().Kinds() {
		line := fmt.Sprintf("%-10s %3d", kind.Name, a.match.Instances().CountByKind(kind))
		vector.DrawFilledRect(screen, 8, float32(y+4), 8, 8, kindColor(kind), false)
		ebitenutil.DebugPrintAt(screen, line, 22, y)
		y += 18
	}
	ebitenutil.DebugPrintAt(screen, "arrows move  R respawn  P reset phase  M mute  SPACE pause  ESC quit", 8, ScreenHeight-18)
}

func maxWavesLabel(maxWaves int) string {
	if maxWaves == 0 {
		return "inf"
	}
	return fmt.Sprintf("%d", maxWaves)
}

// kindColor 类型对应的颜色
func kindColor(kind types.EnemyKind) color.RGBA {
	if kind.Code <= 0 {
		return colornames.Gray
	}
	return kindPalette[int(kind.Code-1)%len(kindPalette)]
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Match 底层比赛控制器
func (a *App) Match() *Match {
	return a.match
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
