package main

import (
	"errors"
	"flag"
	"log"

	"github.com/decker502/arenawaves/pkg/app"
	"github.com/decker502/arenawaves/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

var (
	configPath = flag.String("config", "", "比赛配置文件路径（默认使用内置配置）")
	verbose    = flag.Bool("verbose", false, "显示详细调试信息")
	seed       = flag.Int64("seed", 0, "放置随机种子（0 表示使用当前时间）")
	lifetime   = flag.Float64("lifetime", 12, "敌人存活时间（秒），0 表示不自动消失")
	mute       = flag.Bool("mute", false, "关闭刷怪提示音")
)

// loadConfig 加载比赛配置：优先命令行指定的文件，否则使用内置配置
func loadConfig() (*config.MatchConfig, error) {
	if *configPath != "" {
		return config.LoadMatchConfig(*configPath)
	}
	return config.ParseMatchConfig(defaultMatchYAML)
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load match config: %v", err)
	}

	arena, err := app.NewApp(app.Config{
		Verbose:       *verbose,
		Match:         cfg,
		Seed:          *seed,
		EnemyLifetime: *lifetime,
		Mute:          *mute,
	})
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Arena Waves")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(arena); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
