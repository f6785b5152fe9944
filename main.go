package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gravityhelper/config"
	"github.com/milk9111/gravityhelper/ecs/system"
	"github.com/milk9111/gravityhelper/helper"
	"github.com/milk9111/gravityhelper/levels"
	"github.com/milk9111/gravityhelper/prefabs"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("gravityhelper")

// headlessFrames bounds a headless run when -frames is not given.
const headlessFrames = 600

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.toml")
	levelName := flag.String("level", "", "level name in levels/ (basename, .yaml optional)")
	headless := flag.Bool("headless", false, "run the simulation without a window")
	frames := flag.Int("frames", 0, "stop after this many frames (0 runs until the window closes)")
	debug := flag.Bool("debug", false, "enable debug overlays")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *levelName != "" {
		cfg.Game.Level = *levelName
	}
	if *debug {
		cfg.Game.Debug = true
	}

	var logPath *string
	if cfg.Log.File != "" {
		logPath = &cfg.Log.File
	}
	commonlog.Configure(cfg.Log.Verbosity, logPath)

	if err := run(cfg, *headless, *frames); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, headless bool, frames int) error {
	prefabs.SetDir(cfg.Prefabs.Dir)
	levels.Dir = cfg.Prefabs.LevelsDir

	opts := helper.Options{Level: cfg.Game.Level, Debug: cfg.Game.Debug}
	if headless {
		opts.Input = system.NewScriptedInput()
	}
	host, err := helper.NewHost(opts, cfg.Game.HotReload && !headless)
	if err != nil {
		return err
	}
	defer host.Close()

	if headless {
		if frames <= 0 {
			frames = headlessFrames
		}
		return runHeadless(host, frames)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	err = ebiten.RunGame(NewGame(host, frames))
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func runHeadless(host *helper.Host, frames int) error {
	for range frames {
		if err := host.Update(); err != nil {
			return err
		}
	}
	m := host.Module()
	log.Infof("headless: ran %d frames of %s, gravity %s", frames, m.Level.Name, m.Controller.Mode())
	return nil
}
