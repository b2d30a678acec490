package main

import (
	"errors"
	"flag"
	"log"

	"github.com/Garsondee/Particle-Header/internal/audio"
	"github.com/Garsondee/Particle-Header/internal/config"
	"github.com/Garsondee/Particle-Header/internal/game"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/hajimehoshi/ebiten/v2"
)

const appName = "particle_header"

func main() {
	var configPath string
	var seed int64
	var replayDir string
	var mute bool

	flag.StringVar(&configPath, "config", "", "tuning YAML file (defaults are used when empty)")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 continues from the last session)")
	flag.StringVar(&replayDir, "replay-dir", "replays", "directory the R key saves replays into")
	flag.BoolVar(&mute, "mute", false, "start with sound off")
	flag.Parse()

	tuning, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := config.OpenStore(appName)
	if err != nil {
		log.Printf("[Settings] Warning: %v (preferences will not be saved)", err)
	}
	settings := config.NewSettingsManager(store)
	prefs := settings.Settings()
	if seed == 0 {
		seed = prefs.LastSeed + 1
	}
	prefs.LastSeed = seed
	if mute {
		prefs.Muted = true
	}

	g, err := game.New(game.Config{
		Params:    tuning.Params(),
		Seed:      seed,
		Width:     prefs.WindowWidth,
		Height:    prefs.WindowHeight,
		Settings:  settings,
		Chime:     audio.NewChime(prefs.Muted),
		ReplayDir: replayDir,
	})
	if errors.Is(err, swarm.ErrNoSurface) {
		// Nothing to draw on; leave quietly.
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowTitle("Particle Header")
	ebiten.SetWindowSize(prefs.WindowWidth, prefs.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		g.Close()
		log.Fatal(err)
	}
}
