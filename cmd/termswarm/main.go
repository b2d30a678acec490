package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garsondee/Particle-Header/internal/audio"
	"github.com/Garsondee/Particle-Header/internal/config"
	"github.com/Garsondee/Particle-Header/internal/swarm"
	"github.com/Garsondee/Particle-Header/internal/term"
	"github.com/gdamore/tcell/v2"
)

func main() {
	var configPath string
	var seed int64
	var fps int
	var sound bool

	flag.StringVar(&configPath, "config", "", "tuning YAML file (defaults are used when empty)")
	flag.Int64Var(&seed, "seed", 1, "RNG seed")
	flag.IntVar(&fps, "fps", 30, "frames per second")
	flag.BoolVar(&sound, "sound", false, "play the celebration chime")
	flag.Parse()

	if fps <= 0 {
		log.Fatal("error: -fps must be > 0")
	}
	tuning, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}

	cfg := term.AppConfig{
		Params: tuning.Params(),
		Seed:   seed,
		Frame:  time.Second / time.Duration(fps),
	}
	var chime *audio.Chime
	if sound {
		chime = audio.NewChime(false)
		cfg.Effects = chime
	}

	app, err := term.NewApp(screen, cfg)
	if err != nil {
		screen.Fini()
		if errors.Is(err, swarm.ErrNoSurface) {
			return
		}
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx)
	stop()
	screen.Fini()
	if chime != nil {
		chime.Close()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
