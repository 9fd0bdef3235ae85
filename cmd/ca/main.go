//go:build ebiten

package main

import (
	"errors"
	"flag"
	"strings"

	"go.uber.org/zap"

	"dustfall/internal/app"
	"dustfall/internal/core"
	_ "dustfall/internal/sims/dust"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		logger.Fatal("unknown sim", zap.String("sim", cfg.Sim), zap.String("available", strings.Join(core.Names(), ",")))
	}

	sim := factory(cfg.SimArgs())
	sim.Reset(cfg.Seed)

	game := app.New(sim, cfg.Scale, cfg.Seed, logger)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("dustfall - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("game exited", zap.Error(err))
	}
}
