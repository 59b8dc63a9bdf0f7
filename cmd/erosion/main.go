//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"hydro-erosion/internal/app"
	"hydro-erosion/internal/core"
	_ "hydro-erosion/internal/sims/erosion"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal(err)
	}
	sim, err := core.Build(cfg.Sim, opts)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(sim, cfg)
	w, h := game.Layout(0, 0)

	ebiten.SetWindowTitle("hydro-erosion - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(w, h)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
