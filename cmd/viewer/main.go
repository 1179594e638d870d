package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"visionlab/internal/config"
	"visionlab/internal/desktop"
	"visionlab/internal/gameclient"
	"visionlab/internal/viewer"
)

func main() {
	fs := flag.NewFlagSet("viewer", flag.ExitOnError)
	scene := config.RegisterSceneFlags(fs)
	server := fs.String("server", config.GetEnv(config.EnvBaseURL, ""), "visionlab server to play the game against (empty: offline)")
	constantsPath := fs.String("constants", config.GetEnv(config.EnvConstants, ""), "optical constants YAML file")
	width := fs.Int("w", 900, "canvas width in pixels")
	height := fs.Int("h", 300, "height of each canvas in pixels")
	_ = fs.Parse(os.Args[1:])

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "viewer"})

	constants, err := config.LoadConstants(*constantsPath)
	if err != nil {
		logger.Fatal("load optical constants", "err", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		async *gameclient.Async
		game  viewer.Game
	)
	if *server != "" {
		client, err := gameclient.New(*server, nil)
		if err != nil {
			logger.Fatal("game client", "err", err)
		}
		async = gameclient.NewAsync(ctx, client)
		game = async
		logger.Info("game server", "url", *server)
	}

	model, err := viewer.New(constants, scene.Config(), *width, *height, game)
	if err != nil {
		logger.Fatal("viewer", "err", err)
	}
	if async != nil {
		async.NewRound()
	}

	win := desktop.NewWindow(model, async, *width, *height, logger)
	if err := desktop.Run(win, "visionlab viewer"); err != nil {
		logger.Fatal("window", "err", err)
	}
}
