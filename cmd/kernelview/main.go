// Command kernelview multiplies a vector by a scalar on the GPU, prints
// the result, then opens a window that streams a CPU-filled texture until
// it is closed or Escape is pressed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/gogpu/kernelview"
	"github.com/gogpu/kernelview/internal/app"
	"github.com/gogpu/kernelview/internal/config"

	_ "github.com/gogpu/kernelview/present/headless"
	_ "github.com/gogpu/kernelview/present/sdl"
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// SDL must run on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return report("config", err)
	}

	flags := flag.NewFlagSet("kernelview", flag.ContinueOnError)
	cfg, err := config.Resolve(flags, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return report("config", err)
	}

	level, _ := cfg.Level()
	kernelview.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = app.Run(ctx, os.Stdout, cfg)
	if err != nil && !errors.Is(err, context.Canceled) {
		stage := app.StageOf(err)
		if stage == "" {
			stage = "run"
		}
		var se *app.StageError
		if errors.As(err, &se) {
			err = se.Err
		}
		return report(stage, err)
	}
	return 0
}

func report(stage string, err error) int {
	bold := color.New(color.FgRed, color.Bold)
	bold.Fprint(os.Stderr, "kernelview: ")
	fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
	return 1
}
