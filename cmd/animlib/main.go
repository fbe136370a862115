// Command animlib renders scene scripts to video or PNG frames.
//
//	animlib render -scene intro.yaml -out intro.mp4
//	animlib render -scene intro.yaml -frames ./frames -thumb intro.png
//	animlib sample > intro.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/inamate/animlib/internal/config"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/engine"
	"github.com/inamate/animlib/internal/export"
	"github.com/inamate/animlib/internal/geometry"
	"github.com/inamate/animlib/internal/render"
)

const usage = `usage: animlib <command> [flags]

commands:
  render   render a scene script
  sample   print the sample scene script
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "animlib:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return flag.ErrHelp
	}
	switch args[0] {
	case "render":
		return runRender(ctx, args[1:], stderr)
	case "sample":
		return runSample(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", args[0])
}

type renderFlags struct {
	scene  string
	out    string
	frames string
	thumb  string
	assets string
	ffmpeg string
	fps    int
	level  string
}

func runRender(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var f renderFlags
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.scene, "scene", "", "scene script (.yaml, .yml or .json)")
	fs.StringVar(&f.out, "out", "", "output video; the extension picks mp4, mov, webm or gif")
	fs.StringVar(&f.frames, "frames", "", "directory to write numbered PNG frames to")
	fs.StringVar(&f.thumb, "thumb", "", "write a thumbnail (at most 320x180) of the last frame to this PNG file")
	fs.StringVar(&f.assets, "assets", "", "directory holding svg and font assets (default: the scene's directory)")
	fs.StringVar(&f.ffmpeg, "ffmpeg", cfg.FfmpegPath, "ffmpeg binary")
	fs.IntVar(&f.fps, "fps", 0, "override the scene frame rate")
	fs.StringVar(&f.level, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.scene == "" {
		return errors.New("render: -scene is required")
	}
	if f.out == "" && f.frames == "" && f.thumb == "" {
		return errors.New("render: at least one of -out, -frames or -thumb is required")
	}

	level, err := config.ParseLevel(f.level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	data, err := os.ReadFile(f.scene)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	sc, err := document.DecodeWithFPS(data, document.FormatFromPath(f.scene), cfg.DefaultFPS)
	if err != nil {
		return err
	}
	if f.fps > 0 {
		sc.FPS = f.fps
	}
	if f.assets == "" {
		f.assets = filepath.Dir(f.scene)
	}

	bg, err := geometry.ParseColor(sc.Background)
	if err != nil {
		return err
	}
	renderer, err := render.New(sc.Width, sc.Height, sc.Scale, bg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks, err := openSinks(ctx, f, sc)
	if err != nil {
		return err
	}

	// Without a sink the stage counts frames without drawing them.
	var sink engine.FrameSink
	if len(sinks.sinks) > 0 {
		sink = sinks
	}

	start := time.Now()
	stage, err := engine.NewStage(engine.Options{
		FPS:        sc.FPS,
		Rasterizer: renderer,
		Sink:       sink,
		Logger:     logger,
		Progress:   progressLogger(logger, sc.FPS),
	})
	if err != nil {
		sinks.Close()
		return err
	}

	runErr := stage.Run(ctx, sc, os.DirFS(f.assets))
	closeErr := sinks.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}

	if f.thumb != "" {
		if err := writeThumbnail(stage, f.thumb); err != nil {
			return err
		}
	}

	logger.Info("done", "frames", stage.Frames(), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func openSinks(ctx context.Context, f renderFlags, sc *document.Scene) (*multiSink, error) {
	var m multiSink
	if f.out != "" {
		format, err := export.ParseFormat(filepath.Ext(f.out))
		if err != nil {
			return nil, err
		}
		if !format.Video() {
			return nil, fmt.Errorf("-out %s: use -frames for PNG output", f.out)
		}
		s, err := export.NewFFmpegSink(ctx, f.ffmpeg, sc.Width, sc.Height, sc.FPS, format, f.out)
		if err != nil {
			return nil, err
		}
		m.add(s)
	}
	if f.frames != "" {
		s, err := export.NewPNGSink(f.frames)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.add(s)
	}
	return &m, nil
}

func writeThumbnail(stage *engine.Stage, path string) error {
	img, err := stage.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return export.SavePNG(path, render.Thumbnail(img, 320, 180))
}

// progressLogger logs about once per second of output.
func progressLogger(logger *slog.Logger, fps int) engine.ProgressFunc {
	return func(done, total int) {
		if done%fps != 0 {
			return
		}
		if total > 0 {
			logger.Info("rendering", "frame", done, "total", total, "percent", 100*done/total)
			return
		}
		logger.Info("rendering", "frame", done)
	}
}

func runSample(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("sample", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print JSON instead of YAML")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format := document.FormatYAML
	if *asJSON {
		format = document.FormatJSON
	}
	data, err := document.Encode(document.NewSampleScene(), format)
	if err != nil {
		return err
	}
	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	_, err = stdout.Write(data)
	return err
}
