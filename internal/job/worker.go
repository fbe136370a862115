package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/engine"
	"github.com/inamate/animlib/internal/export"
	"github.com/inamate/animlib/internal/geometry"
	"github.com/inamate/animlib/internal/render"
)

// progressInterval bounds how often frame counts are written to the store.
const progressInterval = 500 * time.Millisecond

// DefaultRasterizer renders a scene with gg at the scene's size and scale.
func DefaultRasterizer(sc *document.Scene) (engine.Rasterizer, error) {
	bg, err := geometry.ParseColor(sc.Background)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	return render.New(sc.Width, sc.Height, sc.Scale, bg)
}

// FileSink writes video formats through ffmpeg and PNG as a frame directory.
func FileSink(ffmpegPath string) SinkFunc {
	return func(ctx context.Context, sc *document.Scene, format export.Format, path string) (Sink, error) {
		if format == export.FormatPNG {
			return export.NewPNGSink(path)
		}
		return export.NewFFmpegSink(ctx, ffmpegPath, sc.Width, sc.Height, sc.FPS, format, path)
	}
}

// Start launches n workers and requeues jobs left queued by a previous
// run. Jobs that were running when the process stopped are marked failed.
// Workers exit when ctx is done; Wait blocks until they have.
func (s *Service) Start(ctx context.Context, n int) error {
	if err := s.recoverJobs(ctx); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	slog.Info("render workers started", "workers", n)
	return nil
}

func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) recoverJobs(ctx context.Context) error {
	stale, err := s.store.ListByStatus(ctx, StatusRunning)
	if err != nil {
		return fmt.Errorf("list running jobs: %w", err)
	}
	for _, j := range stale {
		if err := s.store.SetStatus(ctx, j.ID, StatusFailed, "interrupted by restart"); err != nil {
			return fmt.Errorf("fail stale job: %w", err)
		}
	}

	queued, err := s.store.ListByStatus(ctx, StatusQueued)
	if err != nil {
		return fmt.Errorf("list queued jobs: %w", err)
	}
	for _, j := range queued {
		if err := s.enqueue(j.ID); err != nil {
			slog.Warn("queue full, leaving job for next start", "job", j.ID)
			break
		}
	}
	if len(stale) > 0 || len(queued) > 0 {
		slog.Info("recovered render jobs", "failed", len(stale), "requeued", len(queued))
	}
	return nil
}

func (s *Service) worker(ctx context.Context, n int) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			s.process(ctx, id, slog.With("worker", n, "job", id))
		}
	}
}

// process renders one job. Its final status is stored with a background
// context so a shutdown still records the outcome.
func (s *Service) process(ctx context.Context, id string, logger *slog.Logger) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		logger.Error("load job", "error", err)
		return
	}
	if j.Status != StatusQueued {
		logger.Debug("skipping job", "status", j.Status)
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.running[id] = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.running, id)
		s.mu.Unlock()
	}()

	claimed, err := s.store.Transition(context.WithoutCancel(ctx), id, StatusQueued, StatusRunning)
	if err != nil {
		logger.Error("mark job running", "error", err)
		return
	}
	if !claimed {
		logger.Debug("job left the queue before it started")
		return
	}
	j.Status = StatusRunning
	s.pub.Status(id, string(StatusRunning), "")

	start := time.Now()
	err = s.render(jobCtx, j, logger)
	final := context.WithoutCancel(ctx)
	switch {
	case err == nil:
		logger.Info("render job finished", "frames", j.FramesDone, "elapsed", time.Since(start))
		s.storeProgress(final, j, logger)
		err = s.setStatus(final, j, StatusDone, "")
	case errors.Is(err, context.Canceled):
		logger.Info("render job canceled", "frames", j.FramesDone)
		s.removeOutput(j, logger)
		err = s.setStatus(final, j, StatusCanceled, "")
	default:
		logger.Error("render job failed", "error", err)
		s.removeOutput(j, logger)
		err = s.setStatus(final, j, StatusFailed, err.Error())
	}
	if err != nil {
		logger.Error("store job status", "error", err)
	}
	s.pub.Finished(id)
}

func (s *Service) render(ctx context.Context, j *Job, logger *slog.Logger) error {
	var sc document.Scene
	if err := json.Unmarshal(j.Scene, &sc); err != nil {
		return fmt.Errorf("decode stored scene: %w", err)
	}

	raster, err := s.newRaster(&sc)
	if err != nil {
		return fmt.Errorf("create rasterizer: %w", err)
	}
	sink, err := s.newSink(ctx, &sc, j.Format, s.outputPath(j))
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	var lastStored time.Time
	stage, err := engine.NewStage(engine.Options{
		FPS:        sc.FPS,
		Rasterizer: raster,
		Sink:       sink,
		Logger:     logger,
		Progress: func(done, total int) {
			j.FramesDone, j.FramesTotal = done, max(total, done)
			s.pub.Progress(j.ID, done, j.FramesTotal)
			if time.Since(lastStored) >= progressInterval {
				lastStored = time.Now()
				s.storeProgress(ctx, j, logger)
			}
		},
	})
	if err != nil {
		sink.Close()
		return err
	}
	stage.SetTotal(j.FramesTotal)

	runErr := stage.Run(ctx, &sc, s.assets)
	closeErr := sink.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}
	return nil
}

func (s *Service) setStatus(ctx context.Context, j *Job, status Status, errMsg string) error {
	j.Status, j.Error = status, errMsg
	if err := s.store.SetStatus(ctx, j.ID, status, errMsg); err != nil {
		return err
	}
	s.pub.Status(j.ID, string(status), errMsg)
	return nil
}

func (s *Service) storeProgress(ctx context.Context, j *Job, logger *slog.Logger) {
	if err := s.store.SetProgress(ctx, j.ID, j.FramesDone, j.FramesTotal); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("store job progress", "error", err)
	}
}

func (s *Service) removeOutput(j *Job, logger *slog.Logger) {
	if err := os.RemoveAll(s.outputPath(j)); err != nil {
		logger.Warn("remove partial output", "error", err)
	}
}
