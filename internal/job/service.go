package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/engine"
	"github.com/inamate/animlib/internal/export"
	"github.com/inamate/animlib/internal/typeid"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrForbidden = errors.New("forbidden")
	ErrFinished  = errors.New("job already finished")
	ErrNotReady  = errors.New("job output not ready")
	ErrQueueFull = errors.New("render queue is full")
	ErrFormat    = errors.New("unsupported output format")
)

// Publisher receives live job updates. progress.Hub implements it.
// Finished follows the last status of a job.
type Publisher interface {
	Progress(jobID string, frame, total int)
	Status(jobID, status, errMsg string)
	Finished(jobID string)
}

// Sink is a frame sink the worker closes when the render ends.
type Sink interface {
	engine.FrameSink
	Close() error
}

// RasterizerFunc creates the rasterizer for a scene.
type RasterizerFunc func(sc *document.Scene) (engine.Rasterizer, error)

// SinkFunc opens the sink writing a job's output to path.
type SinkFunc func(ctx context.Context, sc *document.Scene, format export.Format, path string) (Sink, error)

type Options struct {
	Store      Store
	Publisher  Publisher
	OutputDir  string
	Assets     fs.FS
	FFmpegPath string
	DefaultFPS int
	QueueSize  int

	// Defaults render with gg and encode with ffmpeg or PNG files.
	NewRasterizer RasterizerFunc
	NewSink       SinkFunc
}

type Service struct {
	store      Store
	pub        Publisher
	outputDir  string
	assets     fs.FS
	defaultFPS int
	newRaster  RasterizerFunc
	newSink    SinkFunc

	queue chan string

	mu      sync.Mutex
	running map[string]context.CancelFunc
	wg      sync.WaitGroup
}

func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("job service needs a store")
	}
	if opts.OutputDir == "" {
		return nil, errors.New("job service needs an output directory")
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.NewRasterizer == nil {
		opts.NewRasterizer = DefaultRasterizer
	}
	if opts.NewSink == nil {
		opts.NewSink = FileSink(opts.FFmpegPath)
	}
	return &Service{
		store:      opts.Store,
		pub:        opts.Publisher,
		outputDir:  opts.OutputDir,
		assets:     opts.Assets,
		defaultFPS: opts.DefaultFPS,
		newRaster:  opts.NewRasterizer,
		newSink:    opts.NewSink,
		queue:      make(chan string, opts.QueueSize),
		running:    make(map[string]context.CancelFunc),
	}, nil
}

// Create validates a scene script and queues a render of it.
func (s *Service) Create(ctx context.Context, ownerID string, script []byte, scriptFormat document.Format, format export.Format) (*Job, error) {
	if _, err := export.ParseFormat(string(format)); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	sc, err := document.DecodeWithFPS(script, scriptFormat, s.defaultFPS)
	if err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(sc)
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}

	j := &Job{
		ID:          typeid.NewJobID(),
		OwnerID:     ownerID,
		Status:      StatusQueued,
		Format:      format,
		Scene:       normalized,
		FramesTotal: engine.EstimateFrames(sc, sc.FPS),
	}
	if err := s.store.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.enqueue(j.ID); err != nil {
		if serr := s.store.SetStatus(ctx, j.ID, StatusFailed, err.Error()); serr != nil {
			slog.Error("mark unqueued job failed", "job", j.ID, "error", serr)
		}
		return nil, err
	}

	slog.Info("render job queued", "job", j.ID, "owner", ownerID, "format", format, "frames", j.FramesTotal)
	return j, nil
}

func (s *Service) enqueue(id string) error {
	select {
	case s.queue <- id:
		return nil
	default:
		return ErrQueueFull
	}
}

// Get returns a job owned by userID.
func (s *Service) Get(ctx context.Context, id, userID string) (*Job, error) {
	j, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.OwnerID != userID {
		return nil, ErrForbidden
	}
	return j, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Summary, error) {
	jobs, err := s.store.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	out := make([]Summary, len(jobs))
	for i := range jobs {
		out[i] = jobs[i].Summary()
	}
	return out, nil
}

// Cancel stops a queued or running job. A queued job is marked canceled
// at once; a running one when its worker observes the cancellation.
func (s *Service) Cancel(ctx context.Context, id, userID string) error {
	j, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return ErrFinished
	}

	ok, err := s.store.Transition(ctx, id, StatusQueued, StatusCanceled)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if ok {
		s.pub.Status(id, string(StatusCanceled), "")
		s.pub.Finished(id)
		slog.Info("render job canceled", "job", id)
		return nil
	}

	// A worker claims a job only after registering its cancel func, so a
	// job that left the queue is either registered here or finished.
	s.mu.Lock()
	cancel, running := s.running[id]
	s.mu.Unlock()
	if running {
		cancel()
		return nil
	}
	return ErrFinished
}

// Output returns the path of a finished job's output. PNG jobs produce a
// directory of frames.
func (s *Service) Output(ctx context.Context, id, userID string) (string, *Job, error) {
	j, err := s.Get(ctx, id, userID)
	if err != nil {
		return "", nil, err
	}
	if j.Status != StatusDone {
		return "", j, ErrNotReady
	}
	return s.outputPath(j), j, nil
}

// Authorize checks that userID may follow the progress of job id.
func (s *Service) Authorize(ctx context.Context, id, userID string) error {
	_, err := s.Get(ctx, id, userID)
	return err
}

func (s *Service) outputPath(j *Job) string {
	if j.Format == export.FormatPNG {
		return filepath.Join(s.outputDir, j.ID)
	}
	return filepath.Join(s.outputDir, j.ID+"."+string(j.Format))
}

type nopPublisher struct{}

func (nopPublisher) Progress(string, int, int)     {}
func (nopPublisher) Status(string, string, string) {}
func (nopPublisher) Finished(string)               {}
