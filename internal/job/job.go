package job

import (
	"encoding/json"
	"time"

	"github.com/inamate/animlib/internal/export"
)

type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCanceled
}

// Job is one render of a scene script into an output file.
type Job struct {
	ID          string          `json:"id"`
	OwnerID     string          `json:"ownerId"`
	Status      Status          `json:"status"`
	Format      export.Format   `json:"format"`
	Scene       json.RawMessage `json:"scene"`
	FramesDone  int             `json:"framesDone"`
	FramesTotal int             `json:"framesTotal"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Summary is the list view of a job, without its scene.
type Summary struct {
	ID          string        `json:"id"`
	Status      Status        `json:"status"`
	Format      export.Format `json:"format"`
	FramesDone  int           `json:"framesDone"`
	FramesTotal int           `json:"framesTotal"`
	Error       string        `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func (j *Job) Summary() Summary {
	return Summary{
		ID:          j.ID,
		Status:      j.Status,
		Format:      j.Format,
		FramesDone:  j.FramesDone,
		FramesTotal: j.FramesTotal,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
	}
}
