package main

import (
	"context"
	"errors"
	"image"

	"github.com/inamate/animlib/internal/export"
)

// multiSink writes every frame to each of its sinks in order.
type multiSink struct {
	sinks []export.FrameSink
}

func (m *multiSink) add(s export.FrameSink) {
	m.sinks = append(m.sinks, s)
}

func (m *multiSink) WriteFrame(ctx context.Context, frame *image.RGBA) error {
	for _, s := range m.sinks {
		if err := s.WriteFrame(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
