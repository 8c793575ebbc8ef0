// Package framesink writes one episode's frames as a headerless stream of
// raw RGB images.
package framesink

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

var (
	ErrOpen      = errors.New("framesink: could not open output file")
	ErrFrameSize = errors.New("framesink: frame size mismatch")
)

// FileName is "{label}_{pair}.out" where label is 1 for goal episodes.
func FileName(goal bool, pair int) string {
	label := 0
	if goal {
		label = 1
	}
	return fmt.Sprintf("%d_%d.out", label, pair)
}

type Sink struct {
	path      string
	frameSize int
	file      *os.File
	w         *bufio.Writer
	frames    int
	bytes     int64
}

// Create truncates path and expects frames of width*height*3 bytes.
func Create(path string, width, height int) (*Sink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid frame %dx%d", ErrOpen, path, width, height)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return &Sink{
		path:      path,
		frameSize: 3 * width * height,
		file:      f,
		w:         bufio.NewWriterSize(f, 3*width*height),
	}, nil
}

func (s *Sink) WriteFrame(rgb []byte) error {
	if s.file == nil {
		return fmt.Errorf("framesink: %s is closed", s.path)
	}
	if len(rgb) != s.frameSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrFrameSize, len(rgb), s.frameSize)
	}
	n, err := s.w.Write(rgb)
	s.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write frame %d to %s: %w", s.frames, s.path, err)
	}
	s.frames++
	return nil
}

func (s *Sink) Path() string   { return s.path }
func (s *Sink) Frames() int    { return s.frames }
func (s *Sink) Bytes() int64   { return s.bytes }
func (s *Sink) FrameSize() int { return s.frameSize }

// Close flushes and closes the file. Later calls return nil.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file = nil
	s.w = nil
	if flushErr != nil {
		return fmt.Errorf("flush %s: %w", s.path, flushErr)
	}
	return closeErr
}
