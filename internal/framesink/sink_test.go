package framesink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		goal bool
		pair int
		want string
	}{
		{false, 0, "0_0.out"},
		{true, 0, "1_0.out"},
		{false, 3, "0_3.out"},
		{true, 12, "1_12.out"},
	}

	for _, tt := range tests {
		if got := FileName(tt.goal, tt.pair); got != tt.want {
			t.Errorf("FileName(%v, %d) = %s, want %s", tt.goal, tt.pair, got, tt.want)
		}
	}
}

func TestWriteFrames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "0_0.out")
	if err := os.WriteFile(path, bytes.Repeat([]byte{9}, 100), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Create(path, 2, 2)
	if err != nil {
		t.Fatal(err)
	}

	a := bytes.Repeat([]byte{1}, 12)
	b := bytes.Repeat([]byte{2}, 12)
	if err := s.WriteFrame(a); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFrame(b); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteFrame(make([]byte, 11)); !errors.Is(err, ErrFrameSize) {
		t.Errorf("expected ErrFrameSize, got %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := s.WriteFrame(a); err == nil {
		t.Error("expected error writing to closed sink")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, append(a, b...)) {
		t.Errorf("unexpected file content %v", data)
	}
	if s.Frames() != 2 || s.Bytes() != 24 {
		t.Errorf("expected 2 frames / 24 bytes, got %d / %d", s.Frames(), s.Bytes())
	}
}

func TestEmptyEpisodeLeavesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "1_0.out")
	s, err := Create(path, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestCreateErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Create(filepath.Join(dir, "missing", "0_0.out"), 2, 2); !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
	if _, err := Create(filepath.Join(dir, "0_0.out"), 0, 2); !errors.Is(err, ErrOpen) {
		t.Errorf("expected ErrOpen for empty frame, got %v", err)
	}
}
