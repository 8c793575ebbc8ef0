// Package dataset reads recorded .out files back: raw RGB frames of a known
// size, rows stored bottom-up.
package dataset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

var ErrTruncated = errors.New("dataset: file size is not a whole number of frames")

type File struct {
	Path   string
	Width  int
	Height int
	data   []byte
}

// Open loads a whole episode file. A trailing partial frame is reported
// with ErrTruncated but the complete frames stay readable.
func Open(path string, width, height int) (*File, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := &File{Path: path, Width: width, Height: height, data: data}
	if rem := len(data) % f.FrameSize(); rem != 0 {
		return f, fmt.Errorf("%w: %s has %d extra bytes", ErrTruncated, path, rem)
	}
	return f, nil
}

func (f *File) FrameSize() int { return 3 * f.Width * f.Height }
func (f *File) Frames() int    { return len(f.data) / f.FrameSize() }

// Label is parsed from the "{label}_{pair}.out" file name, or -1.
func (f *File) Label() int {
	name := filepath.Base(f.Path)
	switch {
	case strings.HasPrefix(name, "0_"):
		return 0
	case strings.HasPrefix(name, "1_"):
		return 1
	}
	return -1
}

func (f *File) Frame(i int) ([]byte, error) {
	if i < 0 || i >= f.Frames() {
		return nil, fmt.Errorf("frame %d out of range [0, %d)", i, f.Frames())
	}
	n := f.FrameSize()
	return f.data[i*n : (i+1)*n], nil
}

// MeanIntensity averages the channel mean of every pixel in frame i, in [0, 255].
func (f *File) MeanIntensity(i int) (float64, error) {
	frame, err := f.Frame(i)
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, b := range frame {
		sum += uint64(b)
	}
	return float64(sum) / float64(len(frame)), nil
}

// Image converts frame i to a top-down RGBA image.
func (f *File) Image(i int) (*image.RGBA, error) {
	frame, err := f.Frame(i)
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := frame[(f.Height-1-y)*3*f.Width:]
		for x := 0; x < f.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: row[3*x], G: row[3*x+1], B: row[3*x+2], A: 255})
		}
	}
	return img, nil
}

// ExportPNG writes frame_%04d.png for every frame into dir.
func (f *File) ExportPNG(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, f.Frames())
	for i := 0; i < f.Frames(); i++ {
		img, err := f.Image(i)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
