package render

import (
	"errors"
	"fmt"
)

var ErrViewport = errors.New("render: invalid viewport")

// FrameBuffer holds one captured frame. Row 0 is the bottom image row.
type FrameBuffer struct {
	Width  int
	Height int
	RGB    []byte
	Depth  []float32
}

func NewFrameBuffer(width, height int) (*FrameBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrViewport, width, height)
	}
	return &FrameBuffer{
		Width:  width,
		Height: height,
		RGB:    make([]byte, 3*width*height),
		Depth:  make([]float32, width*height),
	}, nil
}

// FrameSize is the number of RGB bytes in one frame.
func (fb *FrameBuffer) FrameSize() int {
	return 3 * fb.Width * fb.Height
}

func (fb *FrameBuffer) Release() {
	fb.RGB = nil
	fb.Depth = nil
}
