package engine

import (
	"fmt"
	"os"
)

// License is the handle returned by a successful activation.
type License struct {
	KeyPath string
	active  bool
}

// Activate checks that the key file exists and is readable.
func Activate(keyPath string) (*License, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("%w: no key file configured", ErrNotActivated)
	}

	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotActivated, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotActivated, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotActivated, keyPath)
	}

	return &License{KeyPath: keyPath, active: true}, nil
}

func (l *License) Active() bool {
	return l != nil && l.active
}

// Deactivate is safe to call more than once and on a nil license.
func (l *License) Deactivate() {
	if l != nil {
		l.active = false
	}
}
