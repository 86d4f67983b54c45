package recorder

import (
	"context"
	"os"
	"sync"
)

// FakeDevice is an in-process Device for tests. Finish writes Data to the
// recording path unless FinishErr is set.
type FakeDevice struct {
	Data      []byte
	StartErr  error
	FinishErr error
	// Gate, when non-nil, blocks Finish until it is closed.
	Gate chan struct{}

	mu       sync.Mutex
	path     string
	starts   int
	finishes int
}

// NewFakeDevice returns a FakeDevice that records data.
func NewFakeDevice(data []byte) *FakeDevice {
	return &FakeDevice{Data: data}
}

// Ext implements Device.
func (f *FakeDevice) Ext() string { return ".m4a" }

// Name implements Device.
func (f *FakeDevice) Name() string { return "fake" }

// Start implements Device.
func (f *FakeDevice) Start(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	if f.StartErr != nil {
		return f.StartErr
	}
	f.path = path
	return nil
}

// Finish implements Device.
func (f *FakeDevice) Finish() error {
	if f.Gate != nil {
		<-f.Gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finishes++
	path := f.path
	f.path = ""
	if f.FinishErr != nil {
		return f.FinishErr
	}
	return os.WriteFile(path, f.Data, 0o600)
}

// Starts returns how many times Start was called.
func (f *FakeDevice) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

// Finishes returns how many times Finish completed.
func (f *FakeDevice) Finishes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finishes
}

var _ Device = (*FakeDevice)(nil)
