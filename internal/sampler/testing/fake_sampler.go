// Package testing provides test doubles for the sampler package.
package testing

import (
	"context"
	"sync"
)

// FakeHost returns scripted readings. Each call consumes the next value in
// its queue; once a queue is drained the last value repeats.
type FakeHost struct {
	mu sync.Mutex

	CPU      []float64
	Memory   []float64
	Received []uint64

	// Errors returned instead of a reading, keyed by "cpu", "memory" or
	// "network". An error is returned once and then cleared.
	Errors map[string]error

	// Call tracking
	CPUCalls      int
	MemoryCalls   int
	ReceivedCalls int
}

// NewFakeHost creates a FakeHost that reads zero everywhere.
func NewFakeHost() *FakeHost {
	return &FakeHost{Errors: make(map[string]error)}
}

// CPUPercent implements sampler.HostSampler.
func (f *FakeHost) CPUPercent(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CPUCalls++
	if err := f.takeErr("cpu"); err != nil {
		return 0, err
	}
	return next(f.CPU, f.CPUCalls), nil
}

// MemoryPercent implements sampler.HostSampler.
func (f *FakeHost) MemoryPercent(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.MemoryCalls++
	if err := f.takeErr("memory"); err != nil {
		return 0, err
	}
	return next(f.Memory, f.MemoryCalls), nil
}

// BytesReceived implements sampler.HostSampler.
func (f *FakeHost) BytesReceived(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReceivedCalls++
	if err := f.takeErr("network"); err != nil {
		return 0, err
	}
	return next(f.Received, f.ReceivedCalls), nil
}

func (f *FakeHost) takeErr(key string) error {
	if f.Errors == nil {
		return nil
	}
	err := f.Errors[key]
	delete(f.Errors, key)
	return err
}

func next[T any](queue []T, call int) T {
	var zero T
	if len(queue) == 0 {
		return zero
	}
	if call > len(queue) {
		return queue[len(queue)-1]
	}
	return queue[call-1]
}

// FakeGPU returns scripted utilisation readings.
type FakeGPU struct {
	mu sync.Mutex

	Readings []float64
	Err      error
	Calls    int
}

// Utilisation implements sampler.GPUSampler.
func (f *FakeGPU) Utilisation(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return 0, f.Err
	}
	return next(f.Readings, f.Calls), nil
}
