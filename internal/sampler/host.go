// Package sampler reads the local host telemetry the dials display.
//
// CPU, memory and network counters come from gopsutil. GPU utilisation
// comes from a vendor backend (see gpu.go) that shells out to the vendor's
// management tool.
package sampler

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// HostSampler reads host-wide utilisation counters.
type HostSampler interface {
	// CPUPercent returns utilisation across all cores since the previous call.
	CPUPercent(ctx context.Context) (float64, error)

	// MemoryPercent returns used virtual memory as a percentage.
	MemoryPercent(ctx context.Context) (float64, error)

	// BytesReceived returns the total bytes received on all interfaces.
	BytesReceived(ctx context.Context) (uint64, error)
}

// GPUSampler reads GPU utilisation. Implementations return 0 when no
// device is present.
type GPUSampler interface {
	Utilisation(ctx context.Context) (float64, error)
}

// System samples the local machine through gopsutil.
type System struct{}

// NewSystem returns a HostSampler for the local machine.
func NewSystem() *System {
	return &System{}
}

// CPUPercent implements HostSampler. The first call measures since boot.
func (s *System) CPUPercent(ctx context.Context) (float64, error) {
	percent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU usage: %w", err)
	}
	if len(percent) == 0 {
		return 0, fmt.Errorf("failed to get CPU usage: no data")
	}
	return percent[0], nil
}

// MemoryPercent implements HostSampler.
func (s *System) MemoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get memory usage: %w", err)
	}
	return vm.UsedPercent, nil
}

// BytesReceived implements HostSampler.
func (s *System) BytesReceived(ctx context.Context) (uint64, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, fmt.Errorf("failed to get network counters: %w", err)
	}
	if len(counters) == 0 {
		return 0, fmt.Errorf("failed to get network counters: no interfaces")
	}
	return counters[0].BytesRecv, nil
}
