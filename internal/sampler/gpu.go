package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/rileyhilliard/vu1/internal/config"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// execRunner runs commands on the local machine. When the command exits
// non-zero its stderr is appended to the returned stdout.
func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out = append(out, exitErr.Stderr...)
	}
	return out, err
}

// lookPath is swapped in tests to control backend detection.
var lookPath = exec.LookPath

const (
	nvidiaSMI = "nvidia-smi"
	rocmSMI   = "rocm-smi"
)

// NewGPU picks a GPUSampler for backend. "auto" prefers an NVIDIA tool,
// then an AMD tool, and falls back to a sampler that always reads 0.
func NewGPU(backend string) GPUSampler {
	return newGPU(backend, execRunner)
}

func newGPU(backend string, run Runner) GPUSampler {
	switch backend {
	case config.GPUBackendNvidia:
		return &Nvidia{run: run}
	case config.GPUBackendAMD:
		return &AMD{run: run}
	case config.GPUBackendNone:
		return NoGPU{}
	}

	if _, err := lookPath(nvidiaSMI); err == nil {
		return &Nvidia{run: run}
	}
	if _, err := lookPath(rocmSMI); err == nil {
		return &AMD{run: run}
	}
	return NoGPU{}
}

// NoGPU reads 0 utilisation.
type NoGPU struct{}

// Utilisation implements GPUSampler.
func (NoGPU) Utilisation(ctx context.Context) (float64, error) {
	return 0, nil
}

// Nvidia samples the first GPU through nvidia-smi.
type Nvidia struct {
	run Runner
}

// Utilisation implements GPUSampler. nvidia-smi exits non-zero when it
// finds no device; that reads as 0.
func (n *Nvidia) Utilisation(ctx context.Context) (float64, error) {
	out, err := n.run(ctx, nvidiaSMI,
		"--query-gpu=utilization.gpu",
		"--format=csv,noheader,nounits")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && nvidiaUnavailable(string(out)) {
			return 0, nil
		}
		return 0, fmt.Errorf("nvidia-smi failed: %w", err)
	}

	percent, ok, err := ParseNvidiaSMI(string(out))
	if err != nil || !ok {
		return 0, err
	}
	return percent, nil
}

// ParseNvidiaSMI parses the first GPU line of:
//
//	nvidia-smi --query-gpu=utilization.gpu --format=csv,noheader,nounits
//
// ok is false when the output reports no usable GPU.
func ParseNvidiaSMI(output string) (float64, bool, error) {
	output = strings.TrimSpace(output)
	if output == "" || nvidiaUnavailable(output) {
		return 0, false, nil
	}

	raw := strings.TrimSpace(strings.SplitN(output, "\n", 2)[0])
	// "[N/A]" means the device doesn't report utilisation.
	if raw == "[N/A]" {
		return 0, true, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse GPU utilization '%s': %w", raw, err)
	}
	return v, true, nil
}

// nvidiaUnavailable reports whether nvidia-smi output says there is no
// device or driver to query.
func nvidiaUnavailable(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "no devices") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "error")
}

// AMD samples the first card through rocm-smi.
type AMD struct {
	run Runner
}

// Utilisation implements GPUSampler.
func (a *AMD) Utilisation(ctx context.Context) (float64, error) {
	out, err := a.run(ctx, rocmSMI, "--showuse", "--json")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && amdUnavailable(out) {
			return 0, nil
		}
		return 0, fmt.Errorf("rocm-smi failed: %w", err)
	}
	return ParseROCmSMI(out)
}

// amdUnavailable reports whether rocm-smi output says there are no cards,
// either as a warning or as JSON without any "cardN" entry.
func amdUnavailable(output []byte) bool {
	if strings.Contains(strings.ToLower(string(output)), "no amd gpu") {
		return true
	}
	var cards map[string]json.RawMessage
	if err := json.Unmarshal(output, &cards); err != nil {
		return false
	}
	for name := range cards {
		if strings.HasPrefix(name, "card") {
			return false
		}
	}
	return true
}

// ParseROCmSMI reads "GPU use (%)" for the lowest numbered card from
// `rocm-smi --showuse --json`. Output without cards reads as 0.
func ParseROCmSMI(output []byte) (float64, error) {
	var cards map[string]map[string]string
	if err := json.Unmarshal(output, &cards); err != nil {
		return 0, fmt.Errorf("failed to parse rocm-smi output: %w", err)
	}

	names := make([]string, 0, len(cards))
	for name := range cards {
		if strings.HasPrefix(name, "card") {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return 0, nil
	}
	sort.Slice(names, func(i, j int) bool {
		return cardIndex(names[i]) < cardIndex(names[j])
	})

	raw, ok := cards[names[0]]["GPU use (%)"]
	if !ok {
		return 0, fmt.Errorf("rocm-smi output for %s has no GPU use field", names[0])
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse GPU use '%s': %w", raw, err)
	}
	return v, nil
}

func cardIndex(name string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(name, "card"))
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
