package sampler

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vu1/internal/config"
)

func TestParseNvidiaSMI(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantOK  bool
		wantErr bool
	}{
		{name: "busy GPU", output: "45", want: 45, wantOK: true},
		{name: "idle GPU", output: "0\n", want: 0, wantOK: true},
		{name: "multiple GPUs uses first", output: "10\n90", want: 10, wantOK: true},
		{name: "unsupported reads zero", output: "[N/A]", want: 0, wantOK: true},
		{name: "empty output", output: ""},
		{name: "whitespace only", output: "   \n  "},
		{name: "no devices", output: "No devices were found"},
		{name: "driver failure", output: "NVIDIA-SMI has failed because it couldn't communicate with the NVIDIA driver."},
		{name: "bad utilization", output: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseNvidiaSMI(tt.output)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseROCmSMI(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{
			name:   "single card",
			output: `{"card0": {"GPU use (%)": "37"}}`,
			want:   37,
		},
		{
			name:   "lowest card wins",
			output: `{"card10": {"GPU use (%)": "99"}, "card2": {"GPU use (%)": "5"}, "system": {"Driver version": "6.1"}}`,
			want:   5,
		},
		{name: "no cards", output: `{"system": {"Driver version": "6.1"}}`, want: 0},
		{name: "missing field", output: `{"card0": {"Temperature (Sensor edge) (C)": "40.0"}}`, wantErr: true},
		{name: "not json", output: `WARNING: No AMD GPUs specified`, wantErr: true},
		{name: "bad number", output: `{"card0": {"GPU use (%)": "N/A"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseROCmSMI([]byte(tt.output))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeRunner returns canned output and records the command name.
func fakeRunner(out string, err error, called *[]string) Runner {
	return func(ctx context.Context, name string, args ...string) ([]byte, error) {
		*called = append(*called, name)
		return []byte(out), err
	}
}

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	orig := lookPath
	lookPath = func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { lookPath = orig })
}

func TestNewGPU_Backends(t *testing.T) {
	var called []string
	run := fakeRunner("", nil, &called)

	assert.IsType(t, &Nvidia{}, newGPU(config.GPUBackendNvidia, run))
	assert.IsType(t, &AMD{}, newGPU(config.GPUBackendAMD, run))
	assert.IsType(t, NoGPU{}, newGPU(config.GPUBackendNone, run))
}

func TestNewGPU_AutoDetect(t *testing.T) {
	var called []string
	run := fakeRunner("", nil, &called)

	t.Run("prefers nvidia", func(t *testing.T) {
		stubLookPath(t, nvidiaSMI, rocmSMI)
		assert.IsType(t, &Nvidia{}, newGPU(config.GPUBackendAuto, run))
	})

	t.Run("falls back to amd", func(t *testing.T) {
		stubLookPath(t, rocmSMI)
		assert.IsType(t, &AMD{}, newGPU(config.GPUBackendAuto, run))
	})

	t.Run("no tools reads zero", func(t *testing.T) {
		stubLookPath(t)
		g := newGPU(config.GPUBackendAuto, run)
		assert.IsType(t, NoGPU{}, g)
		v, err := g.Utilisation(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})
}

func TestNvidia_Utilisation(t *testing.T) {
	t.Run("first gpu", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("73\n", nil, &called)}
		v, err := n.Utilisation(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 73.0, v)
		assert.Equal(t, []string{nvidiaSMI}, called)
	})

	t.Run("no device reads zero", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("No devices were found", nil, &called)}
		v, err := n.Utilisation(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("no device with non-zero exit reads zero", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("No devices were found\n", &exec.ExitError{}, &called)}
		v, err := n.Utilisation(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("non-zero exit without output is an error", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("", &exec.ExitError{}, &called)}
		_, err := n.Utilisation(context.Background())
		assert.ErrorContains(t, err, "nvidia-smi failed")
	})

	t.Run("missing binary reads zero", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("", fmt.Errorf("exec: %w", exec.ErrNotFound), &called)}
		v, err := n.Utilisation(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("command failure", func(t *testing.T) {
		var called []string
		n := &Nvidia{run: fakeRunner("", errors.New("exit status 9"), &called)}
		_, err := n.Utilisation(context.Background())
		assert.ErrorContains(t, err, "nvidia-smi failed")
	})
}

func TestAMD_Utilisation(t *testing.T) {
	var called []string
	a := &AMD{run: fakeRunner(`{"card0": {"GPU use (%)": "21"}}`, nil, &called)}
	v, err := a.Utilisation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, v)
	assert.Equal(t, []string{rocmSMI}, called)

	a = &AMD{run: fakeRunner("", errors.New("exit status 2"), &called)}
	_, err = a.Utilisation(context.Background())
	assert.ErrorContains(t, err, "rocm-smi failed")
}

func TestAMD_UtilisationWithoutCards(t *testing.T) {
	tests := []struct {
		name   string
		output string
	}{
		{"warning", "WARNING: No AMD GPUs specified\n"},
		{"json without cards", `{"system": {"Driver version": "6.1"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called []string
			a := &AMD{run: fakeRunner(tt.output, &exec.ExitError{}, &called)}
			v, err := a.Utilisation(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0.0, v)
		})
	}

	var called []string
	a := &AMD{run: fakeRunner(`{"card0": {"GPU use (%)": "21"}}`, &exec.ExitError{}, &called)}
	_, err := a.Utilisation(context.Background())
	assert.ErrorContains(t, err, "rocm-smi failed")
}
