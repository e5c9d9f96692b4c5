package dial

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticLister returns a Lister that serves listing and counts calls.
func staticLister(listing []Dial, calls *int) Lister {
	return func(ctx context.Context) ([]Dial, error) {
		*calls++
		return listing, nil
	}
}

func TestRegistry_Load(t *testing.T) {
	var calls int
	listing := []Dial{
		{Name: "CPU", UID: "u1"},
		{Name: "GPU", UID: "u2"},
		{Name: "Spare", UID: "u3"},
	}

	reg := NewRegistry(DefaultNames())
	dials, err := reg.Load(context.Background(), staticLister(listing, &calls))
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Len(t, dials, 2)
	assert.Equal(t, "u1", dials[RoleCPU].UID)
	assert.Equal(t, "u2", dials[RoleGPU].UID)
	assert.Equal(t, []Role{RoleCPU, RoleGPU}, reg.Roles())
}

func TestRegistry_LoadEmptyListing(t *testing.T) {
	var calls int
	reg := NewRegistry(DefaultNames())

	_, err := reg.Load(context.Background(), staticLister(nil, &calls))

	require.ErrorIs(t, err, ErrNoDialsReturned)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_LoadNoKnownDials(t *testing.T) {
	var calls int
	listing := []Dial{{Name: "test", UID: "u1"}, {Name: "other", UID: "u2"}}
	reg := NewRegistry(DefaultNames())

	_, err := reg.Load(context.Background(), staticLister(listing, &calls))

	require.ErrorIs(t, err, ErrNoKnownDials)
	assert.NotErrorIs(t, err, ErrNoDialsReturned)
	assert.False(t, reg.Check(RoleCPU))
}

func TestRegistry_LoadPropagatesListerError(t *testing.T) {
	boom := errors.New("server unreachable")
	reg := NewRegistry(DefaultNames())

	_, err := reg.Load(context.Background(), func(ctx context.Context) ([]Dial, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
}

func TestRegistry_ConfiguredNames(t *testing.T) {
	var calls int
	listing := []Dial{
		{Name: "CPU", UID: "u1"},
		{Name: "Processor", UID: "u2"},
	}

	reg := NewRegistry(Names{RoleCPU: "Processor"})
	_, err := reg.Load(context.Background(), staticLister(listing, &calls))
	require.NoError(t, err)

	d, err := reg.Resolve(RoleCPU)
	require.NoError(t, err)
	assert.Equal(t, "u2", d.UID)
	assert.Equal(t, "Processor", reg.Name(RoleCPU))
	// Unconfigured roles keep their canonical names
	assert.Equal(t, "GPU", reg.Name(RoleGPU))
}

func TestRegistry_SingleDialScenario(t *testing.T) {
	var calls int
	reg := NewRegistry(DefaultNames())
	_, err := reg.Load(context.Background(), staticLister([]Dial{{Name: "CPU", UID: "u1"}}, &calls))
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Len())
	assert.True(t, reg.Check(RoleCPU))
	assert.False(t, reg.Check(RoleGPU))

	_, err = reg.Resolve(RoleGPU)
	require.ErrorIs(t, err, ErrDialNotImplemented)

	var notImpl *NotImplementedError
	require.ErrorAs(t, err, &notImpl)
	assert.Equal(t, RoleGPU, notImpl.Role)
	assert.Equal(t, "GPU dial is not set up", err.Error())
	assert.Equal(t, 1, calls, "resolve must not hit the server")
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	var calls int
	reg := NewRegistry(DefaultNames())
	_, err := reg.Load(context.Background(), staticLister([]Dial{{Name: "CPU", UID: "u1"}}, &calls))
	require.NoError(t, err)

	snap := reg.Snapshot()
	delete(snap, RoleCPU)

	assert.True(t, reg.Check(RoleCPU))
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"CPU", RoleCPU, false},
		{"gpu", RoleGPU, false},
		{"Memory", RoleMemory, false},
		{"mem", RoleMemory, false},
		{"NETWORK", RoleNetwork, false},
		{"net", RoleNetwork, false},
		{"disk", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Role {
	t.Helper()
	r, err := ParseRole(s)
	require.NoError(t, err)
	return r
}

func TestDialDecode(t *testing.T) {
	body := `{"data": [
		{"dial_name": "CPU", "uid": "590056000650564139323920", "value": "42",
		 "backlight": {"red": 0, "green": 100, "blue": 0}, "image_file": "img_590056000650564139323920"},
		{"dial_name": "GPU", "uid": "u2", "value": 17, "backlight": {}, "image_file": ""},
		{"dial_name": "MEMORY", "uid": "u3", "value": "", "backlight": {"red": 20.5, "green": 0, "blue": 0}, "image_file": ""}
	]}`

	var resp struct {
		Data []Dial `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Data, 3)

	assert.Equal(t, "CPU", resp.Data[0].Name)
	assert.Equal(t, "590056000650564139323920", resp.Data[0].UID)
	assert.Equal(t, Value(42), resp.Data[0].Value)
	assert.Equal(t, Backlight{Red: 0, Green: 100, Blue: 0}, resp.Data[0].Backlight)
	assert.Equal(t, Value(17), resp.Data[1].Value)
	assert.Equal(t, Value(0), resp.Data[2].Value)
	assert.Equal(t, 20.5, resp.Data[2].Backlight.Red)
}

func TestDialDecode_BadValue(t *testing.T) {
	var d Dial
	err := json.Unmarshal([]byte(`{"dial_name": "CPU", "value": "high"}`), &d)
	assert.Error(t, err)
}
