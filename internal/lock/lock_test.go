package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/vu1/internal/errors"
)

func TestRecord_Marshal(t *testing.T) {
	data, err := Record{}.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid": null}`, string(data))

	data, err = WithPID(4242).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid": 4242}`, string(data))
}

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantPID *int
		wantErr bool
	}{
		{name: "pid", input: `{"pid": 31337}`, wantPID: intPtr(31337)},
		{name: "null pid", input: `{"pid": null}`},
		{name: "missing key", input: `{}`},
		{name: "empty", input: ""},
		{name: "whitespace", input: "\n  \n"},
		{name: "garbage", input: "pid=12", wantErr: true},
		{name: "string pid", input: `{"pid": "12"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseRecord([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPID, rec.PID)
			assert.Equal(t, tt.wantPID != nil, rec.HasPID())
		})
	}
}

func TestRecord_String(t *testing.T) {
	assert.Equal(t, "no pid", Record{}.String())
	assert.Equal(t, "pid 7", WithPID(7).String())
}

func TestFile_ReadMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "monitoring.lock"))

	rec, err := f.Read()
	require.NoError(t, err)
	assert.False(t, rec.HasPID())

	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err), "reading must not create the file")
}

func TestFile_WriteReadClear(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "monitoring.lock"))

	require.NoError(t, f.Write(WithPID(1234)))
	rec, err := f.Read()
	require.NoError(t, err)
	require.True(t, rec.HasPID())
	assert.Equal(t, 1234, *rec.PID)

	// A shorter record must fully replace a longer one.
	require.NoError(t, f.Write(WithPID(9)))
	rec, err = f.Read()
	require.NoError(t, err)
	assert.Equal(t, 9, *rec.PID)

	require.NoError(t, f.Clear())
	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"pid": null}`, string(data))
}

func TestFile_WriteCreatesDirectory(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "run", "vu1", "monitoring.lock"))
	require.NoError(t, f.Write(WithPID(5)))

	rec, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, 5, *rec.PID)
}

func TestFile_ReadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitoring.lock")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFile(path).Read()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrLock))
	assert.Contains(t, err.Error(), "corrupt")
}

func TestFile_ConcurrentWritesStayValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitoring.lock")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			f := NewFile(path)
			assert.NoError(t, f.Write(WithPID(pid*1000003)))
			_, err := f.Read()
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	rec, err := NewFile(path).Read()
	require.NoError(t, err, "record must never be left half-written")
	require.True(t, rec.HasPID())
	assert.Equal(t, 0, *rec.PID%1000003, fmt.Sprintf("unexpected pid %d", *rec.PID))
}

func TestNewFile_Default(t *testing.T) {
	assert.Equal(t, DefaultFile, NewFile("").Path())
}

func intPtr(n int) *int {
	return &n
}
