package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/memstore"
)

func newStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	require.NoError(t, s.Put("a.nc",
		memstore.Var{Name: "time", Dims: []string{"time"}, Data: []float64{0, 6, 12, 18}},
		memstore.Var{Name: "lat", Dims: []string{"lat"}, Data: []float32{45, 0, -45}},
		memstore.Var{Name: "sst", Dims: []string{"time", "lat"}, Shape: []int{4, 3},
			Data:  []int16{0, 1, 2, 10, 11, 12, 20, 21, 22, 30, 31, 32},
			Attrs: map[string]interface{}{"_FillValue": int16(-1)}},
	))
	require.NoError(t, s.Put("b.nc",
		memstore.Var{Name: "x", Dims: []string{"x"}, Data: []int32{1, 2}},
		memstore.Var{Name: "v", Dims: []string{"x"}, Data: []float64{0.5, 1.5}},
	))
	return s
}

func run(t *testing.T, s *memstore.Store, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(s)
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribe(t *testing.T) {
	s := newStore(t)
	out, err := run(t, s, "describe", "a.nc", "b.nc", "--concurrency", "2")
	require.NoError(t, err)

	require.Contains(t, out, "=== a.nc (memory) ===")
	require.Contains(t, out, "=== b.nc (memory) ===")
	require.Contains(t, out, "[45 .. -45] descending")
	require.Contains(t, out, "nodata=-1")
	require.Less(t, bytes.Index([]byte(out), []byte("a.nc")), bytes.Index([]byte(out), []byte("b.nc")))
	require.Equal(t, int64(0), s.Outstanding())
}

func TestDescribeMissingFile(t *testing.T) {
	_, err := run(t, newStore(t), "describe", "a.nc", "missing.nc")
	require.ErrorIs(t, err, cubeaccess.ErrContainerUnavailable)
}

func TestCoord(t *testing.T) {
	s := newStore(t)

	out, err := run(t, s, "coord", "a.nc", "time", "--begin", "5", "--end", "13")
	require.NoError(t, err)
	require.Equal(t, "time float64 index [1:3]\n[6 12]\n", out)

	out, err = run(t, s, "coord", "a.nc", "lat", "--start", "1")
	require.NoError(t, err)
	require.Equal(t, "lat float32 index [1:3]\n[0 -45]\n", out)

	out, err = run(t, s, "coord", "a.nc", "time")
	require.NoError(t, err)
	require.Equal(t, "time float64 index [0:4]\n[0 6 12 18]\n", out)

	_, err = run(t, s, "coord", "a.nc", "time", "--begin", "5")
	require.Error(t, err)

	for _, args := range [][]string{
		{"--begin", "5", "--end", "13", "--step", "2"},
		{"--end", "13", "--start", "1"},
		{"--begin", "5", "--stop", "3"},
	} {
		_, err = run(t, s, append([]string{"coord", "a.nc", "time"}, args...)...)
		require.ErrorContains(t, err, "if any flags in the group", args)
	}

	_, err = run(t, s, "coord", "a.nc", "sst")
	require.ErrorIs(t, err, cubeaccess.ErrUnknownAxis)
}

func TestRead(t *testing.T) {
	s := newStore(t)

	out, err := run(t, s, "read", "a.nc", "sst", "--slice", "1:3,1:")
	require.NoError(t, err)
	require.Equal(t, "sst int16 [2 2]\nnodata -1\n[11 12 21 22]\n", out)

	out, err = run(t, s, "read", "a.nc", "sst", "--slice", "0:4:2")
	require.NoError(t, err)
	require.Equal(t, "sst int16 [2 3]\nnodata -1\n[0 1 2 20 21 22]\n", out)

	_, err = run(t, s, "read", "a.nc", "nope")
	require.ErrorIs(t, err, cubeaccess.ErrUnknownVariable)

	_, err = run(t, s, "read", "a.nc", "sst", "--slice", "1,2,3")
	require.Error(t, err)
}

func TestSchemaRoundTrip(t *testing.T) {
	s := newStore(t)

	out, err := run(t, s, "schema", "a.nc")
	require.NoError(t, err)
	require.Contains(t, out, "locator: a.nc")
	require.Contains(t, out, "dims: [time, lat]")

	path := filepath.Join(t.TempDir(), "a.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	before := s.Opens()
	_, err = run(t, s, "describe", "a.nc", "--schema", path)
	require.NoError(t, err)
	require.Equal(t, before, s.Opens(), "injected schema must not open the container")

	got, err := run(t, s, "read", "a.nc", "sst", "--schema", path, "--slice", "3")
	require.NoError(t, err)
	require.Equal(t, "sst int16 [1 3]\nnodata -1\n[30 31 32]\n", got)
}

func TestParseSlices(t *testing.T) {
	tests := []struct {
		expr    string
		extents []int
		want    []cubeaccess.Slice
		wantErr bool
	}{
		{"", []int{4}, nil, false},
		{"2", []int{4}, []cubeaccess.Slice{{Start: 2, Stop: 3, Step: 1}}, false},
		{":", []int{4}, []cubeaccess.Slice{{Start: 0, Stop: 4, Step: 1}}, false},
		{"1:,::2", []int{4, 6}, []cubeaccess.Slice{{Start: 1, Stop: 4, Step: 1}, {Start: 0, Stop: 6, Step: 2}}, false},
		{" 0:1 , 2:3 ", []int{4, 6}, []cubeaccess.Slice{{Start: 0, Stop: 1, Step: 1}, {Start: 2, Stop: 3, Step: 1}}, false},
		{"1:2:3:4", []int{4}, nil, true},
		{"a:b", []int{4}, nil, true},
		{"0:4:0", []int{4}, nil, true},
		{"0,0", []int{4}, nil, true},
	}

	for _, tt := range tests {
		got, err := parseSlices(tt.expr, tt.extents)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseSlices(%q) expected error, got %v", tt.expr, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSlices(%q) failed: %v", tt.expr, err)
			continue
		}
		require.Equal(t, tt.want, got, tt.expr)
	}
}
