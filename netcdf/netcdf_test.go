package netcdf

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
)

// fakeAttrs is an ordered api.AttributeMap.
type fakeAttrs struct {
	keys []string
	vals map[string]interface{}
}

func attrs(kv ...interface{}) *fakeAttrs {
	a := &fakeAttrs{vals: make(map[string]interface{})}
	for i := 0; i < len(kv); i += 2 {
		k := kv[i].(string)
		a.keys = append(a.keys, k)
		a.vals[k] = kv[i+1]
	}
	return a
}

func (a *fakeAttrs) Keys() []string { return a.keys }

func (a *fakeAttrs) Get(key string) (interface{}, bool) {
	v, ok := a.vals[key]
	return v, ok
}

func (a *fakeAttrs) GetType(key string) (string, bool) {
	v, ok := a.vals[key]
	return fmt.Sprintf("%T", v), ok
}

func (a *fakeAttrs) GetGoType(key string) (string, bool) {
	return a.GetType(key)
}

// fakeVar serves nested slices the way the library does: flat for 1-D
// variables and slices of rows otherwise.
type fakeVar struct {
	values  interface{}
	dims    []string
	attrs   *fakeAttrs
	goType  string
	cdlType string
	slices  *atomic.Int64
}

func (v *fakeVar) Len() int64 {
	rv := reflect.ValueOf(v.values)
	if rv.Kind() != reflect.Slice {
		return 1
	}
	return int64(rv.Len())
}

func (v *fakeVar) Values() (interface{}, error) { return v.values, nil }

func (v *fakeVar) GetSlice(begin, end int64) (interface{}, error) {
	v.slices.Add(1)
	rv := reflect.ValueOf(v.values)
	if begin < 0 || end > int64(rv.Len()) || begin > end {
		return nil, errors.New("slice out of range")
	}
	return rv.Slice(int(begin), int(end)).Interface(), nil
}

func (v *fakeVar) Dimensions() []string         { return v.dims }
func (v *fakeVar) Attributes() api.AttributeMap { return v.attrs }
func (v *fakeVar) Type() string                 { return v.cdlType }
func (v *fakeVar) GoType() string               { return v.goType }

type fakeGroup struct {
	order  []string
	vars   map[string]*fakeVar
	dims   map[string]uint64
	closed *atomic.Int64
}

func (g *fakeGroup) Close()                       { g.closed.Add(1) }
func (g *fakeGroup) Attributes() api.AttributeMap { return attrs() }
func (g *fakeGroup) ListVariables() []string      { return g.order }

func (g *fakeGroup) GetVariable(name string) (*api.Variable, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return &api.Variable{Values: v.values, Dimensions: v.dims, Attributes: v.attrs}, nil
}

func (g *fakeGroup) GetVarGetter(name string) (api.VarGetter, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (g *fakeGroup) ListSubgroups() []string            { return nil }
func (g *fakeGroup) GetGroup(string) (api.Group, error) { return nil, errors.New("no groups") }
func (g *fakeGroup) ListTypes() []string                { return nil }
func (g *fakeGroup) GetType(string) (string, bool)      { return "", false }
func (g *fakeGroup) GetGoType(string) (string, bool)    { return "", false }

func (g *fakeGroup) ListDimensions() []string {
	names := make([]string, 0, len(g.dims))
	for name := range g.dims {
		names = append(names, name)
	}
	return names
}

func (g *fakeGroup) GetDimension(name string) (uint64, bool) {
	n, ok := g.dims[name]
	return n, ok
}

type fixture struct {
	backend *Backend
	opens   atomic.Int64
	closes  atomic.Int64
	slices  atomic.Int64
}

// newFixture models a file with time(4) lat(3, descending) and a
// float32 sst(time, lat) where sst[t][y] = t*10 + y, plus a scalar crs and
// a char station(lat, strlen) served as padded strings.
func newFixture() *fixture {
	f := &fixture{}
	sst := make([][]float32, 4)
	for t := range sst {
		sst[t] = make([]float32, 3)
		for y := range sst[t] {
			sst[t][y] = float32(t*10 + y)
		}
	}
	vars := map[string]*fakeVar{
		"time": {values: []float64{0, 6, 12, 18}, dims: []string{"time"}, attrs: attrs("units", "hours"),
			goType: "float64", cdlType: "double"},
		"lat": {values: []float32{45, 0, -45}, dims: []string{"lat"}, attrs: attrs(),
			goType: "float32", cdlType: "float"},
		"sst": {values: sst, dims: []string{"time", "lat"},
			attrs:  attrs("missing_value", []float32{-1e20}, "long_name", "sea surface temperature"),
			goType: "float32", cdlType: "float"},
		"crs": {values: int32(4326), dims: nil, attrs: attrs(), goType: "int32", cdlType: "int"},
		"flags": {values: []complex64{1}, dims: []string{"time"}, attrs: attrs(),
			goType: "complex64", cdlType: "opaque"},
		"station": {values: []string{"north", "equa\x00", "south"}, dims: []string{"lat", "strlen"},
			attrs: attrs(), goType: "string", cdlType: "char"},
	}
	for _, v := range vars {
		v.slices = &f.slices
	}
	f.backend = &Backend{open: func(path string) (api.Group, error) {
		if path != "sst.nc" {
			return nil, fmt.Errorf("no such file %q", path)
		}
		f.opens.Add(1)
		return &fakeGroup{
			order:  []string{"time", "lat", "sst", "crs", "flags", "station"},
			vars:   vars,
			dims:   map[string]uint64{"time": 4, "lat": 3, "strlen": 5},
			closed: &f.closes,
		}, nil
	}}
	return f
}

func TestFields(t *testing.T) {
	f := newFixture()
	c, err := f.backend.Open("sst.nc")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer c.Close()

	fields, err := c.Fields()
	if err != nil {
		t.Fatalf("Fields failed: %v", err)
	}
	if len(fields) != 5 {
		t.Fatalf("expected 5 fields (flags skipped), got %d", len(fields))
	}
	if got := f.slices.Load(); got != 0 {
		t.Errorf("expected no data reads while enumerating, got %d", got)
	}

	byName := make(map[string]cubeaccess.Field)
	for _, fd := range fields {
		byName[fd.Name] = fd
	}
	sst := byName["sst"]
	if sst.DType != dtype.Float32 {
		t.Errorf("expected float32, got %v", sst.DType)
	}
	if !reflect.DeepEqual(sst.Shape, []int{4, 3}) {
		t.Errorf("expected shape [4 3], got %v", sst.Shape)
	}
	if sst.Attrs["long_name"] != "sea surface temperature" {
		t.Errorf("unexpected attrs %v", sst.Attrs)
	}
	if !byName["time"].IsCoordinate() || sst.IsCoordinate() {
		t.Error("coordinate classification mismatch")
	}
	if len(byName["crs"].Shape) != 0 {
		t.Errorf("expected scalar crs, got shape %v", byName["crs"].Shape)
	}
	station := byName["station"]
	if station.DType != dtype.String || !reflect.DeepEqual(station.Dims, []string{"lat"}) ||
		!reflect.DeepEqual(station.Shape, []int{3}) {
		t.Errorf("expected string station(lat), got %v %v %v", station.DType, station.Dims, station.Shape)
	}
}

func TestUnitOverNetCDF(t *testing.T) {
	f := newFixture()
	u, err := cubeaccess.New(f.backend, "sst.nc")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	lat, ok := u.Coordinate("lat")
	if !ok {
		t.Fatal("lat is not a coordinate")
	}
	if lat.Begin != 45 || lat.End != -45 || lat.Length != 3 || lat.Ascending() {
		t.Errorf("unexpected lat %+v", lat)
	}

	v, ok := u.Variable("sst")
	if !ok {
		t.Fatal("sst is not a variable")
	}
	if !v.HasNoData() || *v.NoData != float64(float32(-1e20)) {
		t.Errorf("unexpected nodata %v", v.NoData)
	}

	times, tIdx, err := u.GetCoord("time", cubeaccess.Range{Begin: 5, End: 13})
	if err != nil {
		t.Fatal(err)
	}
	if tIdx != (cubeaccess.Slice{Start: 1, Stop: 3, Step: 1}) {
		t.Errorf("unexpected time slice %v", tIdx)
	}
	if !reflect.DeepEqual(times.Data, []float64{6, 12}) {
		t.Errorf("unexpected times %v", times.Data)
	}

	_, yIdx, err := u.GetCoord("lat", cubeaccess.Range{Begin: -50, End: 10})
	if err != nil {
		t.Fatal(err)
	}

	dest, err := cubeaccess.NewArray(dtype.Float32, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	before := f.slices.Load()
	if err := u.FillVariable("sst", []cubeaccess.Slice{tIdx, yIdx}, dest); err != nil {
		t.Fatalf("FillVariable failed: %v", err)
	}
	if !reflect.DeepEqual(dest.Data, []float32{11, 12, 21, 22}) {
		t.Errorf("unexpected sst %v", dest.Data)
	}
	// only rows 1..2 are read
	if got := f.slices.Load() - before; got != 1 {
		t.Errorf("expected 1 GetSlice call, got %d", got)
	}

	names, err := u.ReadVariable("station", []cubeaccess.Slice{{Start: 1, Stop: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names.Data, []string{"equa", "south"}) {
		t.Errorf("unexpected station names %q", names.Data)
	}

	if f.opens.Load() != f.closes.Load() {
		t.Errorf("leaked handles: %d opens, %d closes", f.opens.Load(), f.closes.Load())
	}
}

func TestReadStridedAndScalar(t *testing.T) {
	f := newFixture()
	c, err := f.backend.Open("sst.nc")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	arr, err := c.Read("sst", []cubeaccess.Slice{{Start: 0, Stop: 4, Step: 2}, {Start: 2, Stop: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(arr.Shape, []int{2, 1}) || !reflect.DeepEqual(arr.Data, []float32{2, 22}) {
		t.Errorf("unexpected strided read %v %v", arr.Shape, arr.Data)
	}

	arr, err = c.Read("crs", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(arr.Data, []int32{4326}) || arr.Rank() != 0 {
		t.Errorf("unexpected scalar read %v %v", arr.Shape, arr.Data)
	}

	arr, err = c.Read("sst", []cubeaccess.Slice{{Start: 2, Stop: 2}, {Start: 0, Stop: 3}})
	if err != nil {
		t.Fatal(err)
	}
	if arr.Len() != 0 || !reflect.DeepEqual(arr.Shape, []int{0, 3}) {
		t.Errorf("unexpected empty read %v", arr.Shape)
	}
}

func TestReadErrors(t *testing.T) {
	f := newFixture()
	c, err := f.backend.Open("sst.nc")
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, err := c.Read("sst", []cubeaccess.Slice{{Start: 0, Stop: 5}, {Start: 0, Stop: 3}}); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := c.Read("sst", []cubeaccess.Slice{{Start: 0, Stop: 1}}); err == nil {
		t.Error("expected rank error")
	}
	if _, err := c.Read("nope", []cubeaccess.Slice{{Start: 0, Stop: 1}}); err == nil {
		t.Error("expected unknown variable error")
	}
}

func TestOpenMissingFile(t *testing.T) {
	f := newFixture()
	_, err := cubeaccess.New(f.backend, "other.nc")
	if !errors.Is(err, cubeaccess.ErrContainerUnavailable) {
		t.Errorf("expected ErrContainerUnavailable, got %v", err)
	}

	_, err = Open("/nonexistent/path/to/file.nc")
	if !errors.Is(err, cubeaccess.ErrContainerUnavailable) {
		t.Errorf("expected ErrContainerUnavailable from real opener, got %v", err)
	}
}
