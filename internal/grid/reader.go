package grid

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
)

// Reader provides read-only access to one NetCDF file. It holds the open
// file handle; Close must be called on every exit path.
type Reader struct {
	path string
	nc   api.Group
}

// Open opens a NetCDF file for reading.
func Open(path string) (*Reader, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatasetOpen, path, err)
	}
	return &Reader{path: path, nc: nc}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.nc.Close()
}

// Coordinate returns the values of a 1-D coordinate variable.
func (r *Reader) Coordinate(name string) ([]float64, error) {
	vg, err := r.nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: coordinate %s", ErrVariableNotFound, r.path, name)
	}
	vals, err := floatValues(vg)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: coordinate %s: %v", r.path, name, err)
	}
	return vals, nil
}

// Attribute returns the value of an attribute of the named variable, or of
// the file itself when varName is empty. The second return value reports
// presence, so an absent attribute is distinguishable from a falsy value.
func (r *Reader) Attribute(varName, attrName string) (any, bool) {
	if varName == "" {
		return r.nc.Attributes().Get(attrName)
	}
	vg, err := r.nc.GetVarGetter(varName)
	if err != nil {
		return nil, false
	}
	return vg.Attributes().Get(attrName)
}

// Dataset reads the named 2D-over-time field together with its coordinates
// and attributes. The field must have exactly three dimensions, each backed
// by a coordinate variable of the same name.
func (r *Reader) Dataset(field string) (*Dataset, error) {
	vg, err := r.nc.GetVarGetter(field)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrVariableNotFound, r.path, field)
	}
	dims := vg.Dimensions()
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: %s: field %s has %d dimensions, want 3",
			ErrDimensionMismatch, r.path, field, len(dims))
	}

	d := &Dataset{
		Path:     r.path,
		Name:     field,
		DimOrder: dims,
		Units:    attrString(vg.Attributes(), "units"),
		LongName: attrString(vg.Attributes(), "long_name"),
	}
	d.FillValue, d.HasFill = fillValue(vg.Attributes())

	shape := make([]int, len(dims))
	for i, dim := range dims {
		coord, err := r.Coordinate(dim)
		if err != nil {
			return nil, err
		}
		shape[i] = len(coord)
		switch axisKind(dim) {
		case AxisLon:
			d.Lon = coord
		case AxisLat:
			d.Lat = coord
		case AxisTime:
			d.Time = coord
			tg, err := r.nc.GetVarGetter(dim)
			if err == nil {
				d.TimeUnits = attrString(tg.Attributes(), "units")
			}
		}
	}

	d.Field, err = fieldValues(vg, shape)
	if err != nil {
		return nil, fmt.Errorf("grid: %s: field %s: %w", r.path, field, err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// floatValues reads a 1-D variable of any numeric type as float64.
func floatValues(vg api.VarGetter) ([]float64, error) {
	v, err := vg.Values()
	if err != nil {
		return nil, err
	}
	switch a := v.(type) {
	case []float64:
		return a, nil
	case []float32:
		return widen(a), nil
	case []int64:
		return widen(a), nil
	case []int32:
		return widen(a), nil
	case []int16:
		return widen(a), nil
	}
	return nil, fmt.Errorf("unsupported coordinate type %T", v)
}

func widen[T int16 | int32 | int64 | float32](a []T) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = float64(v)
	}
	return out
}

// fieldValues reads a 3-D variable of any numeric type into a dense array
// with the given shape.
func fieldValues(vg api.VarGetter, shape []int) (*sparse.DenseArray, error) {
	v, err := vg.Values()
	if err != nil {
		return nil, err
	}
	switch a := v.(type) {
	case [][][]float64:
		return flatten3(a, shape)
	case [][][]float32:
		return flatten3(a, shape)
	case [][][]int32:
		return flatten3(a, shape)
	case [][][]int16:
		return flatten3(a, shape)
	}
	return nil, fmt.Errorf("unsupported field type %T", v)
}

func flatten3[T int16 | int32 | float32 | float64](a [][][]T, shape []int) (*sparse.DenseArray, error) {
	if len(a) != shape[0] {
		return nil, fmt.Errorf("%w: dimension 0 has length %d, want %d", ErrDimensionMismatch, len(a), shape[0])
	}
	out := sparse.ZerosDense(shape...)
	k := 0
	for _, plane := range a {
		if len(plane) != shape[1] {
			return nil, fmt.Errorf("%w: dimension 1 has length %d, want %d", ErrDimensionMismatch, len(plane), shape[1])
		}
		for _, row := range plane {
			if len(row) != shape[2] {
				return nil, fmt.Errorf("%w: dimension 2 has length %d, want %d", ErrDimensionMismatch, len(row), shape[2])
			}
			for _, v := range row {
				out.Elements[k] = float64(v)
				k++
			}
		}
	}
	return out, nil
}

// attrString reads a string attribute, returning "" when absent.
func attrString(am api.AttributeMap, key string) string {
	v, ok := am.Get(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []string:
		if len(s) > 0 {
			return s[0]
		}
	}
	return ""
}

// attrFloat reads a numeric attribute of any width, reporting absence
// distinctly from a zero value.
func attrFloat(am api.AttributeMap, key string) (float64, bool) {
	v, ok := am.Get(key)
	if !ok {
		return 0, false
	}
	switch a := v.(type) {
	case float64:
		return a, true
	case float32:
		return float64(a), true
	case int32:
		return float64(a), true
	case int16:
		return float64(a), true
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int16:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	}
	return 0, false
}

// fillValue looks up the missing-data sentinel, consulting _FillValue
// first and falling back to missing_value.
func fillValue(am api.AttributeMap) (float64, bool) {
	for _, key := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloat(am, key); ok {
			return v, true
		}
	}
	return 0, false
}
