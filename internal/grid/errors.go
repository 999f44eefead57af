package grid

import "errors"

// Sentinel errors for dataset access.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrDatasetOpen indicates the file is missing, unreadable, or not
	// a NetCDF file.
	ErrDatasetOpen = errors.New("grid: cannot open dataset")

	// ErrVariableNotFound indicates a requested variable or coordinate
	// is not present in the file.
	ErrVariableNotFound = errors.New("grid: variable not found")

	// ErrDimensionMismatch indicates the field dimensions do not match
	// the coordinate lengths.
	ErrDimensionMismatch = errors.New("grid: field dimensions do not match coordinates")
)
