package recon

import "fmt"

// ErrFieldLength represents a structural error: an input or stage output
// column whose length does not match the batch event count.
type ErrFieldLength struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrFieldLength) Error() string {
	return fmt.Sprintf("field %q has %d entries, batch has %d", e.Field, e.Got, e.Want)
}

// ErrCalibrationLookup represents an unknown mnemonic or an empty run
// window in the calibration database.
type ErrCalibrationLookup struct {
	Mnemonic string
	Run      int
	Err      error
}

func (e *ErrCalibrationLookup) Error() string {
	return fmt.Sprintf("calibration lookup %q for run %d: %v", e.Mnemonic, e.Run, e.Err)
}

func (e *ErrCalibrationLookup) Unwrap() error { return e.Err }

// ErrCoverage represents an event timestamp outside the geometry
// provider's loaded coverage window.
type ErrCoverage struct {
	Et    float64
	Start float64
	End   float64
}

func (e *ErrCoverage) Error() string {
	return fmt.Sprintf("geometry coverage unavailable at et=%f (window %f..%f)", e.Et, e.Start, e.End)
}

// ErrCreateTable represents an error when creating an output table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }
