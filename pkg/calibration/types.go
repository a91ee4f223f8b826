package calibration

// Status is the aggregate pass/fail outcome of a calibration record. The
// string values are stored verbatim in the record log, so they must never
// change.
type Status string

const (
	StatusOK    Status = "OK"
	StatusNotOK Status = "NO OK"
)

// DateLayout selects the external representation of the next calibration
// date. Both layouts represent the same computed date; tool families differ
// in what their downstream store expects.
type DateLayout string

const (
	LayoutFullDate  DateLayout = "2006-01-02"
	LayoutYearMonth DateLayout = "2006-01"
)

// ToleranceWindow is the closed numeric interval [Min, Max] a measurement
// must fall within to be conforming.
type ToleranceWindow struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v conforms. Both bounds are inclusive: a
// measurement exactly equal to Min or Max is in tolerance.
func (w ToleranceWindow) Contains(v float64) bool {
	return v >= w.Min && v <= w.Max
}

// ToolSpec describes one tool's calibration requirements. It is resolved
// once per session (see pkg/catalog) and read-only afterwards.
type ToolSpec struct {
	ID               string
	Name             string
	ReferencePattern string

	// ReferenceValues holds the expected value per dimension. Sparse
	// catalog slots are dropped by the resolver, so every element here is
	// a real dimension.
	ReferenceValues []float64

	// ToleranceMagnitude is the uniform tolerance applied around each
	// reference value. Ignored when FixedWindows is set.
	ToleranceMagnitude float64

	// FixedWindows, when non-nil, overrides the computed windows. Used by
	// legacy tool families whose per-dimension tolerances are non-uniform
	// constants rather than reference ± magnitude.
	FixedWindows []ToleranceWindow

	CadenceDays   int
	NextDueLayout DateLayout
}

// DimensionCount returns the number of dimensions a technician must enter.
func (s ToolSpec) DimensionCount() int {
	if s.FixedWindows != nil {
		return len(s.FixedWindows)
	}
	return len(s.ReferenceValues)
}

// ToleranceWindows returns one window per dimension, either the fixed table
// or reference ± magnitude.
func (s ToolSpec) ToleranceWindows() []ToleranceWindow {
	if s.FixedWindows != nil {
		return s.FixedWindows
	}
	windows := make([]ToleranceWindow, len(s.ReferenceValues))
	for i, v := range s.ReferenceValues {
		windows[i] = ToleranceWindow{Min: v - s.ToleranceMagnitude, Max: v + s.ToleranceMagnitude}
	}
	return windows
}

// EvaluationResult is the classification of one entered measurement.
// Invalid (unparsable) text is always out of tolerance.
type EvaluationResult struct {
	Index          int
	Value          float64
	Invalid        bool
	OutOfTolerance bool
}

// Decision is the aggregate of an evaluation pass. ViolatingIndices is
// 0-based and ordered; callers display them 1-based to the operator.
type Decision struct {
	Status           Status
	ViolatingIndices []int
}

// Record is the persisted calibration record. Field names match the wire
// shape expected by the record store. Dimensiones preserves the raw entered
// text verbatim for audit.
type Record struct {
	Nomina               string   `json:"nomina"`
	Equipo               string   `json:"equipo"`
	Fecha                string   `json:"fecha"`
	Dimensiones          []string `json:"dimensiones"`
	Estatus              Status   `json:"estatus"`
	Patron               string   `json:"patron"`
	SiguienteCalibracion string   `json:"siguienteCalibracion"`
	Comentarios          string   `json:"comentarios"`
}
