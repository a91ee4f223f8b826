package calibration

import (
	"strconv"
	"strings"
)

// Evaluate classifies each raw entry against its tolerance window. The
// entry text is parsed with locale-independent decimal parsing ("." as the
// decimal separator); unparsable text and boundary violations are the same
// outcome, a non-conforming dimension. Evaluation is pure and cheap, so
// callers re-run it from the current raw text on every change instead of
// caching flags.
//
// len(entries) must equal len(windows); the resolver guarantees this for
// specs it produces.
func Evaluate(entries []string, windows []ToleranceWindow) []EvaluationResult {
	if len(entries) != len(windows) {
		panic("calibration: entry count does not match tolerance window count")
	}

	results := make([]EvaluationResult, len(entries))
	for i, raw := range entries {
		r := EvaluationResult{Index: i}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			r.Invalid = true
			r.OutOfTolerance = true
		} else {
			r.Value = v
			r.OutOfTolerance = !windows[i].Contains(v)
		}
		results[i] = r
	}
	return results
}

// Decide aggregates per-dimension results into the final record status.
// The status is NO OK iff at least one dimension is out of tolerance.
func Decide(results []EvaluationResult) Decision {
	var violating []int
	for _, r := range results {
		if r.OutOfTolerance {
			violating = append(violating, r.Index)
		}
	}
	if len(violating) == 0 {
		return Decision{Status: StatusOK}
	}
	return Decision{Status: StatusNotOK, ViolatingIndices: violating}
}

// Dimensions returns the violating indices as 1-based dimension numbers,
// the form shown to the operator in the confirmation prompt.
func (d Decision) Dimensions() []int {
	dims := make([]int, len(d.ViolatingIndices))
	for i, idx := range d.ViolatingIndices {
		dims[i] = idx + 1
	}
	return dims
}
