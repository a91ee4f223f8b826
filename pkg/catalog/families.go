package catalog

import "github.com/caltrack/caltrack/pkg/calibration"

// Family is a build-time tolerance definition for legacy tool types that
// have no dynamic catalog entry. Either ReferenceValues+ToleranceMagnitude
// or FixedWindows is set, mirroring the two spec shapes.
type Family struct {
	Name               string
	ReferencePattern   string
	ReferenceValues    []float64
	ToleranceMagnitude float64
	FixedWindows       []calibration.ToleranceWindow
	CadenceDays        int
	NextDueLayout      calibration.DateLayout
}

// Spec instantiates the family definition for a concrete tool.
func (f Family) Spec(toolID string) calibration.ToolSpec {
	return calibration.ToolSpec{
		ID:                 toolID,
		Name:               f.Name,
		ReferencePattern:   f.ReferencePattern,
		ReferenceValues:    f.ReferenceValues,
		ToleranceMagnitude: f.ToleranceMagnitude,
		FixedWindows:       f.FixedWindows,
		CadenceDays:        f.CadenceDays,
		NextDueLayout:      f.NextDueLayout,
	}
}

// LegacyFamilies maps tool identifiers to their fixed definitions. The
// window tables are carried over from the per-tool calibration sheets;
// where near-identical tools disagree on a constant, both values were kept
// as observed rather than reconciled (pending product clarification).
func LegacyFamilies() map[string]Family {
	vernier12 := Family{
		Name:               "Vernier 12in",
		ReferencePattern:   "I-CAL-003",
		ReferenceValues:    []float64{1, 2, 3, 1, 2, 3},
		ToleranceMagnitude: 0.001,
		CadenceDays:        90,
		NextDueLayout:      calibration.LayoutYearMonth,
	}
	gaugeSet := Family{
		Name:             "Gauge block set",
		ReferencePattern: "I-CAL-003",
		FixedWindows: []calibration.ToleranceWindow{
			{Min: 1.38, Max: 2.62},
			{Min: 9.38, Max: 10.62},
			{Min: 19.38, Max: 20.62},
			{Min: 29.38, Max: 30.62},
			{Min: 39.38, Max: 40.62},
			{Min: 79.38, Max: 80.62},
			{Min: 119.38, Max: 120.62},
		},
		CadenceDays:   90,
		NextDueLayout: calibration.LayoutFullDate,
	}
	flexometer := Family{
		Name:               "Flexometro",
		ReferencePattern:   "I-CAL-001",
		ReferenceValues:    []float64{100, 300, 1000, 3000},
		ToleranceMagnitude: 1,
		CadenceDays:        90,
		NextDueLayout:      calibration.LayoutFullDate,
	}
	protractor := Family{
		Name:               "Transportador",
		ReferencePattern:   "I-CAL-002",
		ReferenceValues:    []float64{30, 45, 60, 90},
		ToleranceMagnitude: 0.5,
		CadenceDays:        365,
		NextDueLayout:      calibration.LayoutFullDate,
	}

	return map[string]Family{
		"I-CAL-020": vernier12,
		"I-CAL-021": gaugeSet,
		"I-CAL-030": flexometer,
		"I-CAL-031": flexometer,
		"I-CAL-040": protractor,
	}
}
