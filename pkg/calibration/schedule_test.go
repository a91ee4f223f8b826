package calibration

import (
	"testing"
	"time"
)

func TestNextDue(t *testing.T) {
	tests := []struct {
		name    string
		today   string
		cadence int
		want    string
	}{
		{name: "90 days crossing months", today: "2024-01-20", cadence: 90, want: "2024-04-19"},
		{name: "365 days crossing year", today: "2024-03-01", cadence: 365, want: "2025-03-01"},
		{name: "month boundary", today: "2024-01-31", cadence: 1, want: "2024-02-01"},
		{name: "leap day", today: "2024-02-28", cadence: 1, want: "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today, err := time.Parse("2006-01-02", tt.today)
			if err != nil {
				t.Fatal(err)
			}
			got := NextDue(today, tt.cadence).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("NextDue(%s, %d) = %s, want %s", tt.today, tt.cadence, got, tt.want)
			}
			// Recomputation from the same inputs must be stable.
			if again := NextDue(today, tt.cadence).Format("2006-01-02"); again != got {
				t.Errorf("NextDue not idempotent: %s then %s", got, again)
			}
		})
	}
}

func TestFormatNextDue(t *testing.T) {
	d := time.Date(2024, 4, 19, 0, 0, 0, 0, time.UTC)
	if got := FormatNextDue(d, LayoutFullDate); got != "2024-04-19" {
		t.Errorf("full date = %s", got)
	}
	if got := FormatNextDue(d, LayoutYearMonth); got != "2024-04" {
		t.Errorf("year-month = %s", got)
	}
}

func TestParseCadenceDays(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"365", 365},
		{"90", 90},
		{" 180 ", 180},
		{"90 dias", 90},
		{"", DefaultCadenceDays},
		{"n/a", DefaultCadenceDays},
		{"0", DefaultCadenceDays},
		{"-30", DefaultCadenceDays},
	}

	for _, tt := range tests {
		if got := ParseCadenceDays(tt.raw); got != tt.want {
			t.Errorf("ParseCadenceDays(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestNewRecord(t *testing.T) {
	spec := ToolSpec{
		ID:               "I-CAL-020",
		ReferencePattern: "I-CAL-003",
		ReferenceValues:  []float64{1, 2, 3},
		CadenceDays:      90,
		NextDueLayout:    LayoutYearMonth,
	}
	now := time.Date(2024, 1, 20, 10, 30, 0, 0, time.UTC)

	rec := NewRecord(spec, "12345", []string{"1.0", "2.0", "3.0"}, StatusOK, "sin novedad", now)

	if rec.Fecha != "2024-01-20" {
		t.Errorf("Fecha = %s", rec.Fecha)
	}
	if rec.SiguienteCalibracion != "2024-04" {
		t.Errorf("SiguienteCalibracion = %s", rec.SiguienteCalibracion)
	}
	if rec.Equipo != "I-CAL-020" || rec.Patron != "I-CAL-003" || rec.Nomina != "12345" {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if rec.Estatus != StatusOK {
		t.Errorf("Estatus = %s", rec.Estatus)
	}

	// The record must hold its own copy of the raw entries.
	entries := []string{"1.0", "2.0", "3.0"}
	rec = NewRecord(spec, "12345", entries, StatusOK, "", now)
	entries[0] = "changed"
	if rec.Dimensiones[0] != "1.0" {
		t.Errorf("Dimensiones aliases caller slice: %v", rec.Dimensiones)
	}
}
