package catalog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FieldValue is a catalog field that may arrive as a JSON string or a JSON
// number depending on which backend produced the record. It normalizes both
// to text; numeric interpretation happens at spec-building time.
type FieldValue string

func (v *FieldValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*v = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = FieldValue(str)
		return nil
	}
	*v = FieldValue(s)
	return nil
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

func (v FieldValue) String() string { return string(v) }

// Float parses the field as a locale-independent decimal number.
func (v FieldValue) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
}

// IsEmpty reports whether the field was absent, null or blank.
func (v FieldValue) IsEmpty() bool {
	return strings.TrimSpace(string(v)) == ""
}

// ToolRecord is the equipment catalog wire record. Field names match the
// catalog API responses, which use the legacy Spanish column names.
type ToolRecord struct {
	ID          string `json:"ID"`
	Equipo      string `json:"Equipo"`
	Patron      string `json:"Patron"`
	Dimensiones int    `json:"Dimensiones"`

	Verificacion1 *FieldValue `json:"Verificacion 1,omitempty"`
	Verificacion2 *FieldValue `json:"Verificacion 2,omitempty"`
	Verificacion3 *FieldValue `json:"Verificacion 3,omitempty"`
	Verificacion4 *FieldValue `json:"Verificacion 4,omitempty"`
	Verificacion5 *FieldValue `json:"Verificacion 5,omitempty"`
	Verificacion6 *FieldValue `json:"Verificacion 6,omitempty"`
	Verificacion7 *FieldValue `json:"Verificacion 7,omitempty"`

	Tolerancia      FieldValue `json:"Tolerancia"`
	TiempoCalibrado FieldValue `json:"Tiempo de Calibrado"`
}

// Verificaciones returns the present verification slots in order. Absent
// and blank slots are dropped, not zero-filled, so the indices of the
// remaining values never shift.
func (r *ToolRecord) Verificaciones() []FieldValue {
	slots := []*FieldValue{
		r.Verificacion1, r.Verificacion2, r.Verificacion3, r.Verificacion4,
		r.Verificacion5, r.Verificacion6, r.Verificacion7,
	}
	var present []FieldValue
	for _, s := range slots {
		if s == nil || s.IsEmpty() {
			continue
		}
		present = append(present, *s)
	}
	return present
}
