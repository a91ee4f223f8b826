package catalog

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/caltrack/caltrack/pkg/calibration"
)

// ErrNotFound is returned when a tool identifier is unknown to both the
// fixed-table families and the equipment catalog.
var ErrNotFound = pkgerrors.New("tool not found in catalog")

// SpecMalformedError indicates a catalog record whose numeric fields do not
// parse. The tool cannot be calibrated until the catalog entry is repaired.
type SpecMalformedError struct {
	ToolID string
	Field  string
	Value  string
}

func (e *SpecMalformedError) Error() string {
	return fmt.Sprintf("malformed catalog spec for %s: field %q has non-numeric value %q", e.ToolID, e.Field, e.Value)
}

// Client fetches raw tool records from the equipment catalog.
type Client interface {
	GetToolRecord(ctx context.Context, toolID string) (*ToolRecord, error)
}

// Resolver turns tool identifiers into calibration specs. Fixed-table
// families win over the catalog: they exist precisely because those tools
// have no dynamic catalog entry.
type Resolver struct {
	client   Client
	families map[string]Family
}

func NewResolver(client Client, families map[string]Family) *Resolver {
	if families == nil {
		families = LegacyFamilies()
	}
	return &Resolver{client: client, families: families}
}

// Resolve produces the ToolSpec for toolID. It returns ErrNotFound for
// unknown identifiers and *SpecMalformedError for catalog records whose
// numeric fields do not parse.
func (r *Resolver) Resolve(ctx context.Context, toolID string) (calibration.ToolSpec, error) {
	if fam, ok := r.families[toolID]; ok {
		return fam.Spec(toolID), nil
	}
	if r.client == nil {
		return calibration.ToolSpec{}, ErrNotFound
	}

	rec, err := r.client.GetToolRecord(ctx, toolID)
	if err != nil {
		return calibration.ToolSpec{}, err
	}

	return SpecFromRecord(toolID, rec)
}

// SpecFromRecord builds a computed-tolerance spec from a catalog record.
// The number of dimensions is the number of present verification slots; a
// catalog Dimensiones count that disagrees is ignored in favor of the
// values that actually exist.
func SpecFromRecord(toolID string, rec *ToolRecord) (calibration.ToolSpec, error) {
	verifs := rec.Verificaciones()
	if len(verifs) == 0 {
		return calibration.ToolSpec{}, &SpecMalformedError{ToolID: toolID, Field: "Verificacion 1", Value: ""}
	}

	refs := make([]float64, len(verifs))
	for i, v := range verifs {
		f, err := v.Float()
		if err != nil {
			return calibration.ToolSpec{}, &SpecMalformedError{
				ToolID: toolID,
				Field:  fmt.Sprintf("Verificacion %d", i+1),
				Value:  v.String(),
			}
		}
		refs[i] = f
	}

	tol, err := rec.Tolerancia.Float()
	if err != nil {
		return calibration.ToolSpec{}, &SpecMalformedError{
			ToolID: toolID,
			Field:  "Tolerancia",
			Value:  rec.Tolerancia.String(),
		}
	}

	return calibration.ToolSpec{
		ID:                 toolID,
		Name:               rec.Equipo,
		ReferencePattern:   rec.Patron,
		ReferenceValues:    refs,
		ToleranceMagnitude: tol,
		CadenceDays:        calibration.ParseCadenceDays(rec.TiempoCalibrado.String()),
		NextDueLayout:      calibration.LayoutYearMonth,
	}, nil
}
