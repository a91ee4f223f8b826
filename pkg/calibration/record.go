package calibration

import "time"

// NewRecord assembles the final record payload at submission time. Entries
// are copied verbatim; the date and next calibration both derive from now,
// so a record saved early still schedules a full cadence ahead.
func NewRecord(spec ToolSpec, nomina string, entries []string, status Status, comments string, now time.Time) Record {
	dims := make([]string, len(entries))
	copy(dims, entries)

	return Record{
		Nomina:               nomina,
		Equipo:               spec.ID,
		Fecha:                now.Format(string(LayoutFullDate)),
		Dimensiones:          dims,
		Estatus:              status,
		Patron:               spec.ReferencePattern,
		SiguienteCalibracion: FormatNextDue(NextDue(now, spec.CadenceDays), spec.NextDueLayout),
		Comentarios:          comments,
	}
}
