package events

import "encoding/json"

// Event name constants
const (
	CalibrationRecorded = "calibration.recorded"
	CalibrationDue      = "calibration.due"
)

// Event is a generic SSE event from the daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// CalibrationRecordedEvent is the typed payload for calibration.recorded.
type CalibrationRecordedEvent struct {
	Equipo          string `json:"equipo"`
	Nomina          string `json:"nomina"`
	Estatus         string `json:"estatus"`
	NextCalibration string `json:"nextCalibration"`
	Ts              int64  `json:"ts"`
}

// CalibrationDueEvent is the typed payload for calibration.due, published
// by the due scanner for tools whose scheduled calibration date has passed.
type CalibrationDueEvent struct {
	Equipo  string `json:"equipo"`
	DueDate string `json:"dueDate"`
	Ts      int64  `json:"ts"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// It ignores the event name and simply unmarshals Data into T. If Data is
// empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}
