// Package calibration implements the calibration validation and scheduling
// engine. It contains:
//
//   - ToolSpec and ToleranceWindow: reference values and the inclusive
//     intervals measurements are checked against
//   - Evaluate and Decide: per-dimension classification and the aggregate
//     OK / NO OK decision
//   - NextDue and ParseCadenceDays: next-calibration date arithmetic
//   - Record: the persisted calibration record as sent on the wire
//
// Everything in this package is pure computation. Fetching tool specs and
// persisting records belong to pkg/catalog and pkg/store; the submission
// workflow that ties them together lives in pkg/session.
package calibration
