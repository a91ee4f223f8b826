// Package catalog resolves tool identifiers into calibration.ToolSpec
// values. Two strategies exist: computed specs built from an equipment
// catalog record (uniform tolerance around a sparse list of verification
// values) and fixed-table specs for legacy tool families whose windows are
// build-time constants. The catalog itself is reached through the Client
// interface; transports live in pkg/client and pkg/store.
package catalog
