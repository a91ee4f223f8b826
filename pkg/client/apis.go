package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/store"
)

func (c *Client) GetToolIDs(ctx context.Context) ([]string, error) {
	ret, err := c.Get(ctx, "/api/tools")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list tools")
	}

	var entries []struct {
		ID string `json:"ID"`
	}
	if err := json.Unmarshal([]byte(ret), &entries); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal tool list")
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// GetToolRecord fetches one tool's catalog record. A 404 from the daemon
// maps to catalog.ErrNotFound so resolver callers see a single sentinel.
func (c *Client) GetToolRecord(ctx context.Context, toolID string) (*catalog.ToolRecord, error) {
	ret, err := c.Get(ctx, "/api/tools/"+url.PathEscape(toolID))
	if err != nil {
		if pkgerrors.Is(err, ErrNotFound) {
			return nil, catalog.ErrNotFound
		}
		return nil, pkgerrors.Wrapf(err, "failed to get tool %s", toolID)
	}

	var rec catalog.ToolRecord
	if err := json.Unmarshal([]byte(ret), &rec); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal tool record")
	}
	return &rec, nil
}

func (c *Client) SubmitRecord(ctx context.Context, rec calibration.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal calibration record")
	}
	if _, err := c.Post(ctx, "/api/calibrations", string(payload)); err != nil {
		return pkgerrors.Wrapf(err, "failed to submit calibration record for %s", rec.Equipo)
	}
	return nil
}

func (c *Client) ListRecords(ctx context.Context, toolID string, limit int) ([]calibration.Record, error) {
	path := "/api/calibrations?equipo=" + url.QueryEscape(toolID)
	if limit > 0 {
		path += "&limit=" + strconv.Itoa(limit)
	}
	ret, err := c.Get(ctx, path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to list calibrations for %s", toolID)
	}

	var recs []calibration.Record
	if err := json.Unmarshal([]byte(ret), &recs); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal calibration records")
	}
	return recs, nil
}

// NextCalibrationOf asks the daemon for the tool's scheduled next
// calibration. The daemon answers 204 with an empty body when no record is
// on file.
func (c *Client) NextCalibrationOf(ctx context.Context, toolID string) (time.Time, bool, error) {
	ret, err := c.Get(ctx, "/api/tools/"+url.PathEscape(toolID)+"/next-calibration")
	if err != nil {
		return time.Time{}, false, pkgerrors.Wrapf(err, "failed to get next calibration of %s", toolID)
	}
	if ret == "" {
		return time.Time{}, false, nil
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(ret), &out); err != nil {
		return time.Time{}, false, pkgerrors.Wrapf(err, "failed to unmarshal next calibration")
	}
	t, ok := store.ParseNextCalibration(out["Siguiente Calibracion"])
	return t, ok, nil
}

func (c *Client) GetVersion(ctx context.Context) (string, error) {
	ret, err := c.Get(ctx, "/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	// Remove "" around JSON string. I don't want to use a JSON decoder just for this.
	if len(ret) >= 2 && ret[0] == '"' {
		ret = ret[1 : len(ret)-1]
	}
	return ret, nil
}

var (
	_ catalog.Client       = (*Client)(nil)
	_ store.RecordStore    = (*Client)(nil)
	_ store.RecordLog      = (*Client)(nil)
	_ store.ScheduleSource = (*Client)(nil)
)
