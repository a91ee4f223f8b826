package daemon

import (
	"context"
	"encoding/json"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/store"
)

// seedTools loads tool records from a JSON file into the catalog store.
// The file holds an array of tool records keyed the way the legacy
// measurement sheets export them.
func seedTools(ctx context.Context, tools store.ToolStore, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read seed file %s", path)
	}

	var recs []catalog.ToolRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal seed file %s", path)
	}

	for i := range recs {
		rec := &recs[i]
		if rec.ID == "" {
			return pkgerrors.Errorf("seed file %s: record %d has no ID", path, i)
		}
		if err := tools.PutToolRecord(ctx, rec); err != nil {
			return pkgerrors.Wrapf(err, "failed to store tool %s", rec.ID)
		}
	}

	logrus.WithFields(logrus.Fields{
		"path":  path,
		"tools": len(recs),
	}).Info("catalog seeded")

	return nil
}
