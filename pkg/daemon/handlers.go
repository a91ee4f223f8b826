package daemon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
	"github.com/caltrack/caltrack/pkg/events"
	"github.com/caltrack/caltrack/pkg/store"
	"github.com/caltrack/caltrack/pkg/version"
)

func (s *server) getTools(c *gin.Context) {
	ids, err := s.tools.ListToolIDs(c.Request.Context())
	if err != nil {
		logrus.Errorf("getTools failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	out := make([]gin.H, 0, len(ids))
	for _, id := range ids {
		out = append(out, gin.H{"ID": id})
	}
	c.IndentedJSON(http.StatusOK, out)
}

func (s *server) getTool(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.tools.GetToolRecord(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.IndentedJSON(http.StatusNotFound, err.Error())
			_ = c.AbortWithError(http.StatusNotFound, err)
			return
		}
		logrus.Errorf("getTool failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, rec)
}

func (s *server) getNextCalibration(c *gin.Context) {
	id := c.Param("id")
	next, ok, err := s.schedule.NextCalibrationOf(c.Request.Context(), id)
	if err != nil {
		logrus.Errorf("getNextCalibration failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"Siguiente Calibracion": next.Format(string(calibration.LayoutFullDate)),
	})
}

func (s *server) postCalibration(c *gin.Context) {
	var rec calibration.Record
	if err := c.BindJSON(&rec); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := validateRecord(&rec); err != nil {
		c.IndentedJSON(http.StatusBadRequest, err.Error())
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := s.records.SubmitRecord(c.Request.Context(), rec); err != nil {
		logrus.Errorf("postCalibration failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	logrus.WithFields(logrus.Fields{
		"equipo":  rec.Equipo,
		"nomina":  rec.Nomina,
		"estatus": rec.Estatus,
	}).Info("calibration record stored")

	s.hub.Publish(events.CalibrationRecorded, events.CalibrationRecordedEvent{
		Equipo:          rec.Equipo,
		Nomina:          rec.Nomina,
		Estatus:         string(rec.Estatus),
		NextCalibration: rec.SiguienteCalibracion,
		Ts:              time.Now().Unix(),
	})

	c.IndentedJSON(http.StatusCreated, gin.H{"mensaje": "Calibración registrada correctamente"})
}

func (s *server) listCalibrations(c *gin.Context) {
	equipo := c.Query("equipo")
	if equipo == "" {
		c.IndentedJSON(http.StatusBadRequest, "missing equipo query parameter")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.IndentedJSON(http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	recs, err := s.records.ListRecords(c.Request.Context(), equipo, limit)
	if err != nil {
		logrus.Errorf("listCalibrations failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	c.IndentedJSON(http.StatusOK, recs)
}

func (s *server) getEvents(c *gin.Context) {
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	c.Stream(func(_ io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *server) getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func validateRecord(rec *calibration.Record) error {
	switch {
	case rec.Equipo == "":
		return errors.New("equipo is required")
	case rec.Nomina == "":
		return errors.New("nomina is required")
	case len(rec.Dimensiones) == 0:
		return errors.New("dimensiones must not be empty")
	case rec.Estatus != calibration.StatusOK && rec.Estatus != calibration.StatusNotOK:
		return errors.New("estatus must be OK or NO OK")
	}
	return nil
}

// scanDue walks the catalog and publishes a calibration.due event for each
// tool whose scheduled calibration date has passed.
func scanDue(ctx context.Context, tools store.ToolStore, schedule store.ScheduleSource, hub *events.Hub) error {
	ids, err := tools.ListToolIDs(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, id := range ids {
		next, ok, err := schedule.NextCalibrationOf(ctx, id)
		if err != nil {
			logrus.WithError(err).WithField("tool", id).Warn("due scan: failed to read schedule")
			continue
		}
		if !ok || next.After(now) {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"tool": id,
			"due":  next.Format(string(calibration.LayoutFullDate)),
		}).Warn("tool calibration overdue")
		hub.Publish(events.CalibrationDue, events.CalibrationDueEvent{
			Equipo:  id,
			DueDate: next.Format(string(calibration.LayoutFullDate)),
			Ts:      now.Unix(),
		})
	}
	return nil
}
