package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/catalog"
)

func newTestDaemon(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(strings.TrimPrefix(srv.URL, "http://"))
}

func TestGetToolRecordNotFound(t *testing.T) {
	c := newTestDaemon(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetToolRecord(context.Background(), "NOPE")
	if !pkgerrors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v, want catalog.ErrNotFound", err)
	}
}

func TestGetToolRecordDecodes(t *testing.T) {
	c := newTestDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tools/V-100" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"ID":"V-100","Equipo":"Vernier","Verificacion 1":1,"Tolerancia":"0.001"}`))
	})

	rec, err := c.GetToolRecord(context.Background(), "V-100")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Equipo != "Vernier" || rec.Verificacion1.String() != "1" {
		t.Errorf("record = %+v", rec)
	}
}

func TestSubmitRecordPostsJSON(t *testing.T) {
	var got calibration.Record
	c := newTestDaemon(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/calibrations" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	err := c.SubmitRecord(context.Background(), calibration.Record{
		Equipo: "V-100", Nomina: "1", Estatus: calibration.StatusOK,
		Dimensiones: []string{"1.0"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Equipo != "V-100" || got.Estatus != calibration.StatusOK {
		t.Errorf("posted record = %+v", got)
	}
}

func TestSubmitRecordSurfacesServerError(t *testing.T) {
	c := newTestDaemon(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.SubmitRecord(context.Background(), calibration.Record{Equipo: "V-100"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
}

func TestNextCalibrationOfNoContent(t *testing.T) {
	c := newTestDaemon(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	_, ok, err := c.NextCalibrationOf(context.Background(), "V-100")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no schedule")
	}
}

func TestNextCalibrationOfParsesBothLayouts(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"Siguiente Calibracion":"2024-04-19"}`, "2024-04-19"},
		{`{"Siguiente Calibracion":"2024-04"}`, "2024-04-01"},
	}
	for _, tt := range tests {
		c := newTestDaemon(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(tt.body))
		})
		next, ok, err := c.NextCalibrationOf(context.Background(), "V-100")
		if err != nil || !ok {
			t.Fatalf("ok = %v, err = %v", ok, err)
		}
		if got := next.Format("2006-01-02"); got != tt.want {
			t.Errorf("next = %s, want %s", got, tt.want)
		}
	}
}

func TestGetVersionStripsQuotes(t *testing.T) {
	c := newTestDaemon(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"1.2.3"`))
	})

	v, err := c.GetVersion(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.2.3" {
		t.Errorf("version = %q", v)
	}
}
