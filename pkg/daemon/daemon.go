package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/caltrack/caltrack/pkg/config"
	"github.com/caltrack/caltrack/pkg/events"
	"github.com/caltrack/caltrack/pkg/store"
	"github.com/caltrack/caltrack/pkg/store/sqlite"
)

// server bundles the stores and the event hub behind the HTTP handlers.
type server struct {
	conf    config.Config
	tools   store.ToolStore
	records interface {
		store.RecordStore
		store.RecordLog
	}
	schedule store.ScheduleSource
	hub      *events.Hub
}

func setupRoutes(s *server) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/api/tools", s.getTools)
	router.GET("/api/tools/:id", s.getTool)
	router.GET("/api/tools/:id/next-calibration", s.getNextCalibration)
	router.POST("/api/calibrations", s.postCalibration)
	router.GET("/api/calibrations", s.listCalibrations)
	router.GET("/events", s.getEvents)
	router.GET("/version", s.getVersion)

	return router
}

func Run(configPath string) error {
	conf, err := config.NewFile(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			if err := conf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	st, err := sqlite.Open(conf.DatabasePath())
	if err != nil {
		logrus.Fatalf("failed to open store: %v", err)
	}

	if path := conf.SeedPath(); path != "" {
		if err := seedTools(context.Background(), st, path); err != nil {
			logrus.Fatalf("failed to seed catalog: %v", err)
		}
	}

	hub := events.NewHub()
	srv := &server{conf: conf, tools: st, records: st, schedule: st, hub: hub}

	scanner := NewDueScanner(func() error {
		return scanDue(context.Background(), st, st, hub)
	})
	if expr := conf.DueScanCron(); expr != "" {
		if err := scanner.Schedule(expr); err != nil {
			logrus.Fatalf("invalid dueScanCron expression %q: %v", expr, err)
		}
		scanner.Start()
	}

	httpSrv := &http.Server{
		Handler: setupRoutes(srv),
	}

	l, err := net.Listen("tcp", conf.Listen())
	if err != nil {
		logrus.Fatal(err)
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := httpSrv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := httpSrv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("stopping due scanner")
	scanner.Stop()

	logrus.Info("closing store")
	if err := st.Close(); err != nil {
		logrus.Errorf("failed to close store: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
