package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/caltrack/caltrack/pkg/calibration"
	"github.com/caltrack/caltrack/pkg/utils/ptr"
)

var defaultFileConfig = &RawFileConfig{
	Listen:             ptr.To("127.0.0.1:3002"),
	DatabasePath:       ptr.To("caltrack.db"),
	SeedPath:           ptr.To(""),
	DueScanCron:        ptr.To("@daily"),
	DefaultCadenceDays: ptr.To(calibration.DefaultCadenceDays),
}

var _ Config = &File{}

type File struct {
	c        *RawFileConfig
	mu       *sync.RWMutex
	filepath string
}

func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

func NewFileFromConfig(c *RawFileConfig, configPath string) *File {
	if c == nil {
		c = defaultFileConfig
	}

	return &File{
		c:        c,
		mu:       &sync.RWMutex{},
		filepath: configPath,
	}
}

// RawFileConfig is the on-disk shape. Pointer fields distinguish "absent,
// use the default" from an explicit value.
type RawFileConfig struct {
	Listen             *string `json:"listen,omitempty"`
	DatabasePath       *string `json:"databasePath,omitempty"`
	SeedPath           *string `json:"seedPath,omitempty"`
	DueScanCron        *string `json:"dueScanCron,omitempty"`
	DefaultCadenceDays *int    `json:"defaultCadenceDays,omitempty"`
}

func NewRawFileConfigFromConfig(c Config) (*RawFileConfig, error) {
	if c == nil {
		return nil, pkgerrors.New("config is nil")
	}

	return &RawFileConfig{
		Listen:             ptr.To(c.Listen()),
		DatabasePath:       ptr.To(c.DatabasePath()),
		SeedPath:           ptr.To(c.SeedPath()),
		DueScanCron:        ptr.To(c.DueScanCron()),
		DefaultCadenceDays: ptr.To(c.DefaultCadenceDays()),
	}, nil
}

func (f *File) Listen() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.Listen != nil {
		return *f.c.Listen
	}
	return *defaultFileConfig.Listen
}

func (f *File) DatabasePath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DatabasePath != nil {
		return *f.c.DatabasePath
	}
	return *defaultFileConfig.DatabasePath
}

func (f *File) SeedPath() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.SeedPath != nil {
		return *f.c.SeedPath
	}
	return *defaultFileConfig.SeedPath
}

func (f *File) DueScanCron() string {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DueScanCron != nil {
		return *f.c.DueScanCron
	}
	return *defaultFileConfig.DueScanCron
}

func (f *File) DefaultCadenceDays() int {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c.DefaultCadenceDays != nil && *f.c.DefaultCadenceDays > 0 {
		return *f.c.DefaultCadenceDays
	}
	return *defaultFileConfig.DefaultCadenceDays
}

func (f *File) SetListen(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.Listen = &s
}

func (f *File) SetDatabasePath(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DatabasePath = &s
}

func (f *File) SetSeedPath(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.SeedPath = &s
}

func (f *File) SetDueScanCron(s string) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DueScanCron = &s
}

func (f *File) SetDefaultCadenceDays(i int) {
	if f.c == nil {
		panic("config is nil")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.c.DefaultCadenceDays = &i
}

func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// If the file does not exist, return the empty config.
			// Do not make f.c a nil.
			f.c = &RawFileConfig{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	// Since we want to tell if the file is empty, using json.Decoder will
	// not work.
	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.c = &RawFileConfig{}
		return nil
	}

	conf := RawFileConfig{}
	if err := json.Unmarshal(b, &conf); err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", f.filepath)
	}
	f.c = &conf

	return nil
}

func (f *File) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.c == nil {
		return pkgerrors.New("config is nil")
	}

	fp, err := os.OpenFile(f.filepath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.c); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode config to file %s", f.filepath)
	}

	return nil
}

func (f *File) LogrusFields() logrus.Fields {
	if f.c == nil {
		panic("config is nil")
	}

	return logrus.Fields{
		"listen":             f.Listen(),
		"databasePath":       f.DatabasePath(),
		"seedPath":           f.SeedPath(),
		"dueScanCron":        f.DueScanCron(),
		"defaultCadenceDays": f.DefaultCadenceDays(),
	}
}
