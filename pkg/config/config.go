package config

type Config interface {
	Listen() string
	DatabasePath() string
	SeedPath() string
	DueScanCron() string
	DefaultCadenceDays() int

	SetListen(string)
	SetDatabasePath(string)
	SetSeedPath(string)
	SetDueScanCron(string)
	SetDefaultCadenceDays(int)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
