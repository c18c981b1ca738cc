package config

import "time"

// Archive kinds.
const (
	KindCSV      = "csv"
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
)

// Config is the root configuration for a reconciliation run.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Calendar  CalendarConfig  `yaml:"calendar"`
	Assets    AssetsConfig    `yaml:"assets"`
	Archives  ArchivesConfig  `yaml:"archives"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Watch     WatchConfig     `yaml:"watch"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// InstanceConfig identifies this run in logs and persisted results.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// CalendarConfig selects the trading calendar. Either File is set, or
// Start/End (plus optional Holidays) describe a weekday calendar.
type CalendarConfig struct {
	File     string      `yaml:"file"` // One YYYY-MM-DD per line
	Start    time.Time   `yaml:"start"`
	End      time.Time   `yaml:"end"`
	Holidays []time.Time `yaml:"holidays"`
}

// AssetsConfig points at the asset directory and the assets to compare.
type AssetsConfig struct {
	File string  `yaml:"file"`
	SIDs []int64 `yaml:"sids"` // Empty means every asset in the file
}

// ArchivesConfig holds the two archives being reconciled.
type ArchivesConfig struct {
	A ArchiveConfig `yaml:"a"`
	B ArchiveConfig `yaml:"b"`
}

// ArchiveConfig describes one bar archive.
type ArchiveConfig struct {
	Kind      string   `yaml:"kind"`       // "csv", "postgres" or "sqlite"
	Path      string   `yaml:"path"`       // csv and sqlite
	Table     string   `yaml:"table"`      // postgres and sqlite
	Database  DBConfig `yaml:"database"`   // postgres only
	RateLimit float64  `yaml:"rate_limit"` // Reads per second, 0 for unlimited
	Burst     int      `yaml:"burst"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ReconcileConfig holds comparison settings.
type ReconcileConfig struct {
	Start       time.Time     `yaml:"start"` // Zero means first calendar day
	End         time.Time     `yaml:"end"`   // Zero means last calendar day
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	ReportField string        `yaml:"report_field"`
}

// WatchConfig holds settings for repeated runs over recent days.
type WatchConfig struct {
	Interval time.Duration `yaml:"interval"`
	Lookback int           `yaml:"lookback"` // Trading days per run
}

// OutputConfig controls where results go.
type OutputConfig struct {
	JSONPath string   `yaml:"json_path"` // "-" or empty writes to stdout
	Persist  bool     `yaml:"persist"`   // Store results in Database
	Database DBConfig `yaml:"database"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
