package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultInstanceID  = "barcheck"
	DefaultTable       = "daily_bars"
	DefaultDBPort      = 5432
	DefaultDBSSLMode   = "prefer"
	DefaultMaxConns    = 10
	DefaultMinConns    = 2
	DefaultConcurrency = 8
	DefaultTimeout     = 30 * time.Minute
	DefaultReportField = "volume"
	DefaultWatchEvery  = 24 * time.Hour
	DefaultLookback    = 5
	DefaultBurst       = 10
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}

	// Archive defaults
	applyArchiveDefaults(&c.Archives.A)
	applyArchiveDefaults(&c.Archives.B)

	// Reconcile defaults
	if c.Reconcile.Concurrency == 0 {
		c.Reconcile.Concurrency = DefaultConcurrency
	}
	if c.Reconcile.Timeout == 0 {
		c.Reconcile.Timeout = DefaultTimeout
	}
	if c.Reconcile.ReportField == "" {
		c.Reconcile.ReportField = DefaultReportField
	}

	// Watch defaults
	if c.Watch.Interval == 0 {
		c.Watch.Interval = DefaultWatchEvery
	}
	if c.Watch.Lookback == 0 {
		c.Watch.Lookback = DefaultLookback
	}

	// Output defaults
	if c.Output.Persist {
		applyDBDefaults(&c.Output.Database)
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

func applyArchiveDefaults(a *ArchiveConfig) {
	if a.RateLimit > 0 && a.Burst == 0 {
		a.Burst = DefaultBurst
	}
	switch a.Kind {
	case KindPostgres:
		applyDBDefaults(&a.Database)
	case KindSQLite:
	default:
		return
	}
	if a.Table == "" {
		a.Table = DefaultTable
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
