package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rickgao/barcheck/internal/reconcile"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Calendar.validate(); err != nil {
		return err
	}

	if c.Assets.File == "" {
		return errors.New("assets.file is required")
	}

	if err := c.Archives.A.validate("archives.a"); err != nil {
		return err
	}
	if err := c.Archives.B.validate("archives.b"); err != nil {
		return err
	}

	if c.Reconcile.Concurrency < 1 {
		return errors.New("reconcile.concurrency must be >= 1")
	}
	if c.Reconcile.Timeout < 0 {
		return errors.New("reconcile.timeout must be >= 0")
	}
	if _, err := reconcile.ParseReportField(c.Reconcile.ReportField); err != nil {
		return fmt.Errorf("reconcile.report_field: %w", err)
	}
	if !c.Reconcile.Start.IsZero() && !c.Reconcile.End.IsZero() && c.Reconcile.Start.After(c.Reconcile.End) {
		return errors.New("reconcile.start cannot be after reconcile.end")
	}

	if c.Watch.Interval <= 0 {
		return errors.New("watch.interval must be > 0")
	}
	if c.Watch.Lookback < 1 {
		return errors.New("watch.lookback must be >= 1")
	}

	if c.Output.Persist {
		if err := c.Output.Database.validate("output.database"); err != nil {
			return err
		}
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level must be one of %v, got %q", logLevels, c.Log.Level)
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("log.format must be one of %v, got %q", logFormats, c.Log.Format)
	}

	return nil
}

func (cal *CalendarConfig) validate() error {
	if cal.File != "" {
		return nil
	}
	if cal.Start.IsZero() || cal.End.IsZero() {
		return errors.New("calendar.file or calendar.start and calendar.end are required")
	}
	if cal.Start.After(cal.End) {
		return errors.New("calendar.start cannot be after calendar.end")
	}
	return nil
}

func (a *ArchiveConfig) validate(prefix string) error {
	switch a.Kind {
	case KindCSV:
		if a.Path == "" {
			return fmt.Errorf("%s.path is required for kind %q", prefix, KindCSV)
		}
	case KindPostgres:
		if a.Table == "" {
			return fmt.Errorf("%s.table is required for kind %q", prefix, KindPostgres)
		}
		if err := a.Database.validate(prefix + ".database"); err != nil {
			return err
		}
	case KindSQLite:
		if a.Path == "" {
			return fmt.Errorf("%s.path is required for kind %q", prefix, KindSQLite)
		}
	case "":
		return fmt.Errorf("%s.kind is required", prefix)
	default:
		return fmt.Errorf("%s.kind must be one of [%s %s %s], got %q",
			prefix, KindCSV, KindPostgres, KindSQLite, a.Kind)
	}
	if a.RateLimit < 0 {
		return fmt.Errorf("%s.rate_limit cannot be negative", prefix)
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
