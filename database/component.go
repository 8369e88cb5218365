package database

import (
	"context"
	"fmt"

	"github.com/kbukum/authd/component"
	"github.com/kbukum/authd/database/migration"
	"github.com/kbukum/authd/logger"
)

// Component opens the database on Start and applies migrations when
// Config.Migrate is set.
type Component struct {
	cfg Config
	log *logger.Logger
	db  *DB
}

var _ component.Component = (*Component)(nil)

// NewComponent creates a database component for the registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log}
}

// DB returns the opened database, or nil before Start.
func (c *Component) DB() *DB { return c.db }

func (c *Component) Name() string { return "database" }

func (c *Component) Start(ctx context.Context) error {
	db, err := Open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("database start: %w", err)
	}
	if c.cfg.Migrate {
		if err := migration.Up(db.GormDB); err != nil {
			_ = db.Close()
			return fmt.Errorf("database migrate: %w", err)
		}
		version, _, _ := migration.Version(db.GormDB)
		db.log.Info("schema migrated", logger.Fields("version", version))
	}
	c.db = db
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.db == nil {
		h.Status, h.Message = component.StatusUnhealthy, "database not initialized"
		return h
	}
	if err := c.db.PingContext(ctx); err != nil {
		h.Status, h.Message = component.StatusUnhealthy, fmt.Sprintf("ping failed: %v", err)
	}
	return h
}
