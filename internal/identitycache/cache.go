// Package identitycache is the out-of-scope "relational identity cache"
// collaborator: a GORM-backed mirror of Identity documents for callers
// that want an SQL-backed lookup by address instead of walking the
// fabric index. Rows also carry the name and email properties, which
// the table indexes, but Cache offers no lookup by them. It is fed by
// whoever calls Refresh, never authoritative: the change store is
// always the source of truth, and this cache can be rebuilt from it at
// any time.
package identitycache

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/guarantor-network/fabric/pkg/docdiff"
)

// Open connects to driver ("postgres" or "sqlite") at dsn, auto-migrates
// the identity_cache table, and returns a ready Cache. Production
// deployments should prefer internal/migrate.RunMigrations against the
// same dsn ahead of time and skip AutoMigrate; Open's own AutoMigrate
// call is here so a cache opened through internal/server's
// Server.IdentityCache works without a separate migration step in the
// zero-config case.
func Open(driver, dsn string) (*Cache, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported identity cache driver: %s (supported: postgres, sqlite)", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open identity cache: %w", err)
	}

	cache := New(db)
	if err := cache.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("migrate identity cache: %w", err)
	}
	return cache, nil
}

// Record is the cached row for one Identity document's current head.
type Record struct {
	Address   string    `gorm:"primaryKey;type:varchar(64)" json:"address"`
	HeadID    string    `gorm:"type:varchar(64);index:idx_identity_cache_head" json:"headId"`
	HeadRev   string    `gorm:"type:varchar(128)" json:"headRev"`
	Name      string    `gorm:"type:varchar(256);index:idx_identity_cache_name" json:"name,omitempty"`
	Email     string    `gorm:"type:varchar(256);index:idx_identity_cache_email" json:"email,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name.
func (Record) TableName() string {
	return "identity_cache"
}

// Cache mirrors Identity documents into a relational table for SQL
// lookups.
type Cache struct {
	db *gorm.DB
}

// New wraps an already-migrated *gorm.DB.
func New(db *gorm.DB) *Cache {
	return &Cache{db: db}
}

// AutoMigrate creates or updates the identity_cache table.
func (c *Cache) AutoMigrate() error {
	return c.db.AutoMigrate(&Record{})
}

// Refresh upserts the cached row for one Identity's current head. The
// DAL does not call it: DAL.Save leaves this cache untouched, so the
// caller that saved the Identity refreshes the row itself.
func (c *Cache) Refresh(ctx context.Context, headID, headRev string, identity docdiff.Identity) error {
	record := Record{
		Address:   identity.Address,
		HeadID:    headID,
		HeadRev:   headRev,
		UpdatedAt: time.Now(),
	}
	if name, ok := identity.Props["name"].(string); ok {
		record.Name = name
	}
	if email, ok := identity.Props["email"].(string); ok {
		record.Email = email
	}

	return c.db.WithContext(ctx).Save(&record).Error
}

// Lookup returns the cached row for address, or (nil, nil) if absent.
func (c *Cache) Lookup(ctx context.Context, address string) (*Record, error) {
	var record Record
	err := c.db.WithContext(ctx).First(&record, "address = ?", address).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
