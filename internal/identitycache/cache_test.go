package identitycache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/guarantor-network/fabric/internal/identitycache"
	"github.com/guarantor-network/fabric/pkg/docdiff"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db
}

func TestCache_RefreshAndLookup(t *testing.T) {
	db := openTestDB(t)
	cache := identitycache.New(db)
	require.NoError(t, cache.AutoMigrate())

	identity := docdiff.Identity{
		Address: "1HZwkjkeaoZfTSaJxDw6aKkxp45agDiEzN",
		Props:   map[string]interface{}{"name": "Alice", "email": "alice@mail.com"},
	}
	ctx := context.Background()
	require.NoError(t, cache.Refresh(ctx, "deadbeef", "202401010000_rev", identity))

	record, err := cache.Lookup(ctx, identity.Address)
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "Alice", record.Name)
	require.Equal(t, "alice@mail.com", record.Email)
}

func TestCache_LookupMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	cache := identitycache.New(db)
	require.NoError(t, cache.AutoMigrate())

	record, err := cache.Lookup(context.Background(), "unknown")
	require.NoError(t, err)
	require.Nil(t, record)
}
