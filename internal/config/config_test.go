package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ticket-relay", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 15*time.Second, cfg.Dispatch.Timeout())
	assert.Equal(t, time.Hour, cfg.Dispatch.ResultCacheTTL())
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadTargetOverrides(t *testing.T) {
	t.Setenv("POS_TICKET_URL", "https://pos.internal/tickets")
	t.Setenv("POS_API_TOKEN", "pos-token")
	t.Setenv("SHOPPING_API_URL", "https://shop.internal/support")
	t.Setenv("INVENTORY_API_URL", "https://inventory.internal/stock")
	t.Setenv("INVENTORY_API_KEY", "inv-key")
	t.Setenv("DISPATCH_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://pos.internal/tickets", cfg.Targets.POS.URL)
	assert.Equal(t, "pos-token", cfg.Targets.POS.APIKey)
	assert.Equal(t, "https://shop.internal/support", cfg.Targets.Shopping.URL)
	assert.Equal(t, "inv-key", cfg.Targets.Inventory.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Dispatch.Timeout())
}

func TestLoadInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
