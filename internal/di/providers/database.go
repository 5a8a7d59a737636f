package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/egghunt/egghunt-server/internal/config"
	"github.com/egghunt/egghunt-server/internal/kvcache"
	"github.com/egghunt/egghunt-server/internal/logger"
	"github.com/egghunt/egghunt-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.Path, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Component("store").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// SettingsCacheHandle wraps the settings cache with shutdown capability.
type SettingsCacheHandle struct {
	*kvcache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *SettingsCacheHandle) Shutdown() error {
	return h.Close()
}

// ProvideSettingsCache provides the in-memory settings cache.
func ProvideSettingsCache(i do.Injector) (*SettingsCacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cache, err := kvcache.New(cfg.Hunt.SettingsCacheTTL, log.Component("kvcache").Logger)
	if err != nil {
		return nil, err
	}

	if cache.Enabled() {
		log.Info("Settings cache enabled", "ttl", cfg.Hunt.SettingsCacheTTL)
	} else {
		log.Info("Settings cache disabled")
	}

	return &SettingsCacheHandle{Cache: cache}, nil
}
