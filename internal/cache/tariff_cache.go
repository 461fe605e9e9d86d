package cache

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
)

// Tariffs are read-mostly reference data; a short TTL keeps admin edits
// visible without hitting the catalog on every quota check.
const defaultTariffTTL = 5 * time.Minute

// TariffCache stores tariff lookups for the quota guard's hot path.
type TariffCache interface {
	Get(id snowflake.ID) (*tariffdomain.Tariff, bool)
	Set(id snowflake.ID, tariff *tariffdomain.Tariff)
}

type tariffCache struct {
	tariffs Cache[snowflake.ID, *tariffdomain.Tariff]
	ttl     time.Duration
}

func NewTariffCache() TariffCache {
	return &tariffCache{
		tariffs: NewTTLCache[snowflake.ID, *tariffdomain.Tariff](),
		ttl:     defaultTariffTTL,
	}
}

func (c *tariffCache) Get(id snowflake.ID) (*tariffdomain.Tariff, bool) {
	return c.tariffs.Get(id)
}

func (c *tariffCache) Set(id snowflake.ID, tariff *tariffdomain.Tariff) {
	if tariff == nil || tariff.ID == 0 {
		return
	}
	c.tariffs.Set(id, tariff, c.ttl)
}
