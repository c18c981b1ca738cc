package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/barcheck/internal/config"
)

// Pools caches connection pools by connection string.
type Pools struct {
	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

// NewPools creates an empty pool cache.
func NewPools() *Pools {
	return &Pools{pools: make(map[string]*pgxpool.Pool)}
}

// Get returns the pool for cfg, connecting on first use.
func (p *Pools) Get(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	key := BuildConnString(cfg)

	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[key]; ok {
		return pool, nil
	}

	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect %s/%s: %w", cfg.Host, cfg.Name, err)
	}
	p.pools[key] = pool
	return pool, nil
}

// Len returns the number of open pools.
func (p *Pools) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pools)
}

// Connect creates a single connection pool.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Close closes every pool.
func (p *Pools) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, pool := range p.pools {
		pool.Close()
		delete(p.pools, key)
	}
}

// Ping verifies every open pool is healthy.
func (p *Pools) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pool := range p.pools {
		if err := pool.Ping(ctx); err != nil {
			cfg := pool.Config().ConnConfig
			return fmt.Errorf("ping %s/%s: %w", cfg.Host, cfg.Database, err)
		}
	}
	return nil
}
