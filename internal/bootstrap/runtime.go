// Package bootstrap wires up shared runtime dependencies for the binaries.
package bootstrap

import (
	"fmt"

	"sellerhood/internal/cache"
	"sellerhood/internal/config"
	"sellerhood/internal/database"
	"sellerhood/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo populates the database with demo community content. Refused
	// outside development.
	SeedDemo  bool
	DemoUsers int
	DemoPosts int
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. The Redis client may be nil when the server is unreachable; callers
// degrade accordingly.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if cfg.Env != "development" {
			return nil, nil, fmt.Errorf("demo seeding is only allowed in development (APP_ENV=%s)", cfg.Env)
		}
		if err := seed.Seed(db, seed.Options{
			NumUsers:    opts.DemoUsers,
			NumPosts:    opts.DemoPosts,
			ShouldClean: false,
		}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
