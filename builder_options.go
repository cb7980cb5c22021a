package uidtable

import (
	"fmt"
	"runtime"

	uiderrors "github.com/tamirms/uidtable/errors"
	"go.uber.org/zap"
)

const (
	// defaultChunkSize is the amount of corpus text handed to a worker at once.
	defaultChunkSize = 1 << 20

	// minChunkSize keeps tiny chunk settings from producing one task per line.
	minChunkSize = 4 << 10
)

// CollisionPolicy decides which phrase a table keeps when distinct phrases
// hash to the same UID. Repeats of one phrase are never collisions.
type CollisionPolicy int

const (
	// PolicySmallest keeps the bytewise-smallest phrase.
	PolicySmallest CollisionPolicy = iota

	// PolicyError fails the build with ErrHashCollision.
	PolicyError
)

// String returns the name accepted by ParseCollisionPolicy.
func (p CollisionPolicy) String() string {
	switch p {
	case PolicySmallest:
		return "smallest"
	case PolicyError:
		return "error"
	default:
		return fmt.Sprintf("CollisionPolicy(%d)", int(p))
	}
}

// ParseCollisionPolicy parses "smallest" or "error". The empty string
// selects PolicySmallest.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch s {
	case "", "smallest":
		return PolicySmallest, nil
	case "error":
		return PolicyError, nil
	default:
		return 0, fmt.Errorf("%w: %q", uiderrors.ErrInvalidPolicy, s)
	}
}

// BuildOption is a functional option for configuring builds.
type BuildOption func(*buildConfig)

type buildConfig struct {
	workers   int
	chunkSize int
	policy    CollisionPolicy
	logger    *zap.Logger
}

func defaultBuildConfig() *buildConfig {
	return &buildConfig{
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: defaultChunkSize,
		policy:    PolicySmallest,
		logger:    zap.NewNop(),
	}
}

// WithWorkers sets the number of parallel hashing workers.
// n <= 0 keeps the default of GOMAXPROCS.
func WithWorkers(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithChunkSize sets the approximate number of corpus bytes per work item.
// Chunks always end on a line boundary.
func WithChunkSize(size int) BuildOption {
	return func(c *buildConfig) {
		c.chunkSize = max(size, minChunkSize)
	}
}

// WithCollisionPolicy sets how hash collisions between distinct phrases are
// resolved. Default is PolicySmallest.
func WithCollisionPolicy(p CollisionPolicy) BuildOption {
	return func(c *buildConfig) {
		c.policy = p
	}
}

// WithLogger sets the logger used for build progress. Default is a no-op logger.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
