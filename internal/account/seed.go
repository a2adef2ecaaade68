// seed.go - Grinding for account seeds whose derived ID carries the wanted metadata.
//
// The ID prefix is the first element of a hash output, so its metadata bits are random.
// Seed search walks hash chains (seed_{n+1} = digest_n) from several starting points in
// parallel until one digest's prefix encodes the requested type, storage mode and version.

package account

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"rollupstate/internal/felt"
)

// SeedRequest describes the account a seed is ground for.
type SeedRequest struct {
	InitSeed          [32]byte
	AccountType       AccountType
	StorageMode       StorageMode
	Version           Version
	CodeCommitment    felt.Digest
	StorageCommitment felt.Digest
	AnchorBlockHash   felt.Digest
}

type seedConfig struct {
	workers     int
	maxAttempts uint64
	attempts    *atomic.Uint64
}

// SeedOption configures ComputeSeed.
type SeedOption func(*seedConfig)

// WithWorkers sets the number of goroutines searching in parallel.
func WithWorkers(n int) SeedOption {
	return func(c *seedConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxAttempts bounds the total number of digests computed across all workers.
// Zero means unbounded.
func WithMaxAttempts(n uint64) SeedOption {
	return func(c *seedConfig) {
		c.maxAttempts = n
	}
}

// WithAttemptCounter reports the number of digests computed into counter.
func WithAttemptCounter(counter *atomic.Uint64) SeedOption {
	return func(c *seedConfig) {
		c.attempts = counter
	}
}

var errSeedFound = errors.New("seed found")

// checkInterval is how many digests a worker computes between context checks.
const checkInterval = 1024

// ComputeSeed searches for a seed whose derived ID prefix matches req. It returns
// ErrSeedNotFound once the attempt budget is spent, or the context error if ctx ends
// first.
func ComputeSeed(ctx context.Context, req SeedRequest, opts ...SeedOption) (felt.Word, error) {
	if !req.StorageMode.valid() {
		return felt.Word{}, fmt.Errorf("%w: %#b", ErrUnknownStorageMode, uint8(req.StorageMode))
	}
	if !req.Version.known() {
		return felt.Word{}, fmt.Errorf("%w: %d", ErrUnknownVersion, uint8(req.Version))
	}

	cfg := seedConfig{workers: runtime.GOMAXPROCS(0), attempts: new(atomic.Uint64)}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		once   sync.Once
		found  atomic.Bool
		result felt.Word
	)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.workers; w++ {
		start := initialSeed(req.InitSeed, uint64(w))
		g.Go(func() error {
			seed := start
			for i := 0; ; i++ {
				if i%checkInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				if n := cfg.attempts.Add(1); cfg.maxAttempts != 0 && n > cfg.maxAttempts {
					return ErrSeedNotFound
				}
				digest := seedDigest(seed, req.CodeCommitment, req.StorageCommitment, req.AnchorBlockHash)
				if prefixMatches(digest[0].Uint64(), req) {
					once.Do(func() {
						result = seed
						found.Store(true)
					})
					return errSeedFound
				}
				seed = digest.Word()
			}
		})
	}

	// Another worker may exhaust the budget in the same instant a seed is found; a
	// found seed wins.
	err := g.Wait()
	if found.Load() {
		return result, nil
	}
	return felt.Word{}, err
}

func prefixMatches(prefix uint64, req SeedRequest) bool {
	return AccountType((prefix&typeMask)>>typeShift) == req.AccountType &&
		extractStorageMode(prefix) == req.StorageMode &&
		Version(prefix&versionMask) == req.Version
}

// initialSeed maps the 32 seed bytes to a word and offsets it per worker so that each
// worker walks its own hash chain.
func initialSeed(init [32]byte, worker uint64) felt.Word {
	var w felt.Word
	for i := range w {
		w[i] = felt.Reduce(binary.LittleEndian.Uint64(init[i*8:]))
	}
	w[0] = w[0].Add(felt.Reduce(worker))
	return w
}
