package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/shieldkit/shieldkit/logger"
)

// ErrClosed is returned for operations against a closed cache.
var ErrClosed = errors.New("cache: closed")

// Cache is a size- and age-bounded key-value store backed by one file per
// entry under a dedicated directory. When a store would exceed the size
// bound, the entries closest to their expiry are evicted first.
//
// The in-memory index is the authoritative accounting record; it is
// reconciled against the directory at startup. All state is owned by a single
// goroutine, so reads observe fully settled state.
type Cache struct {
	dir  string
	reqs chan any

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// Status is a read-only snapshot of cache state, for observability only.
type Status struct {
	Entries     int     `json:"entries"`
	TotalSize   int64   `json:"total_size"`
	MaxSize     int64   `json:"max_size"`
	FreeSpace   int64   `json:"free_space"`
	Utilization float64 `json:"utilization"`
}

// entry is the index record for one stored payload. Entries are keyed by
// content file name; the original key is not recoverable from disk.
type entry struct {
	name      string
	size      int64
	expiresAt time.Time
}

type storeReq struct {
	name  string
	data  []byte
	ttl   time.Duration
	reply chan error
}

type retrieveReq struct {
	name  string
	reply chan retrieveResult
}

type retrieveResult struct {
	data []byte
	ok   bool
}

type removeReq struct {
	name  string
	reply chan error
}

type clearReq struct {
	reply chan error
}

type configureReq struct {
	cfg  Config
	done chan struct{}
}

type statusReq struct {
	reply chan Status
}

// New creates a cache rooted at cfg.Dir, reconciling the index against any
// files already present, and starts the worker goroutine and expiry sweep.
// The cache must be released with Close when no longer needed.
func New(cfg Config) (*Cache, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.WithComponent("cache")
	}

	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("cache: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("cache: create dir: %w", err)
	}

	c := &Cache{
		dir:     abs,
		reqs:    make(chan any),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	entries, totalSize, err := c.reconcile(cfg)
	if err != nil {
		return nil, err
	}

	go c.run(cfg, entries, totalSize)
	return c, nil
}

// reconcile inventories the backing directory and rebuilds the index. The
// original expiration of a rediscovered file is not recoverable, so every
// entry gets a synthetic expiration of now+MaxAge; a restart therefore
// extends the effective lifetime of already-old entries.
func (c *Cache) reconcile(cfg Config) (map[string]*entry, int64, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, 0, fmt.Errorf("cache: read dir: %w", err)
	}

	entries := make(map[string]*entry)
	var totalSize int64
	expiresAt := time.Now().Add(cfg.MaxAge)

	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries[de.Name()] = &entry{
			name:      de.Name(),
			size:      info.Size(),
			expiresAt: expiresAt,
		}
		totalSize += info.Size()
	}

	if len(entries) > 0 {
		cfg.Logger.Warn("rebuilt index from disk; entry lifetimes reset to max age", logger.Fields(
			"entries", len(entries),
			"total_size", totalSize,
			"max_age", cfg.MaxAge.String(),
		))
	}
	return entries, totalSize, nil
}

// Store saves data under key with the default TTL.
func (c *Cache) Store(key string, data []byte) error {
	return c.StoreTTL(key, data, 0)
}

// StoreTTL saves data under key, expiring after ttl. A non-positive ttl uses
// the configured default. Re-storing a key replaces the previous payload; only
// the size delta counts against the bound.
func (c *Cache) StoreTTL(key string, data []byte, ttl time.Duration) error {
	req := storeReq{name: fileName(key), data: data, ttl: ttl, reply: make(chan error, 1)}
	if err := c.send(req); err != nil {
		return err
	}
	return c.recvErr(req.reply)
}

// Retrieve returns the stored bytes for key, or ok=false if the entry is
// absent, expired, or its backing file is unreadable. A corrupt backing file
// is removed as a repair action; the caller only sees a miss.
func (c *Cache) Retrieve(key string) ([]byte, bool) {
	req := retrieveReq{name: fileName(key), reply: make(chan retrieveResult, 1)}
	if err := c.send(req); err != nil {
		return nil, false
	}
	select {
	case res := <-req.reply:
		return res.data, res.ok
	case <-c.done:
		return nil, false
	}
}

// Remove deletes the entry for key, if present.
func (c *Cache) Remove(key string) error {
	req := removeReq{name: fileName(key), reply: make(chan error, 1)}
	if err := c.send(req); err != nil {
		return err
	}
	return c.recvErr(req.reply)
}

// Clear deletes every entry and its backing file.
func (c *Cache) Clear() error {
	req := clearReq{reply: make(chan error, 1)}
	if err := c.send(req); err != nil {
		return err
	}
	return c.recvErr(req.reply)
}

// Configure replaces the size and age bounds. If the cache is over the new
// size bound, eviction runs immediately.
func (c *Cache) Configure(cfg Config) error {
	cfg.ApplyDefaults()
	req := configureReq{cfg: cfg, done: make(chan struct{})}
	if err := c.send(req); err != nil {
		return err
	}
	select {
	case <-req.done:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Status returns a consistent snapshot of cache accounting.
func (c *Cache) Status() Status {
	req := statusReq{reply: make(chan Status, 1)}
	if err := c.send(req); err != nil {
		return Status{}
	}
	select {
	case s := <-req.reply:
		return s
	case <-c.done:
		return Status{}
	}
}

// Close stops the worker and the expiry sweep. Backing files are kept for the
// next startup reconciliation. Close is idempotent.
func (c *Cache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	<-c.stopped
}

func (c *Cache) send(req any) error {
	select {
	case c.reqs <- req:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

func (c *Cache) recvErr(reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-c.done:
		return ErrClosed
	}
}

// fileName derives the content file name from a key. The hash is stable
// across restarts; collisions are assumed negligible for the workload.
func fileName(key string) string {
	return fmt.Sprintf("%016x.bin", xxhash.Sum64String(key))
}

// run is the cache's single-writer loop. The index, accounting, and sweep
// timer all live here.
func (c *Cache) run(cfg Config, entries map[string]*entry, totalSize int64) {
	defer close(c.stopped)

	sweep := time.NewTicker(cfg.CleanupInterval)
	defer sweep.Stop()

	path := func(name string) string {
		return filepath.Join(c.dir, name)
	}

	removeEntry := func(e *entry) {
		if err := os.Remove(path(e.name)); err != nil && !os.IsNotExist(err) {
			cfg.Logger.Warn("failed to delete backing file", logger.ErrorFields("remove", err))
		}
		totalSize -= e.size
		delete(entries, e.name)
	}

	// evictFor frees space for an incoming payload of the given size,
	// removing the soonest-to-expire entries first until the bound holds or
	// no entries remain.
	evictFor := func(incoming int64) {
		if totalSize+incoming <= cfg.MaxSize || len(entries) == 0 {
			return
		}
		victims := make([]*entry, 0, len(entries))
		for _, e := range entries {
			victims = append(victims, e)
		}
		sort.Slice(victims, func(i, j int) bool {
			return victims[i].expiresAt.Before(victims[j].expiresAt)
		})
		for _, e := range victims {
			if totalSize+incoming <= cfg.MaxSize {
				break
			}
			removeEntry(e)
			cfg.Logger.Debug("evicted for space", logger.Fields(
				"file", e.name,
				"size", e.size,
				"expires_at", e.expiresAt,
			))
		}
	}

	handleStore := func(req storeReq) error {
		ttl := req.ttl
		if ttl <= 0 {
			ttl = cfg.MaxAge
		}

		// Replacing a key only counts the delta against the bound.
		if prev, ok := entries[req.name]; ok {
			totalSize -= prev.size
			delete(entries, req.name)
		}

		size := int64(len(req.data))
		evictFor(size)

		if err := os.WriteFile(path(req.name), req.data, 0o600); err != nil {
			// The file state is unknown; drop any claim to it.
			if rmErr := os.Remove(path(req.name)); rmErr != nil && !os.IsNotExist(rmErr) {
				cfg.Logger.Warn("failed to delete partial write", logger.ErrorFields("store", rmErr))
			}
			return fmt.Errorf("cache: write entry: %w", err)
		}

		entries[req.name] = &entry{
			name:      req.name,
			size:      size,
			expiresAt: time.Now().Add(ttl),
		}
		totalSize += size

		if totalSize > cfg.MaxSize {
			cfg.Logger.Warn("entry exceeds cache bound on its own", logger.Fields(
				"size", size,
				"max_size", cfg.MaxSize,
			))
		}
		return nil
	}

	handleRetrieve := func(req retrieveReq) retrieveResult {
		e, ok := entries[req.name]
		if !ok {
			return retrieveResult{}
		}
		if time.Now().After(e.expiresAt) {
			// Expired entries report a miss; the sweep reclaims them.
			return retrieveResult{}
		}

		data, err := os.ReadFile(path(e.name))
		if err != nil || int64(len(data)) != e.size {
			// Unreadable or truncated backing file: repair by removing the
			// entry and report a miss. Never surfaced to the caller.
			removeEntry(e)
			cfg.Logger.Warn("removed corrupt entry", logger.Fields(
				"file", e.name,
				"error", fmt.Sprint(err),
			))
			return retrieveResult{}
		}
		return retrieveResult{data: data, ok: true}
	}

	runSweep := func() {
		now := time.Now()
		removed := 0
		for _, e := range entries {
			if e.expiresAt.Before(now) {
				removeEntry(e)
				removed++
			}
		}
		if removed > 0 {
			cfg.Logger.Debug("sweep removed expired entries", logger.Fields(
				"removed", removed,
				"remaining", len(entries),
			))
		}
	}

	for {
		select {
		case msg := <-c.reqs:
			switch req := msg.(type) {
			case storeReq:
				req.reply <- handleStore(req)
			case retrieveReq:
				req.reply <- handleRetrieve(req)
			case removeReq:
				if e, ok := entries[req.name]; ok {
					removeEntry(e)
				}
				req.reply <- nil
			case clearReq:
				for _, e := range entries {
					removeEntry(e)
				}
				req.reply <- nil
			case configureReq:
				old := cfg
				cfg = req.cfg
				if cfg.Logger == nil {
					cfg.Logger = old.Logger
				}
				sweep.Reset(cfg.CleanupInterval)
				evictFor(0)
				close(req.done)
			case statusReq:
				free := cfg.MaxSize - totalSize
				if free < 0 {
					free = 0
				}
				req.reply <- Status{
					Entries:     len(entries),
					TotalSize:   totalSize,
					MaxSize:     cfg.MaxSize,
					FreeSpace:   free,
					Utilization: float64(totalSize) / float64(cfg.MaxSize),
				}
			}

		case <-sweep.C:
			runSweep()

		case <-c.done:
			return
		}
	}
}
