package blockstore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/dialog-db/dialog-db-sub004/codec"
	"github.com/dialog-db/dialog-db-sub004/dialogerr"
	"github.com/dialog-db/dialog-db-sub004/internal/contenthash"
	"github.com/dialog-db/dialog-db-sub004/internal/metrics"
)

// DefaultCacheEntries is the node cache size used when none is configured.
const DefaultCacheEntries = 10_000

// Store is the three-tier block store every tree and cell reads through:
// an uncommitted delta buffer, a bounded decoded-block cache, and a
// durable Backend. Writes land in the delta until Flush persists them,
// so a tree can be built and read back within a single transaction
// before anything touches the backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	cache   *lru.Cache[codec.Hash, *codec.Block]
	delta   map[codec.Hash][]byte
	log     *logrus.Logger
	metrics *metrics.Collector
}

// SetMetrics wires a Collector so ReadBlock reports cache hits and misses.
// Passing nil disables reporting.
func (s *Store) SetMetrics(c *metrics.Collector) {
	s.metrics = c
}

// NewStore wires a Store over backend with a node cache of cacheEntries
// (DefaultCacheEntries if zero or negative).
func NewStore(backend Backend, cacheEntries int, log *logrus.Logger) (*Store, error) {
	if cacheEntries <= 0 {
		cacheEntries = DefaultCacheEntries
	}
	cache, err := lru.New[codec.Hash, *codec.Block](cacheEntries)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.InvalidState, "NewStore", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Store{backend: backend, cache: cache, delta: make(map[codec.Hash][]byte), log: log}, nil
}

// ReadBlock satisfies prolly.BlockSource: delta buffer, then cache, then
// backend, populating the cache on a backend hit.
func (s *Store) ReadBlock(hash codec.Hash) (*codec.Block, error) {
	s.mu.Lock()
	if raw, ok := s.delta[hash]; ok {
		s.mu.Unlock()
		return codec.DecodeBlock(raw)
	}
	if blk, ok := s.cache.Get(hash); ok {
		s.mu.Unlock()
		s.metrics.RecordCacheHit()
		return blk, nil
	}
	s.mu.Unlock()
	s.metrics.RecordCacheMiss()

	raw, err := s.backend.Get(hash)
	if err != nil {
		return nil, err
	}
	blk, err := codec.DecodeBlock(raw)
	if err != nil {
		return nil, dialogerr.Wrap(dialogerr.CorruptBlock, "Store.ReadBlock", err)
	}
	s.mu.Lock()
	s.cache.Add(hash, blk)
	s.mu.Unlock()
	return blk, nil
}

// WriteBlock satisfies prolly.BlockSource: encodes block, computes its
// content hash, and buffers it in the delta until Flush.
func (s *Store) WriteBlock(block *codec.Block) (codec.Hash, error) {
	raw, err := block.Encode()
	if err != nil {
		return codec.Hash{}, err
	}
	hash := contenthash.Sum(raw)
	s.mu.Lock()
	s.delta[hash] = raw
	s.cache.Add(hash, block)
	s.mu.Unlock()
	return hash, nil
}

// Flush persists every buffered block to the backend and clears the
// delta. Blocks remain readable (via the cache) after flushing.
func (s *Store) Flush() error {
	s.mu.Lock()
	pending := s.delta
	s.delta = make(map[codec.Hash][]byte)
	s.mu.Unlock()

	for hash, raw := range pending {
		if err := s.backend.Put(hash, raw); err != nil {
			s.mu.Lock()
			for h, r := range pending {
				s.delta[h] = r
			}
			s.mu.Unlock()
			return dialogerr.Wrap(dialogerr.IoError, "Store.Flush", err)
		}
	}
	s.log.WithField("blocks", len(pending)).Debug("blockstore: flushed delta")
	return nil
}

// PendingBytes reports how many bytes are currently buffered in the
// delta, unflushed.
func (s *Store) PendingBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, raw := range s.delta {
		n += len(raw)
	}
	return n
}
