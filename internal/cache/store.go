package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the payload size below which compression is not
// attempted; small WAVs rarely shrink enough to pay for it.
const compressThreshold = 1024

// Store is a disk-backed result cache with optional zstd compression
// and LRU size eviction. All methods are safe for concurrent use.
type Store struct {
	basePath string
	capacity int64 // maximum size in bytes, 0 = unbounded
	size     int64 // current size in bytes

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	index map[string]*entry

	mu sync.Mutex

	stats Stats
}

// entry is one cached result in the on-disk index.
type entry struct {
	Key          string
	FilePath     string
	Size         int64 // size on disk (possibly compressed)
	OriginalSize int64
	Created      time.Time
	LastAccess   time.Time
	Compressed   bool
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64
	ItemCount int64
	Capacity  int64
}

// HitRate returns the fraction of lookups served from the cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// New opens (or creates) a store rooted at basePath. capacity of zero
// disables eviction. compressionLevel of zero disables compression.
func New(basePath string, capacity int64, compressionLevel int) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}

	st := &Store{
		basePath: basePath,
		capacity: capacity,
		index:    make(map[string]*entry),
		stats:    Stats{Capacity: capacity},
	}

	if compressionLevel > 0 {
		var err error
		st.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd encoder: %w", err)
		}
		st.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("unable to create zstd decoder: %w", err)
		}
	}

	if err := st.loadIndex(); err != nil {
		// Corrupt index is not fatal; start over.
		st.index = make(map[string]*entry)
	}
	for _, e := range st.index {
		st.size += e.Size
	}

	return st, nil
}

// Get retrieves the payload for key. A missing or unreadable entry is a
// miss, never an error: the caller synthesizes as if no cache existed.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.index[key]
	if !ok {
		s.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(e.FilePath)
	if err != nil {
		s.dropLocked(key)
		s.stats.Misses++
		return nil, false
	}

	if e.Compressed {
		if s.decoder == nil {
			s.dropLocked(key)
			s.stats.Misses++
			return nil, false
		}
		decompressed, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			os.Remove(e.FilePath)
			s.dropLocked(key)
			s.stats.Misses++
			return nil, false
		}
		data = decompressed
	}

	e.LastAccess = time.Now()
	s.stats.Hits++
	return data, true
}

// Put stores a payload under key, compressing when it helps, evicting
// least-recently-used entries to stay under capacity. Writes are atomic
// (temp file plus rename) so readers never see partial entries.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	originalSize := int64(len(value))
	payload := value
	compressed := false
	if s.encoder != nil && originalSize > compressThreshold {
		if c := s.encoder.EncodeAll(value, nil); len(c) < len(value) {
			payload = c
			compressed = true
		}
	}
	diskSize := int64(len(payload))

	if old, ok := s.index[key]; ok {
		s.size -= old.Size
		os.Remove(old.FilePath)
	}

	if s.capacity > 0 {
		if diskSize > s.capacity {
			return fmt.Errorf("entry of %d bytes exceeds cache capacity", diskSize)
		}
		for s.size+diskSize > s.capacity && len(s.index) > 0 {
			s.evictOldestLocked()
		}
	}

	path := filepath.Join(s.basePath, key+".wav")
	if err := writeAtomic(path, payload); err != nil {
		return fmt.Errorf("unable to write cache entry: %w", err)
	}

	now := time.Now()
	s.index[key] = &entry{
		Key:          key,
		FilePath:     path,
		Size:         diskSize,
		OriginalSize: originalSize,
		Created:      now,
		LastAccess:   now,
		Compressed:   compressed,
	}
	s.size += diskSize
	return nil
}

// Clear removes every entry and persists the empty index.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.index {
		os.Remove(e.FilePath)
	}
	s.index = make(map[string]*entry)
	s.size = 0
	return s.saveIndexLocked()
}

// Stats returns a snapshot of the cache counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.stats
	stats.Size = s.size
	stats.ItemCount = int64(len(s.index))
	return stats
}

// Close persists the index to disk.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveIndexLocked()
}

func (s *Store) dropLocked(key string) {
	if e, ok := s.index[key]; ok {
		s.size -= e.Size
		delete(s.index, key)
	}
}

func (s *Store) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, e := range s.index {
		if oldestKey == "" || e.LastAccess.Before(oldest) {
			oldestKey = key
			oldest = e.LastAccess
		}
	}
	if oldestKey == "" {
		return
	}
	e := s.index[oldestKey]
	os.Remove(e.FilePath)
	s.size -= e.Size
	delete(s.index, oldestKey)
	s.stats.Evictions++
}

func (s *Store) indexPath() string {
	return filepath.Join(s.basePath, "cache.index")
}

func (s *Store) loadIndex() error {
	file, err := os.Open(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(&s.index)
}

func (s *Store) saveIndexLocked() error {
	var tmp string
	file, err := os.CreateTemp(s.basePath, "cache.index.*")
	if err != nil {
		return err
	}
	tmp = file.Name()

	err = gob.NewEncoder(file).Encode(s.index)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, s.indexPath())
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	_, err = file.Write(data)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
