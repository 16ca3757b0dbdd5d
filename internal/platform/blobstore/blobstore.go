// Package blobstore stores the raw bytes of uploaded images, keyed by the id
// of the record that owns them. Bytes are returned exactly as written.
package blobstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

var (
	ErrBlobNotFound = fmt.Errorf("blob %w", apperr.ErrNotFound)
	ErrBlobExists   = errors.New("blob already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum allowed size")
)

// DefaultMaxSize is used when a store is created with a non-positive limit.
const DefaultMaxSize = 10 << 20

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Key  int64  `json:"key"`
	Size int64  `json:"size"`
	Hash string `json:"sha256"`
}

// BlobStore is the contract for blob storage backends.
type BlobStore interface {
	Put(ctx context.Context, key int64, content io.Reader) (*BlobInfo, error)
	Get(ctx context.Context, key int64) (io.ReadCloser, *BlobInfo, error)
	Delete(ctx context.Context, key int64) error
}

// readLimited reads content fully, failing with ErrFileTooLarge past max.
func readLimited(content io.Reader, max int64) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(content, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > max {
		return nil, "", ErrFileTooLarge
	}
	h := sha256.Sum256(data)
	return data, hex.EncodeToString(h[:]), nil
}

func limitOrDefault(max int64) int64 {
	if max <= 0 {
		return DefaultMaxSize
	}
	return max
}

// ---------------------------------------------------------------------------
// In-memory implementation
// ---------------------------------------------------------------------------

type storedBlob struct {
	info    BlobInfo
	content []byte
}

// InMemoryBlobStore is a thread-safe, in-memory BlobStore for tests and
// STORE_BACKEND=memory.
type InMemoryBlobStore struct {
	mu      sync.RWMutex
	maxSize int64
	blobs   map[int64]*storedBlob
}

func NewInMemoryBlobStore(maxSize int64) *InMemoryBlobStore {
	return &InMemoryBlobStore{
		maxSize: limitOrDefault(maxSize),
		blobs:   make(map[int64]*storedBlob),
	}
}

func (s *InMemoryBlobStore) Put(_ context.Context, key int64, content io.Reader) (*BlobInfo, error) {
	data, hash, err := readLimited(content, s.maxSize)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; ok {
		return nil, ErrBlobExists
	}
	info := BlobInfo{Key: key, Size: int64(len(data)), Hash: hash}
	s.blobs[key] = &storedBlob{info: info, content: data}

	out := info
	return &out, nil
}

func (s *InMemoryBlobStore) Get(_ context.Context, key int64) (io.ReadCloser, *BlobInfo, error) {
	s.mu.RLock()
	blob, ok := s.blobs[key]
	s.mu.RUnlock()

	if !ok {
		return nil, nil, ErrBlobNotFound
	}
	info := blob.info
	return io.NopCloser(bytes.NewReader(blob.content)), &info, nil
}

func (s *InMemoryBlobStore) Delete(_ context.Context, key int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, key)
	return nil
}
