package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/radiologia/internal/platform/db"
)

// PGBlobStore keeps blobs in the imagen_blob table. Calls made inside
// db.TxRunner.WithTx join that transaction.
type PGBlobStore struct {
	pool    *pgxpool.Pool
	maxSize int64
}

func NewPGBlobStore(pool *pgxpool.Pool, maxSize int64) *PGBlobStore {
	return &PGBlobStore{pool: pool, maxSize: limitOrDefault(maxSize)}
}

func (s *PGBlobStore) Put(ctx context.Context, key int64, content io.Reader) (*BlobInfo, error) {
	data, hash, err := readLimited(content, s.maxSize)
	if err != nil {
		return nil, err
	}
	tag, err := db.Conn(ctx, s.pool).Exec(ctx, `
		INSERT INTO imagen_blob (imagen_id, content, size, sha256)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (imagen_id) DO NOTHING`,
		key, data, int64(len(data)), hash)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrBlobExists
	}
	return &BlobInfo{Key: key, Size: int64(len(data)), Hash: hash}, nil
}

func (s *PGBlobStore) Get(ctx context.Context, key int64) (io.ReadCloser, *BlobInfo, error) {
	var data []byte
	info := BlobInfo{Key: key}
	err := db.Conn(ctx, s.pool).QueryRow(ctx,
		`SELECT content, size, sha256 FROM imagen_blob WHERE imagen_id = $1`, key).
		Scan(&data, &info.Size, &info.Hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), &info, nil
}

func (s *PGBlobStore) Delete(ctx context.Context, key int64) error {
	tag, err := db.Conn(ctx, s.pool).Exec(ctx, `DELETE FROM imagen_blob WHERE imagen_id = $1`, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBlobNotFound
	}
	return nil
}
