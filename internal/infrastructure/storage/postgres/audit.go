package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"shopper/internal/core/apperror"
	appctx "shopper/internal/core/context"
	"shopper/internal/core/id"
	"shopper/internal/domain/filter"
)

// CompressionAlgo specifies the compression algorithm used for a
// stored audit payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditService records bulk mutations into sys_audit. Large payloads
// (huge ID sets) are zstd-compressed before storage.
// It implements listing.Auditor.
type AuditService struct {
	pool              *Pool
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int // bytes
}

// NewAuditService creates an audit service over the pool.
func NewAuditService(pool *Pool) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		pool:              pool,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

type bulkPayload struct {
	IDs      []string `json:"ids"`
	Affected int64    `json:"affected"`
}

// RecordBulk inserts one audit row for a bulk state mutation.
func (s *AuditService) RecordBulk(ctx context.Context, entity string, action filter.Action, ids []string, affected int64) error {
	payload, err := json.Marshal(bulkPayload{IDs: ids, Affected: affected})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	var (
		changes    []byte = payload
		compressed []byte
		algo       = CompressionNone
	)
	if len(payload) > s.compressThreshold {
		compressed = s.encoder.EncodeAll(payload, nil)
		changes = nil
		algo = CompressionZstd
	}

	var userID, userEmail string
	if actor := appctx.GetActor(ctx); actor != nil {
		userID = actor.UserID
		userEmail = actor.Email
	}

	sql := `
		INSERT INTO sys_audit (
			id, entity_type, action, user_id, user_email,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.pool.Exec(ctx, sql,
		id.NewString(), entity, string(action), userID, userEmail,
		changes, compressed, string(algo), time.Now().UTC(),
	)
	if err != nil {
		return apperror.NewDataStore(err)
	}
	return nil
}

// DecodePayload restores an audit payload, decompressing when needed.
func (s *AuditService) DecodePayload(changes, compressed []byte, algo CompressionAlgo) ([]byte, error) {
	if algo == CompressionZstd {
		return s.decoder.DecodeAll(compressed, nil)
	}
	return changes, nil
}

// Close releases the compressor resources.
func (s *AuditService) Close() {
	s.encoder.Close()
	s.decoder.Close()
}
