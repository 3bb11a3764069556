package keeper

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/market"
)

// PublishRecord is one product's published multiplier and swing
// premium, captured for best-effort archival alongside the on-chain
// write (SPEC_FULL.md ambient archival requirement).
type PublishRecord struct {
	Product      catalog.ProductKey          `json:"product"`
	Multiplier   market.MultiplierComponents `json:"multiplier"`
	SwingPremium market.SwingPremium         `json:"swing_premium"`
}

// batchMetadata mirrors the teacher's BackupMetadata shape, adapted
// from per-database backups to a single keeper-iteration payload.
type batchMetadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
	Checksum    string    `json:"checksum"`
	Strategy    string    `json:"strategy"`
}

// archivePayload is what actually gets gzipped and uploaded: metadata
// plus every record from one keeper iteration's batches.
type archivePayload struct {
	Metadata batchMetadata   `json:"metadata"`
	Records  []PublishRecord `json:"records"`
}

// Archiver uploads a gzip-compressed JSON snapshot of each keeper
// iteration's published updates to S3-compatible object storage. The
// teacher's own R2Client wrapper (internal/reliability/r2_backup_service.go's
// s.r2Client.Upload/List/Delete, used against Cloudflare R2) is not
// present in this snapshot of the teacher tree, even though
// aws-sdk-go-v2 and its s3/manager feature are direct dependencies in
// its go.mod. The *shape* of r2Client's usage (*string/*int64 object
// listing fields, Upload(ctx, key, io.Reader, size)) is unmistakably
// aws-sdk-go-v2's own s3 and s3manager types, so Archiver wires that
// SDK directly rather than inventing a narrower client.
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewArchiver builds an Archiver from cfg, or returns (nil, nil) if
// archival is disabled, per internal/config.Archive's doc comment.
func NewArchiver(ctx context.Context, cfg config.Archive, log zerolog.Logger) (*Archiver, error) {
	if !cfg.Enabled || cfg.Bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &Archiver{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		log:      log.With().Str("component", "keeper_archiver").Logger(),
	}, nil
}

// ArchiveBatch uploads one iteration's published records. It is
// best-effort: callers log and continue on error rather than failing
// the keeper iteration that already succeeded on-chain.
func (a *Archiver) ArchiveBatch(ctx context.Context, strategy Strategy, records []PublishRecord, now time.Time) error {
	body, checksum, err := encodeArchivePayload(strategy, records, now)
	if err != nil {
		return fmt.Errorf("encode archive payload: %w", err)
	}

	key := fmt.Sprintf("%sswing-premiums-%s.json.gz", a.prefix, now.UTC().Format("2006-01-02-150405"))

	_, err = a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("upload archive %s: %w", key, err)
	}

	a.log.Info().
		Str("key", key).
		Int("records", len(records)).
		Str("checksum", checksum).
		Int("size_bytes", len(body)).
		Msg("archived keeper batch")
	return nil
}

func encodeArchivePayload(strategy Strategy, records []PublishRecord, now time.Time) ([]byte, string, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, "", err
	}
	checksum := fmt.Sprintf("sha256:%x", sha256.Sum256(raw))

	payload := archivePayload{
		Metadata: batchMetadata{
			Timestamp:   now.UTC(),
			RecordCount: len(records),
			Checksum:    checksum,
			Strategy:    string(strategy),
		},
		Records: records,
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		gz.Close()
		return nil, "", err
	}
	if err := gz.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), checksum, nil
}
