// Package s3 implements payload storage on Amazon S3 or compatible services.
//
// Each payload is one object. S3 has no partial-write primitive, so WriteAt
// and Truncate are read-modify-write: correct, and acceptable for the hollow
// object sizes this store is used with. Reads use ranged GETs and never fetch
// more than the caller asked for.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// Store keeps payloads as S3 objects under an optional key prefix.
type Store struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// Config carries what New needs. The client arrives fully configured
// (region, credentials, endpoint, retryer) from pkg/config.
type Config struct {
	Client *awss3.Client
	Bucket string

	// KeyPrefix is prepended to every object key, e.g. "hollowfs/payloads/".
	KeyPrefix string
}

// New verifies bucket access and returns the store. The bucket must already
// exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("verifying bucket %q: %w", cfg.Bucket, err)
	}

	return &Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (s *Store) key(id payload.ID) string {
	return s.keyPrefix + string(id)
}

// isNotFound covers the two shapes the SDK uses: NoSuchKey from GetObject
// and the generic NotFound from HeadObject.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// ReadAt reads into p from off using a ranged GET.
func (s *Store) ReadAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}
	if len(p) == 0 {
		return 0, nil
	}

	// S3 ranges are inclusive on both ends.
	rangeStr := fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1)

	result, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Range:  aws.String(rangeStr),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
		}
		// A range starting at or past the end answers 416; that is a zero
		// read here, not a failure.
		if strings.Contains(err.Error(), "InvalidRange") {
			return 0, nil
		}
		return 0, fmt.Errorf("reading payload %s: %w", id, err)
	}
	defer func() { _ = result.Body.Close() }()

	n, err := io.ReadFull(result.Body, p)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		// Object ends inside the requested range: partial count, no error.
		return n, nil
	}
	if err != nil {
		return n, fmt.Errorf("reading payload %s body: %w", id, err)
	}
	return n, nil
}

// fetch downloads the whole payload, or returns nil for an absent one.
func (s *Store) fetch(ctx context.Context, id payload.ID) ([]byte, bool, error) {
	result, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetching payload %s: %w", id, err)
	}
	defer func() { _ = result.Body.Close() }()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, false, fmt.Errorf("fetching payload %s body: %w", id, err)
	}
	return data, true, nil
}

func (s *Store) put(ctx context.Context, id payload.ID, data []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("storing payload %s: %w", id, err)
	}
	return nil
}

// WriteAt merges p into the object at off and re-uploads it. The payload is
// created when absent; a write past the end zero-fills the gap.
func (s *Store) WriteAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}

	existing, _, err := s.fetch(ctx, id)
	if err != nil {
		return 0, err
	}

	newSize := off + int64(len(p))
	var merged []byte
	if int64(len(existing)) >= newSize {
		merged = existing
	} else {
		merged = make([]byte, newSize)
		copy(merged, existing)
	}
	copy(merged[off:], p)

	if err := s.put(ctx, id, merged); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Size issues a HEAD request for the object's length.
func (s *Store) Size(ctx context.Context, id payload.ID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
		}
		return 0, fmt.Errorf("sizing payload %s: %w", id, err)
	}

	if result.ContentLength == nil {
		return 0, fmt.Errorf("payload %s: no content length in response", id)
	}
	return *result.ContentLength, nil
}

// Truncate downloads, resizes, and re-uploads the object.
func (s *Store) Truncate(ctx context.Context, id payload.ID, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("size %d: %w", size, payload.ErrInvalidSize)
	}

	existing, found, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("truncate %s: %w", id, payload.ErrNotFound)
	}

	if int64(len(existing)) == size {
		return nil
	}

	resized := make([]byte, size)
	copy(resized, existing)
	return s.put(ctx, id, resized)
}

// WriteContent replaces the whole object.
func (s *Store) WriteContent(ctx context.Context, id payload.ID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.put(ctx, id, data)
}

// Delete removes the object. S3 DeleteObject already succeeds for absent
// keys, which matches the idempotency the contract asks for.
func (s *Store) Delete(ctx context.Context, id payload.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting payload %s: %w", id, err)
	}
	return nil
}

// Close has no connection state to release; the SDK client is shared.
func (s *Store) Close() error {
	return nil
}
