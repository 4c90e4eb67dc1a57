// Package artifact implements C6, the Artifact Store: put/get/presign
// operations against an S3-compatible object store. Named in DESIGN.md
// as not grounded in the teacher (a desktop app with no object storage)
// but in the rest of the pack's cloud-storage surface and
// SPEC_FULL.md §4.6's explicit choice of github.com/minio/minio-go/v7.
package artifact

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/furnicam/furnicam/internal/camerr"
	"github.com/furnicam/furnicam/internal/config"
)

// Kind is the content-typed artifact family; keys are structured
// "<kind>/<job_id>.<ext>" per spec.md §4.6.
type Kind string

const (
	KindDXF      Kind = "dxf"
	KindGCode    Kind = "gcode"
	KindZIP      Kind = "zip"
	KindDrilling Kind = "drilling"
)

func (k Kind) extension() string {
	switch k {
	case KindDXF:
		return "dxf"
	case KindGCode:
		return "gcode"
	case KindZIP, KindDrilling:
		return "zip"
	default:
		return "bin"
	}
}

func (k Kind) contentType() string {
	switch k {
	case KindDXF:
		return "application/dxf"
	case KindGCode:
		return "text/plain"
	case KindZIP, KindDrilling:
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}

// Key builds the structured object key for one job's artifact.
func Key(kind Kind, jobID string) string {
	return string(kind) + "/" + jobID + "." + kind.extension()
}

// defaultPresignTTL is spec.md §4.6's default presigned-URL lifetime.
const defaultPresignTTL = 900 * time.Second

// Store wraps a minio client bound to one bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	presignTTL time.Duration
}

// New constructs a Store from the storage section of the configuration
// and ensures the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, camerr.DependencyMissing("construct minio client: %v", err)
	}

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}

	s := &Store{client: client, bucket: cfg.Bucket, presignTTL: ttl}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureBucket creates the bucket if absent. Idempotent: a concurrent
// creator winning the race (BucketAlreadyOwnedByYou) is tolerated, per
// spec.md §4.6.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return camerr.Transient(err, "check bucket %s exists", s.bucket)
	}
	if exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "BucketAlreadyOwnedByYou" || resp.Code == "BucketAlreadyExists" {
			return nil
		}
		return camerr.Transient(err, "create bucket %s", s.bucket)
	}
	return nil
}

// Put uploads bytes under key with the given content type.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return camerr.Transient(err, "put object %s", key)
	}
	return nil
}

// PutArtifact is a Put convenience bound to one job artifact's content
// type.
func (s *Store) PutArtifact(ctx context.Context, kind Kind, jobID string, data []byte) (string, error) {
	key := Key(kind, jobID)
	if err := s.Put(ctx, key, data, kind.contentType()); err != nil {
		return "", err
	}
	return key, nil
}

// Get downloads the object stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, camerr.Transient(err, "get object %s", key)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, camerr.InvalidInput("artifact %s does not exist", key)
		}
		return nil, camerr.Transient(err, "read object %s", key)
	}
	return data, nil
}

// Stat returns the size in bytes of the object stored at key, used by
// C10's get_artifact_download to populate the size field.
func (s *Store) Stat(ctx context.Context, key string) (int64, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return 0, camerr.InvalidInput("artifact %s does not exist", key)
		}
		return 0, camerr.Transient(err, "stat object %s", key)
	}
	return info.Size, nil
}

// PresignGet returns a time-limited download URL for key. A zero ttl
// uses the store's configured default (900s unless overridden).
func (s *Store) PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	if ttl <= 0 {
		ttl = s.presignTTL
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return nil, camerr.Transient(err, "presign get %s", key)
	}
	return u, nil
}

// PresignPut returns a time-limited upload URL for key.
func (s *Store) PresignPut(ctx context.Context, key string, ttl time.Duration) (*url.URL, error) {
	if ttl <= 0 {
		ttl = s.presignTTL
	}
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, ttl)
	if err != nil {
		return nil, camerr.Transient(err, "presign put %s", key)
	}
	return u, nil
}
