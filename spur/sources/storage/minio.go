package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/AasheeshLikePanner/spur/spur/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveStore keeps exported conversation transcripts in an
// S3-compatible bucket. One object per conversation; re-exporting
// overwrites.
type ArchiveStore struct {
	client *minio.Client
	bucket string
}

func NewArchiveStore(cfg config.Config) (*ArchiveStore, error) {
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: cfg.MinIOUseSSL,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(context.Background(), cfg.MinIOBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), cfg.MinIOBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &ArchiveStore{client: client, bucket: cfg.MinIOBucket}, nil
}

func (s *ArchiveStore) PutTranscript(ctx context.Context, conversationID uuid.UUID, data []byte) (string, error) {
	key := path.Join("transcripts", fmt.Sprintf("%s.json", conversationID))

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return key, nil
}
