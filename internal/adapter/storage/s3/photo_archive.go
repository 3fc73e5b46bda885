package s3

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/fixedgearperm/market-bot/internal/app/config"
	"github.com/fixedgearperm/market-bot/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoArchive keeps an off-Telegram copy of every listing photo. Telegram
// file ids stay the working references inside the lifecycle; the archive
// exists so listings survive if the originals expire or the bot account is
// lost.
type PhotoArchive struct {
	client *minio.Client
	bucket string
	log    logger.Logger
}

func NewPhotoArchive(cfg config.MinIOConfig, log logger.Logger) (*PhotoArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client for endpoint %s: %w", cfg.Endpoint, err)
	}

	err = client.MakeBucket(context.Background(), cfg.Bucket, minio.MakeBucketOptions{})
	if err != nil {
		exists, errBucketExists := client.BucketExists(context.Background(), cfg.Bucket)
		if errBucketExists != nil || !exists {
			return nil, fmt.Errorf("failed to make/verify bucket %s: (make: %v / exists_check: %v)", cfg.Bucket, err, errBucketExists)
		}
	}

	return &PhotoArchive{client: client, bucket: cfg.Bucket, log: log}, nil
}

// Store uploads one photo and returns its object URL. The object name is a
// fresh uuid with the original extension, grouped by user.
func (a *PhotoArchive) Store(ctx context.Context, userID int64, fileName string, data []byte) (string, error) {
	objectName := fmt.Sprintf("%d/%s%s", userID, uuid.New().String(), filepath.Ext(fileName))

	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		a.log.Errorf("PhotoArchive: failed to upload %s: %v", objectName, err)
		return "", fmt.Errorf("failed to upload photo %s: %w", objectName, err)
	}

	url := fmt.Sprintf("%s/%s/%s", a.client.EndpointURL(), a.bucket, objectName)
	a.log.Infof("PhotoArchive: stored photo %s for user %d", objectName, userID)
	return url, nil
}
