package upload

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Copi24/ftptogpmc/common"
	"github.com/Copi24/ftptogpmc/common/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var contentTypes = map[string]string{
	".mkv":  "video/x-matroska",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".m2ts": "video/mp2t",
}

type s3Uploader struct {
	client    *minio.Client
	bucket    string
	keyPrefix string
}

// NewS3Uploader builds the production uploader against an S3-compatible
// photo bucket. The credential comes from the environment as
// "accessKey:accessSecret"; its absence is a startup failure.
func NewS3Uploader(cfg config.UploadConfig, authData string) (Uploader, error) {
	accessKey, accessSecret, found := strings.Cut(authData, ":")
	if !found || accessKey == "" || accessSecret == "" {
		return nil, common.ErrMissingCredential
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Region: cfg.Region,
		Secure: cfg.Ssl,
		Creds:  credentials.NewStaticV4(accessKey, accessSecret, ""),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating upload client")
	}

	return &s3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
	}, nil
}

func (u *s3Uploader) Upload(ctx context.Context, localPath string) (string, error) {
	fi, err := os.Stat(localPath)
	if err != nil {
		return "", errors.Wrap(err, "reading upload input")
	}

	objectName := u.keyPrefix + filepath.Base(localPath)
	contentType := contentTypes[strings.ToLower(filepath.Ext(localPath))]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	logrus.WithFields(logrus.Fields{
		"object": objectName,
		"size":   fi.Size(),
	}).Info("Uploading to photo store")

	info, err := u.client.FPutObject(ctx, u.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrap(err, "uploading object")
	}

	// The object key is the media key; the ETag is logged for diagnosis.
	logrus.WithFields(logrus.Fields{
		"object": objectName,
		"etag":   info.ETag,
	}).Info("Upload accepted")
	return objectName, nil
}
