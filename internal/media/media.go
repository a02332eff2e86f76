// Package media moves uploaded files from the local temp dir to S3-compatible
// object storage.
package media

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/vidtube/backend/internal/config"
)

// Kind is the class of an uploaded asset; it prefixes the object key.
type Kind string

const (
	KindAvatar    Kind = "avatars"
	KindCover     Kind = "covers"
	KindVideo     Kind = "videos"
	KindThumbnail Kind = "thumbnails"
)

// IsImage reports whether assets of this kind are normalised before upload.
func (k Kind) IsImage() bool {
	return k == KindAvatar || k == KindCover || k == KindThumbnail
}

var ErrNotImage = errors.New("not a decodable image")

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Uploader struct {
	client        putObjectAPI
	bucket        string
	publicBaseURL string
	now           func() time.Time
}

// NewS3Uploader builds a path-style S3 client for cfg.Endpoint with static
// credentials, which is what MinIO expects.
func NewS3Uploader(ctx context.Context, cfg config.MediaConfig) (*S3Uploader, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("media: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = cfg.Endpoint
	}
	return newS3Uploader(client, cfg.Bucket, base), nil
}

func newS3Uploader(client putObjectAPI, bucket, publicBaseURL string) *S3Uploader {
	return &S3Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		now:           time.Now,
	}
}

// Upload stores the file at localPath and returns its public URL. The local
// file is removed on every path.
func (u *S3Uploader) Upload(ctx context.Context, localPath string, kind Kind) (string, error) {
	defer Remove(localPath)

	if localPath == "" {
		return "", errors.New("media: empty local path")
	}

	if kind.IsImage() {
		if err := NormalizeImage(localPath); err != nil {
			return "", err
		}
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("media: open %s: %w", localPath, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(localPath))
	key := ObjectKey(kind, ext, u.now())

	input := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("media: put %s: %w", key, err)
	}

	return u.URL(key), nil
}

// URL is the public address of an object key.
func (u *S3Uploader) URL(key string) string {
	return u.publicBaseURL + "/" + url.PathEscape(u.bucket) + "/" + key
}

// ObjectKey lays keys out as <kind>/<yyyy>/<mm>/<dd>/<uuid><ext>.
func ObjectKey(kind Kind, ext string, t time.Time) string {
	t = t.UTC()
	return path.Join(
		string(kind),
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", int(t.Month())),
		fmt.Sprintf("%02d", t.Day()),
		uuid.NewString()+ext,
	)
}
