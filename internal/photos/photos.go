package photos

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"recipebox/internal/config"
	"recipebox/internal/formats"
)

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectPresigner is the subset of *s3.PresignClient used for downloads.
type ObjectPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Archive stores the source photos of image extractions in S3.
type Archive struct {
	client  ObjectPutter
	presign ObjectPresigner
	bucket  string
	prefix  string
}

// New builds an Archive from the storage config. It returns nil when no
// bucket is configured.
func New(ctx context.Context, cfg config.S3Config) (*Archive, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return NewWithClient(client, s3.NewPresignClient(client), cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient builds an Archive over existing clients. presign may be nil.
func NewWithClient(client ObjectPutter, presign ObjectPresigner, bucket, prefix string) *Archive {
	return &Archive{client: client, presign: presign, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key for a recipe's photo.
func (a *Archive) Key(recipeID, mediaType string) string {
	name := recipeID + formats.ImageExtension(mediaType)
	if a.prefix == "" {
		return name
	}
	return path.Join(a.prefix, name)
}

// Upload stores data under the recipe's key and returns that key.
func (a *Archive) Upload(ctx context.Context, recipeID string, data []byte, mediaType string) (string, error) {
	key := a.Key(recipeID, mediaType)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo to S3: %w", err)
	}
	return key, nil
}

// PresignedURL returns a time-limited download URL for key.
func (a *Archive) PresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	if a.presign == nil {
		return "", errors.New("presigning is not configured")
	}
	req, err := a.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiration))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
