package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/repositories"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

var _ repositories.MediaStore = (*S3)(nil)

// s3API is the subset of *s3.Client used here
type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config selects the bucket and how public URLs are formed
type S3Config struct {
	Bucket string
	Region string
	// Prefix is prepended to every object key, e.g. "uploads/"
	Prefix string
	// PublicURL is the base URL objects are served from; defaults to the bucket's virtual-host URL
	PublicURL string
	// Endpoint overrides the S3 endpoint for compatible stores (MinIO, R2); enables path-style addressing
	Endpoint string
}

// S3 stores files as objects in one bucket
type S3 struct {
	client    s3API
	bucket    string
	prefix    string
	publicURL string
	logger    *slog.Logger
}

// NewS3 loads AWS credentials from the environment
func NewS3(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("S3 bucket cannot be empty")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	logger.Info("S3 media store initialized", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
	return newS3(client, cfg.Bucket, cfg.Prefix, publicURL, logger), nil
}

func newS3(client s3API, bucket, prefix, publicURL string, logger *slog.Logger) *S3 {
	return &S3{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (s *S3) key(name string) string { return s.prefix + name }

func (s *S3) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(name)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", domain.ErrStorage, name, err)
	}

	s.logger.Debug("object stored", "key", s.key(name), "bytes", len(data))
	return s.URL(name), nil
}

// List pages through every object under the prefix, newest first
func (s *S3) List(ctx context.Context) ([]models.StoredObject, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var objects []models.StoredObject
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list objects: %v", domain.ErrStorage, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			// nested keys are not uploads
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			objects = append(objects, models.StoredObject{
				Name:       name,
				Size:       aws.ToInt64(obj.Size),
				ModifiedAt: aws.ToTime(obj.LastModified),
			})
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].ModifiedAt.After(objects[j].ModifiedAt)
	})
	return objects, nil
}

// Delete checks existence first since DeleteObject succeeds for missing keys
func (s *S3) Delete(ctx context.Context, name string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return &domain.NotFoundError{Message: fmt.Sprintf("file %s not found", name)}
		}
		return fmt.Errorf("%w: head %s: %v", domain.ErrStorage, name, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, name, err)
	}
	return nil
}

func (s *S3) URL(name string) string {
	return s.publicURL + "/" + s.prefix + url.PathEscape(name)
}
