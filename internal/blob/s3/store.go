// Package s3 reads spectrum payloads from S3-compatible object storage
// (AWS S3 or MinIO). Access is read-only.
package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agentstation/sedmap/pkg/constants"
	"github.com/agentstation/sedmap/pkg/errors"
)

// Store fetches objects from any bucket reachable with one set of credentials.
type Store struct {
	client   *s3.Client
	maxBytes int64
}

// Config holds explicit construction parameters. Empty credentials fall
// back to the default AWS credentials chain.
type Config struct {
	Region          string
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	PathStyle       bool
	HTTPClient      *http.Client // optional; used by tests
}

// New creates a Store from cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewConfigError("s3", "loading AWS configuration", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &Store{client: client, maxBytes: constants.MaxSpectrumBytes}, nil
}

// Get returns the object body at bucket/key.
func (s *Store) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewNotFoundError("object", "s3://"+bucket+"/"+key)
		}
		return nil, errors.WrapIO("fetch", "s3://"+bucket+"/"+key, err)
	}
	defer out.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(out.Body, s.maxBytes+1))
	if err != nil {
		return nil, errors.WrapIO("read", "s3://"+bucket+"/"+key, err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, errors.NewIOError("read", "s3://"+bucket+"/"+key, fmt.Errorf("object exceeds %d bytes", s.maxBytes))
	}
	return body, nil
}

// Fetch returns the object named by an s3://bucket/key URL.
func (s *Store) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	bucket, key, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, bucket, key)
}

// ParseURL splits an s3://bucket/key URL.
func ParseURL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errors.NewValidationError("url", rawURL, err.Error())
	}
	if u.Scheme != "s3" {
		return "", "", errors.NewValidationError("url", rawURL, "scheme must be s3")
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", errors.NewValidationError("url", rawURL, "expected s3://bucket/key")
	}
	return u.Host, key, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
