// Package s3 implements an S3-backed object store for raw JSON input.
//
// Credentials, region fallback, and endpoint configuration come from the
// standard AWS SDK chain (environment, shared config, instance role); only
// the bucket and key prefix are pipeline configuration. Listing uses
// pagination so buckets with more than 1000 matching keys are read fully.
package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"lakeetl/internal/datasource"
)

// Option is a functional option for Store.
type Option func(*Store)

// WithRegion sets the AWS region, overriding the SDK default chain.
func WithRegion(region string) Option {
	return func(s *Store) { s.region = region }
}

// WithClient injects an S3 API client, bypassing session construction.
// Used by tests.
func WithClient(c s3iface.S3API) Option {
	return func(s *Store) { s.api = c }
}

// Store lists and opens the *.json objects under bucket/prefix.
type Store struct {
	bucket string
	prefix string
	region string

	api s3iface.S3API
}

// NewStore returns a Store for the given bucket and key prefix.
func NewStore(bucket, prefix string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket must not be empty")
	}
	s := &Store{bucket: bucket, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	if s.api == nil {
		cfg := aws.Config{}
		if s.region != "" {
			cfg.Region = aws.String(s.region)
		}
		sess, err := session.NewSession(&cfg)
		if err != nil {
			return nil, fmt.Errorf("s3: new session: %w", err)
		}
		s.api = awss3.New(sess)
	}
	return s, nil
}

// List pages through ListObjectsV2 under the configured prefix and returns
// one Object per key ending in .json. An empty bucket/prefix yields an
// empty slice, not an error.
func (s *Store) List(ctx context.Context) ([]datasource.Object, error) {
	var out []datasource.Object
	in := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}
	err := s.api.ListObjectsV2PagesWithContext(ctx, in,
		func(page *awss3.ListObjectsV2Output, _ bool) bool {
			for _, obj := range page.Contents {
				key := aws.StringValue(obj.Key)
				if !strings.HasSuffix(strings.ToLower(key), ".json") {
					continue
				}
				out = append(out, &s3Object{api: s.api, bucket: s.bucket, key: key})
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("s3: list %s/%s: %w", s.bucket, s.prefix, err)
	}
	return out, nil
}

// s3Object is a single key in a bucket.
type s3Object struct {
	api    s3iface.S3API
	bucket string
	key    string
}

func (o *s3Object) Name() string { return o.key }

// Open fetches the object body. The returned ReadCloser streams directly
// from the GetObject response; callers must Close it.
func (o *s3Object) Open(ctx context.Context) (io.ReadCloser, error) {
	res, err := o.api.GetObjectWithContext(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: get %s/%s: %w", o.bucket, o.key, err)
	}
	return res.Body, nil
}
