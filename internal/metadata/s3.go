package metadata

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Store keeps documents as objects below one key prefix in a bucket.
type S3Store struct {
	bucket string
	prefix string
	client *s3.Client
}

// S3Config carries the connection settings of an S3Store.
type S3Config struct {
	Bucket  string
	Prefix  string
	Region  string
	Profile string
}

func NewS3Store(ctx context.Context, config S3Config) (*S3Store, error) {
	if config.Bucket == "" {
		return nil, fmt.Errorf("metadata: s3 store requires a bucket")
	}
	region := config.Region
	if region == "" {
		region = "us-east-1"
	}
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(region))
	if config.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(config.Profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metadata: unable to load AWS config: %w", err)
	}
	return &S3Store{
		bucket: config.Bucket,
		prefix: strings.TrimSuffix(config.Prefix, "/"),
		client: s3.NewFromConfig(cfg),
	}, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

func (s *S3Store) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) || strings.Contains(err.Error(), "NoSuchKey") {
			return nil, fmt.Errorf("metadata: no document %s in s3://%s", name, s.bucket)
		}
		return nil, fmt.Errorf("metadata: fetch s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return result.Body, nil
}

func (s *S3Store) Put(ctx context.Context, name string, content []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("metadata: put s3://%s/%s: %w", s.bucket, s.key(name), err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("metadata: list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), prefix))
		}
	}
	sort.Strings(names)
	return names, nil
}
