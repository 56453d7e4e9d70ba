package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/lbc24/quest-calendar/internal/domain"
)

// S3Config locates the export object in an S3-compatible bucket.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string // defaults to us-east-1
	Endpoint  string // optional; set for MinIO or other S3-compatible servers
	PathStyle bool
}

// objectGetter is the subset of *s3.Client the repo uses.
// Tests substitute an in-memory fake.
type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3DatasetRepo reads the export from a single S3 object.
type s3DatasetRepo struct {
	client objectGetter
	bucket string
	key    string
}

// NewS3DatasetRepo builds an S3 client from the default AWS credential chain
// and returns a DatasetRepo reading cfg.Key from cfg.Bucket.
func NewS3DatasetRepo(ctx context.Context, cfg S3Config) (DatasetRepo, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("repo.NewS3DatasetRepo: bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("repo.NewS3DatasetRepo: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3DatasetRepo(client, cfg.Bucket, cfg.Key), nil
}

func newS3DatasetRepo(client objectGetter, bucket, key string) *s3DatasetRepo {
	return &s3DatasetRepo{client: client, bucket: bucket, key: key}
}

// Load fetches and decodes the object.
func (r *s3DatasetRepo) Load(ctx context.Context) (domain.Dataset, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return domain.Dataset{}, fmt.Errorf("repo.S3DatasetRepo.Load: s3://%s/%s: %w", r.bucket, r.key, domain.ErrNotFound)
		}
		return domain.Dataset{}, fmt.Errorf("repo.S3DatasetRepo.Load: %w", err)
	}
	defer out.Body.Close()

	ds, err := Decode(out.Body)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("repo.S3DatasetRepo.Load: s3://%s/%s: %w", r.bucket, r.key, err)
	}
	return ds, nil
}
