package artifact

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config/credential chain.
type S3Config struct {
	Bucket string
	// Prefix is prepended to every key, e.g. "artifacts/"
	Prefix string
	// Region to use for requests, e.g. "us-east-1". If empty, AWS defaults apply.
	Region string
	// Profile selects a named shared config/credentials profile.
	Profile string
	// UsePathStyle forces path-style addressing (useful for S3-compatible providers).
	UsePathStyle bool
}

// objectAPI is the slice of *s3.Client the store needs
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Store keeps artifacts as objects <prefix><session>/<name>
type S3Store struct {
	client objectAPI
	bucket string
	prefix string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds an S3 client from the default AWS configuration chain,
// with optional overrides from cfg.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Store(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(client objectAPI, bucket, prefix string) *S3Store {
	if prefix != "" {
		prefix = strings.Trim(prefix, "/") + "/"
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Store) key(session, name string) string {
	return s.prefix + session + "/" + name
}

// Read fetches the object body
func (s *S3Store) Read(ctx context.Context, session, name string) (string, error) {
	if err := checkKey(session, name); err != nil {
		return "", err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(session, name)),
	})
	if err != nil {
		if isNotFound(err) {
			return "", notFound(session, name)
		}
		return "", storageErr("s3 get", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", storageErr("s3 read body", err)
	}
	return string(data), nil
}

// Write uploads the artifact as a markdown object
func (s *S3Store) Write(ctx context.Context, session, name, content string) error {
	if err := checkKey(session, name); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(s.key(session, name)),
		Body:         strings.NewReader(content),
		ContentType:  aws.String("text/markdown; charset=utf-8"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return storageErr("s3 put", err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no connections that need releasing
func (s *S3Store) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
