package catalog

import (
	"bytes"
	"context"
	"errors"

	"catalogcrawl/config"
	"catalogcrawl/log"
	"catalogcrawl/oops"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Api is the part of *s3.Client the mirror uses.
type S3Api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func NewS3Client(ctx context.Context, cfg config.MirrorConfig) (*s3.Client, error) {
	options := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AwsAccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretAccessKey, "")
		options = append(options, awsconfig.WithCredentialsProvider(creds))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

// S3MirrorStore uploads a csv copy of every saved table, and restores from that copy when the
// inner store has nothing yet.
type S3MirrorStore struct {
	Inner  Store
	Client S3Api
	Bucket string
	Key    string
	Logger log.Logger
}

func (s *S3MirrorStore) Location() string {
	return s.Inner.Location()
}

func (s *S3MirrorStore) Load(ctx context.Context) (*Table, error) {
	table, err := s.Inner.Load(ctx)
	if err != nil || table != nil {
		return table, err
	}

	//nolint:exhaustruct
	output, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		s.Logger.Info().Str("bucket", s.Bucket).Str("key", s.Key).Msg("No mirrored catalog either")
		return nil, nil
	} else if err != nil {
		return nil, oops.Wrapf(err, "get s3://%s/%s", s.Bucket, s.Key)
	}
	defer output.Body.Close()

	table, err = DecodeCsv(output.Body)
	if err != nil {
		return nil, oops.Wrapf(err, "decode s3://%s/%s", s.Bucket, s.Key)
	}
	s.Logger.Info().
		Str("bucket", s.Bucket).
		Str("key", s.Key).
		Int("records", table.Len()).
		Msg("Restored catalog from mirror")
	return table, nil
}

func (s *S3MirrorStore) Save(ctx context.Context, table *Table) error {
	if err := s.Inner.Save(ctx, table); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := EncodeCsv(&buf, table); err != nil {
		return err
	}
	size := int64(buf.Len())
	//nolint:exhaustruct
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.Bucket),
		Key:           aws.String(s.Key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: &size,
		ContentType:   aws.String("text/csv"),
	})
	if err != nil {
		s.Logger.Warn().
			Err(oops.Wrapf(err, "put s3://%s/%s", s.Bucket, s.Key)).
			Msg("Catalog saved but not mirrored")
		return nil
	}
	s.Logger.Info().Str("bucket", s.Bucket).Str("key", s.Key).Int64("bytes", size).Msg("Mirrored catalog")
	return nil
}
