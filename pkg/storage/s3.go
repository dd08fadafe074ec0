package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/raywall/music-api-toolkit/pkg/config"
)

// Interfaces para abstrair o SDK da AWS (Permite Mocking)
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store implementa o tier durável sobre um bucket: presença via HeadObject,
// leitura via URL pré-assinada, escrita via PutObject.
type S3Store struct {
	api       S3API
	presigner S3Presigner
	bucket    string
	expires   time.Duration
}

func NewS3Store(ctx context.Context, bucket, region string) (*S3Store, error) {
	awsCfg, err := config.GetAWSConfig(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar config AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		api:       client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		expires:   24 * time.Hour,
	}, nil
}

func (s *S3Store) GetFileURL(ctx context.Context, path string) (string, error) {
	_, err := s.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		// NotFound, sem permissão, rede fora: tudo vira ausência
		return "", fmt.Errorf("%w: %v", ErrNotCached, err)
	}

	presigned, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotCached, err)
	}

	return presigned.URL, nil
}

func (s *S3Store) Upload(ctx context.Context, path string, content []byte, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("erro no PutObject para %s: %w", path, err)
	}
	return nil
}

var _ DurableStore = (*S3Store)(nil)
