package services

import (
	"bytes"
	"context"
	"fmt"

	appconfig "makeusbetter-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaService stores avatar images and voice clips in S3.
type MediaService struct {
	s3Client *s3.Client
	bucket   string
	region   string
	endpoint string
}

// NewMediaService creates a new media service
func NewMediaService(cfg appconfig.AWSConfig) (*MediaService, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &MediaService{
		s3Client: s3Client,
		bucket:   cfg.S3Bucket,
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

// UploadAvatar stores an avatar image and returns its public URL.
func (s *MediaService) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("avatars/%s/%s.jpg", userID, uuid.New().String())
	return s.put(ctx, key, data, contentType)
}

// UploadVoice stores a voice clip and returns its public URL.
func (s *MediaService) UploadVoice(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("voice/%s/%s.m4a", userID, uuid.New().String())
	return s.put(ctx, key, data, contentType)
}

func (s *MediaService) put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return s.objectURL(key), nil
}

func (s *MediaService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
