package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	config "github.com/tokengraph/indexer/configs"
	"github.com/tokengraph/indexer/internal/metrics"
)

type S3Uploader struct {
	client *s3.Client
	cfg    *config.S3ArchiveConfig
}

func NewS3Uploader(cfg *config.S3ArchiveConfig) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("no bucket configured for S3 archive")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Override with explicit credentials if provided
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
			}, nil
		})
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Uploader{
		client: client,
		cfg:    cfg,
	}, nil
}

func (u *S3Uploader) Upload(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer file.Close()

	key := filepath.Base(path)
	if u.cfg.Prefix != "" {
		key = fmt.Sprintf("%s/%s", u.cfg.Prefix, key)
	}

	_, err = u.client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	metrics.ArchiveFilesUploaded.Inc()
	log.Info().Str("bucket", u.cfg.Bucket).Str("key", key).Msg("Uploaded parquet archive to S3")
	return nil
}
