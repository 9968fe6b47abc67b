package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/payload"
	payloadFs "github.com/hollowfs/hollowfs/pkg/payload/fs"
	payloadMemory "github.com/hollowfs/hollowfs/pkg/payload/memory"
	payloadS3 "github.com/hollowfs/hollowfs/pkg/payload/s3"
	"github.com/hollowfs/hollowfs/pkg/volume"
	volumeBadger "github.com/hollowfs/hollowfs/pkg/volume/badger"
	volumeMemory "github.com/hollowfs/hollowfs/pkg/volume/memory"
	"github.com/mitchellh/mapstructure"
)

// CreatePayloadStore creates a payload store based on configuration.
//
// This factory function uses the Type field to determine which store
// implementation to create, then decodes the type-specific configuration from
// the corresponding map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/payload/memory (in-memory storage, ephemeral)
//   - "filesystem": Uses pkg/payload/fs (local filesystem storage)
//   - "s3": Uses pkg/payload/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Payload store configuration
//
// Returns:
//   - payload.Store: Initialized payload store
//   - error: Configuration or initialization error
func CreatePayloadStore(ctx context.Context, cfg *PayloadConfig) (payload.Store, error) {
	switch cfg.Type {
	case "memory":
		return payloadMemory.New(), nil
	case "filesystem":
		return createFilesystemPayloadStore(ctx, cfg.Filesystem)
	case "s3":
		return createS3PayloadStore(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown payload store type: %q", cfg.Type)
	}
}

// createFilesystemPayloadStore creates a filesystem-based payload store.
func createFilesystemPayloadStore(ctx context.Context, options map[string]any) (payload.Store, error) {
	// Define the configuration struct for the filesystem payload store
	type FilesystemPayloadStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	// Decode the options into the config struct
	var storeCfg FilesystemPayloadStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem payload store config: %w", err)
	}

	// Validate required fields
	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem payload store: path is required")
	}

	// Create the store
	store, err := payloadFs.New(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem payload store: %w", err)
	}

	return store, nil
}

// createS3PayloadStore creates an S3-based payload store.
func createS3PayloadStore(ctx context.Context, options map[string]any) (payload.Store, error) {
	// Define the configuration struct for the S3 payload store
	type S3PayloadStoreConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	// Decode the options into the config struct
	var storeCfg S3PayloadStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 payload store config: %w", err)
	}

	// Validate required fields
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 payload store: bucket is required")
	}

	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 payload store: region is required")
	}

	// Build AWS config
	var configOptions []func(*awsConfig.LoadOptions) error

	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Retry transient failures (502, 503, timeouts) more aggressively than
	// the AWS default of 3 attempts
	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	// Load AWS config
	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := payloadS3.New(ctx, payloadS3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 payload store: %w", err)
	}

	logger.Info("S3 payload store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateVolume creates a volume based on configuration.
//
// This factory function uses the Type field to determine which volume
// implementation to create, then decodes the type-specific configuration from
// the corresponding map and passes it to the volume's constructor. The payload
// store is wired in here so both backends share the same payload plumbing.
//
// Supported types:
//   - "memory": Uses pkg/volume/memory (in-memory object tree, ephemeral)
//   - "badger": Uses pkg/volume/badger (BadgerDB-backed object tree, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Volume configuration
//   - payloads: Payload store backing leaf data streams
//
// Returns:
//   - volume.Volume: Initialized volume
//   - error: Configuration or initialization error
func CreateVolume(ctx context.Context, cfg *VolumeConfig, payloads payload.Store) (volume.Volume, error) {
	switch cfg.Type {
	case "memory":
		return volumeMemory.New(ctx, payloads)
	case "badger":
		return createBadgerVolume(ctx, cfg.Badger, payloads)
	default:
		return nil, fmt.Errorf("unknown volume type: %q", cfg.Type)
	}
}

// createBadgerVolume creates a BadgerDB-backed volume.
func createBadgerVolume(ctx context.Context, options map[string]any, payloads payload.Store) (volume.Volume, error) {
	var storeCfg volumeBadger.Config
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger volume config: %w", err)
	}

	// Validate required fields
	if storeCfg.DBPath == "" {
		return nil, fmt.Errorf("badger volume: db_path is required")
	}

	storeCfg.Payloads = payloads

	vol, err := volumeBadger.New(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger volume: %w", err)
	}

	logger.Info("badger volume initialized: path=%s", storeCfg.DBPath)

	return vol, nil
}
