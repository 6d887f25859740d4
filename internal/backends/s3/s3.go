// Package s3 implements the RemoteFS port over Amazon S3 and
// S3-compatible object stores such as MinIO. It serves both the s3 and
// s3a address schemes.
package s3

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Backend option keys, set via `corpus config set-credential s3 <key> <value>`.
// Credentials fall back to the standard AWS chain (environment, shared
// config, instance role) when unset.
const (
	optRegion          = "region"
	optEndpoint        = "endpoint"
	optAccessKeyID     = "access_key_id"
	optSecretAccessKey = "secret_access_key"
	optSessionToken    = "session_token"
	optUsePathStyle    = "use_path_style"
)

// maxKeysPerPage is the listing page size; 1000 is the S3 maximum.
const maxKeysPerPage = 1000

// Config holds the option subset the S3 backend understands.
type Config struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	UsePathStyle    bool
}

// parseOptions extracts S3 settings from the opaque option map.
func parseOptions(options map[string]string) Config {
	return Config{
		Region:          options[optRegion],
		Endpoint:        options[optEndpoint],
		AccessKeyID:     options[optAccessKeyID],
		SecretAccessKey: options[optSecretAccessKey],
		SessionToken:    options[optSessionToken],
		UsePathStyle:    options[optUsePathStyle] == "true",
	}
}

// s3API is the client surface the backend uses, narrowed so tests can
// substitute a stub.
type s3API interface {
	ListObjectsV2(ctx context.Context, input *awss3.ListObjectsV2Input, opts ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, input *awss3.GetObjectInput, opts ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// Ensure RemoteFS implements the interface.
var _ driven.RemoteFS = (*RemoteFS)(nil)

// RemoteFS lists and fetches objects from one S3-compatible store.
type RemoteFS struct {
	client s3API
}

// Factory creates an S3-backed RemoteFS for a parsed address. It
// satisfies driven.BackendFactory.
func Factory(ctx context.Context, _ domain.BackendAddress, options map[string]string) (driven.RemoteFS, error) {
	cfg := parseOptions(options)

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(provider))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Path-style addressing is required by most S3-compatible
		// stores that serve every bucket from one host.
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &RemoteFS{client: client}, nil
}

// List enumerates objects under a "<bucket>[/<prefix>]" listing path,
// following continuation tokens until the listing is exhausted.
func (r *RemoteFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	bucket, prefix := backends.SplitPath(path)

	input := &awss3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(maxKeysPerPage),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []driven.ObjectInfo
	for {
		output, err := r.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}

		for _, obj := range output.Contents {
			key := aws.ToString(obj.Key)
			if !backends.WithinScope(key, prefix, recursive) {
				continue
			}
			objects = append(objects, driven.ObjectInfo{
				Key:  bucket + "/" + key,
				Size: aws.ToInt64(obj.Size),
			})
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		input.ContinuationToken = output.NextContinuationToken
	}
	return objects, nil
}

// Fetch downloads one object to localPath.
func (r *RemoteFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	bucket, key := backends.SplitPath(remoteKey)

	output, err := r.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object %s: %w", remoteKey, err)
	}
	defer output.Body.Close()

	return backends.WriteStream(localPath, output.Body)
}

// Close releases the backend session. The S3 client holds no resources
// beyond its HTTP transport.
func (r *RemoteFS) Close() error {
	return nil
}
