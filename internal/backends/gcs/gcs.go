// Package gcs implements the RemoteFS port over Google Cloud Storage.
// It serves both the gs and gcs address schemes.
package gcs

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Backend option keys. Without any, the standard application default
// credentials chain applies.
const (
	// optCredentialsFile points at a service-account JSON key file.
	optCredentialsFile = "credentials_file"

	// optAccessToken is a pre-issued OAuth2 access token, used as-is
	// without refresh.
	optAccessToken = "access_token"

	// optAnonymous ("true") disables authentication, for public
	// buckets and emulators.
	optAnonymous = "anonymous"

	// optEndpoint overrides the API endpoint, for emulators.
	optEndpoint = "endpoint"
)

// maxResultsPerPage is the listing page size.
const maxResultsPerPage = 1000

// Ensure RemoteFS implements the interface.
var _ driven.RemoteFS = (*RemoteFS)(nil)

// RemoteFS lists and fetches objects from Google Cloud Storage.
type RemoteFS struct {
	service *storage.Service
}

// Factory creates a GCS-backed RemoteFS for a parsed address. It
// satisfies driven.BackendFactory.
func Factory(ctx context.Context, _ domain.BackendAddress, options map[string]string) (driven.RemoteFS, error) {
	var opts []option.ClientOption
	switch {
	case options[optAnonymous] == "true":
		opts = append(opts, option.WithoutAuthentication())
	case options[optAccessToken] != "":
		source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: options[optAccessToken]})
		opts = append(opts, option.WithTokenSource(source))
	case options[optCredentialsFile] != "":
		opts = append(opts,
			option.WithCredentialsFile(options[optCredentialsFile]),
			option.WithScopes(storage.DevstorageReadOnlyScope))
	default:
		opts = append(opts, option.WithScopes(storage.DevstorageReadOnlyScope))
	}
	if options[optEndpoint] != "" {
		opts = append(opts, option.WithEndpoint(options[optEndpoint]))
	}

	service, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}
	return &RemoteFS{service: service}, nil
}

// List enumerates objects under a "<bucket>[/<prefix>]" listing path,
// following page tokens until the listing is exhausted.
func (r *RemoteFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	bucket, prefix := backends.SplitPath(path)

	var objects []driven.ObjectInfo
	pageToken := ""
	for {
		call := r.service.Objects.List(bucket).
			MaxResults(maxResultsPerPage).
			Context(ctx)
		if prefix != "" {
			call = call.Prefix(prefix)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}

		for _, obj := range res.Items {
			if !backends.WithinScope(obj.Name, prefix, recursive) {
				continue
			}
			objects = append(objects, driven.ObjectInfo{
				Key:  bucket + "/" + obj.Name,
				Size: int64(obj.Size),
			})
		}

		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}
	return objects, nil
}

// Fetch downloads one object to localPath.
func (r *RemoteFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	bucket, object := backends.SplitPath(remoteKey)

	res, err := r.service.Objects.Get(bucket, object).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("get object %s: %w", remoteKey, err)
	}
	defer res.Body.Close()

	return backends.WriteStream(localPath, res.Body)
}

// Close releases the backend session.
func (r *RemoteFS) Close() error {
	return nil
}
