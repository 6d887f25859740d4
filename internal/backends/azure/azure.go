// Package azure implements the RemoteFS port over Azure Blob Storage.
// It serves both the az and abfs address schemes; an abfs address names
// the same flat blob namespace through the Data Lake convention.
package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Backend option keys. A connection string wins over discrete
// account settings; an endpoint alone yields anonymous access, for
// public containers and Azurite.
const (
	optAccountName      = "account_name"
	optAccountKey       = "account_key"
	optConnectionString = "connection_string"
	optEndpoint         = "endpoint"
)

// Config holds the option subset the Azure backend understands.
type Config struct {
	AccountName      string
	AccountKey       string
	ConnectionString string
	Endpoint         string
}

// parseOptions extracts Azure settings from the opaque option map.
func parseOptions(options map[string]string) Config {
	return Config{
		AccountName:      options[optAccountName],
		AccountKey:       options[optAccountKey],
		ConnectionString: options[optConnectionString],
		Endpoint:         options[optEndpoint],
	}
}

// serviceURL resolves the blob service endpoint: an explicit endpoint
// option wins, otherwise it is derived from the account name.
func (c Config) serviceURL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	if c.AccountName != "" {
		return fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)
	}
	return ""
}

// Ensure RemoteFS implements the interface.
var _ driven.RemoteFS = (*RemoteFS)(nil)

// RemoteFS lists and fetches blobs from one Azure storage account.
type RemoteFS struct {
	client *azblob.Client
}

// Factory creates an Azure-backed RemoteFS for a parsed address. It
// satisfies driven.BackendFactory.
func Factory(_ context.Context, _ domain.BackendAddress, options map[string]string) (driven.RemoteFS, error) {
	cfg := parseOptions(options)

	var (
		client *azblob.Client
		err    error
	)
	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)

	case cfg.AccountName != "" && cfg.AccountKey != "":
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("build shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(cfg.serviceURL(), cred, nil)

	case cfg.serviceURL() != "":
		client, err = azblob.NewClientWithNoCredential(cfg.serviceURL(), nil)

	default:
		return nil, fmt.Errorf("%w: azure needs account_name, connection_string or endpoint configured",
			domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("create blob client: %w", err)
	}

	return &RemoteFS{client: client}, nil
}

// List enumerates blobs under a "<container>[/<prefix>]" listing path
// with the flat pager, following markers until the listing is
// exhausted.
func (r *RemoteFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	container, prefix := backends.SplitPath(path)

	listOpts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		listOpts.Prefix = &prefix
	}

	var objects []driven.ObjectInfo
	pager := r.client.NewListBlobsFlatPager(container, listOpts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}

		for _, blob := range page.Segment.BlobItems {
			if blob.Name == nil {
				continue
			}
			name := *blob.Name
			if !backends.WithinScope(name, prefix, recursive) {
				continue
			}
			var size int64
			if blob.Properties != nil && blob.Properties.ContentLength != nil {
				size = *blob.Properties.ContentLength
			}
			objects = append(objects, driven.ObjectInfo{
				Key:  container + "/" + name,
				Size: size,
			})
		}
	}
	return objects, nil
}

// Fetch downloads one blob to localPath.
func (r *RemoteFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	container, blobName := backends.SplitPath(remoteKey)

	res, err := r.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return fmt.Errorf("download blob %s: %w", remoteKey, err)
	}
	defer res.Body.Close()

	return backends.WriteStream(localPath, res.Body)
}

// Close releases the backend session.
func (r *RemoteFS) Close() error {
	return nil
}
