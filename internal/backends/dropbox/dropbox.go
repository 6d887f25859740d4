// Package dropbox implements the RemoteFS port over the Dropbox API.
// Dropbox is rootless: the account root has no bucket name, so the
// address grammar's whitespace placeholder maps to the API's "" folder.
package dropbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"

	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// optAccessToken is the OAuth2 access token option, set via
// `corpus config set-credential dropbox access_token`.
const optAccessToken = "access_token"

// DefaultRequestsPerSecond is the sustained request rate the
// composition root applies to Dropbox sessions by default. The API
// enforces per-app quotas and answers bursts with too_many_requests,
// so staying conservative avoids stalling a run on backoff.
const DefaultRequestsPerSecond = 4.0

// filesAPI is the client surface the backend uses, narrowed so tests
// can substitute a stub.
type filesAPI interface {
	ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error)
	ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error)
	GetMetadata(arg *files.GetMetadataArg) (files.IsMetadata, error)
	Download(arg *files.DownloadArg) (*files.FileMetadata, io.ReadCloser, error)
}

// Ensure RemoteFS implements the interface.
var _ driven.RemoteFS = (*RemoteFS)(nil)

// RemoteFS lists and fetches files from one Dropbox account.
type RemoteFS struct {
	client filesAPI
}

// Factory creates a Dropbox-backed RemoteFS for a parsed address. It
// satisfies driven.BackendFactory.
func Factory(_ context.Context, _ domain.BackendAddress, options map[string]string) (driven.RemoteFS, error) {
	token := options[optAccessToken]
	if token == "" {
		return nil, errors.New("access_token is not configured for dropbox")
	}

	return &RemoteFS{client: files.New(dropbox.Config{Token: token})}, nil
}

// List enumerates files under a listing path. The Dropbox API scopes
// listings itself (shallow returns immediate children only), so no
// client-side prefix filtering is needed; folder entries carry no size
// and are skipped.
func (r *RemoteFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	folder := apiPath(path)

	// A non-root path may name a single file; the list-folder endpoint
	// rejects those, so look the path up first.
	if folder != "" {
		md, err := r.client.GetMetadata(files.NewGetMetadataArg(folder))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if fm, ok := md.(*files.FileMetadata); ok {
			return []driven.ObjectInfo{fileInfo(fm)}, nil
		}
	}

	arg := files.NewListFolderArg(folder)
	arg.Recursive = recursive

	res, err := r.client.ListFolder(arg)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	var objects []driven.ObjectInfo
	for {
		// The SDK does not take contexts; honour cancellation
		// between pages.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, entry := range res.Entries {
			if fm, ok := entry.(*files.FileMetadata); ok {
				objects = append(objects, fileInfo(fm))
			}
		}

		if !res.HasMore {
			break
		}
		res, err = r.client.ListFolderContinue(files.NewListFolderContinueArg(res.Cursor))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
	}
	return objects, nil
}

// Fetch downloads one file to localPath.
func (r *RemoteFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, content, err := r.client.Download(files.NewDownloadArg(apiPath(remoteKey)))
	if err != nil {
		return fmt.Errorf("download %s: %w", remoteKey, err)
	}
	defer content.Close()

	return backends.WriteStream(localPath, content)
}

// Close releases the backend session. The SDK client holds no
// resources beyond its HTTP transport.
func (r *RemoteFS) Close() error {
	return nil
}

// apiPath converts a listing path or remote key to the API's form: the
// account root (the whitespace placeholder) becomes "", everything
// else is slash-prefixed.
func apiPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return "/" + path
}

// fileInfo converts SDK file metadata to an ObjectInfo. The key is the
// display path without its leading slash, lining up with the other
// backends' "<root>/<path>" key form.
func fileInfo(fm *files.FileMetadata) driven.ObjectInfo {
	return driven.ObjectInfo{
		Key:  strings.TrimPrefix(fm.PathDisplay, "/"),
		Size: int64(fm.Size),
	}
}
