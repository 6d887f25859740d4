package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for corpus resources.
	uriScheme = "corpus://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing recorded runs.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recorded staging runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	// Template for one run's document tree.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}",
		Name:        "run-documents",
		Description: "One staging run with its recorded document references",
		MIMEType:    "application/json",
	}, s.handleRunResource)
}

// runInfo is the JSON shape for one run in resource listings.
type runInfo struct {
	ID          string `json:"id"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	Total       int    `json:"total"`
	Plain       int    `json:"plain"`
	Archives    int    `json:"archives"`
	Failed      int    `json:"failed"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleRunsResource returns the recorded staging runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifest == nil {
		return jsonResource(req.Params.URI, []byte("[]")), nil
	}

	runs, err := s.ports.Manifest.ListRuns(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i, run := range runs {
		infos[i] = runInfo{
			ID:        run.ID,
			Address:   run.Address,
			Status:    run.Status.String(),
			Total:     run.Counts.Total,
			Plain:     run.Counts.Plain,
			Archives:  run.Counts.Archives,
			Failed:    run.Counts.Failed,
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Error:     run.Error,
		}
		if run.CompletedAt != nil {
			infos[i].CompletedAt = run.CompletedAt.Format(time.RFC3339)
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling runs: %w", err)
	}

	return jsonResource(req.Params.URI, data), nil
}

// handleRunResource returns one run with its document references.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Manifest == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	run, err := s.ports.Manifest.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}

	docs, err := s.ports.Manifest.Documents(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		Key            string `json:"key"`
		State          string `json:"state"`
		Classification string `json:"classification,omitempty"`
		Depth          int    `json:"depth,omitempty"`
		Size           int64  `json:"size"`
		LocalPath      string `json:"local_path,omitempty"`
		Error          string `json:"error,omitempty"`
	}

	payload := struct {
		Run       runInfo   `json:"run"`
		Documents []docInfo `json:"documents"`
	}{
		Run: runInfo{
			ID:        run.ID,
			Address:   run.Address,
			Status:    run.Status.String(),
			Total:     run.Counts.Total,
			Plain:     run.Counts.Plain,
			Archives:  run.Counts.Archives,
			Failed:    run.Counts.Failed,
			StartedAt: run.StartedAt.Format(time.RFC3339),
			Error:     run.Error,
		},
		Documents: make([]docInfo, len(docs)),
	}
	if run.CompletedAt != nil {
		payload.Run.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}

	for i, doc := range docs {
		payload.Documents[i] = docInfo{
			Key:            doc.RemoteKey,
			State:          doc.State.String(),
			Classification: doc.Archive.String(),
			Depth:          doc.Depth,
			Size:           doc.Size,
			LocalPath:      doc.LocalCachePath,
		}
		if doc.Err != nil {
			payload.Documents[i].Error = doc.Err.Error()
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling run: %w", err)
	}

	return jsonResource(req.Params.URI, data), nil
}

// jsonResource wraps a JSON payload in a read result.
func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractRunID extracts the run ID from a URI like corpus://runs/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
