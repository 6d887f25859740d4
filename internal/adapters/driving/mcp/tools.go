package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// defaultListLimit bounds corpus_list output when the caller does not
// ask for a limit.
const defaultListLimit = 100

// ParseAddressInput is the input schema for the corpus_parse_address tool.
type ParseAddressInput struct {
	Address string `json:"address" jsonschema:"the location string to validate, e.g. s3://bucket/reports"`
}

// ParseAddressOutput is the output schema for the corpus_parse_address tool.
type ParseAddressOutput struct {
	Backend  string `json:"backend"`
	Root     string `json:"root"`
	Object   string `json:"object,omitempty"`
	Rootless bool   `json:"rootless"`
}

// ListInput is the input schema for the corpus_list tool.
type ListInput struct {
	Address   string `json:"address" jsonschema:"the corpus address to enumerate"`
	Recursive bool   `json:"recursive,omitempty" jsonschema:"list the full transitive object set"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of objects to return (default 100)"`
}

// ListOutput is the output schema for the corpus_list tool.
type ListOutput struct {
	Objects   []ObjectOutput `json:"objects"`
	Count     int            `json:"count"`
	Truncated bool           `json:"truncated,omitempty"`
}

// ObjectOutput represents a single remote object.
type ObjectOutput struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// StageInput is the input schema for the corpus_stage tool.
type StageInput struct {
	Address        string `json:"address" jsonschema:"the corpus address to stage"`
	Recursive      bool   `json:"recursive,omitempty" jsonschema:"list the full transitive object set"`
	ExpandArchives *bool  `json:"expand_archives,omitempty" jsonschema:"expand zip and tar documents into child corpora (default from settings)"`
	Workers        int    `json:"workers,omitempty" jsonschema:"worker pool size"`
}

// StageOutput is the output schema for the corpus_stage tool.
type StageOutput struct {
	RunID     string `json:"run_id"`
	Status    string `json:"status"`
	OutputDir string `json:"output_dir"`
	Total     int    `json:"total"`
	Plain     int    `json:"plain"`
	Archives  int    `json:"archives"`
	Skipped   int    `json:"skipped,omitempty"`
	Failed    int    `json:"failed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "corpus_parse_address",
		Description: "Validate a corpus address and decompose it into backend, root and object path",
	}, s.handleParseAddress)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "corpus_list",
		Description: "Enumerate the objects behind a corpus address without fetching them",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "corpus_stage",
		Description: "Stage a remote corpus into the local working area and return the run summary",
	}, s.handleStage)
}

// handleParseAddress handles the corpus_parse_address tool invocation.
func (s *Server) handleParseAddress(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseAddressInput,
) (*mcp.CallToolResult, ParseAddressOutput, error) {
	addr, err := domain.ParseAddress(input.Address)
	if err != nil {
		return nil, ParseAddressOutput{}, err
	}

	return nil, ParseAddressOutput{
		Backend:  addr.Backend.String(),
		Root:     addr.Root,
		Object:   addr.Object,
		Rootless: addr.Backend.Rootless(),
	}, nil
}

// handleList handles the corpus_list tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	docs, err := s.ports.Explorer.List(ctx, input.Address, input.Recursive)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{Count: len(docs)}
	if len(docs) > limit {
		docs = docs[:limit]
		output.Truncated = true
	}

	output.Objects = make([]ObjectOutput, len(docs))
	for i, doc := range docs {
		output.Objects[i] = ObjectOutput{
			Key:  doc.RemoteKey,
			Size: doc.Size,
		}
	}

	return nil, output, nil
}

// handleStage handles the corpus_stage tool invocation.
func (s *Server) handleStage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StageInput,
) (*mcp.CallToolResult, StageOutput, error) {
	opts, err := s.resolveStageOptions(input)
	if err != nil {
		return nil, StageOutput{}, err
	}

	run, err := s.ports.Stager.Stage(ctx, input.Address, opts)
	if err != nil && run == nil {
		return nil, StageOutput{}, err
	}

	output := StageOutput{
		RunID:     run.ID,
		Status:    run.Status.String(),
		OutputDir: run.OutputDir,
		Total:     run.Counts.Total,
		Plain:     run.Counts.Plain,
		Archives:  run.Counts.Archives,
		Skipped:   run.Counts.Skipped,
		Failed:    run.Counts.Failed,
		Error:     run.Error,
	}
	return nil, output, nil
}

// resolveStageOptions layers tool input over persisted settings and
// the default corpus directories.
func (s *Server) resolveStageOptions(input StageInput) (driving.StageOptions, error) {
	settings := domain.DefaultStagingSettings()
	if s.ports.Settings != nil {
		loaded, err := s.ports.Settings.Get()
		if err != nil {
			return driving.StageOptions{}, fmt.Errorf("loading settings: %w", err)
		}
		settings = loaded
	}

	opts := driving.StageOptions{
		WorkingDir:     settings.WorkingDir,
		OutputDir:      settings.OutputDir,
		Recursive:      settings.Recursive || input.Recursive,
		ExpandArchives: settings.ExpandArchives,
		Workers:        settings.MaxWorkers,
		KeepCache:      settings.KeepCache,
	}
	if input.ExpandArchives != nil {
		opts.ExpandArchives = *input.ExpandArchives
	}
	if input.Workers > 0 {
		opts.Workers = input.Workers
	}

	if opts.WorkingDir == "" || opts.OutputDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return driving.StageOptions{}, fmt.Errorf("resolving home directory: %w", err)
		}
		if opts.WorkingDir == "" {
			opts.WorkingDir = filepath.Join(home, ".corpus", "cache")
		}
		if opts.OutputDir == "" {
			opts.OutputDir = filepath.Join(home, ".corpus", "output")
		}
	}

	return opts, nil
}
