package mcpserver

import (
	"bytes"
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/noslop/internal/output"
	"github.com/panbanda/noslop/internal/scanner"
	"github.com/panbanda/noslop/pkg/analyzer/defaults"
)

// UnusedDefaultsInput is the input of find_unused_defaults.
type UnusedDefaultsInput struct {
	Path           string `json:"path,omitempty" jsonschema:"Directory to analyze. Defaults to the current directory."`
	MinCallSites   int    `json:"min_call_sites,omitempty" jsonschema:"Only report defaults whose function has at least this many call sites. Default 1."`
	IncludePrivate bool   `json:"include_private,omitempty" jsonschema:"Also report functions whose name starts with a single underscore."`
	Format         string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml, or markdown."`
}

func getFormat(input UnusedDefaultsInput) output.Format {
	switch input.Format {
	case "json":
		return output.FormatJSON
	case "yaml", "yml":
		return output.FormatYAML
	case "markdown", "md":
		return output.FormatMarkdown
	default:
		return output.FormatTOON
	}
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	var buf bytes.Buffer
	formatter, err := output.NewFormatter(output.WithWriter(&buf), output.WithFormat(format))
	if err != nil {
		return nil, nil, err
	}
	if err := formatter.Output(data); err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleFindUnusedDefaults(ctx context.Context, req *mcp.CallToolRequest, input UnusedDefaultsInput) (*mcp.CallToolResult, any, error) {
	root := input.Path
	if root == "" {
		root = "."
	}

	if err := scanner.CheckRoot(root); err != nil {
		return toolError(err.Error())
	}

	files, err := scanner.NewScanner(s.config).ScanDir(root)
	if err != nil {
		return toolError(err.Error())
	}

	minCalls := s.config.Defaults.MinCallSites
	if input.MinCallSites > 0 {
		minCalls = input.MinCallSites
	}

	a := defaults.New(
		defaults.WithMinCallSites(minCalls),
		defaults.WithIncludePrivate(input.IncludePrivate || s.config.Defaults.IncludePrivate),
		defaults.WithWorkers(s.config.Defaults.Workers),
	)
	defer a.Close()

	result, err := a.Analyze(ctx, files)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return toolError("analysis cancelled")
		}
		return toolError(err.Error())
	}

	return toolResult(result, getFormat(input))
}
