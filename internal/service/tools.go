package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nekonora/xcodebuild/internal/mcp"
	"github.com/nekonora/xcodebuild/internal/output"
	"github.com/nekonora/xcodebuild/internal/xcode"
)

// Tool names.
const (
	ToolBuild            = "build"
	ToolTest             = "test"
	ToolListSchemes      = "list_schemes"
	ToolSetDefaultScheme = "set_default_scheme"
	ToolGetDefaultScheme = "get_default_scheme"
)

const folderDescription = "The full path of the current folder that the iOS Xcode workspace/project sits"

func buildSchema() mcp.Schema {
	modes := make([]string, len(output.Modes))
	for i, m := range output.Modes {
		modes[i] = string(m)
	}
	return mcp.Schema{
		Type: "object",
		Properties: map[string]mcp.Property{
			"folder": {Type: "string", Description: folderDescription},
			"scheme": {
				Type:        "string",
				Description: "The specific scheme to build (optional - if not provided, the default or first available scheme will be used)",
			},
			"simulator_name": {
				Type:        "string",
				Description: "The iOS simulator name to use (e.g., 'iPhone 16', 'iPad Pro') - if not provided, first available simulator will be used",
			},
			"ios_version": {
				Type:        "string",
				Description: "The iOS version to use (e.g., '18.3.1', '17.5') - if not provided, version from first available simulator will be used",
			},
			"output_filter": {
				Type:        "string",
				Description: "Filter output: 'all' (limited to last 200 lines), 'errors_only', 'warnings_only', 'errors_and_warnings' (recommended for AI agents), or 'string_match'",
				Enum:        modes,
				Default:     string(output.ModeAll),
			},
			"filter_string": {
				Type:        "string",
				Description: "String to match when output_filter is 'string_match' (required for string_match filter)",
			},
		},
		Required: []string{"folder"},
	}
}

// Tools declares the operations exposed over MCP.
func (s *Service) Tools() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        ToolBuild,
			Description: "Build the iOS Xcode workspace/project in the folder",
			InputSchema: buildSchema(),
		},
		{
			Name:        ToolTest,
			Description: "Run test for the iOS Xcode workspace/project in the folder",
			InputSchema: buildSchema(),
		},
		{
			Name:        ToolListSchemes,
			Description: "List all available schemes for the iOS Xcode workspace/project in the folder",
			InputSchema: mcp.Schema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"folder": {Type: "string", Description: folderDescription},
				},
				Required: []string{"folder"},
			},
		},
		{
			Name:        ToolSetDefaultScheme,
			Description: "Set a default scheme to use for future builds and tests (avoids having to specify scheme each time)",
			InputSchema: mcp.Schema{
				Type: "object",
				Properties: map[string]mcp.Property{
					"folder": {Type: "string", Description: folderDescription},
					"scheme": {Type: "string", Description: "The scheme to set as default for future builds/tests"},
				},
				Required: []string{"folder", "scheme"},
			},
		},
		{
			Name:        ToolGetDefaultScheme,
			Description: "Show the currently configured default scheme",
			InputSchema: mcp.Schema{Type: "object"},
		},
	}
}

type folderArgs struct {
	Folder string `json:"folder"`
}

type schemeArgs struct {
	Folder string `json:"folder"`
	Scheme string `json:"scheme"`
}

type buildArgs struct {
	Folder        string `json:"folder"`
	Scheme        string `json:"scheme"`
	SimulatorName string `json:"simulator_name"`
	IOSVersion    string `json:"ios_version"`
	OutputFilter  string `json:"output_filter"`
	FilterString  string `json:"filter_string"`
}

func (a buildArgs) request() (Request, error) {
	mode, err := output.ParseMode(a.OutputFilter)
	if err != nil {
		return Request{}, &ParamsError{Err: err}
	}
	return Request{
		Folder: a.Folder,
		Scheme: a.Scheme,
		Criteria: xcode.Criteria{
			DeviceName: a.SimulatorName,
			OSVersion:  a.IOSVersion,
		},
		Filter: output.Spec{Mode: mode, Match: a.FilterString},
	}, nil
}

func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return paramsErrorf("invalid arguments: %w", err)
	}
	return nil
}

// CallTool decodes args and runs the named operation. Rejected requests are
// returned as errors; everything else, including failed builds, is a result.
func (s *Service) CallTool(ctx context.Context, name string, args json.RawMessage) (*mcp.CallToolResult, error) {
	switch name {
	case ToolBuild, ToolTest:
		var a buildArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		req, err := a.request()
		if err != nil {
			return nil, err
		}
		action := xcode.ActionBuild
		if name == ToolTest {
			action = xcode.ActionTest
		}
		report, err := s.Run(ctx, action, req)
		if err != nil {
			return toolError(err)
		}
		return mcp.TextResult(report.Segments()...), nil

	case ToolListSchemes:
		var a folderArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		schemes, err := s.Schemes(ctx, a.Folder)
		if err != nil {
			return toolError(err)
		}
		return mcp.TextResult(FormatSchemes(schemes)), nil

	case ToolSetDefaultScheme:
		var a schemeArgs
		if err := decodeArgs(args, &a); err != nil {
			return nil, err
		}
		err := s.SetDefaultScheme(ctx, a.Folder, a.Scheme)
		var notFound *xcode.SchemeNotFoundError
		if errors.As(err, &notFound) {
			return mcp.TextResult(notFound.Error()), nil
		}
		if err != nil {
			return toolError(err)
		}
		return mcp.TextResult(FormatDefaultSet(a.Scheme)), nil

	case ToolGetDefaultScheme:
		return mcp.TextResult(FormatDefaultScheme(s.DefaultScheme())), nil

	default:
		return nil, paramsErrorf("unknown tool %q", name)
	}
}

// toolError sorts an operation error into a rejection, an ordinary
// "not found" result, or a result flagged as a tool failure.
func toolError(err error) (*mcp.CallToolResult, error) {
	var pe *ParamsError
	switch {
	case errors.As(err, &pe):
		return nil, err
	case errors.Is(err, ErrProjectNotFound):
		return mcp.TextResult(ProjectNotFoundText), nil
	case errors.Is(err, context.Canceled):
		return nil, err
	}
	res := mcp.TextResult(fmt.Sprintf("Error: %v", err))
	res.IsError = true
	return res, nil
}
