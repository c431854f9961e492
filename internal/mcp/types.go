// Package mcp implements the server side of the Model Context Protocol over
// stdio: newline-delimited JSON-RPC 2.0 with the tools capability.
package mcp

import (
	"context"
	"encoding/json"
)

// ProtocolVersion is reported when the client does not ask for one.
const ProtocolVersion = "2024-11-05"

// JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Tool describes one callable tool in tools/list.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

// Schema is the subset of JSON Schema used for tool parameters.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single tool parameter.
type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Content is one segment of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent wraps s as a text segment.
func TextContent(s string) Content {
	return Content{Type: "text", Text: s}
}

// CallToolResult is the result of tools/call.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult builds a successful result with one text segment per string.
func TextResult(segments ...string) *CallToolResult {
	res := &CallToolResult{Content: make([]Content, 0, len(segments))}
	for _, s := range segments {
		res.Content = append(res.Content, TextContent(s))
	}
	return res
}

// Handler serves the tools exposed by a Server.
//
// CallTool returns a protocol-level error only for requests that should be
// rejected outright; errors implementing Coder choose the JSON-RPC code, any
// other error is reported as an internal error. Outcomes the caller should
// read, including tool failures, belong in the result.
type Handler interface {
	Tools() []Tool
	CallTool(ctx context.Context, name string, args json.RawMessage) (*CallToolResult, error)
}

// Coder is implemented by errors that map to a specific JSON-RPC code.
type Coder interface {
	RPCCode() int
}

// request is a JSON-RPC request or notification. Notifications have no ID.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (r *request) isNotification() bool {
	return len(r.ID) == 0
}

// response is a JSON-RPC response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError represents an error in a JSON-RPC response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	ProtocolVersion string `json:"protocolVersion"`
	ClientInfo      struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"clientInfo"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

type cancelledParams struct {
	RequestID json.RawMessage `json:"requestId"`
	Reason    string          `json:"reason,omitempty"`
}
