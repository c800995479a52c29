package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/exprgraph/pkg/document"
	"github.com/Sumatoshi-tech/exprgraph/pkg/expr"
	"github.com/Sumatoshi-tech/exprgraph/pkg/textutil"
)

// Tool name constants.
const (
	ToolNameCompile   = "expr_compile"
	ToolNameValidate  = "expr_validate"
	ToolNameFunctions = "expr_functions"
)

// MaxDocumentBytes is the maximum accepted document size (1 MiB).
const MaxDocumentBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyDocument indicates the document parameter is empty.
	ErrEmptyDocument = errors.New("document parameter is required and must not be empty")
	// ErrDocumentTooLarge indicates the document exceeds MaxDocumentBytes.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")
	// ErrBinaryDocument indicates the document contains null bytes.
	ErrBinaryDocument = errors.New("document must be text")
)

// CompileInput is the input schema for the expr_compile tool.
type CompileInput struct {
	Document string `json:"document"       jsonschema:"expression document as YAML or JSON text"`
	Name     string `json:"name,omitempty" jsonschema:"optional artifact name overriding the document name"`
}

// ValidateInput is the input schema for the expr_validate tool.
type ValidateInput struct {
	Document string `json:"document" jsonschema:"expression document as YAML or JSON text"`
}

// FunctionsInput is the input schema for the expr_functions tool.
type FunctionsInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"optional filter: function, operator or conditional"`
}

// ValidateResult is the expr_validate payload.
type ValidateResult struct {
	Valid    bool                       `json:"valid"`
	Problems []document.ValidationError `json:"problems,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleCompile(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input CompileInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocumentInput(input.Document)
	if err != nil {
		return errorResult(err)
	}

	artifact, err := s.compiler.Compile(ctx, input.Name, []byte(input.Document))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(artifact)
}

func (s *Server) handleValidate(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ValidateInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateDocumentInput(input.Document)
	if err != nil {
		return errorResult(err)
	}

	problems, err := s.compiler.Validate(ctx, []byte(input.Document))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(ValidateResult{Valid: len(problems) == 0, Problems: problems})
}

func handleFunctions(
	_ context.Context, _ *mcpsdk.CallToolRequest, input FunctionsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	catalog := expr.Catalog()
	if input.Kind == "" {
		return jsonResult(catalog)
	}

	filtered := make([]expr.Operation, 0, len(catalog))

	for _, operation := range catalog {
		if operation.Kind == input.Kind {
			filtered = append(filtered, operation)
		}
	}

	return jsonResult(filtered)
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func validateDocumentInput(doc string) error {
	if doc == "" {
		return ErrEmptyDocument
	}

	if len(doc) > MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrDocumentTooLarge, len(doc), MaxDocumentBytes)
	}

	if textutil.IsBinary([]byte(doc)) {
		return ErrBinaryDocument
	}

	return nil
}
