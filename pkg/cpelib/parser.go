package cpelib

import (
	"context"
	"io"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// Parser parses electronic tax documents
type Parser interface {
	// ParseXML parses XML content into a Document
	ParseXML(ctx context.Context, r io.Reader, fileName string) (*model.Document, error)
}

// Validator validates parsed documents
type Validator interface {
	// Validate performs full validation
	Validate(doc *model.Document) []ValidationResult
}

// ValidationResult represents a validation result
type ValidationResult struct {
	Field   string
	Message string
	Value   interface{}
	IsError bool // true = error, false = warning
}

// ExtractionResult represents extraction result with metadata
type ExtractionResult struct {
	Document *model.Document
	Method   string
	Warnings []string
}

// Pipeline processes documents through the extraction pipelines
type Pipeline interface {
	// Process processes input with the structural tree parser
	Process(ctx context.Context, r io.Reader, fileName string) (*ExtractionResult, error)

	// ProcessFallback processes input with the relaxed traversal parser
	ProcessFallback(ctx context.Context, r io.Reader, fileName string) (*ExtractionResult, error)

	// ProcessBatch processes multiple inputs
	ProcessBatch(ctx context.Context, inputs []BatchInput) ([]*ExtractionResult, error)
}

// BatchInput pairs a reader with its source file name
type BatchInput struct {
	Reader   io.Reader
	FileName string
}

// PipelineOptions configures pipeline behavior
type PipelineOptions struct {
	// Identifiers stamped on every processed document
	CompanyID  string
	SupplierID string
	UserID     string

	// Validation
	ValidateAfterExtraction bool
}

// DefaultPipelineOptions returns default pipeline options
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		ValidateAfterExtraction: true,
	}
}
