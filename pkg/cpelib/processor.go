package cpelib

import (
	"context"
	"io"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

// Processor implements Pipeline using the internal processor
type Processor struct {
	pipeline *processor.Pipeline
	options  PipelineOptions
}

// NewProcessor creates a document processor with the given options
func NewProcessor(opts ...PipelineOptions) *Processor {
	options := DefaultPipelineOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	return &Processor{
		pipeline: processor.NewPipeline(),
		options:  options,
	}
}

// Process processes input with the structural tree parser
func (p *Processor) Process(ctx context.Context, r io.Reader, fileName string) (*ExtractionResult, error) {
	in, err := p.readInput(r, fileName)
	if err != nil {
		return nil, err
	}
	return p.toResult(p.pipeline.ProcessXML(ctx, in))
}

// ProcessFallback processes input with the relaxed traversal parser
func (p *Processor) ProcessFallback(ctx context.Context, r io.Reader, fileName string) (*ExtractionResult, error) {
	in, err := p.readInput(r, fileName)
	if err != nil {
		return nil, err
	}
	return p.toResult(p.pipeline.ProcessXMLFallback(ctx, in))
}

// ProcessBatch processes multiple inputs concurrently
func (p *Processor) ProcessBatch(ctx context.Context, inputs []BatchInput) ([]*ExtractionResult, error) {
	results := make([]*ExtractionResult, len(inputs))
	errCh := make(chan error, len(inputs))

	for i, input := range inputs {
		go func(idx int, in BatchInput) {
			result, err := p.Process(ctx, in.Reader, in.FileName)
			if err != nil {
				errCh <- err
				return
			}
			results[idx] = result
			errCh <- nil
		}(i, input)
	}

	// Wait for all goroutines
	var firstErr error
	for range inputs {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return results, firstErr
}

// Validate runs the internal consistency checks on a parsed document
func (p *Processor) Validate(doc *model.Document) []ValidationResult {
	var results []ValidationResult
	for _, v := range doc.CheckInvariants() {
		results = append(results, ValidationResult{
			Field:   v.Field,
			Message: v.Message,
			Value:   v.Value,
			IsError: true,
		})
	}
	return results
}

func (p *Processor) readInput(r io.Reader, fileName string) (parser.Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return parser.Input{}, &model.ParseError{Message: "failed to read input", Cause: err}
	}

	return parser.Input{
		XML:        string(data),
		FileName:   fileName,
		CompanyID:  p.options.CompanyID,
		SupplierID: p.options.SupplierID,
		UserID:     p.options.UserID,
	}, nil
}

func (p *Processor) toResult(result *processor.Result) (*ExtractionResult, error) {
	if result.Error != nil {
		return nil, result.Error
	}

	out := &ExtractionResult{
		Document: result.Document,
		Method:   string(result.Method),
		Warnings: result.Warnings,
	}

	if p.options.ValidateAfterExtraction {
		for _, v := range result.Document.CheckInvariants() {
			out.Warnings = append(out.Warnings, v.Error())
		}
	}

	return out, nil
}
