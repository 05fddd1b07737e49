package processor

import (
	"bytes"
	"context"

	"github.com/rs/zerolog"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/logger"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser/fallback"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser/ubl"
)

// ExtractionMethod identifies which pipeline produced a result
type ExtractionMethod string

const (
	MethodPrimary  ExtractionMethod = "ubl_tree"
	MethodFallback ExtractionMethod = "dom_walk"
)

// Format represents the detected input format
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// DetectFormat identifies the input format from leading bytes
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if bytes.HasPrefix(trimmed, []byte("<?xml")) || bytes.HasPrefix(trimmed, []byte("<")) {
		return FormatXML
	}
	return FormatUnknown
}

// Result holds the outcome of one pipeline run
type Result struct {
	Document *model.Document  `json:"document,omitempty"`
	Method   ExtractionMethod `json:"method"`
	Warnings []string         `json:"warnings,omitempty"`
	Error    error            `json:"-"`
}

// Pipeline coordinates the two document parsers. The caller selects the
// pipeline explicitly through ProcessXML or ProcessXMLFallback; a primary
// failure never cascades into the fallback inside the same call, so the
// error shape attributes cleanly to the pipeline that produced it.
type Pipeline struct {
	primary  parser.DocumentParser
	fallback parser.DocumentParser
	log      zerolog.Logger
}

// PipelineOption configures the pipeline
type PipelineOption func(*Pipeline)

// WithPrimary overrides the primary parser
func WithPrimary(p parser.DocumentParser) PipelineOption {
	return func(pl *Pipeline) { pl.primary = p }
}

// WithFallback overrides the fallback parser
func WithFallback(p parser.DocumentParser) PipelineOption {
	return func(pl *Pipeline) { pl.fallback = p }
}

// WithLogger sets the pipeline logger
func WithLogger(log zerolog.Logger) PipelineOption {
	return func(pl *Pipeline) { pl.log = log }
}

// NewPipeline creates a pipeline with both parsers wired
func NewPipeline(opts ...PipelineOption) *Pipeline {
	pl := &Pipeline{log: logger.Nop()}
	for _, opt := range opts {
		opt(pl)
	}
	if pl.primary == nil {
		pl.primary = ubl.New(ubl.WithLogger(pl.log))
	}
	if pl.fallback == nil {
		pl.fallback = fallback.New()
	}
	return pl
}

// ProcessXML runs the primary tree-based pipeline
func (pl *Pipeline) ProcessXML(ctx context.Context, in parser.Input) *Result {
	doc, err := pl.primary.Parse(ctx, in)
	if err != nil {
		pl.log.Debug().Err(err).Str("file", in.FileName).Msg("primary parse failed")
		return &Result{Method: MethodPrimary, Error: err}
	}
	return &Result{Document: doc, Method: MethodPrimary}
}

// ProcessXMLFallback runs the traversal pipeline, for input shapes the
// primary pipeline cannot be constructed for
func (pl *Pipeline) ProcessXMLFallback(ctx context.Context, in parser.Input) *Result {
	doc, err := pl.fallback.Parse(ctx, in)
	if err != nil {
		pl.log.Debug().Err(err).Str("file", in.FileName).Msg("fallback parse produced no result")
		return &Result{Method: MethodFallback, Error: err}
	}
	return &Result{Document: doc, Method: MethodFallback}
}
