// Package parser defines the contract shared by the document parsing
// pipelines. Two independent implementations exist: the primary tree-based
// pipeline (parser/ubl) and the lower-fidelity traversal pipeline
// (parser/fallback). The caller picks one explicitly; nothing in this layer
// cascades from one to the other, so failure attribution stays clear.
package parser

import (
	"context"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// Input carries one XML document and the caller-supplied identity used for
// provenance. All fields are opaque strings at this layer.
type Input struct {
	XML        string
	FileName   string
	CompanyID  string
	SupplierID string
	UserID     string
}

// DocumentParser normalizes one electronic tax document.
type DocumentParser interface {
	// Parse returns a fully assembled Document or an error; no partially
	// populated record is ever returned.
	Parse(ctx context.Context, in Input) (*model.Document, error)
}
