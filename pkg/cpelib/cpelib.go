// Package cpelib provides a public API for normalizing Peruvian electronic
// tax documents (comprobantes de pago electrónicos).
//
// This package exposes the core types and interfaces for parsing SUNAT UBL
// XML documents into reconciliation-ready records.
//
// Example usage:
//
//	proc := cpelib.NewProcessor()
//	result, err := proc.Process(ctx, reader, "factura.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Document.NetPayable)
package cpelib

import "github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"

// Re-export core types for public API
type (
	Document     = model.Document
	LineItem     = model.LineItem
	Supplier     = model.Supplier
	DocumentType = model.DocumentType
	Status       = model.Status
)

// Re-export document types
const (
	DocumentTypeInvoice       = model.DocumentTypeInvoice
	DocumentTypeReceipt       = model.DocumentTypeReceipt
	DocumentTypeCreditNote    = model.DocumentTypeCreditNote
	DocumentTypeDebitNote     = model.DocumentTypeDebitNote
	DocumentTypePurchaseOrder = model.DocumentTypePurchaseOrder
)

// Re-export statuses
const StatusPending = model.StatusPending

// Re-export error types
type (
	ParseError      = model.ParseError
	ValidationError = model.ValidationError
)

// Re-export error kinds
const (
	ErrMalformedXML    = model.ErrMalformedXML
	ErrUnsupportedRoot = model.ErrUnsupportedRoot
	ErrMissingField    = model.ErrMissingField
)
