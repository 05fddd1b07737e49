package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies the kind of electronic tax document (CPE)
type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "INVOICE"
	DocumentTypeReceipt       DocumentType = "RECEIPT"
	DocumentTypeCreditNote    DocumentType = "CREDIT_NOTE"
	DocumentTypeDebitNote     DocumentType = "DEBIT_NOTE"
	DocumentTypePurchaseOrder DocumentType = "PURCHASE_ORDER"
)

// Human-readable descriptions as issued under the SUNAT standard
const (
	DescriptionInvoice       = "Factura Electrónica"
	DescriptionReceipt       = "Recibo por Honorarios Electrónico"
	DescriptionCreditNote    = "Nota de Crédito Electrónica"
	DescriptionDebitNote     = "Nota de Débito Electrónica"
	DescriptionPurchaseOrder = "Boleta de Venta Electrónica"
)

// TypeFromCode maps an explicit SUNAT document type code to a document type.
// Returns false when the code is not one of the recognized codes.
func TypeFromCode(code string) (DocumentType, string, bool) {
	switch code {
	case "01":
		return DocumentTypeInvoice, DescriptionInvoice, true
	case "03":
		return DocumentTypePurchaseOrder, DescriptionPurchaseOrder, true
	case "07":
		return DocumentTypeCreditNote, DescriptionCreditNote, true
	case "08":
		return DocumentTypeDebitNote, DescriptionDebitNote, true
	default:
		return "", "", false
	}
}

// Status is the lifecycle state of a parsed document
type Status string

// StatusPending is the only status this layer ever assigns; the
// reconciliation engine owns all later transitions.
const StatusPending Status = "PENDING"

// Supplier holds the issuing party data extracted from the XML
type Supplier struct {
	BusinessName     string `json:"businessName"`
	DocumentNumber   string `json:"documentNumber"` // RUC or DNI
	DocumentTypeCode string `json:"documentType"`   // "6" RUC, "1" DNI
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	Address          string `json:"address,omitempty"`
	District         string `json:"district,omitempty"`
	Province         string `json:"province,omitempty"`
	Department       string `json:"department,omitempty"`
}

// LineItem represents one normalized invoice line
type LineItem struct {
	Number      int             `json:"lineNumber"` // 1-based position, not a source field
	ProductCode string          `json:"productCode"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCode    string          `json:"unitCode"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"lineTotal"`

	// Tax attributes
	IGVAmount        decimal.Decimal `json:"igvAmount"`
	TaxPercent       decimal.Decimal `json:"taxPercentage"`
	TaxCategoryID    string          `json:"taxCategoryId,omitempty"`
	TaxSchemeID      string          `json:"taxSchemeId,omitempty"`
	TaxSchemeName    string          `json:"taxSchemeName,omitempty"`
	TaxableAmount    decimal.Decimal `json:"taxableAmount"`
	TaxExemptionCode string          `json:"taxExemptionCode,omitempty"`
	FreeOfCharge     bool            `json:"freeOfChargeIndicator,omitempty"`
	Allowance        bool            `json:"allowanceIndicator,omitempty"`
	Charge           bool            `json:"chargeIndicator,omitempty"`
}

// Document is the normalized, persistence-ready record produced once per
// parse. It is either returned whole or the parse fails; no partially
// populated Document is ever surfaced. After creation the caller may mutate
// only the reconciliation fields (ConciliatedAmount, PendingAmount, Status).
type Document struct {
	// Identity
	Type            DocumentType `json:"documentType"`
	TypeDescription string       `json:"documentTypeDescription"`
	Series          string       `json:"series"`
	Number          string       `json:"number"`
	FullNumber      string       `json:"fullNumber"` // Series + "-" + Number
	UBLVersion      string       `json:"xmlUblVersion,omitempty"`
	CustomizationID string       `json:"xmlCustomizationId,omitempty"`

	// Caller identity (opaque at this layer)
	CompanyID  string `json:"companyId"`
	SupplierID string `json:"supplierId"`
	UserID     string `json:"userId"`

	// Parties
	Supplier Supplier `json:"supplier"`

	// Dates
	IssueDate     time.Time  `json:"issueDate"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ReceptionDate time.Time  `json:"receptionDate"`

	// Money
	Currency          string          `json:"currency"`
	ExchangeRate      decimal.Decimal `json:"exchangeRate"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	IGV               decimal.Decimal `json:"igv"`
	OtherTaxes        decimal.Decimal `json:"otherTaxes"`
	Total             decimal.Decimal `json:"total"`
	HasRetention      bool            `json:"hasRetention"`
	RetentionAmount   decimal.Decimal `json:"retentionAmount"`
	RetentionPercent  decimal.Decimal `json:"retentionPercentage"`
	HasDetraction     bool            `json:"hasDetraction"`
	DetractionAmount  decimal.Decimal `json:"detractionAmount"`
	DetractionCode    string          `json:"detractionCode,omitempty"`
	DetractionPercent decimal.Decimal `json:"detractionPercentage"`
	NetPayable        decimal.Decimal `json:"netPayableAmount"`
	ConciliatedAmount decimal.Decimal `json:"conciliatedAmount"`
	PendingAmount     decimal.Decimal `json:"pendingAmount"`

	// Content
	Description    string   `json:"description"`
	Observations   string   `json:"observations,omitempty"`
	Tags           []string `json:"tags"`
	DocumentNotes  []string `json:"documentNotes"`
	OperationNotes []string `json:"operationNotes"`
	QRCode         string   `json:"qrCode,omitempty"`

	Lines []LineItem `json:"lines"`

	// Provenance
	FileName   string `json:"xmlFileName"`
	XMLContent string `json:"xmlContent"`
	Hash       string `json:"xmlHash"`
	Status     Status `json:"status"`
}

// ComputePayable derives the payment-facing amounts from total, retention
// and detraction. Net payable never goes below zero; at creation the pending
// amount equals the net payable amount and nothing is conciliated yet.
func (d *Document) ComputePayable() {
	net := d.Total.Sub(d.RetentionAmount).Sub(d.DetractionAmount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	d.NetPayable = net
	d.PendingAmount = net
	d.ConciliatedAmount = decimal.Zero
}
