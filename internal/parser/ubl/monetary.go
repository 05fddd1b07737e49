package ubl

import (
	"github.com/shopspring/decimal"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/money"
)

// Payment-terms identifier marking a detraction block. The match is
// case-sensitive here; the traversal pipeline matches case-insensitively.
// The divergence is preserved as observed, do not unify without confirming
// intended behavior with a domain owner.
const detractionTermID = "Detraccion"

// Tax scheme identifying IGV (the national VAT) in SUNAT catalog 05.
const igvSchemeID = "1000"

// Standard 4th-category withholding rate applied when the document carries
// a withholding subtotal without an explicit percent.
var defaultRetentionPercent = decimal.NewFromInt(8)

// MoneyFields carries the decomposed monetary amounts for one document.
type MoneyFields struct {
	Currency     string
	ExchangeRate decimal.Decimal
	Subtotal     decimal.Decimal
	IGV          decimal.Decimal
	OtherTaxes   decimal.Decimal
	Total        decimal.Decimal

	HasDetraction     bool
	DetractionAmount  decimal.Decimal
	DetractionCode    string
	DetractionPercent decimal.Decimal

	HasRetention     bool
	RetentionAmount  decimal.Decimal
	RetentionPercent decimal.Decimal

	NetPayable        decimal.Decimal
	PendingAmount     decimal.Decimal
	ConciliatedAmount decimal.Decimal
}

// decompose extracts subtotal/tax/total and the embedded retention and
// detraction sub-amounts. Missing nodes default to zero, never an error:
// many legitimate documents omit optional totals, and a single malformed
// amount must not abort the document.
func decompose(tree *RawNode, docType model.DocumentType) MoneyFields {
	m := MoneyFields{
		Currency:     tree.Str("DocumentCurrencyCode"),
		ExchangeRate: money.Parse(tree.Str("PaymentExchangeRate", "CalculationRate")),
	}
	if m.Currency == "" {
		m.Currency = "PEN"
	}

	if total := tree.First("LegalMonetaryTotal"); total != nil {
		m.Subtotal = money.Parse(total.Str("LineExtensionAmount"))
		m.Total = money.Parse(total.Str("PayableAmount"))
	}

	m.IGV, m.OtherTaxes = splitTaxTotals(tree)

	// Detraction only ever applies to invoices, retention only to receipts;
	// the classification decides which scan runs.
	switch docType {
	case model.DocumentTypeInvoice:
		decomposeDetraction(tree, &m)
	case model.DocumentTypeReceipt:
		decomposeRetention(tree, &m)
	}

	m.NetPayable = money.NetPayable(m.Total, m.RetentionAmount, m.DetractionAmount)
	m.PendingAmount = m.NetPayable
	m.ConciliatedAmount = money.Zero

	return m
}

// splitTaxTotals separates IGV from any other tax schemes found in the
// document-level tax totals. When a total carries no subtotals at all its
// amount is attributed to IGV, matching how most producers emit it.
func splitTaxTotals(tree *RawNode) (igv, other decimal.Decimal) {
	igv, other = money.Zero, money.Zero
	for _, taxTotal := range tree.Seq("TaxTotal") {
		subs := taxTotal.Seq("TaxSubtotal")
		if len(subs) == 0 {
			igv = igv.Add(money.Parse(taxTotal.Str("TaxAmount")))
			continue
		}
		for _, sub := range subs {
			amount := money.Parse(sub.Str("TaxAmount"))
			scheme := sub.Find("TaxCategory", "TaxScheme")
			if scheme != nil && (scheme.Str("ID") == igvSchemeID || scheme.Str("Name") == "IGV") {
				igv = igv.Add(amount)
			} else {
				other = other.Add(amount)
			}
		}
	}
	return igv, other
}

// decomposeDetraction scans the payment-terms elements for the detraction
// marker. The flag is derived from the amount: a zero-amount detraction term
// leaves the document without a detraction.
func decomposeDetraction(tree *RawNode, m *MoneyFields) {
	for _, term := range tree.Seq("PaymentTerms") {
		if term.Str("ID") != detractionTermID {
			continue
		}
		m.DetractionAmount = money.Parse(term.Str("Amount"))
		m.DetractionCode = term.Str("PaymentMeansID")
		m.DetractionPercent = money.Parse(term.Str("PaymentPercent"))
		m.HasDetraction = money.IsPositive(m.DetractionAmount)
		return
	}
}

// decomposeRetention scans line-level tax subtotals for the withholding
// category and stops at the first match. A missing percent defaults to the
// standard national rate.
func decomposeRetention(tree *RawNode, m *MoneyFields) {
	for _, line := range documentLines(tree) {
		for _, taxTotal := range line.Seq("TaxTotal") {
			for _, sub := range taxTotal.Seq("TaxSubtotal") {
				category := sub.First("TaxCategory")
				if category.Str("ID") != withholdingCategoryID {
					continue
				}
				m.RetentionAmount = money.Parse(sub.Str("TaxAmount"))
				m.RetentionPercent = money.ParseOr(category.Str("Percent"), defaultRetentionPercent)
				m.HasRetention = money.IsPositive(m.RetentionAmount)
				return
			}
		}
	}
}
