// Package fallback implements a lower-fidelity document parser that walks
// the XML element tree directly, without the normalized intermediate
// structure the primary pipeline builds. It exists for structurally exotic
// input the primary pipeline cannot handle; the caller chooses it
// explicitly, it is never an automatic retry. On any failure it reports an
// absent result with no structured reason.
package fallback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
)

// ErrNoResult is the only error this parser returns: the traversal could
// not produce a document. It intentionally carries no detail.
var ErrNoResult = errors.New("fallback parser produced no result")

const withholdingCategory = "RET 4TA"

// Parser walks the etree document directly.
type Parser struct {
	now func() time.Time
}

// Option configures the parser
type Option func(*Parser)

// WithClock overrides the wall clock, used by tests
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates the traversal parser
func New(opts ...Option) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse satisfies parser.DocumentParser. Failures collapse into ErrNoResult.
func (p *Parser) Parse(ctx context.Context, in parser.Input) (*model.Document, error) {
	doc, ok := p.TryParse(ctx, in)
	if !ok {
		return nil, ErrNoResult
	}
	return doc, nil
}

// TryParse walks the XML tree and reports whether a document came out.
func (p *Parser) TryParse(_ context.Context, in parser.Input) (*model.Document, bool) {
	tree := etree.NewDocument()
	if err := tree.ReadFromString(in.XML); err != nil {
		return nil, false
	}
	root := tree.Root()
	if root == nil {
		return nil, false
	}

	docID := text(root, "ID")
	supplierName, supplierTaxID, supplierTypeCode := supplierIdentity(root)
	if docID == "" || supplierName == "" || supplierTaxID == "" {
		return nil, false
	}

	docType, description := p.detectType(root, in.FileName, supplierTaxID)

	total := amount(root, "LegalMonetaryTotal", "PayableAmount")
	subtotal := amount(root, "LegalMonetaryTotal", "LineExtensionAmount")
	igv := decimal.Zero
	for _, tt := range root.SelectElements("TaxTotal") {
		igv = igv.Add(parseAmount(text(tt, "TaxAmount")))
	}

	doc := &model.Document{
		Type:            docType,
		TypeDescription: description,
		UBLVersion:      text(root, "UBLVersionID"),
		CustomizationID: text(root, "CustomizationID"),

		CompanyID:  in.CompanyID,
		SupplierID: in.SupplierID,
		UserID:     in.UserID,
		Supplier: model.Supplier{
			BusinessName:     supplierName,
			DocumentNumber:   supplierTaxID,
			DocumentTypeCode: supplierTypeCode,
		},

		IssueDate:     p.date(text(root, "IssueDate")),
		ReceptionDate: p.now(),

		Currency:     textOr(root, "PEN", "DocumentCurrencyCode"),
		ExchangeRate: amount(root, "PaymentExchangeRate", "CalculationRate"),
		Subtotal:     subtotal,
		IGV:          igv,
		Total:        total,

		FileName:   in.FileName,
		XMLContent: in.XML,
		Status:     model.StatusPending,
	}

	if due := text(root, "DueDate"); due != "" {
		d := p.date(due)
		doc.DueDate = &d
	}

	doc.Series, doc.Number = splitID(docID)
	doc.FullNumber = doc.Series + "-" + doc.Number

	switch docType {
	case model.DocumentTypeInvoice:
		p.detraction(root, doc)
	case model.DocumentTypeReceipt:
		p.retention(root, doc)
	}
	doc.ComputePayable()

	doc.Lines = p.lines(root)
	p.notes(root, doc)

	doc.Description = joinDescriptions(doc.Lines)
	doc.Tags = deriveTags(doc.Description, docType)
	doc.Hash = dedupHash(docID, supplierTaxID, doc.Total.String())

	return doc, true
}

// detectType layers the same heuristics as the primary pipeline plus one
// extra signal it does not have: a receipt marker in the uploaded file
// name. An explicit type code still takes final precedence.
func (p *Parser) detectType(root *etree.Element, fileName, supplierTaxID string) (model.DocumentType, string) {
	docType, description := model.DocumentTypeInvoice, model.DescriptionInvoice

	upper := strings.ToUpper(fileName)
	if strings.Contains(upper, "RHE") || strings.Contains(upper, "RH") {
		docType, description = model.DocumentTypeReceipt, model.DescriptionReceipt
	}

	for _, cat := range root.FindElements("//TaxSubtotal/TaxCategory/ID") {
		if strings.TrimSpace(cat.Text()) == withholdingCategory {
			docType, description = model.DocumentTypeReceipt, model.DescriptionReceipt
			break
		}
	}

	customerTaxID := text(root, "AccountingCustomerParty", "Party", "PartyIdentification", "ID")
	if customerTaxID == "" {
		customerTaxID = text(root, "AccountingCustomerParty", "CustomerAssignedAccountID")
	}
	if len(supplierTaxID) == 8 && len(customerTaxID) == 11 {
		docType, description = model.DocumentTypeReceipt, model.DescriptionReceipt
	}

	if code := text(root, "InvoiceTypeCode"); code != "" {
		if t, d, ok := model.TypeFromCode(code); ok {
			docType, description = t, d
		}
	}

	return docType, description
}

// detraction matches the payment-terms identifier case-insensitively. The
// primary pipeline matches it case-sensitively; the divergence is
// preserved as observed.
func (p *Parser) detraction(root *etree.Element, doc *model.Document) {
	for _, term := range root.SelectElements("PaymentTerms") {
		if !strings.EqualFold(text(term, "ID"), "detraccion") {
			continue
		}
		doc.DetractionAmount = parseAmount(text(term, "Amount"))
		doc.DetractionCode = text(term, "PaymentMeansID")
		doc.DetractionPercent = parseAmount(text(term, "PaymentPercent"))
		doc.HasDetraction = doc.DetractionAmount.GreaterThan(decimal.Zero)
		return
	}
}

func (p *Parser) retention(root *etree.Element, doc *model.Document) {
	for _, sub := range root.FindElements("//TaxSubtotal") {
		cat := sub.SelectElement("TaxCategory")
		if cat == nil || strings.TrimSpace(text(cat, "ID")) != withholdingCategory {
			continue
		}
		doc.RetentionAmount = parseAmount(text(sub, "TaxAmount"))
		doc.RetentionPercent = parseAmount(text(cat, "Percent"))
		if doc.RetentionPercent.IsZero() {
			doc.RetentionPercent = decimal.NewFromInt(8)
		}
		doc.HasRetention = doc.RetentionAmount.GreaterThan(decimal.Zero)
		return
	}
}

func (p *Parser) lines(root *etree.Element) []model.LineItem {
	var elems []*etree.Element
	for _, tag := range []string{"InvoiceLine", "CreditNoteLine", "DebitNoteLine"} {
		if elems = root.SelectElements(tag); len(elems) > 0 {
			break
		}
	}

	var items []model.LineItem
	for i, el := range elems {
		item := model.LineItem{
			Number:      i + 1,
			Description: text(el, "Item", "Description"),
			ProductCode: text(el, "Item", "SellersItemIdentification", "ID"),
			Total:       amount(el, "LineExtensionAmount"),
			UnitPrice:   amount(el, "Price", "PriceAmount"),
		}
		if item.ProductCode == "" {
			item.ProductCode = fmt.Sprintf("PROD%03d", i+1)
		}
		for _, tag := range []string{"InvoicedQuantity", "CreditedQuantity", "DebitedQuantity"} {
			if q := el.SelectElement(tag); q != nil {
				item.Quantity = parseAmount(q.Text())
				item.UnitCode = q.SelectAttrValue("unitCode", "")
				break
			}
		}
		if sub := el.FindElement("TaxTotal/TaxSubtotal"); sub != nil {
			item.IGVAmount = amount(sub, "TaxAmount")
			item.TaxableAmount = amount(sub, "TaxableAmount")
			item.TaxPercent = amount(sub, "TaxCategory", "Percent")
			item.TaxCategoryID = text(sub, "TaxCategory", "ID")
			item.TaxSchemeID = text(sub, "TaxCategory", "TaxScheme", "ID")
			item.TaxSchemeName = text(sub, "TaxCategory", "TaxScheme", "Name")
			item.TaxExemptionCode = text(sub, "TaxCategory", "TaxExemptionReasonCode")
		}
		items = append(items, item)
	}
	return items
}

func (p *Parser) notes(root *etree.Element, doc *model.Document) {
	doc.DocumentNotes = []string{}
	doc.OperationNotes = []string{}

	keywords := []string{"detracción", "retencion", "operación", "sujeta"}
	untaggedSeen := false

	for _, note := range root.SelectElements("Note") {
		t := strings.TrimSpace(note.Text())
		if t == "" {
			continue
		}
		if strings.Contains(t, "|") || len(t) > 100 {
			if doc.QRCode == "" {
				doc.QRCode = t
			}
			continue
		}
		switch note.SelectAttrValue("languageLocaleID", "") {
		case "1000":
			doc.DocumentNotes = append(doc.DocumentNotes, t)
			continue
		case "2006":
			doc.OperationNotes = append(doc.OperationNotes, t)
			continue
		}
		if !untaggedSeen {
			untaggedSeen = true
			doc.DocumentNotes = append(doc.DocumentNotes, t)
			continue
		}
		lower := strings.ToLower(t)
		routed := false
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				doc.OperationNotes = append(doc.OperationNotes, t)
				routed = true
				break
			}
		}
		if !routed {
			doc.DocumentNotes = append(doc.DocumentNotes, t)
		}
	}

	doc.Observations = strings.Join(doc.DocumentNotes, "\n")
}

func (p *Parser) date(s string) time.Time {
	for _, format := range []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339, "02/01/2006"} {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return p.now()
}

func supplierIdentity(root *etree.Element) (name, taxID, typeCode string) {
	party := sel(root, "AccountingSupplierParty", "Party")
	name = text(party, "PartyLegalEntity", "RegistrationName")
	if name == "" {
		name = text(party, "PartyName", "Name")
	}
	if id := sel(party, "PartyIdentification", "ID"); id != nil {
		taxID = strings.TrimSpace(id.Text())
		typeCode = id.SelectAttrValue("schemeID", "")
	}
	if taxID == "" {
		taxID = text(root, "AccountingSupplierParty", "CustomerAssignedAccountID")
	}
	return name, taxID, typeCode
}

// Traversal helpers; every lookup tolerates absent elements.

func sel(el *etree.Element, path ...string) *etree.Element {
	cur := el
	for _, tag := range path {
		if cur == nil {
			return nil
		}
		cur = cur.SelectElement(tag)
	}
	return cur
}

func text(el *etree.Element, path ...string) string {
	found := sel(el, path...)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text())
}

func textOr(el *etree.Element, def string, path ...string) string {
	if t := text(el, path...); t != "" {
		return t
	}
	return def
}

func amount(el *etree.Element, path ...string) decimal.Decimal {
	return parseAmount(text(el, path...))
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func splitID(id string) (series, number string) {
	if idx := strings.Index(id, "-"); idx >= 0 {
		return id[:idx], id[idx+1:]
	}
	if len(id) >= 4 {
		series, number = id[:4], id[4:]
	} else {
		series, number = id, ""
	}
	if number == "" {
		number = "0"
	}
	return series, number
}

func dedupHash(documentID, supplierTaxID, total string) string {
	strip := func(s string) string {
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	}
	sum := sha256.Sum256([]byte(strip(documentID) + "|" + strip(supplierTaxID) + "|" + strip(total)))
	return hex.EncodeToString(sum[:])
}

func deriveTags(description string, docType model.DocumentType) []string {
	tags := []string{"imported", "xml", strings.ToLower(string(docType))}
	words := strings.FieldsFunc(strings.ToLower(description), func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	kept := 0
	for _, w := range words {
		if kept == 3 {
			break
		}
		if len([]rune(w)) > 2 {
			tags = append(tags, w)
			kept++
		}
	}
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func joinDescriptions(lines []model.LineItem) string {
	var parts []string
	for _, l := range lines {
		if l.Description != "" {
			parts = append(parts, l.Description)
		}
	}
	return strings.Join(parts, ", ")
}
