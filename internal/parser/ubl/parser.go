package ubl

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/logger"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
)

// Parser is the primary tree-based pipeline. It is stateless between
// invocations; concurrent Parse calls need no synchronization.
type Parser struct {
	log zerolog.Logger
	now func() time.Time
}

// Option configures the parser
type Option func(*Parser)

// WithLogger sets the logger used for degradation warnings
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// WithClock overrides the wall clock, used by tests
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates the primary pipeline parser
func New(opts ...Option) *Parser {
	p := &Parser{
		log: logger.Nop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse normalizes one UBL document. It either returns a fully assembled
// record or fails atomically; mandatory-field validation runs after the
// whole extraction so the error can name the exact missing field.
func (p *Parser) Parse(ctx context.Context, in parser.Input) (*model.Document, error) {
	tree, err := BuildTree(in.XML)
	if err != nil {
		return nil, err
	}

	cls := classify(tree)
	sup := extractSupplier(tree)
	mny := decompose(tree, cls.Type)
	lines := extractLines(tree)
	notes := classifyNotes(tree)

	docID := tree.Str("ID")
	if docID == "" {
		return nil, model.NewMissingFieldError("documentId", "missing document identifier")
	}
	if sup.BusinessName == "" {
		return nil, model.NewMissingFieldError("supplierName", "missing supplier name")
	}
	if sup.DocumentNumber == "" {
		return nil, model.NewMissingFieldError("supplierTaxId", "missing supplier tax ID")
	}

	series, number := SplitIdentifier(docID)

	doc := &model.Document{
		Type:            cls.Type,
		TypeDescription: cls.Description,
		Series:          series,
		Number:          number,
		FullNumber:      series + "-" + number,
		UBLVersion:      tree.Str("UBLVersionID"),
		CustomizationID: tree.Str("CustomizationID"),

		CompanyID:  in.CompanyID,
		SupplierID: in.SupplierID,
		UserID:     in.UserID,
		Supplier:   sup,

		IssueDate:     p.parseDateOrNow(tree.Str("IssueDate"), "issueDate"),
		ReceptionDate: p.now(),

		Currency:          mny.Currency,
		ExchangeRate:      mny.ExchangeRate,
		Subtotal:          mny.Subtotal,
		IGV:               mny.IGV,
		OtherTaxes:        mny.OtherTaxes,
		Total:             mny.Total,
		HasRetention:      mny.HasRetention,
		RetentionAmount:   mny.RetentionAmount,
		RetentionPercent:  mny.RetentionPercent,
		HasDetraction:     mny.HasDetraction,
		DetractionAmount:  mny.DetractionAmount,
		DetractionCode:    mny.DetractionCode,
		DetractionPercent: mny.DetractionPercent,
		NetPayable:        mny.NetPayable,
		PendingAmount:     mny.PendingAmount,
		ConciliatedAmount: mny.ConciliatedAmount,

		DocumentNotes:  notes.DocumentNotes,
		OperationNotes: notes.OperationNotes,
		QRCode:         notes.QR,
		Observations:   strings.Join(notes.DocumentNotes, "\n"),

		Lines: lines,

		FileName:   in.FileName,
		XMLContent: in.XML,
		Status:     model.StatusPending,
	}

	if due := tree.Str("DueDate"); due != "" {
		d := p.parseDateOrNow(due, "dueDate")
		doc.DueDate = &d
	}

	doc.Description = joinLineDescriptions(lines)
	doc.Tags = DeriveTags(doc.Description, cls.Type)
	doc.Hash = ComputeHash(docID, sup.DocumentNumber, mny.Total.String())

	return doc, nil
}

// parseDateOrNow converts a source date, degrading to the current time with
// a warning. A bad date never aborts the document.
func (p *Parser) parseDateOrNow(s, field string) time.Time {
	t, err := parseDate(s)
	if err != nil {
		p.log.Warn().Str("field", field).Str("value", s).Msg("unparseable date, using current time")
		return p.now()
	}
	return t
}

func parseDate(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"02/01/2006",
	}

	var err error
	for _, format := range formats {
		var t time.Time
		if t, err = time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// SplitIdentifier derives series and number from the document identifier:
// split on the first hyphen when present, otherwise the first 4 characters
// are the series and the remainder the number ("0" when nothing remains).
func SplitIdentifier(id string) (series, number string) {
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

// ComputeHash derives the dedup key from the document identifier, the
// supplier tax ID and the payable total, with whitespace stripped so
// re-imports of the same file collide deterministically.
func ComputeHash(documentID, supplierTaxID, total string) string {
	payload := stripSpace(documentID) + "|" + stripSpace(supplierTaxID) + "|" + stripSpace(total)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// DeriveTags builds the keyword set for search: fixed markers plus the
// first 3 content words of the description longer than 2 characters,
// de-duplicated preserving order.
func DeriveTags(description string, docType model.DocumentType) []string {
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

func joinLineDescriptions(lines []model.LineItem) string {
	var parts []string
	for _, l := range lines {
		if l.Description != "" {
			parts = append(parts, l.Description)
		}
	}
	return strings.Join(parts, ", ")
}
