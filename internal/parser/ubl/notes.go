package ubl

import (
	"strings"
)

// National QR payload notes use "|" as field separator; anything that long
// without a separator is treated as a QR payload too.
const (
	qrSeparator       = "|"
	qrLengthThreshold = 100
)

// Reserved languageLocaleID values used by SUNAT producers. 1000 tags the
// amount-in-words and general document notes; 2006 tags the detraction
// legend and other operation conditions.
const (
	localeDocumentNote  = "1000"
	localeOperationNote = "2006"
)

// Keywords routing untagged notes to the operation bucket.
var operationKeywords = []string{"detracción", "retencion", "operación", "sujeta"}

// noteBuckets is the partition of source note elements: each note lands in
// exactly one bucket, never more than one.
type noteBuckets struct {
	QR             string
	DocumentNotes  []string
	OperationNotes []string
}

// classifyNotes separates the free-text note elements in source order.
// Producers are inconsistent about tagging notes with locale metadata, so
// explicit metadata is layered over positional convention over content
// sniffing, in that precedence. At most one note becomes the QR payload;
// later QR-looking notes are dropped.
func classifyNotes(tree *RawNode) noteBuckets {
	buckets := noteBuckets{
		DocumentNotes:  []string{},
		OperationNotes: []string{},
	}

	// The first note with no locale attribute becomes a document note.
	// Threaded explicitly because it changes how every later untagged
	// note is classified.
	untaggedSeen := false

	for _, note := range tree.Seq("Note") {
		text := note.Text
		if text == "" {
			continue
		}

		if strings.Contains(text, qrSeparator) || len(text) > qrLengthThreshold {
			if buckets.QR == "" {
				buckets.QR = text
			}
			continue
		}

		switch note.Attr("languageLocaleID") {
		case localeDocumentNote:
			buckets.DocumentNotes = append(buckets.DocumentNotes, text)
			continue
		case localeOperationNote:
			buckets.OperationNotes = append(buckets.OperationNotes, text)
			continue
		}

		if !untaggedSeen {
			untaggedSeen = true
			buckets.DocumentNotes = append(buckets.DocumentNotes, text)
			continue
		}

		if containsOperationKeyword(text) {
			buckets.OperationNotes = append(buckets.OperationNotes, text)
		} else {
			buckets.DocumentNotes = append(buckets.DocumentNotes, text)
		}
	}

	return buckets
}

func containsOperationKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range operationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
