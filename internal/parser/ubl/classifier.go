package ubl

import (
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// Tax-subtotal category marker for 4th-category income withholding.
const withholdingCategoryID = "RET 4TA"

// Peruvian tax identifier lengths: a DNI (natural person) has 8 digits, a
// RUC (registered entity) has 11.
const (
	naturalPersonIDLen = 8
	legalEntityIDLen   = 11
)

// classification is the resolved document kind plus its display description.
type classification struct {
	Type        model.DocumentType
	Description string
}

// classify decides the document kind with layered, order-dependent rules
// applied in sequence with last-match-wins semantics. The ordering is
// load-bearing: explicit type codes are authoritative when present, but many
// producers omit them, so content-based inference fills the gap, and the
// entity-kind heuristic is strong evidence of a receipt even without an
// explicit tax-category match. Do not replace with a scoring system.
func classify(tree *RawNode) classification {
	rules := []func(*RawNode) (classification, bool){
		ruleDefaultInvoice,      // 1. baseline
		ruleWithholdingCategory, // 2. RET 4TA tax subtotal => receipt
		ruleEntityKinds,         // 3. DNI issuer + RUC receiver => receipt
		ruleExplicitTypeCode,    // 4. explicit type code is final
	}

	var out classification
	for _, rule := range rules {
		if c, ok := rule(tree); ok {
			out = c
		}
	}
	return out
}

func ruleDefaultInvoice(*RawNode) (classification, bool) {
	return classification{model.DocumentTypeInvoice, model.DescriptionInvoice}, true
}

func ruleWithholdingCategory(tree *RawNode) (classification, bool) {
	for _, line := range documentLines(tree) {
		for _, taxTotal := range line.Seq("TaxTotal") {
			for _, sub := range taxTotal.Seq("TaxSubtotal") {
				if sub.Str("TaxCategory", "ID") == withholdingCategoryID {
					return classification{model.DocumentTypeReceipt, model.DescriptionReceipt}, true
				}
			}
		}
	}
	return classification{}, false
}

func ruleEntityKinds(tree *RawNode) (classification, bool) {
	issuer := partyTaxID(tree, "AccountingSupplierParty")
	receiver := partyTaxID(tree, "AccountingCustomerParty")
	if len(issuer) == naturalPersonIDLen && len(receiver) == legalEntityIDLen {
		return classification{model.DocumentTypeReceipt, model.DescriptionReceipt}, true
	}
	return classification{}, false
}

func ruleExplicitTypeCode(tree *RawNode) (classification, bool) {
	code := tree.Str("InvoiceTypeCode")
	if code == "" {
		return classification{}, false
	}
	docType, description, ok := model.TypeFromCode(code)
	if !ok {
		return classification{}, false
	}
	return classification{docType, description}, true
}

// partyTaxID resolves a party's tax identifier, trying the UBL 2.1 party
// identification first and the older SUNAT account ID as fallback.
func partyTaxID(tree *RawNode, party string) string {
	if id := tree.Str(party, "Party", "PartyIdentification", "ID"); id != "" {
		return id
	}
	return tree.Str(party, "CustomerAssignedAccountID")
}

// documentLines returns the repeated line elements in document order,
// whichever line tag the container root uses.
func documentLines(tree *RawNode) []*RawNode {
	for _, tag := range []string{"InvoiceLine", "CreditNoteLine", "DebitNoteLine"} {
		if lines := tree.Seq(tag); len(lines) > 0 {
			return lines
		}
	}
	return nil
}
