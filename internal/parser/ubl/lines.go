package ubl

import (
	"fmt"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/money"
)

// extractLines walks the repeated line elements in document order into
// normalized line records. Line numbers are the 1-based position, not a
// source field, and a missing product code synthesizes a placeholder so
// every line stays addressable. No cross-line validation happens here.
func extractLines(tree *RawNode) []model.LineItem {
	var items []model.LineItem

	for i, line := range documentLines(tree) {
		item := model.LineItem{
			Number:    i + 1,
			Total:     money.Parse(line.Str("LineExtensionAmount")),
			UnitPrice: money.Parse(line.Str("Price", "PriceAmount")),
		}

		if qty := quantityNode(line); qty != nil {
			item.Quantity = money.Parse(qty.Text)
			item.UnitCode = qty.Attr("unitCode")
		}

		item.Description = line.Str("Item", "Description")
		item.ProductCode = line.Str("Item", "SellersItemIdentification", "ID")
		if item.ProductCode == "" {
			item.ProductCode = fmt.Sprintf("PROD%03d", i+1)
		}

		item.FreeOfCharge = line.Str("FreeOfChargeIndicator") == "true"
		if ac := line.First("AllowanceCharge"); ac != nil {
			item.Charge = ac.Str("ChargeIndicator") == "true"
			item.Allowance = !item.Charge
		}

		applyLineTax(line, &item)
		items = append(items, item)
	}

	return items
}

// applyLineTax pulls the first tax subtotal's attributes onto the line.
func applyLineTax(line *RawNode, item *model.LineItem) {
	for _, taxTotal := range line.Seq("TaxTotal") {
		for _, sub := range taxTotal.Seq("TaxSubtotal") {
			item.IGVAmount = money.Parse(sub.Str("TaxAmount"))
			item.TaxableAmount = money.Parse(sub.Str("TaxableAmount"))

			category := sub.First("TaxCategory")
			item.TaxPercent = money.Parse(category.Str("Percent"))
			item.TaxCategoryID = category.Str("ID")
			item.TaxExemptionCode = category.Str("TaxExemptionReasonCode")
			item.TaxSchemeID = category.Str("TaxScheme", "ID")
			item.TaxSchemeName = category.Str("TaxScheme", "Name")
			return
		}
	}
}

// quantityNode returns the quantity element matching the line tag in use.
func quantityNode(line *RawNode) *RawNode {
	for _, tag := range []string{"InvoicedQuantity", "CreditedQuantity", "DebitedQuantity", "Quantity"} {
		if q := line.First(tag); q != nil {
			return q
		}
	}
	return nil
}
