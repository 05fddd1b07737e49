package ubl

import (
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// extractSupplier pulls the issuing party out of the accounting supplier
// block. Field placement varies between UBL 2.0 and 2.1 emitters, so each
// attribute tries the modern path first and the legacy one as fallback.
func extractSupplier(tree *RawNode) model.Supplier {
	sup := model.Supplier{}

	party := tree.Find("AccountingSupplierParty", "Party")

	sup.BusinessName = party.Str("PartyLegalEntity", "RegistrationName")
	if sup.BusinessName == "" {
		sup.BusinessName = party.Str("PartyName", "Name")
	}

	if id := party.Find("PartyIdentification", "ID"); id != nil {
		sup.DocumentNumber = id.Text
		sup.DocumentTypeCode = id.Attr("schemeID")
	}
	if sup.DocumentNumber == "" {
		sup.DocumentNumber = tree.Str("AccountingSupplierParty", "CustomerAssignedAccountID")
	}
	if sup.DocumentTypeCode == "" {
		sup.DocumentTypeCode = tree.Str("AccountingSupplierParty", "AdditionalAccountID")
	}

	sup.Email = party.Str("Contact", "ElectronicMail")
	sup.Phone = party.Str("Contact", "Telephone")

	addr := party.Find("PartyLegalEntity", "RegistrationAddress")
	if addr == nil {
		addr = party.Find("PostalAddress")
	}
	if addr != nil {
		sup.Address = addr.Str("AddressLine", "Line")
		if sup.Address == "" {
			sup.Address = addr.Str("StreetName")
		}
		sup.District = addr.Str("District")
		sup.Province = addr.Str("CityName")
		sup.Department = addr.Str("CountrySubentity")
	}

	return sup
}
