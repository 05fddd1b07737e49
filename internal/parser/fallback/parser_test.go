package fallback_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser/fallback"
)

var testClock = func() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func newTestParser() *fallback.Parser {
	return fallback.New(fallback.WithClock(testClock))
}

const minimalInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2">
	<cbc:ID>F001-987</cbc:ID>
	<cbc:IssueDate>2026-03-01</cbc:IssueDate>
	<cbc:DocumentCurrencyCode>PEN</cbc:DocumentCurrencyCode>
	<cac:AccountingSupplierParty>
		<cac:Party>
			<cac:PartyIdentification><cbc:ID schemeID="6">20123456789</cbc:ID></cac:PartyIdentification>
			<cac:PartyLegalEntity><cbc:RegistrationName>ACME SAC</cbc:RegistrationName></cac:PartyLegalEntity>
		</cac:Party>
	</cac:AccountingSupplierParty>
	<cac:LegalMonetaryTotal>
		<cbc:LineExtensionAmount>1000.00</cbc:LineExtensionAmount>
		<cbc:PayableAmount>1180.00</cbc:PayableAmount>
	</cac:LegalMonetaryTotal>
	<cac:TaxTotal><cbc:TaxAmount>180.00</cbc:TaxAmount></cac:TaxTotal>
	<cac:InvoiceLine>
		<cbc:InvoicedQuantity unitCode="NIU">1</cbc:InvoicedQuantity>
		<cbc:LineExtensionAmount>1000.00</cbc:LineExtensionAmount>
		<cac:Item><cbc:Description>Servicio general</cbc:Description></cac:Item>
		<cac:Price><cbc:PriceAmount>1000.00</cbc:PriceAmount></cac:Price>
	</cac:InvoiceLine>
</Invoice>`

func TestTryParse_Minimal(t *testing.T) {
	p := newTestParser()

	doc, ok := p.TryParse(context.Background(), parser.Input{
		XML:      minimalInvoice,
		FileName: "F001-987.xml",
	})
	require.True(t, ok)

	assert.Equal(t, model.DocumentTypeInvoice, doc.Type)
	assert.Equal(t, "F001", doc.Series)
	assert.Equal(t, "987", doc.Number)
	assert.Equal(t, "F001-987", doc.FullNumber)
	assert.Equal(t, "ACME SAC", doc.Supplier.BusinessName)
	assert.Equal(t, "20123456789", doc.Supplier.DocumentNumber)
	assert.Equal(t, "6", doc.Supplier.DocumentTypeCode)
	assert.True(t, doc.Total.Equal(decimal.RequireFromString("1180.00")))
	assert.True(t, doc.IGV.Equal(decimal.RequireFromString("180.00")))
	assert.Equal(t, testClock(), doc.ReceptionDate)
	assert.Equal(t, model.StatusPending, doc.Status)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "Servicio general", doc.Lines[0].Description)
	assert.Len(t, doc.Hash, 64)
}

func TestParse_NoResultError(t *testing.T) {
	p := newTestParser()

	// Missing supplier identity collapses into the bare sentinel
	_, err := p.Parse(context.Background(), parser.Input{
		XML: `<Invoice><ID>F001-1</ID></Invoice>`,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fallback.ErrNoResult)

	_, err = p.Parse(context.Background(), parser.Input{XML: "not xml at all <<<"})
	assert.ErrorIs(t, err, fallback.ErrNoResult)

	_, err = p.Parse(context.Background(), parser.Input{XML: ""})
	assert.ErrorIs(t, err, fallback.ErrNoResult)
}

func TestTryParse_AnyRootAccepted(t *testing.T) {
	// Unlike the primary pipeline, the traversal does not gate on the
	// root element name.
	xmlData := `<DespatchAdvice>
	<ID>T001-1</ID>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
</DespatchAdvice>`

	p := newTestParser()
	doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData})
	require.True(t, ok)
	assert.Equal(t, "T001-1", doc.Series+"-"+doc.Number)
}

func TestDetectType_FileNameSignal(t *testing.T) {
	xmlData := `<Invoice>
	<ID>E001-22</ID>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
</Invoice>`

	p := newTestParser()

	tests := []struct {
		fileName string
		docType  model.DocumentType
	}{
		{"factura-mensual.xml", model.DocumentTypeInvoice},
		{"RHE-E001-22.xml", model.DocumentTypeReceipt},
		{"rh_enero.xml", model.DocumentTypeReceipt},
		{"recibo-RH.XML", model.DocumentTypeReceipt},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData, FileName: tt.fileName})
			require.True(t, ok)
			assert.Equal(t, tt.docType, doc.Type)
		})
	}
}

func TestDetectType_ExplicitCodeBeatsFileName(t *testing.T) {
	xmlData := `<Invoice>
	<ID>F001-5</ID>
	<InvoiceTypeCode>01</InvoiceTypeCode>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
</Invoice>`

	p := newTestParser()
	doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData, FileName: "RHE-algo.xml"})
	require.True(t, ok)
	assert.Equal(t, model.DocumentTypeInvoice, doc.Type)
}

func TestDetraction_CaseInsensitive(t *testing.T) {
	// The traversal matches the detraction marker loosely, accepting the
	// upper-cased variant the primary pipeline rejects.
	xmlData := `<Invoice>
	<ID>F001-9</ID>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
	<PaymentTerms>
		<ID>DETRACCION</ID>
		<PaymentMeansID>027</PaymentMeansID>
		<PaymentPercent>12</PaymentPercent>
		<Amount>141.60</Amount>
	</PaymentTerms>
	<LegalMonetaryTotal><PayableAmount>1180.00</PayableAmount></LegalMonetaryTotal>
</Invoice>`

	p := newTestParser()
	doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData})
	require.True(t, ok)

	assert.True(t, doc.HasDetraction)
	assert.True(t, doc.DetractionAmount.Equal(decimal.RequireFromString("141.60")))
	assert.Equal(t, "027", doc.DetractionCode)
	assert.True(t, doc.NetPayable.Equal(decimal.RequireFromString("1038.40")))
}

func TestRetention_DefaultPercent(t *testing.T) {
	xmlData := `<Invoice>
	<ID>E001-7</ID>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>45678912</ID></PartyIdentification>
			<PartyName><Name>JUAN PEREZ</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
	<LegalMonetaryTotal><PayableAmount>1840.00</PayableAmount></LegalMonetaryTotal>
	<InvoiceLine>
		<LineExtensionAmount>2000.00</LineExtensionAmount>
		<Item><Description>Consultoría</Description></Item>
		<TaxTotal>
			<TaxAmount>160.00</TaxAmount>
			<TaxSubtotal>
				<TaxAmount>160.00</TaxAmount>
				<TaxCategory><ID>RET 4TA</ID></TaxCategory>
			</TaxSubtotal>
		</TaxTotal>
	</InvoiceLine>
</Invoice>`

	p := newTestParser()
	doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData})
	require.True(t, ok)

	assert.Equal(t, model.DocumentTypeReceipt, doc.Type)
	assert.True(t, doc.HasRetention)
	assert.True(t, doc.RetentionAmount.Equal(decimal.RequireFromString("160.00")))
	assert.True(t, doc.RetentionPercent.Equal(decimal.NewFromInt(8)))
	assert.True(t, doc.NetPayable.Equal(decimal.RequireFromString("1680.00")))
}

func TestNotes_SamePartition(t *testing.T) {
	xmlData := `<Invoice>
	<ID>F001-3</ID>
	<Note>a|b|c|d</Note>
	<Note>SON CIEN Y 00/100 SOLES</Note>
	<Note languageLocaleID="2006">Operación sujeta a detracción</Note>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
</Invoice>`

	p := newTestParser()
	doc, ok := p.TryParse(context.Background(), parser.Input{XML: xmlData})
	require.True(t, ok)

	assert.Equal(t, "a|b|c|d", doc.QRCode)
	assert.Equal(t, []string{"SON CIEN Y 00/100 SOLES"}, doc.DocumentNotes)
	assert.Equal(t, []string{"Operación sujeta a detracción"}, doc.OperationNotes)
	assert.Equal(t, "SON CIEN Y 00/100 SOLES", doc.Observations)
}
