package processor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/parser/fallback"
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/processor"
)

const sampleInvoice = `<?xml version="1.0" encoding="UTF-8"?>
<Invoice>
	<ID>F001-00001234</ID>
	<IssueDate>2026-03-10</IssueDate>
	<DocumentCurrencyCode>PEN</DocumentCurrencyCode>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID schemeID="6">20123456789</ID></PartyIdentification>
			<PartyLegalEntity><RegistrationName>ACME SAC</RegistrationName></PartyLegalEntity>
		</Party>
	</AccountingSupplierParty>
	<LegalMonetaryTotal>
		<LineExtensionAmount>1000.00</LineExtensionAmount>
		<PayableAmount>1180.00</PayableAmount>
	</LegalMonetaryTotal>
</Invoice>`

func TestNewPipeline(t *testing.T) {
	p := processor.NewPipeline()
	require.NotNil(t, p)
}

func TestProcessXML(t *testing.T) {
	ctx := context.Background()
	p := processor.NewPipeline()

	result := p.ProcessXML(ctx, parser.Input{XML: sampleInvoice, FileName: "factura.xml"})
	require.Nil(t, result.Error)
	require.NotNil(t, result.Document)

	assert.Equal(t, processor.MethodPrimary, result.Method)
	assert.Equal(t, "F001-00001234", result.Document.FullNumber)
	assert.Equal(t, "ACME SAC", result.Document.Supplier.BusinessName)
}

func TestProcessXML_Malformed(t *testing.T) {
	ctx := context.Background()
	p := processor.NewPipeline()

	result := p.ProcessXML(ctx, parser.Input{XML: "<Invoice><ID>broken"})
	require.NotNil(t, result.Error)
	assert.Nil(t, result.Document)
	assert.Equal(t, processor.MethodPrimary, result.Method)
}

func TestProcessXMLFallback(t *testing.T) {
	ctx := context.Background()
	p := processor.NewPipeline()

	result := p.ProcessXMLFallback(ctx, parser.Input{XML: sampleInvoice})
	require.Nil(t, result.Error)
	require.NotNil(t, result.Document)

	assert.Equal(t, processor.MethodFallback, result.Method)
	assert.Equal(t, "F001-00001234", result.Document.FullNumber)
}

func TestProcessXMLFallback_NoResult(t *testing.T) {
	ctx := context.Background()
	p := processor.NewPipeline()

	// The traversal parser yields nothing when identity fields are absent
	result := p.ProcessXMLFallback(ctx, parser.Input{XML: "<Invoice><ID>F001-1</ID></Invoice>"})
	require.NotNil(t, result.Error)
	assert.ErrorIs(t, result.Error, fallback.ErrNoResult)
}

func TestProcessXML_NoCascade(t *testing.T) {
	ctx := context.Background()
	p := processor.NewPipeline()

	// The primary pipeline rejects this root; the failure must surface
	// as-is instead of silently retrying with the traversal parser.
	xmlData := `<DespatchAdvice>
	<ID>T001-1</ID>
	<AccountingSupplierParty>
		<Party>
			<PartyIdentification><ID>20123456789</ID></PartyIdentification>
			<PartyName><Name>ACME SAC</Name></PartyName>
		</Party>
	</AccountingSupplierParty>
</DespatchAdvice>`

	result := p.ProcessXML(ctx, parser.Input{XML: xmlData})
	require.NotNil(t, result.Error)

	var parseErr *model.ParseError
	require.ErrorAs(t, result.Error, &parseErr)
	assert.Equal(t, model.ErrUnsupportedRoot, parseErr.Kind)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, processor.FormatXML, processor.DetectFormat([]byte(`<?xml version="1.0"?><Invoice/>`)))
	assert.Equal(t, processor.FormatXML, processor.DetectFormat([]byte(`<Invoice/>`)))
	assert.Equal(t, processor.FormatXML, processor.DetectFormat([]byte("\xef\xbb\xbf<Invoice/>")))
	assert.Equal(t, processor.FormatUnknown, processor.DetectFormat([]byte("plain text")))
	assert.Equal(t, processor.FormatUnknown, processor.DetectFormat(nil))
}
