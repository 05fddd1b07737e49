package cpelib_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/pkg/cpelib"
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

func TestProcess(t *testing.T) {
	proc := cpelib.NewProcessor()

	result, err := proc.Process(context.Background(), strings.NewReader(sampleInvoice), "factura.xml")
	require.NoError(t, err)

	assert.Equal(t, "ubl_tree", result.Method)
	require.NotNil(t, result.Document)
	assert.Equal(t, cpelib.DocumentTypeInvoice, result.Document.Type)
	assert.Equal(t, "F001-00001234", result.Document.FullNumber)
	assert.Equal(t, "factura.xml", result.Document.FileName)
	// Post-extraction validation found nothing to warn about
	assert.Empty(t, result.Warnings)
}

func TestProcess_StampsIdentifiers(t *testing.T) {
	proc := cpelib.NewProcessor(cpelib.PipelineOptions{
		CompanyID:  "cmp-1",
		SupplierID: "sup-9",
		UserID:     "usr-3",
	})

	result, err := proc.Process(context.Background(), strings.NewReader(sampleInvoice), "factura.xml")
	require.NoError(t, err)

	assert.Equal(t, "cmp-1", result.Document.CompanyID)
	assert.Equal(t, "sup-9", result.Document.SupplierID)
	assert.Equal(t, "usr-3", result.Document.UserID)
}

func TestProcess_ParseError(t *testing.T) {
	proc := cpelib.NewProcessor()

	_, err := proc.Process(context.Background(), strings.NewReader("<Invoice><ID>broken"), "x.xml")
	require.Error(t, err)

	parseErr, ok := err.(*cpelib.ParseError)
	require.True(t, ok)
	assert.Equal(t, cpelib.ErrMalformedXML, parseErr.Kind)
}

func TestProcessFallback(t *testing.T) {
	proc := cpelib.NewProcessor()

	result, err := proc.ProcessFallback(context.Background(), strings.NewReader(sampleInvoice), "factura.xml")
	require.NoError(t, err)

	assert.Equal(t, "dom_walk", result.Method)
	assert.Equal(t, "F001-00001234", result.Document.FullNumber)
}

func TestProcessBatch(t *testing.T) {
	proc := cpelib.NewProcessor()

	inputs := []cpelib.BatchInput{
		{Reader: strings.NewReader(sampleInvoice), FileName: "a.xml"},
		{Reader: strings.NewReader(sampleInvoice), FileName: "b.xml"},
		{Reader: strings.NewReader(sampleInvoice), FileName: "c.xml"},
	}

	results, err := proc.ProcessBatch(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		require.NotNil(t, r, "result %d", i)
		assert.Equal(t, "F001-00001234", r.Document.FullNumber)
	}
	assert.Equal(t, "a.xml", results[0].Document.FileName)
	assert.Equal(t, "b.xml", results[1].Document.FileName)
	assert.Equal(t, "c.xml", results[2].Document.FileName)
}

func TestValidate(t *testing.T) {
	proc := cpelib.NewProcessor()

	result, err := proc.Process(context.Background(), strings.NewReader(sampleInvoice), "factura.xml")
	require.NoError(t, err)

	assert.Empty(t, proc.Validate(result.Document))

	// Break a derived field and the check surfaces it
	result.Document.FullNumber = "F001-999"
	violations := proc.Validate(result.Document)
	require.Len(t, violations, 1)
	assert.Equal(t, "fullNumber", violations[0].Field)
	assert.True(t, violations[0].IsError)
}
