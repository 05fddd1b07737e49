package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := model.NewParseError(model.ErrMalformedXML, "xml", "input is not well-formed XML", cause)

	assert.Contains(t, err.Error(), "malformed_xml")
	assert.Contains(t, err.Error(), "xml")
	assert.Contains(t, err.Error(), "unexpected EOF")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestParseError_As(t *testing.T) {
	var err error = model.NewMissingFieldError("supplierName", "missing supplier name")

	var parseErr *model.ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, model.ErrMissingField, parseErr.Kind)
	assert.Equal(t, "supplierName", parseErr.Field)
}

func TestValidationError(t *testing.T) {
	err := model.NewValidationError("fullNumber", "F001-999", "identity", "full number mismatch")

	assert.Contains(t, err.Error(), "fullNumber")
	assert.Contains(t, err.Error(), "identity")
	assert.Contains(t, err.Error(), "F001-999")
}
