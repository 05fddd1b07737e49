package server

import (
	"github.com/AlexArancibia/SicloConcarDashboard-sub001/internal/model"
)

// ParseRequest is the request body for parse endpoints
type ParseRequest struct {
	XML        string `json:"xml" binding:"required"`
	FileName   string `json:"fileName"`
	CompanyID  string `json:"companyId"`
	SupplierID string `json:"supplierId"`
	UserID     string `json:"userId"`
}

// ParseResponse is the response for parse endpoints
type ParseResponse struct {
	Document *model.Document `json:"document"`
	Method   string          `json:"method"`
	Warnings []string        `json:"warnings,omitempty"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
