package model

import "github.com/shopspring/decimal"

// CheckInvariants reports violations of the derived-field contract on a
// freshly parsed document. A clean parse always yields an empty slice;
// the checks exist for the validation surfaces (CLI and API), not for the
// pipelines themselves.
func (d *Document) CheckInvariants() []*ValidationError {
	var errs []*ValidationError

	if d.FullNumber != d.Series+"-"+d.Number {
		errs = append(errs, NewValidationError("fullNumber", d.FullNumber, "identity",
			"full number must equal series + \"-\" + number"))
	}

	expected := d.Total.Sub(d.RetentionAmount).Sub(d.DetractionAmount)
	if expected.IsNegative() {
		expected = decimal.Zero
	}
	if !d.NetPayable.Equal(expected) {
		errs = append(errs, NewValidationError("netPayableAmount", d.NetPayable.String(), "derivation",
			"net payable must equal total minus retention and detraction"))
	}

	if !d.PendingAmount.Equal(d.NetPayable) {
		errs = append(errs, NewValidationError("pendingAmount", d.PendingAmount.String(), "creation",
			"pending amount must equal net payable at creation"))
	}
	if !d.ConciliatedAmount.IsZero() {
		errs = append(errs, NewValidationError("conciliatedAmount", d.ConciliatedAmount.String(), "creation",
			"conciliated amount must be zero at creation"))
	}

	if d.HasRetention && !d.RetentionAmount.GreaterThan(decimal.Zero) {
		errs = append(errs, NewValidationError("retentionAmount", d.RetentionAmount.String(), "derivation",
			"retention flag requires a positive retention amount"))
	}
	if d.HasDetraction && !d.DetractionAmount.GreaterThan(decimal.Zero) {
		errs = append(errs, NewValidationError("detractionAmount", d.DetractionAmount.String(), "derivation",
			"detraction flag requires a positive detraction amount"))
	}

	return errs
}
