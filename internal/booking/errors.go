package booking

import "errors"

// Failure taxonomy for the reservation lifecycle.  Callers branch with
// errors.Is; wrapped variants carry the human-readable detail (for
// payment and refund failures the gateway's own message).  Inventory
// failures deliberately have no entry here: they are logged inside the
// service and never surface.
var (
	// ErrValidation marks malformed input (dates out of order, zero
	// guests, negative price).  Never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when no reservation exists for the id.
	ErrNotFound = errors.New("reservation not found")

	// ErrForbidden is returned when the caller is neither the owner of
	// the reservation nor an admin.
	ErrForbidden = errors.New("not allowed to access this reservation")

	// ErrAlreadyCancelled guards cancel idempotency: a second cancel of
	// the same reservation fails with this rather than silently
	// succeeding.
	ErrAlreadyCancelled = errors.New("reservation already cancelled")

	// ErrPaymentDeclined means the charge failed and nothing was
	// persisted.  The caller may resubmit the whole request.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrRefundDeclined means the refund failed during cancel; the
	// reservation is left unmodified and cancel may be retried.
	ErrRefundDeclined = errors.New("refund declined")
)
