// Package guarderrors defines the abstract error taxonomy used outside the
// evaluation core (the core itself never returns these from Evaluate —
// checker failures are converted to internal_error findings instead).
package guarderrors

import "errors"

// Sentinel errors external callers (CLI, future adapters) can match against
// with errors.Is. PolicyViolation is surfaced by embedding adapters when a
// verdict is blocked; it is never raised by the core itself.
var (
	ErrPolicyViolation = errors.New("guardrail policy violation")
	ErrNetwork         = errors.New("network error")
	ErrParse           = errors.New("parse error")
	ErrAdapterMissing  = errors.New("adapter dependency missing")
)
