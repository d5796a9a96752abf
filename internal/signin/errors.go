// errors.go defines the sign-in error taxonomy. Every failure surfaced by the
// orchestrator is a *Error carrying a Kind that the HTTP layer maps to a status
// code, plus a stable human-readable reason. Failures inside the provisioning
// transaction roll back the transaction and propagate as the originating error.
package signin

import "errors"

// Kind classifies sign-in failures for transport-level status mapping.
type Kind int

const (
	// KindUnauthorized covers unresolved tenants/configs, rejected identity
	// exchanges, failed domain checks, missing workspaces, and disabled features.
	KindUnauthorized Kind = iota
	// KindNotAcceptable marks accounts that exist but have been archived.
	KindNotAcceptable
	// KindInternal covers storage and infrastructure failures.
	KindInternal
)

// Error is a classified sign-in failure
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

// Unwrap supports errors.Is/errors.As chains
func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized builds a KindUnauthorized error with a stable reason string
func Unauthorized(reason string) *Error {
	return &Error{Kind: KindUnauthorized, Reason: reason}
}

// NotAcceptable builds a KindNotAcceptable error with a stable reason string
func NotAcceptable(reason string) *Error {
	return &Error{Kind: KindNotAcceptable, Reason: reason}
}

// Internal wraps an infrastructure failure
func Internal(reason string, err error) *Error {
	return &Error{Kind: KindInternal, Reason: reason, Err: err}
}

// Stable reason strings surfaced to callers.
const (
	ReasonInvalidCredentials   = "Invalid credentials"
	ReasonDomainNotAllowed     = "Domain verification failed"
	ReasonUserArchived         = "User has been archived, please contact the administrator"
	ReasonUserNotInWorkspace   = "User does not exist in the workspace"
	ReasonNoEligibleWorkspace  = "User is not part of any workspace"
	ReasonOpenIDDisabled       = "OpenID not enabled"
	ReasonSeatLimitExceeded    = "License seat limit exceeded"
	ReasonUnresolvedTenant     = "Unauthorized"
)

// KindOf returns the taxonomy kind for err, defaulting to KindInternal for
// unclassified errors (storage failures inside the provisioning transaction).
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
