// domain.go implements the email domain allow-list policy applied to an
// organization's sign-ins. Super-admins bypass the check entirely; that bypass
// lives in the orchestrator so this function stays a pure predicate.
package signin

import "strings"

// IsValidDomain reports whether the email's domain is permitted by the
// comma-separated allow-list. An empty allow-list means unrestricted. The
// domain is the substring after the last '@' and must match one trimmed,
// non-empty list entry exactly (case-sensitive).
func IsValidDomain(email, allowList string) bool {
	if strings.TrimSpace(allowList) == "" {
		return true
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]

	for _, entry := range strings.Split(allowList, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == domain {
			return true
		}
	}
	return false
}

// emailLocalPart returns the part of the email before the last '@', used to
// derive a first name for identities that arrive without one.
func emailLocalPart(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return email
	}
	return email[:at]
}
