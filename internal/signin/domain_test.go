package signin

import "testing"

func TestIsValidDomain_EmptyAllowListIsUnrestricted(t *testing.T) {
	for _, allowList := range []string{"", "   ", "\t"} {
		if !IsValidDomain("user@anything.example", allowList) {
			t.Errorf("allow list %q: expected unrestricted", allowList)
		}
	}
}

func TestIsValidDomain_Matching(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		allowList string
		want      bool
	}{
		{"single entry match", "a@corp.example", "corp.example", true},
		{"single entry mismatch", "a@other.example", "corp.example", false},
		{"multiple entries, later match", "a@b.example", "corp.example,b.example", true},
		{"entries are trimmed", "a@b.example", " corp.example , b.example ", true},
		{"case sensitive", "a@Corp.example", "corp.example", false},
		{"no at sign", "not-an-email", "corp.example", false},
		{"trailing at sign", "user@", "corp.example", false},
		{"quoted local part with at", `"a@b"@corp.example`, "corp.example", true},
		{"empty entries ignored", "a@corp.example", ",,corp.example,", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDomain(tt.email, tt.allowList); got != tt.want {
				t.Errorf("IsValidDomain(%q, %q) = %v, want %v", tt.email, tt.allowList, got, tt.want)
			}
		})
	}
}

func TestEmailLocalPart(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@corp.example", "jane"},
		{"no-at-sign", "no-at-sign"},
		{`"a@b"@corp.example`, `"a@b"`},
		{"@corp.example", "@corp.example"},
	}
	for _, tt := range tests {
		if got := emailLocalPart(tt.email); got != tt.want {
			t.Errorf("emailLocalPart(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
