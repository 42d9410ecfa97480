package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		changed bool
	}{
		{"clean", "je voudrais un café demain matin", "je voudrais un café demain matin", false},
		{"email", "écris à jean.dupont@example.fr stp", "écris à [REDACTED_EMAIL] stp", true},
		{"phone", "mon numéro est +33 6 12 34 56 78", "mon numéro est [REDACTED_PHONE]", true},
		{"card", "paye avec 4111 1111 1111 1111 merci", "paye avec [REDACTED_CARD] merci", true},
		{"secret", "ma clé est sk-abc123def456ghi789jkl", "ma clé est [REDACTED_SECRET]", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := RedactPII(tc.in)
			if got != tc.want {
				t.Errorf("RedactPII(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if changed != tc.changed {
				t.Errorf("changed = %v, want %v", changed, tc.changed)
			}
		})
	}
}

func TestRedactPIICombined(t *testing.T) {
	got, changed := RedactPII("contact: a@b.io / +33612345678")
	if !changed {
		t.Fatal("changed = false, want true")
	}
	if strings.Contains(got, "@") || strings.Contains(got, "33612345678") {
		t.Fatalf("RedactPII left PII visible: %q", got)
	}
}
