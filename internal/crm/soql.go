package crm

import (
	"fmt"
	"strings"
)

// MatchMode selects how a caller's phone is compared to stored Case phones.
type MatchMode string

const (
	// MatchExact compares the raw phone string for equality.
	MatchExact MatchMode = "exact"
	// MatchNormalized strips non-digits and does a substring match, newest Case first.
	MatchNormalized MatchMode = "normalized"
)

// Matcher builds the Case lookup query for a phone number.
type Matcher struct {
	Mode   MatchMode
	Fields []string
}

var caseFields = []string{"Id", "CaseNumber", "Subject", "Status", "Origin", "Description"}

// NormalizePhone keeps only the ASCII digits of phone.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Keyable reports whether phone can identify a Case under this matcher.
func (m Matcher) Keyable(phone string) bool {
	if len(m.Fields) == 0 {
		return false
	}
	if m.Mode == MatchNormalized {
		return NormalizePhone(phone) != ""
	}
	return strings.TrimSpace(phone) != ""
}

// Query returns the SOQL lookup for phone. ok is false when phone is not Keyable.
func (m Matcher) Query(phone string) (soql string, ok bool) {
	if !m.Keyable(phone) {
		return "", false
	}

	var conds []string
	order := ""
	switch m.Mode {
	case MatchNormalized:
		digits := NormalizePhone(phone)
		for _, f := range m.Fields {
			conds = append(conds, fmt.Sprintf("%s LIKE '%%%s%%'", f, digits))
		}
		order = " ORDER BY CreatedDate DESC"
	default:
		lit := escapeLiteral(phone)
		for _, f := range m.Fields {
			conds = append(conds, fmt.Sprintf("%s = '%s'", f, lit))
		}
	}

	where := strings.Join(conds, " OR ")
	if len(conds) > 1 {
		where = "(" + where + ")"
	}
	return fmt.Sprintf("SELECT %s FROM Case WHERE %s%s LIMIT 1", strings.Join(m.selectFields(), ", "), where, order), true
}

func (m Matcher) selectFields() []string {
	out := append([]string(nil), caseFields...)
	seen := make(map[string]bool, len(out))
	for _, f := range out {
		seen[f] = true
	}
	for _, f := range m.Fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func escapeLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return r.Replace(s)
}
