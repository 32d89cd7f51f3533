package label

import "time"

// Limits for v1 labels.
const (
	MaxLen       = 256
	maxToken     = 16
	maxAlgorithm = 24
	maxData      = 64
	maxParams    = 16
	maxParamVal  = 64
)

// validateLabel enforces the v1 field rules. Parse and Render share it, so
// a Label that renders is exactly a Label that parses back.
func validateLabel(l *Label) error {
	if !isToken(l.Category, maxToken) {
		return newError(KindField, "EPL-FLD-001", "category must be 1..16 of A-Z 0-9 with non-leading dashes")
	}
	if !isToken(l.Type, maxToken) {
		return newError(KindField, "EPL-FLD-002", "type must be 1..16 of A-Z 0-9 with non-leading dashes")
	}
	if !isToken(l.Algorithm, maxAlgorithm) {
		return newError(KindField, "EPL-FLD-003", "algorithm must be 1..24 of A-Z 0-9 with non-leading dashes")
	}
	if !isData(l.Data) {
		return newError(KindField, "EPL-FLD-004", "data must be 1..64 of a-z 0-9 . _ - and start alphanumeric")
	}
	if err := checkDate(l.Date); err != nil {
		return err
	}
	if len(l.Params) > maxParams {
		return newError(KindField, "EPL-PRM-005", "more than 16 parameters")
	}
	seen := make(map[string]bool, len(l.Params))
	for _, p := range l.Params {
		if !isParamKey(p.Key) {
			return newError(KindField, "EPL-PRM-002", "parameter key must be 1..16 of A-Z 0-9 and start with a letter")
		}
		if !isParamValue(p.Value) {
			return newError(KindField, "EPL-PRM-003", "parameter value must be 1..64 of A-Z a-z 0-9 . _ -")
		}
		if seen[p.Key] {
			return newError(KindField, "EPL-PRM-004", "duplicate parameter key "+p.Key)
		}
		seen[p.Key] = true
	}
	return nil
}

func isToken(s string, max int) bool {
	if len(s) == 0 || len(s) > max {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}

func isData(s string) bool {
	if len(s) == 0 || len(s) > maxData {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case (c == '.' || c == '_' || c == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}

func isParamKey(s string) bool {
	if len(s) == 0 || len(s) > maxToken {
		return false
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func isParamValue(s string) bool {
	if len(s) == 0 || len(s) > maxParamVal {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

func checkDate(s string) error {
	bad := func() error {
		return newError(KindField, "EPL-FLD-005", "date must be canonical YYYY-MM-DD")
	}
	if len(s) != len(DateLayout) || s[4] != '-' || s[7] != '-' {
		return bad()
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return bad()
		}
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return wrapError(KindField, "EPL-FLD-005", "date is not a real calendar day", err)
	}
	return nil
}
