package label

import "strings"

type lineRule struct {
	id    string
	apply func(string) error
}

func applyLineRules(s string, rules []lineRule) error {
	for _, r := range rules {
		if r.apply == nil {
			return newError(KindParse, "EPL-INTERNAL-010", "nil line rule")
		}
		if err := r.apply(s); err != nil {
			return err
		}
	}
	return nil
}

func lineRulesV1() []lineRule {
	return []lineRule{
		{
			id: "EPL-STR-001",
			apply: func(s string) error {
				if s == "" {
					return newError(KindParse, "EPL-STR-001", "empty label")
				}
				return nil
			},
		},
		{
			id: "EPL-STR-002",
			apply: func(s string) error {
				for i := 0; i < len(s); i++ {
					if s[i] < 0x21 || s[i] > 0x7e {
						return newError(KindParse, "EPL-STR-002", "labels are printable ASCII with no whitespace")
					}
				}
				return nil
			},
		},
		{
			id: "EPL-STR-003",
			apply: func(s string) error {
				if len(s) > MaxLen {
					return newError(KindParse, "EPL-STR-003", "label exceeds 256 bytes")
				}
				return nil
			},
		},
		{
			id: "EPL-STR-010",
			apply: func(s string) error {
				if bar := strings.IndexByte(s, '|'); bar != len(s)-2 {
					return newError(KindParse, "EPL-STR-010", "label must end with '|' and a one-character checksum")
				}
				return nil
			},
		},
		{
			id: "EPL-CHK-001",
			apply: func(s string) error {
				if strings.IndexByte(Charset36, s[len(s)-1]) < 0 {
					return newError(KindChecksum, "EPL-CHK-001", "checksum character outside 0-9A-Z")
				}
				return nil
			},
		},
	}
}

// Parse parses a v1 label.
//
// Parameters may appear in any order; everything else must already be in
// canonical form. The checksum is verified first, over the bytes before
// '|'; the byte-sum construction makes that verification identical for the
// as-written and the canonical parameter orders.
func Parse(s string) (*Label, error) {
	if err := applyLineRules(s, lineRulesV1()); err != nil {
		return nil, err
	}

	pre, check := s[:len(s)-2], s[len(s)-1]
	if want := Check(pre); check != want {
		return nil, newError(KindChecksum, "EPL-CHK-002", "checksum mismatch")
	}

	hash := strings.IndexByte(pre, '#')
	if hash < 0 || strings.IndexByte(pre[hash+1:], '#') >= 0 {
		return nil, newError(KindParse, "EPL-STR-011", "label must contain exactly one '#'")
	}
	core, rawParams := pre[:hash], pre[hash+1:]

	fields := strings.Split(core, ":")
	if len(fields) != 3 {
		return nil, newError(KindParse, "EPL-STR-012", "label core must be <class>:<data>:<date>")
	}
	head := strings.Split(fields[0], "/")
	if len(head) != 3 {
		return nil, newError(KindParse, "EPL-STR-013", "label class must be <category>/<type>/<algorithm>")
	}

	l := &Label{
		Category:  head[0],
		Type:      head[1],
		Algorithm: head[2],
		Data:      fields[1],
		Date:      fields[2],
	}

	if rawParams != "" {
		for _, pp := range strings.Split(rawParams, "&") {
			eq := strings.IndexByte(pp, '=')
			if eq < 0 {
				return nil, newError(KindParse, "EPL-PRM-001", "parameter must be KEY=value")
			}
			l.Params = append(l.Params, Param{Key: pp[:eq], Value: pp[eq+1:]})
		}
	}

	if err := validateLabel(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Canonicalize parses s and re-renders it in canonical form.
//
// All hashing and persistence of labels goes through canonical bytes; a
// label that round-trips unchanged is already canonical.
func Canonicalize(s string) (string, error) {
	l, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Render(l)
}
