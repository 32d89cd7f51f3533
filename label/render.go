package label

import (
	"sort"
	"strings"
)

// Render produces the canonical serialization of l: validated fields,
// parameters sorted by key, checksum character appended.
//
// Render and Parse share one field rule set, so rendered output always
// parses back to an equal Label.
func Render(l *Label) (string, error) {
	if l == nil {
		return "", newError(KindRender, "EPL-REN-001", "nil label")
	}
	if err := validateLabel(l); err != nil {
		return "", err
	}

	params := append([]Param(nil), l.Params...)
	sort.Slice(params, func(i, j int) bool { return params[i].Key < params[j].Key })

	var sb strings.Builder
	sb.Grow(MaxLen / 2)
	sb.WriteString(l.Category)
	sb.WriteByte('/')
	sb.WriteString(l.Type)
	sb.WriteByte('/')
	sb.WriteString(l.Algorithm)
	sb.WriteByte(':')
	sb.WriteString(l.Data)
	sb.WriteByte(':')
	sb.WriteString(l.Date)
	sb.WriteByte('#')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}

	pre := sb.String()
	if len(pre)+2 > MaxLen {
		return "", newError(KindRender, "EPL-REN-002", "label exceeds 256 bytes")
	}
	return pre + "|" + string(Check(pre)), nil
}

// MustRender is Render for construction sites whose fields are known-good.
func MustRender(l *Label) string {
	s, err := Render(l)
	if err != nil {
		panic(err)
	}
	return s
}
