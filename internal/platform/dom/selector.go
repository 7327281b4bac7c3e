package dom

import "strings"

// selector supports comma separated alternatives of the form
// tag.class#id[attr][attr=value][attr*=value].
type selector []compound

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	name     string
	op       string
	value    string
	hasValue bool
}

func parseSelector(raw string) selector {
	out := selector{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseCompound(part))
	}
	return out
}

func parseCompound(s string) compound {
	c := compound{}
	i := 0
	readIdent := func() string {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '#' && s[i] != '[' {
			i++
		}
		return s[start:i]
	}
	c.tag = strings.ToLower(readIdent())
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			c.classes = append(c.classes, readIdent())
		case '#':
			i++
			c.id = readIdent()
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c
			}
			c.attrs = append(c.attrs, parseAttr(s[i+1:i+end]))
			i += end + 1
		default:
			i++
		}
	}
	return c
}

func parseAttr(body string) attrMatch {
	for _, op := range []string{"*=", "^=", "="} {
		if idx := strings.Index(body, op); idx >= 0 {
			return attrMatch{
				name:     strings.TrimSpace(body[:idx]),
				op:       op,
				value:    strings.Trim(strings.TrimSpace(body[idx+len(op):]), `"'`),
				hasValue: true,
			}
		}
	}
	return attrMatch{name: strings.TrimSpace(body)}
}

func (s selector) matches(n *Node) bool {
	for _, c := range s {
		if c.matches(n) {
			return true
		}
	}
	return false
}

func (c compound) matches(n *Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag() {
		return false
	}
	if c.id != "" && c.id != n.IDAttr {
		return false
	}
	for _, cls := range c.classes {
		if !n.HasClass(cls) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := n.Attr(a.name)
		if !ok {
			return false
		}
		if !a.hasValue {
			continue
		}
		switch a.op {
		case "*=":
			if !strings.Contains(v, a.value) {
				return false
			}
		case "^=":
			if !strings.HasPrefix(v, a.value) {
				return false
			}
		default:
			if v != a.value {
				return false
			}
		}
	}
	return true
}
