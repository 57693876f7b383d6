package render

import "strings"

// ScopeCSS prefixes every selector in css with #containerID so an ad's
// stylesheet only reaches its own unit. Rules inside @media and @supports
// are scoped too; other at-rules are kept as they are.
func ScopeCSS(css, containerID string) string {
	scope := "#" + containerID

	var b strings.Builder
	for {
		open := strings.IndexByte(css, '{')
		if open < 0 {
			return b.String()
		}

		prelude := strings.TrimSpace(css[:open])
		body, rest := splitBlock(css[open+1:])

		switch {
		case strings.HasPrefix(prelude, "@media"), strings.HasPrefix(prelude, "@supports"):
			b.WriteString(prelude + "{" + ScopeCSS(body, containerID) + "}")
		case strings.HasPrefix(prelude, "@"):
			b.WriteString(prelude + "{" + body + "}")
		case prelude != "":
			b.WriteString(scopeSelectors(prelude, scope) + "{" + body + "}")
		}

		css = rest
	}
}

// splitBlock returns the content up to the brace closing an already opened
// block, and whatever follows it.
func splitBlock(s string) (body, rest string) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i], s[i+1:]
			}
		}
	}
	return s, ""
}

func scopeSelectors(prelude, scope string) string {
	parts := strings.Split(prelude, ",")
	out := make([]string, 0, len(parts))
	for _, sel := range parts {
		sel = strings.TrimSpace(sel)
		switch sel {
		case "":
			continue
		case ":root", "html", "body", ":host":
			out = append(out, scope)
		default:
			out = append(out, scope+" "+sel)
		}
	}
	return strings.Join(out, ", ")
}
