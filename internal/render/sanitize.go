package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements removed together with everything inside them.
var strippedContainers = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Frameset: true,
}

// Void elements that are dropped.
var strippedVoids = map[atom.Atom]bool{
	atom.Embed: true,
	atom.Base:  true,
	atom.Frame: true,
	atom.Meta:  true,
	atom.Link:  true,
}

// SVG animation elements can rewrite another attribute, href included.
var svgAnimations = map[string]bool{
	"animate":          true,
	"animatemotion":    true,
	"animatetransform": true,
	"set":              true,
}

// Attributes that carry the animated value.
var animationValueAttrs = map[string]bool{
	"values": true,
	"from":   true,
	"to":     true,
	"by":     true,
}

var (
	cssComment    = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssImport     = regexp.MustCompile(`(?i)@import[^;]*;?`)
	cssExpression = regexp.MustCompile(`(?i)expression\s*\(`)
	cssBinding    = regexp.MustCompile(`(?i)(-moz-binding|behavior)\s*:[^;}]*;?`)
	cssScriptURL  = regexp.MustCompile(`(?i)url\(\s*['"]?\s*(javascript|vbscript):[^)]*\)`)
)

// SanitizeHTML strips script-capable markup from an author supplied
// fragment: script and iframe elements with their content, meta and link
// elements, event handler attributes, javascript: URLs and dangerous CSS.
// Comments are dropped.
// It narrows what a fragment can do; it is not a sandbox.
func SanitizeHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	skip := 0
	inStyle := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; either way the rest is dropped
			return b.String()

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if strippedContainers[tok.DataAtom] {
				if tt == html.StartTagToken {
					skip++
				}
				continue
			}
			if skip > 0 || strippedVoids[tok.DataAtom] {
				continue
			}
			tok.Attr = sanitizeAttrs(tok.Attr)
			if svgAnimations[tok.Data] && animatesHref(tok.Attr) {
				tok.Attr = dropAnimationValues(tok.Attr)
			}
			inStyle = tok.DataAtom == atom.Style && tt == html.StartTagToken
			b.WriteString(tok.String())

		case html.EndTagToken:
			tok := z.Token()
			if strippedContainers[tok.DataAtom] {
				if skip > 0 {
					skip--
				}
				continue
			}
			if skip > 0 || strippedVoids[tok.DataAtom] {
				continue
			}
			if tok.DataAtom == atom.Style {
				inStyle = false
			}
			b.WriteString(tok.String())

		case html.TextToken:
			if skip > 0 {
				continue
			}
			if inStyle {
				b.WriteString(SanitizeCSS(string(z.Raw())))
				continue
			}
			b.WriteString(z.Token().String())
		}
	}
}

func sanitizeAttrs(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		switch {
		case strings.HasPrefix(key, "on"):
			continue
		case key == "srcdoc" || key == "formaction":
			continue
		case hasScriptScheme(a.Val):
			continue
		case key == "style":
			a.Val = SanitizeCSS(a.Val)
			if strings.TrimSpace(a.Val) == "" {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// hasScriptScheme reports whether v holds a javascript: or vbscript: URL
// anywhere, ignoring case and the whitespace or control characters browsers
// skip. Values such as "0;url=javascript:..." or "x;javascript:..." count.
func hasScriptScheme(v string) bool {
	var b strings.Builder
	for _, r := range v {
		if r <= ' ' || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.ToLower(b.String())
	return strings.Contains(s, "javascript:") || strings.Contains(s, "vbscript:")
}

func animatesHref(attrs []html.Attribute) bool {
	for _, a := range attrs {
		if strings.ToLower(a.Key) != "attributename" {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(a.Val))
		if name == "href" || strings.HasSuffix(name, ":href") {
			return true
		}
	}
	return false
}

func dropAnimationValues(attrs []html.Attribute) []html.Attribute {
	out := attrs[:0]
	for _, a := range attrs {
		if animationValueAttrs[strings.ToLower(a.Key)] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// SanitizeCSS removes expression(), @import, script URLs and binding
// properties from a stylesheet or style attribute. Angle brackets are
// dropped so the result cannot close its <style> element.
func SanitizeCSS(css string) string {
	css = strings.NewReplacer("<", "", ">", " ").Replace(css)

	// repeat until stable so removals cannot splice a new match together
	for {
		next := cssComment.ReplaceAllString(css, "")
		next = cssImport.ReplaceAllString(next, "")
		next = cssExpression.ReplaceAllString(next, "")
		next = cssBinding.ReplaceAllString(next, "")
		next = cssScriptURL.ReplaceAllString(next, "none")
		if next == css {
			return css
		}
		css = next
	}
}
