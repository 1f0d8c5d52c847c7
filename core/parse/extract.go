package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// extractor is one step of the field recovery chain. The chain is tried in
// order and the first step that returns ok wins.
type extractor struct {
	source Source
	find   func(chunk string, role Role) (string, bool)
}

// tagLoc is a sigil tag found in a chunk. known is false for names that
// belong to no role (e.g. $$$SOURCES$$$).
type tagLoc struct {
	start, end int
	role       Role
	known      bool
}

func (p *Parser) scanTags(s string) []tagLoc {
	locs := sigilRe.FindAllStringSubmatchIndex(s, -1)
	tags := make([]tagLoc, 0, len(locs))
	for _, l := range locs {
		role, known := p.roleOf[canonicalTag(s[l[2]:l[3]])]
		tags = append(tags, tagLoc{start: l[0], end: l[1], role: role, known: known})
	}
	return tags
}

// extract runs the chain for role and reports which step produced the value.
func (p *Parser) extract(chunk string, role Role) (string, Source) {
	for _, step := range p.chain {
		if v, ok := step.find(chunk, role); ok {
			return v, step.source
		}
	}
	return "", SourceDefault
}

// fromTag returns the text after the first non-empty tag of role. The value
// ends at the next tag of any name, except that the body runs on through
// repeated body tags, which healing removes afterwards.
func (p *Parser) fromTag(chunk string, role Role) (string, bool) {
	tags := p.scanTags(chunk)
	for i, t := range tags {
		if !t.known || t.role != role {
			continue
		}
		end := len(chunk)
		for _, next := range tags[i+1:] {
			if role != RoleBody || !next.known || next.role != RoleBody {
				end = next.start
				break
			}
		}
		if v := cleanValue(chunk[t.end:end], role); v != "" {
			return v, true
		}
	}
	return "", false
}

// fromAlias looks for a line starting with one of the role's labels, such as
// "标题：" or "**Title:**". Short fields take the rest of that line; the body
// also takes the following lines up to the next labelled or tagged line.
func (p *Parser) fromAlias(chunk string, role Role) (string, bool) {
	if len(p.cfg.aliases[role]) == 0 {
		return "", false
	}
	lines := strings.Split(chunk, "\n")
	for i, line := range lines {
		rest, ok := p.matchLabel(line, role)
		if !ok {
			continue
		}
		if role == RoleBody {
			var b strings.Builder
			b.WriteString(rest)
			for _, next := range lines[i+1:] {
				if p.isLabelled(next) || sigilRe.MatchString(next) {
					break
				}
				b.WriteString("\n")
				b.WriteString(next)
			}
			rest = b.String()
		}
		if v := cleanValue(rest, role); v != "" {
			return v, true
		}
	}
	return "", false
}

// isLabelled reports whether line starts with a label of any role.
func (p *Parser) isLabelled(line string) bool {
	for r := RoleTitle; r < roleCount; r++ {
		if _, ok := p.matchLabel(line, r); ok {
			return true
		}
	}
	return false
}

// matchLabel checks line against the aliases of role and returns what
// follows the label. Accepted shapes: "label: value", "label：value",
// "【label】value" and "[label]: value", with bullets, heading hashes and
// emphasis around the label ignored. Labels compare case-insensitively after
// NFKC folding, so full-width letters and colons match their ASCII forms.
func (p *Parser) matchLabel(line string, role Role) (string, bool) {
	s := strings.TrimLeft(strings.TrimSpace(line), "-*+#>•·_ \t")
	if s == "" {
		return "", false
	}

	bracketed := false
	if open, size := utf8.DecodeRuneInString(s); open == '[' || open == '【' {
		s = s[size:]
		bracketed = true
	}

	for _, label := range p.cfg.aliases[role] {
		rest, ok := cutFoldedPrefix(s, label)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, "*_ \t")
		if bracketed {
			closeR, size := utf8.DecodeRuneInString(rest)
			if closeR != ']' && closeR != '】' {
				continue
			}
			rest = strings.TrimLeft(rest[size:], "*_ \t")
			if c, size := utf8.DecodeRuneInString(rest); isColon(c) {
				rest = rest[size:]
			}
			return rest, true
		}
		if c, size := utf8.DecodeRuneInString(rest); isColon(c) {
			return rest[size:], true
		}
	}
	return "", false
}

// cutFoldedPrefix removes label from the front of s when the first runes of
// s equal label under NFKC folding and case folding.
func cutFoldedPrefix(s, label string) (string, bool) {
	n := utf8.RuneCountInString(label)
	i := 0
	for n > 0 && i < len(s) {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		n--
	}
	if n > 0 {
		return "", false
	}
	if !strings.EqualFold(norm.NFKC.String(s[:i]), norm.NFKC.String(label)) {
		return "", false
	}
	return s[i:], true
}

func isColon(r rune) bool {
	return r == ':' || r == '：' || r == '﹕' || r == '꞉'
}

var leadingMarkRe = regexp.MustCompile(`^(?:#{1,6}|[-–—])[ \t]+`)

var bracketPairs = map[rune]rune{
	'[': ']',
	'【': '】',
	'(': ')',
	'（': '）',
	'<': '>',
	'{': '}',
	'「': '」',
}

// cleanValue strips the separator, one layer of wrapping brackets and
// surrounding emphasis from a raw field value. Short fields also lose a
// leading Markdown heading or dash.
func cleanValue(raw string, role Role) string {
	s := strings.TrimLeft(raw, " \t\r\n:：=")
	s = strings.TrimSpace(s)
	if role != RoleBody {
		s = strings.TrimSpace(leadingMarkRe.ReplaceAllString(s, ""))
	}
	s = strings.TrimSpace(strings.Trim(s, "*_"))
	s = unwrapBrackets(s)
	return strings.TrimSpace(strings.Trim(s, "*_"))
}

// unwrapBrackets removes one pair of brackets when they enclose the whole
// value: "[Tech]" becomes "Tech" but "[1] text [2]" is left alone.
func unwrapBrackets(s string) string {
	open, size := utf8.DecodeRuneInString(s)
	closeR, ok := bracketPairs[open]
	if !ok {
		return s
	}
	depth := 0
	for i, r := range s {
		switch r {
		case open:
			depth++
		case closeR:
			depth--
			if depth == 0 {
				if i+utf8.RuneLen(r) == len(s) {
					return strings.TrimSpace(s[size:i])
				}
				return s
			}
		}
	}
	return s
}
