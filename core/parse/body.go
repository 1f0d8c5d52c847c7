package parse

import (
	"regexp"
	"strings"
)

var (
	// looseSigilRe also catches tags the model emitted with two dollars.
	looseSigilRe = regexp.MustCompile(`\${2,3}[ \t]*[A-Za-z][A-Za-z0-9_ \t]*?[ \t]*\${2,3}`)
	bareSigilRe  = regexp.MustCompile(`\${3,}`)
)

// isolateBody extracts the long-form content of a chunk and heals it.
func (p *Parser) isolateBody(chunk string) (string, Source) {
	body, src := p.extract(chunk, RoleBody)
	if src == SourceDefault {
		return "", SourceDefault
	}
	if body = healBody(body); body == "" {
		return "", SourceDefault
	}
	return body, src
}

// healBody deletes tag tokens that leaked into a body, drops the lines that
// held nothing else and tidies the edges. healBody(healBody(s)) == healBody(s).
func healBody(body string) string {
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		cleaned := looseSigilRe.ReplaceAllString(line, "")
		cleaned = bareSigilRe.ReplaceAllString(cleaned, "")
		if cleaned != line {
			cleaned = strings.TrimSpace(cleaned)
			if cleaned == "" {
				continue
			}
		}
		kept = append(kept, strings.TrimRight(cleaned, " \t"))
	}

	lines = strings.Split(stripEmphasis(strings.Join(kept, "\n"), nil), "\n")

	start, end := 0, len(lines)
	for start < end && isFiller(lines[start]) {
		start++
	}
	for end > start && isFiller(lines[end-1]) {
		end--
	}

	out := make([]string, 0, end-start)
	blank := 0
	for _, line := range lines[start:end] {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			line = ""
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// isFiller reports whether an edge line carries no content.
func isFiller(line string) bool {
	return strings.TrimSpace(line) == "" || ruleLineRe.MatchString(line)
}
