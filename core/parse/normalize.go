package parse

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Placeholders wrapping a protected tag name. Private-use runes never occur
// in model output, so the math and emphasis rules cannot touch them.
const (
	tagOpen  = "\uE000"
	tagClose = "\uE001"
)

var (
	// sigilRe matches a $$$NAME$$$ tag whatever its name.
	sigilRe       = regexp.MustCompile(`\${3}[ \t]*([A-Za-z][A-Za-z0-9_ \t]*?)[ \t]*\${3}`)
	placeholderRe = regexp.MustCompile(`\x{E000}([A-Z0-9_]+)\x{E001}`)

	fenceRe = regexp.MustCompile("(?:```|~~~)[A-Za-z0-9_+#.-]*[ \t]*\r?\n?")

	escapedCitationRe = regexp.MustCompile(`\\\[(\d{1,3})\\\]`)
	mathEnvRe         = regexp.MustCompile(`\\(?:begin|end)\{[^}\n]*\}(?:\{[^}\n]*\})*`)
	mathParenRe       = regexp.MustCompile(`\\[()\[\]]`)
	displayMathRe     = regexp.MustCompile(`\$\$([^$]+?)\$\$`)
	inlineMathRe      = regexp.MustCompile(`\$([^\s$](?:[^$\n]*?[^\s$])?)\$`)

	boldRe       = regexp.MustCompile(`\*\*`)
	underlineRe  = regexp.MustCompile(`__(\S(?:[^\n]*?\S)?)__`)
	italicRe     = regexp.MustCompile(`(^|[^\w*])\*([^\s*](?:[^*\n]*?[^\s*])?)\*([^\w*]|$)`)
	ruleLineRe   = regexp.MustCompile(`^[ \t]*(?:-{3,}|\*{3,}|_{3,}|={3,})[ \t]*$`)
	htmlTagRe    = regexp.MustCompile(`(?i)^<(?:p|br|div|b|strong|em|i|u|li|ul|ol|h[1-6]|span|a|section|article|blockquote|html|body)(?:\s[^>]*)?/?>`)
	blockTagRe   = regexp.MustCompile(`(?i)<(?:p|br|div|li|h[1-6])(?:\s[^>]*)?/?>`)
	mdEscapeRe   = regexp.MustCompile("\\\\([!-/:-@\\[-`{-~])")
	crlfReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// normalize strips formatting artifacts a model wraps around otherwise valid
// content. Tag sigils come out canonical ($$$IMAGE_KEYWORD$$$) and are never
// damaged by the math rules.
func (p *Parser) normalize(raw string) string {
	text := crlfReplacer.Replace(raw)
	if p.cfg.decodeHTML {
		text = htmlToText(text)
	}

	text = protectTags(text)
	text = fenceRe.ReplaceAllString(text, "")
	text = stripMath(text)
	text = stripEmphasis(text, p.delimiterRe)
	return restoreTags(text)
}

// isDelimiterLine reports whether line holds nothing but the delimiter, so
// "*** POST DIVIDER ***" keeps the stars that mark it.
func isDelimiterLine(line string, delimiter *regexp.Regexp) bool {
	if delimiter == nil {
		return false
	}
	line = strings.TrimSpace(line)
	loc := delimiter.FindStringIndex(line)
	return loc != nil && loc[0] == 0 && loc[1] == len(line)
}

// htmlToText converts HTML-shaped output to Markdown and removes the escaping
// the converter adds, since the result is read as plain text.
func htmlToText(text string) string {
	if !looksLikeHTML(text) {
		return text
	}
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil || strings.TrimSpace(md) == "" {
		return text
	}
	return mdEscapeRe.ReplaceAllString(md, "$1")
}

// looksLikeHTML reports whether the whole blob is markup rather than
// Markdown with an occasional stray tag. Converting the latter would
// collapse its line breaks.
func looksLikeHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	if htmlTagRe.MatchString(trimmed) {
		return true
	}
	return len(blockTagRe.FindAllStringIndex(trimmed, 3)) >= 3
}

func protectTags(text string) string {
	return sigilRe.ReplaceAllStringFunc(text, func(m string) string {
		name := canonicalTag(sigilRe.FindStringSubmatch(m)[1])
		return tagOpen + name + tagClose
	})
}

func restoreTags(text string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		return tagSigil(placeholderRe.FindStringSubmatch(m)[1])
	})
}

// tagSigil renders a canonical tag name in sigil form.
func tagSigil(name string) string {
	return "$$$" + name + "$$$"
}

// canonicalTag upper-cases a tag name and joins its words with underscores.
func canonicalTag(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), "_"))
}

func stripMath(text string) string {
	text = escapedCitationRe.ReplaceAllString(text, "[$1]")
	text = mathEnvRe.ReplaceAllString(text, "")
	text = mathParenRe.ReplaceAllString(text, "")
	text = displayMathRe.ReplaceAllString(text, "$1")
	return unwrapInlineMath(text)
}

// unwrapInlineMath removes $…$ pairs that cannot be currency amounts: the
// opener is followed by a non-space, the closer is preceded by a non-space
// and not followed by a digit.
func unwrapInlineMath(text string) string {
	locs := inlineMathRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range locs {
		if loc[1] < len(text) && isDigit(text[loc[1]]) {
			continue
		}
		b.WriteString(text[last:loc[0]])
		b.WriteString(text[loc[2]:loc[3]])
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// stripEmphasis removes bold and underline markers and unwraps *italic*
// words. Decorative rule lines and list bullets are left alone.
func stripEmphasis(text string, delimiter *regexp.Regexp) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if ruleLineRe.MatchString(line) || isDelimiterLine(line, delimiter) {
			continue
		}
		line = boldRe.ReplaceAllString(line, "")
		line = underlineRe.ReplaceAllString(line, "$1")
		// Adjacent italics share a boundary rune, so a second pass picks up
		// the ones the first pass skipped.
		for range 2 {
			line = italicRe.ReplaceAllString(line, "$1$2$3")
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
