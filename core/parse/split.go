package parse

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ruleLine is a decorative rule a model may put around, or instead of the
// dashes of, the delimiter token.
const ruleLine = `[ \t]*(?:-{3,}|\*{3,})[ \t]*`

// ruleBefore and ruleAfter are the dash runs that mark a delimiter word: two
// or more touching it, or three or more across spaces. A single dash or a
// spaced "--" is ordinary punctuation.
const (
	ruleBefore = `(?:[-*=]{3,}[ \t]*|[-*=]{2,})`
	ruleAfter  = `(?:[ \t]*[-*=]{3,}|[-*=]{2,})`
)

// delimiterPattern compiles a tolerant matcher for token. For the default
// "---POST_DIVIDER---" it accepts any letter case and a rule line directly
// above or below. The word must either keep its underscore or sit next to a
// run of -, * or =, and then a dash, space or nothing may join its parts.
// Bare prose such as "the post divider" is not a delimiter.
func delimiterPattern(token string) *regexp.Regexp {
	core := strings.Trim(token, "-*=_ \t")
	var word string
	if core == "" {
		word = regexp.QuoteMeta(token)
	} else {
		parts := strings.FieldsFunc(core, func(r rune) bool {
			return r == '_' || r == '-' || r == ' '
		})
		for i := range parts {
			parts[i] = regexp.QuoteMeta(parts[i])
		}
		loose := strings.Join(parts, `[_ \-]?`)
		strict := regexp.QuoteMeta(token)
		if len(parts) > 1 {
			strict = strings.Join(parts, `_`)
		}
		word = `(?:` + ruleBefore + loose + `(?:[ \t]*[-*=]+)?` +
			`|` + loose + ruleAfter +
			`|[-*=]*` + strict + `[-*=]*)`
	}
	return regexp.MustCompile(`(?im)(?:^` + ruleLine + `\n)?` + word + `(?:\n` + ruleLine + `$)?`)
}

// split divides normalized text into record chunks. The delimiter wins; the
// title-tag re-split only runs when the delimiter leaves at most one chunk.
// It also reports how many non-empty pieces were dropped as too short.
func (p *Parser) split(text string) ([]string, Strategy, int) {
	primary, dropped := p.keep(p.delimiterRe.Split(text, -1))
	if p.cfg.splitMerged {
		primary = p.splitMerged(primary)
	}
	if len(primary) > 1 {
		return primary, StrategyDelimiter, dropped
	}

	fallback, fdropped := p.resplitOnTitle(text)
	if len(fallback) > len(primary) {
		return fallback, StrategyTitleResplit, fdropped
	}
	if len(primary) == 0 {
		return nil, StrategyNone, dropped
	}
	return primary, StrategyDelimiter, dropped
}

// keep trims pieces and drops the ones too short to be a record.
func (p *Parser) keep(pieces []string) ([]string, int) {
	chunks := make([]string, 0, len(pieces))
	dropped := 0
	for _, piece := range pieces {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= p.cfg.minChunkLength {
			dropped++
			continue
		}
		chunks = append(chunks, piece)
	}
	return chunks, dropped
}

// resplitOnTitle cuts text at every title tag and puts the canonical title
// marker back in front of each piece. Text before the first title tag is
// preamble, not a record.
func (p *Parser) resplitOnTitle(text string) ([]string, int) {
	var starts []tagLoc
	for _, t := range p.scanTags(text) {
		if t.known && t.role == RoleTitle {
			starts = append(starts, t)
		}
	}
	if len(starts) == 0 {
		return nil, 0
	}

	marker := tagSigil(p.cfg.tagNames[RoleTitle][0])
	pieces := make([]string, 0, len(starts))
	for i, t := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1].start
		}
		body := p.delimiterRe.ReplaceAllString(text[t.end:end], "")
		pieces = append(pieces, marker+" "+strings.TrimSpace(body))
	}
	return p.keep(pieces)
}

// splitMerged breaks chunks holding several title tags into one chunk per
// title.
func (p *Parser) splitMerged(chunks []string) []string {
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		titles := 0
		for _, t := range p.scanTags(chunk) {
			if t.known && t.role == RoleTitle {
				titles++
			}
		}
		if titles < 2 {
			out = append(out, chunk)
			continue
		}
		parts, _ := p.resplitOnTitle(chunk)
		if len(parts) == 0 {
			out = append(out, chunk)
			continue
		}
		out = append(out, parts...)
	}
	return out
}
