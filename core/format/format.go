package format

import (
	"fmt"
	"strings"

	"github.com/leofalp/trendweaver/core/parse"
)

var roles = [...]parse.Role{parse.RoleTitle, parse.RoleAngle, parse.RoleVisualKeyword, parse.RoleBody}

// Layout holds the sigils and divider of one parser configuration, so that
// rendered text matches what that parser accepts.
type Layout struct {
	tags      [len(roles)]string
	delimiter string
}

// New returns the layout read by p.
func New(p *parse.Parser) *Layout {
	l := &Layout{delimiter: p.Delimiter()}
	for i, role := range roles {
		l.tags[i] = p.Tag(role)
	}
	return l
}

// Default returns the layout of a parser built with no options.
func Default() *Layout {
	return New(parse.New())
}

// Tag returns the sigil written for role.
func (l *Layout) Tag(role parse.Role) string {
	for i, r := range roles {
		if r == role {
			return l.tags[i]
		}
	}
	return ""
}

// Render writes posts in the tagged format, separated by the divider. Text
// produced by Render parses back to the same posts.
func (l *Layout) Render(posts []parse.Post) string {
	var b strings.Builder
	for i, post := range posts {
		if i > 0 {
			b.WriteString("\n" + l.delimiter + "\n")
		}
		fmt.Fprintf(&b, "%s %s\n", l.tags[0], post.Title)
		fmt.Fprintf(&b, "%s %s\n", l.tags[1], post.Angle)
		fmt.Fprintf(&b, "%s %s\n", l.tags[2], post.VisualKeyword)
		fmt.Fprintf(&b, "%s\n%s", l.tags[3], post.Body)
	}
	return b.String()
}
