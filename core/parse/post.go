package parse

import "fmt"

// Post is one recovered article. All four fields are always non-empty.
type Post struct {
	Title         string `json:"title"`
	Angle         string `json:"angle"`
	VisualKeyword string `json:"visualKeyword"`
	Body          string `json:"body"`
}

// field returns a pointer to the field that holds role.
func (p *Post) field(role Role) *string {
	switch role {
	case RoleTitle:
		return &p.Title
	case RoleAngle:
		return &p.Angle
	case RoleVisualKeyword:
		return &p.VisualKeyword
	default:
		return &p.Body
	}
}

// Role is the semantic slot a tag fills.
type Role int

const (
	RoleTitle Role = iota
	RoleAngle
	RoleVisualKeyword
	RoleBody

	roleCount = 4
)

var shortRoles = [...]Role{RoleTitle, RoleAngle, RoleVisualKeyword}

// String returns the role name used in logs and configuration.
func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "title"
	case RoleAngle:
		return "angle"
	case RoleVisualKeyword:
		return "visual_keyword"
	case RoleBody:
		return "body"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r Role) valid() bool {
	return r >= RoleTitle && r < roleCount
}

// Source tells how a field value was obtained.
type Source int

const (
	// SourceDefault means nothing was found and the configured default was used.
	SourceDefault Source = iota
	// SourceTag means the value followed a $$$NAME$$$ sigil.
	SourceTag
	// SourceAlias means the value followed a natural-language label such as "标题：".
	SourceAlias
	// SourceJSON means the value came from a JSON object key.
	SourceJSON
)

// String returns the lower-case source name.
func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceTag:
		return "tag"
	case SourceAlias:
		return "alias"
	case SourceJSON:
		return "json"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}
