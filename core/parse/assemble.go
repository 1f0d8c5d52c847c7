package parse

// assemble builds a Post from one chunk. Fields that were not recovered take
// their default; the body falls back to the whole chunk.
func (p *Parser) assemble(chunk string) (Post, [roleCount]Source) {
	var (
		post    Post
		sources [roleCount]Source
	)
	for _, role := range shortRoles {
		v, src := p.extract(chunk, role)
		if src == SourceDefault {
			v = p.cfg.defaults[role]
		}
		*post.field(role) = v
		sources[role] = src
	}

	post.Body, sources[RoleBody] = p.isolateBody(chunk)
	if sources[RoleBody] == SourceDefault {
		post.Body = chunk
	}
	return post, sources
}
