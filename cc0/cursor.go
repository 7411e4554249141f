package cc0

// Cursor walks a materialized token sequence and can step back any number of
// tokens.
type Cursor struct {
	tokens []Token
	offset int
	pos    Position
}

// NewCursor returns a cursor positioned before the first token.
func NewCursor(tokens []Token) *Cursor {
	return &Cursor{tokens: tokens}
}

// Advance returns the next token, or false once the sequence is exhausted.
func (c *Cursor) Advance() (Token, bool) {
	if c.offset == len(c.tokens) {
		return Token{}, false
	}
	tok := c.tokens[c.offset]
	c.pos = tok.End
	c.offset++
	return tok, true
}

// Rewind undoes the last Advance. Rewinding past the first token is a bug in
// the caller and panics.
func (c *Cursor) Rewind() {
	if c.offset == 0 {
		panic("cc0: cursor rewound past the first token")
	}
	c.pos = c.tokens[c.offset-1].End
	c.offset--
}

// Pos is the position errors are reported at: the end of the token most
// recently advanced over or rewound.
func (c *Cursor) Pos() Position {
	return c.pos
}

// Len returns the number of tokens not yet consumed.
func (c *Cursor) Len() int {
	return len(c.tokens) - c.offset
}
