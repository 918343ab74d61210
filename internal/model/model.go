package model

// TokenKind classifies a lexical token.
type TokenKind int

const (
	TokenIdentifier TokenKind = iota
	TokenKeyword
	TokenLiteral
	TokenOperator
	TokenComment
	TokenWhitespace
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenLiteral:
		return "literal"
	case TokenOperator:
		return "operator"
	case TokenComment:
		return "comment"
	case TokenWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Token is a single lexical token with its source position (1-based).
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// IdentifierRole classifies where an identifier was declared.
type IdentifierRole int

const (
	RoleVariable IdentifierRole = iota
	RoleFunction
	RoleParameter
	RoleClass
)

func (r IdentifierRole) String() string {
	switch r {
	case RoleVariable:
		return "variable"
	case RoleFunction:
		return "function"
	case RoleParameter:
		return "parameter"
	case RoleClass:
		return "class"
	default:
		return "unknown"
	}
}

// Identifier is a declared name.
type Identifier struct {
	Name           string
	DeclaredAtLine int
	Role           IdentifierRole
}

// Comment is a comment span. AttachedTo names the identifier of the
// block the comment documents, when one directly follows it.
type Comment struct {
	Text       string
	StartLine  int
	EndLine    int
	AttachedTo string
}

// BlockKind classifies a structural block.
type BlockKind int

const (
	BlockFunction BlockKind = iota
	BlockClass
	BlockLoop
	BlockConditional
	BlockModule
)

func (k BlockKind) String() string {
	switch k {
	case BlockFunction:
		return "function"
	case BlockClass:
		return "class"
	case BlockLoop:
		return "loop"
	case BlockConditional:
		return "conditional"
	case BlockModule:
		return "module"
	default:
		return "unknown"
	}
}

// Block is a structural region with an inclusive line range.
type Block struct {
	Kind         BlockKind
	StartLine    int
	EndLine      int
	NestingDepth int
}

// Fidelity reports how trustworthy the structural facts are.
type Fidelity int

const (
	// Exact models come from a full grammar parse.
	Exact Fidelity = iota
	// Approximate models come from tokenizer plus bracket/indentation
	// balancing and may misplace block boundaries.
	Approximate
)

func (f Fidelity) String() string {
	if f == Exact {
		return "exact"
	}
	return "approximate"
}

// StructuralModel is the language-normalized view of one source unit.
// It is built once per analysis request and must not be mutated after
// the adapter returns it.
type StructuralModel struct {
	Language    string
	Fidelity    Fidelity
	Tokens      []Token
	Identifiers []Identifier
	Comments    []Comment
	Blocks      []Block

	// Lines holds the raw source split by newline so analyzers can
	// measure line-level style without re-reading the input.
	Lines []string
}

// LineCount returns the number of source lines.
func (m *StructuralModel) LineCount() int {
	return len(m.Lines)
}

// CodeLineCount returns the number of non-blank, non-comment lines.
func (m *StructuralModel) CodeLineCount() int {
	commented := make(map[int]bool)
	for _, c := range m.Comments {
		for l := c.StartLine; l <= c.EndLine; l++ {
			commented[l] = true
		}
	}
	n := 0
	for i, line := range m.Lines {
		if len(trimSpace(line)) == 0 {
			continue
		}
		if commented[i+1] {
			continue
		}
		n++
	}
	return n
}

// CommentLineCount returns the number of lines covered by comments.
func (m *StructuralModel) CommentLineCount() int {
	n := 0
	for _, c := range m.Comments {
		n += c.EndLine - c.StartLine + 1
	}
	return n
}

func trimSpace(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}
