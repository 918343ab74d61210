package adapter

import (
	"strings"
	"unicode"

	"github.com/shadowai/shadowdetect/internal/model"
)

// genericKeywords covers the block and declaration keywords shared by
// the brace-and-indent language family the generic tokenizer serves.
var genericKeywords = map[string]bool{
	"if": true, "else": true, "elif": true, "for": true, "while": true,
	"do": true, "switch": true, "case": true, "match": true,
	"func": true, "function": true, "def": true, "fn": true, "sub": true,
	"class": true, "struct": true, "interface": true, "trait": true,
	"enum": true, "type": true, "return": true, "break": true,
	"continue": true, "import": true, "package": true, "from": true,
	"var": true, "let": true, "const": true, "static": true,
	"public": true, "private": true, "protected": true, "void": true,
	"int": true, "float": true, "string": true, "bool": true,
	"true": true, "false": true, "nil": true, "null": true, "none": true,
	"try": true, "except": true, "catch": true, "finally": true,
	"raise": true, "throw": true, "new": true, "in": true, "range": true,
	"and": true, "or": true, "not": true, "lambda": true, "with": true,
	"defer": true, "go": true, "chan": true, "select": true,
}

var funcKeywords = map[string]bool{
	"func": true, "function": true, "def": true, "fn": true, "sub": true,
}

var classKeywords = map[string]bool{
	"class": true, "struct": true, "interface": true, "trait": true, "enum": true,
}

var loopKeywords = map[string]bool{
	"for": true, "while": true, "do": true,
}

var condKeywords = map[string]bool{
	"if": true, "else": true, "elif": true, "switch": true, "case": true,
	"match": true, "try": true, "except": true, "catch": true,
}

// buildGeneric tokenizes text with bracket/indentation balancing and
// returns an Approximate model. It never fails: the worst input yields
// an empty model, not an error.
func buildGeneric(text, lang string) *model.StructuralModel {
	m := &model.StructuralModel{
		Language: lang,
		Fidelity: model.Approximate,
		Lines:    splitLines(text),
	}
	if strings.TrimSpace(text) == "" {
		return m
	}

	g := &genericBuilder{m: m, lang: lang}
	g.tokenize()
	g.inferBlocks()
	attachComments(m)
	return m
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	// A trailing newline is a line terminator, not an extra empty line.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type genericBuilder struct {
	m    *model.StructuralModel
	lang string

	inBlockComment bool
	pendingComment *model.Comment
}

func (g *genericBuilder) lineCommentPrefix() string {
	switch g.lang {
	case "python", "ruby", "bash", "perl", "r":
		return "#"
	case "sql", "lua":
		return "--"
	default:
		return "//"
	}
}

func (g *genericBuilder) tokenize() {
	prefix := g.lineCommentPrefix()
	for i, raw := range g.m.Lines {
		line := i + 1
		g.scanLine(raw, line, prefix)
	}
	g.flushComment()
}

// scanLine emits the tokens of one line and records comment spans and
// identifier declarations as it goes.
func (g *genericBuilder) scanLine(raw string, line int, commentPrefix string) {
	runes := []rune(raw)
	col := 0

	// Continuation of a /* ... */ block comment.
	if g.inBlockComment {
		end := strings.Index(raw, "*/")
		if end == -1 {
			g.extendComment(raw, line)
			return
		}
		g.extendComment(raw[:end], line)
		g.flushComment()
		g.inBlockComment = false
		col = len([]rune(raw[:end+2]))
	}

	var prevWord string
	var lastFuncName string
	inParams := false

	for col < len(runes) {
		r := runes[col]

		switch {
		case unicode.IsSpace(r):
			col++

		case r == '#' && commentPrefix == "#",
			r == '-' && commentPrefix == "--" && col+1 < len(runes) && runes[col+1] == '-',
			r == '/' && col+1 < len(runes) && runes[col+1] == '/' && commentPrefix == "//":
			text := string(runes[col:])
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenComment, Text: text, Line: line, Column: col + 1})
			g.extendComment(strings.TrimLeft(text, "/#- "), line)
			if !g.wholeLineComment(raw, col) {
				// Trailing comments end their span on this line.
				g.flushComment()
			}
			return

		case r == '/' && col+1 < len(runes) && runes[col+1] == '*':
			end := strings.Index(string(runes[col+2:]), "*/")
			if end == -1 {
				text := string(runes[col:])
				g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenComment, Text: text, Line: line, Column: col + 1})
				g.extendComment(text, line)
				g.inBlockComment = true
				return
			}
			text := string(runes[col : col+2+end+2])
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenComment, Text: text, Line: line, Column: col + 1})
			g.extendComment(strings.Trim(text, "/* "), line)
			g.flushComment()
			col += 2 + end + 2

		case r == '"' || r == '\'' || r == '`':
			start := col
			col++
			for col < len(runes) && runes[col] != r {
				if runes[col] == '\\' {
					col++
				}
				col++
			}
			if col < len(runes) {
				col++
			}
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenLiteral, Text: string(runes[start:col]), Line: line, Column: start + 1})

		case unicode.IsDigit(r):
			start := col
			for col < len(runes) && (unicode.IsDigit(runes[col]) || runes[col] == '.' || runes[col] == '_' || runes[col] == 'x' || runes[col] == 'e') {
				col++
			}
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenLiteral, Text: string(runes[start:col]), Line: line, Column: start + 1})

		case unicode.IsLetter(r) || r == '_':
			start := col
			for col < len(runes) && (unicode.IsLetter(runes[col]) || unicode.IsDigit(runes[col]) || runes[col] == '_') {
				col++
			}
			word := string(runes[start:col])
			lower := strings.ToLower(word)
			if genericKeywords[lower] {
				g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenKeyword, Text: word, Line: line, Column: start + 1})
				prevWord = lower
				continue
			}

			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenIdentifier, Text: word, Line: line, Column: start + 1})

			next := nextNonSpace(runes, col)
			switch {
			case funcKeywords[prevWord]:
				g.declare(word, line, model.RoleFunction)
				lastFuncName = word
			case classKeywords[prevWord]:
				g.declare(word, line, model.RoleClass)
			case inParams:
				g.declare(word, line, model.RoleParameter)
			case next == '=' && !isCompare(runes, col):
				g.declare(word, line, model.RoleVariable)
			case prevWord == "var" || prevWord == "let" || prevWord == "const":
				g.declare(word, line, model.RoleVariable)
			}
			prevWord = lower

		case r == '(':
			if lastFuncName != "" {
				inParams = true
			}
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenOperator, Text: "(", Line: line, Column: col + 1})
			col++

		case r == ')':
			inParams = false
			lastFuncName = ""
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenOperator, Text: ")", Line: line, Column: col + 1})
			col++

		default:
			start := col
			for col < len(runes) && !unicode.IsSpace(runes[col]) && !unicode.IsLetter(runes[col]) &&
				!unicode.IsDigit(runes[col]) && runes[col] != '_' && runes[col] != '"' &&
				runes[col] != '\'' && runes[col] != '`' && runes[col] != '(' && runes[col] != ')' {
				col++
			}
			g.m.Tokens = append(g.m.Tokens, model.Token{Kind: model.TokenOperator, Text: string(runes[start:col]), Line: line, Column: start + 1})
		}
	}
}

func (g *genericBuilder) wholeLineComment(raw string, col int) bool {
	return strings.TrimSpace(raw[:byteIndexOfRune(raw, col)]) == ""
}

func byteIndexOfRune(s string, runeIdx int) int {
	n := 0
	for i := range s {
		if n == runeIdx {
			return i
		}
		n++
	}
	return len(s)
}

func nextNonSpace(runes []rune, from int) rune {
	for i := from; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i]
		}
	}
	return 0
}

// isCompare reports whether the '=' following position col is part of
// ==, <=, >=, != rather than an assignment.
func isCompare(runes []rune, col int) bool {
	i := col
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	if i >= len(runes) || runes[i] != '=' {
		return false
	}
	return i+1 < len(runes) && runes[i+1] == '='
}

func (g *genericBuilder) declare(name string, line int, role model.IdentifierRole) {
	g.m.Identifiers = append(g.m.Identifiers, model.Identifier{
		Name:           name,
		DeclaredAtLine: line,
		Role:           role,
	})
}

// extendComment grows the pending comment span to cover line, merging
// consecutive comment-only lines into one span.
func (g *genericBuilder) extendComment(text string, line int) {
	if g.pendingComment != nil && g.pendingComment.EndLine >= line-1 {
		g.pendingComment.EndLine = line
		if text != "" {
			g.pendingComment.Text += "\n" + text
		}
		return
	}
	g.flushComment()
	g.pendingComment = &model.Comment{Text: text, StartLine: line, EndLine: line}
}

func (g *genericBuilder) flushComment() {
	if g.pendingComment != nil {
		g.m.Comments = append(g.m.Comments, *g.pendingComment)
		g.pendingComment = nil
	}
}

// inferBlocks approximates block structure: brace balancing first,
// indentation for colon-terminated openers when braces are absent, and
// one-line statement blocks as the last resort so flat scripts still
// carry structural signal.
func (g *genericBuilder) inferBlocks() {
	g.braceBlocks()
	if len(g.m.Blocks) == 0 {
		g.indentBlocks()
	}
	if len(g.m.Blocks) == 0 {
		g.statementBlocks()
	}
}

func (g *genericBuilder) braceBlocks() {
	type open struct {
		kind  model.BlockKind
		start int
		depth int
	}
	var stack []open

	kindForLine := func(line string) model.BlockKind {
		for _, w := range strings.FieldsFunc(line, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		}) {
			lw := strings.ToLower(w)
			switch {
			case funcKeywords[lw]:
				return model.BlockFunction
			case classKeywords[lw]:
				return model.BlockClass
			case loopKeywords[lw]:
				return model.BlockLoop
			case condKeywords[lw]:
				return model.BlockConditional
			}
		}
		return model.BlockModule
	}

	for i, raw := range g.m.Lines {
		line := i + 1
		code := stripLineComment(raw, g.lineCommentPrefix())
		for _, r := range code {
			switch r {
			case '{':
				stack = append(stack, open{kind: kindForLine(code), start: line, depth: len(stack)})
			case '}':
				if len(stack) == 0 {
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				g.m.Blocks = append(g.m.Blocks, model.Block{
					Kind:         top.kind,
					StartLine:    top.start,
					EndLine:      line,
					NestingDepth: top.depth,
				})
			}
		}
	}

	// Unterminated blocks in unfinished code close at EOF.
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		g.m.Blocks = append(g.m.Blocks, model.Block{
			Kind:         top.kind,
			StartLine:    top.start,
			EndLine:      len(g.m.Lines),
			NestingDepth: top.depth,
		})
	}

	sortBlocks(g.m.Blocks)
}

func (g *genericBuilder) indentBlocks() {
	type open struct {
		kind   model.BlockKind
		start  int
		indent int
		depth  int
	}
	var stack []open
	prefix := g.lineCommentPrefix()

	closeDownTo := func(indent, endLine int) {
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.m.Blocks = append(g.m.Blocks, model.Block{
				Kind:         top.kind,
				StartLine:    top.start,
				EndLine:      endLine,
				NestingDepth: top.depth,
			})
		}
	}

	lastCode := 0
	for i, raw := range g.m.Lines {
		line := i + 1
		code := stripLineComment(raw, prefix)
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		indent := indentWidth(raw)
		closeDownTo(indent, maxInt(lastCode, line-1))
		lastCode = line

		if !strings.HasSuffix(trimmed, ":") {
			continue
		}
		first := strings.ToLower(firstWord(trimmed))
		var kind model.BlockKind
		switch {
		case funcKeywords[first]:
			kind = model.BlockFunction
		case classKeywords[first]:
			kind = model.BlockClass
		case loopKeywords[first]:
			kind = model.BlockLoop
		case condKeywords[first] || first == "with" || first == "finally":
			kind = model.BlockConditional
		default:
			continue
		}
		stack = append(stack, open{kind: kind, start: line, indent: indent, depth: len(stack)})
	}
	closeDownTo(-1, maxInt(lastCode, len(g.m.Lines)))

	sortBlocks(g.m.Blocks)
}

// statementBlocks treats each non-blank, non-comment line as its own
// one-line module block. Flat statement scripts carry no other
// structure, and refusing them would starve the structural heuristics.
func (g *genericBuilder) statementBlocks() {
	prefix := g.lineCommentPrefix()
	for i, raw := range g.m.Lines {
		trimmed := strings.TrimSpace(stripLineComment(raw, prefix))
		if trimmed == "" {
			continue
		}
		g.m.Blocks = append(g.m.Blocks, model.Block{
			Kind:      model.BlockModule,
			StartLine: i + 1,
			EndLine:   i + 1,
		})
	}
}

func stripLineComment(line, prefix string) string {
	if idx := strings.Index(line, prefix); idx >= 0 {
		return line[:idx]
	}
	return line
}

func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}

func firstWord(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sortBlocks(blocks []model.Block) {
	// Insertion sort keeps this dependency-free and stable; block
	// counts are small.
	for i := 1; i < len(blocks); i++ {
		for j := i; j > 0; j-- {
			if blocks[j].StartLine < blocks[j-1].StartLine ||
				(blocks[j].StartLine == blocks[j-1].StartLine && blocks[j].EndLine > blocks[j-1].EndLine) {
				blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
			} else {
				break
			}
		}
	}
}

// attachComments links each comment that immediately precedes a
// function or class block to that block's declared identifier.
func attachComments(m *model.StructuralModel) {
	nameAt := make(map[int]string)
	for _, id := range m.Identifiers {
		if id.Role == model.RoleFunction || id.Role == model.RoleClass {
			nameAt[id.DeclaredAtLine] = id.Name
		}
	}
	for i := range m.Comments {
		if name, ok := nameAt[m.Comments[i].EndLine+1]; ok {
			m.Comments[i].AttachedTo = name
		}
	}
}
