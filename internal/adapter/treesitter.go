package adapter

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/shadowai/shadowdetect/internal/model"
)

// languageSpec maps one grammar's node kinds onto the normalized model.
type languageSpec struct {
	functionKinds  map[string]bool
	classKinds     map[string]bool
	loopKinds      map[string]bool
	condKinds      map[string]bool
	paramKinds     map[string]bool
	varDeclKinds   map[string]bool
	identifierKind map[string]bool
}

// treeSitterBuilder builds Exact models through a full grammar parse.
type treeSitterBuilder struct {
	lang     string
	language *tree_sitter.Language
	spec     languageSpec
}

func exactBuilders() []Builder {
	return []Builder{
		&treeSitterBuilder{
			lang:     "python",
			language: tree_sitter.NewLanguage(tree_sitter_python.Language()),
			spec: languageSpec{
				functionKinds:  set("function_definition"),
				classKinds:     set("class_definition"),
				loopKinds:      set("for_statement", "while_statement"),
				condKinds:      set("if_statement", "try_statement", "with_statement", "match_statement"),
				paramKinds:     set("parameters", "lambda_parameters"),
				varDeclKinds:   set("assignment"),
				identifierKind: set("identifier"),
			},
		},
		&treeSitterBuilder{
			lang:     "go",
			language: tree_sitter.NewLanguage(tree_sitter_go.Language()),
			spec: languageSpec{
				functionKinds:  set("function_declaration", "method_declaration", "func_literal"),
				classKinds:     set("type_declaration"),
				loopKinds:      set("for_statement"),
				condKinds:      set("if_statement", "expression_switch_statement", "type_switch_statement", "select_statement"),
				paramKinds:     set("parameter_list"),
				varDeclKinds:   set("short_var_declaration", "var_spec", "const_spec"),
				identifierKind: set("identifier", "field_identifier", "type_identifier", "package_identifier"),
			},
		},
		&treeSitterBuilder{
			lang:     "javascript",
			language: tree_sitter.NewLanguage(tree_sitter_javascript.Language()),
			spec: languageSpec{
				functionKinds:  set("function_declaration", "generator_function_declaration", "method_definition", "arrow_function", "function_expression"),
				classKinds:     set("class_declaration"),
				loopKinds:      set("for_statement", "for_in_statement", "while_statement", "do_statement"),
				condKinds:      set("if_statement", "switch_statement", "try_statement"),
				paramKinds:     set("formal_parameters"),
				varDeclKinds:   set("variable_declarator"),
				identifierKind: set("identifier", "property_identifier", "shorthand_property_identifier"),
			},
		},
	}
}

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func (b *treeSitterBuilder) Language() string { return b.lang }

func (b *treeSitterBuilder) Build(text string) (*model.StructuralModel, error) {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(b.language); err != nil {
		return nil, fmt.Errorf("set %s grammar: %w", b.lang, err)
	}

	src := []byte(text)
	tree := parser.Parse(src, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s source: no tree produced", b.lang)
	}
	defer tree.Close()

	m := &model.StructuralModel{
		Language: b.lang,
		Fidelity: model.Exact,
		Lines:    splitLines(text),
	}

	root := tree.RootNode()
	if root.HasError() {
		// Broken code still yields usable facts from the recovered
		// parse, but downstream heuristics should discount them.
		m.Fidelity = model.Approximate
	}

	w := &tsWalker{m: m, src: src, spec: b.spec}
	w.walk(root, 0, model.RoleVariable)
	w.mergeComments()
	attachComments(m)
	return m, nil
}

type tsWalker struct {
	m    *model.StructuralModel
	src  []byte
	spec languageSpec

	rawComments []model.Comment
}

func (w *tsWalker) text(n *tree_sitter.Node) string {
	return string(w.src[n.StartByte():n.EndByte()])
}

func (w *tsWalker) line(n *tree_sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// walk visits every node, emitting tokens at the leaves and blocks,
// identifiers and comments at the structural nodes. pending is the
// role the current context assigns to bare identifier leaves.
func (w *tsWalker) walk(n *tree_sitter.Node, depth int, pending model.IdentifierRole) {
	kind := n.Kind()
	spec := w.spec

	childDepth := depth
	childRole := model.IdentifierRole(-1)

	switch {
	case kind == "comment":
		w.rawComments = append(w.rawComments, model.Comment{
			Text:      strings.Trim(w.text(n), "/#* "),
			StartLine: w.line(n),
			EndLine:   int(n.EndPosition().Row) + 1,
		})
		w.m.Tokens = append(w.m.Tokens, model.Token{
			Kind:   model.TokenComment,
			Text:   w.text(n),
			Line:   w.line(n),
			Column: int(n.StartPosition().Column) + 1,
		})
		return

	case spec.functionKinds[kind]:
		w.addBlock(n, model.BlockFunction, depth)
		w.declareNamed(n, model.RoleFunction)
		childDepth = depth + 1

	case spec.classKinds[kind]:
		w.addBlock(n, model.BlockClass, depth)
		w.declareNamed(n, model.RoleClass)
		childDepth = depth + 1

	case spec.loopKinds[kind]:
		w.addBlock(n, model.BlockLoop, depth)
		childDepth = depth + 1

	case spec.condKinds[kind]:
		w.addBlock(n, model.BlockConditional, depth)
		childDepth = depth + 1

	case spec.paramKinds[kind]:
		childRole = model.RoleParameter

	case spec.varDeclKinds[kind]:
		w.declareAssigned(n)
	}

	if n.ChildCount() == 0 {
		w.emitLeaf(n, kind, pending)
		return
	}

	role := pending
	if childRole >= 0 {
		role = childRole
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		w.walk(child, childDepth, role)
	}
}

func (w *tsWalker) addBlock(n *tree_sitter.Node, kind model.BlockKind, depth int) {
	w.m.Blocks = append(w.m.Blocks, model.Block{
		Kind:         kind,
		StartLine:    w.line(n),
		EndLine:      int(n.EndPosition().Row) + 1,
		NestingDepth: depth,
	})
}

// declareNamed records the identifier in the node's name field.
func (w *tsWalker) declareNamed(n *tree_sitter.Node, role model.IdentifierRole) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	w.m.Identifiers = append(w.m.Identifiers, model.Identifier{
		Name:           w.text(name),
		DeclaredAtLine: w.line(name),
		Role:           role,
	})
}

// declareAssigned records the left-hand identifiers of an assignment
// or declarator node as variables.
func (w *tsWalker) declareAssigned(n *tree_sitter.Node) {
	target := n.ChildByFieldName("left")
	if target == nil {
		target = n.ChildByFieldName("name")
	}
	if target == nil {
		return
	}
	w.collectIdentifiers(target, model.RoleVariable)
}

func (w *tsWalker) collectIdentifiers(n *tree_sitter.Node, role model.IdentifierRole) {
	if w.spec.identifierKind[n.Kind()] {
		w.m.Identifiers = append(w.m.Identifiers, model.Identifier{
			Name:           w.text(n),
			DeclaredAtLine: w.line(n),
			Role:           role,
		})
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			w.collectIdentifiers(child, role)
		}
	}
}

func (w *tsWalker) emitLeaf(n *tree_sitter.Node, kind string, pending model.IdentifierRole) {
	text := w.text(n)
	if strings.TrimSpace(text) == "" {
		return
	}

	tok := model.Token{
		Text:   text,
		Line:   w.line(n),
		Column: int(n.StartPosition().Column) + 1,
	}

	switch {
	case w.spec.identifierKind[kind]:
		tok.Kind = model.TokenIdentifier
		if pending == model.RoleParameter {
			w.m.Identifiers = append(w.m.Identifiers, model.Identifier{
				Name:           text,
				DeclaredAtLine: tok.Line,
				Role:           model.RoleParameter,
			})
		}
	case kind == text && isWordKind(kind):
		// Anonymous grammar nodes whose kind equals their text are
		// the language's keywords.
		tok.Kind = model.TokenKeyword
	case strings.Contains(kind, "string") || strings.Contains(kind, "number") ||
		strings.Contains(kind, "integer") || strings.Contains(kind, "float") ||
		kind == "true" || kind == "false" || kind == "none" || kind == "nil":
		tok.Kind = model.TokenLiteral
	default:
		tok.Kind = model.TokenOperator
	}

	w.m.Tokens = append(w.m.Tokens, tok)
}

func isWordKind(kind string) bool {
	for _, r := range kind {
		if (r < 'a' || r > 'z') && r != '_' {
			return false
		}
	}
	return len(kind) > 0
}

// mergeComments folds runs of adjacent single-line comments into one
// span, matching how a human reads a comment paragraph.
func (w *tsWalker) mergeComments() {
	for _, c := range w.rawComments {
		n := len(w.m.Comments)
		if n > 0 && w.m.Comments[n-1].EndLine+1 >= c.StartLine {
			w.m.Comments[n-1].EndLine = c.EndLine
			w.m.Comments[n-1].Text += "\n" + c.Text
			continue
		}
		w.m.Comments = append(w.m.Comments, c)
	}
}
