package adapter

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shadowai/shadowdetect/internal/model"
)

var (
	// ErrUnsupported means the language hint names a language with no
	// tokenizer. Surfaced to the user as "language not supported".
	ErrUnsupported = errors.New("language not supported")

	// ErrMalformed means the input could not be tokenized at all,
	// e.g. binary content. Syntactically invalid code never triggers
	// this; it degrades to an Approximate model instead.
	ErrMalformed = errors.New("input is not analyzable text")
)

// Builder turns raw source text into a StructuralModel for one
// language. Implementations are pure functions of their input.
type Builder interface {
	// Language returns the canonical language name this builder serves.
	Language() string

	// Build constructs the model. It may downgrade to Approximate
	// fidelity but must not fail on syntactically invalid text.
	Build(text string) (*model.StructuralModel, error)
}

// Registry selects a Builder by language name. Exact builders win over
// the generic fallback when both are registered.
type Registry struct {
	exact   map[string]Builder
	aliases map[string]string
	known   map[string]bool
}

// NewRegistry returns a registry with the default language set: exact
// tree-sitter builders for Python, Go and JavaScript, and generic
// tokenizer support for the rest of the extension map.
func NewRegistry() *Registry {
	r := &Registry{
		exact:   make(map[string]Builder),
		aliases: defaultAliases(),
		known:   knownLanguages(),
	}
	for _, b := range exactBuilders() {
		r.exact[b.Language()] = b
	}
	return r
}

// RegisterExact adds or replaces an exact builder for its language.
func (r *Registry) RegisterExact(b Builder) {
	lang := canonical(b.Language())
	r.exact[lang] = b
	r.known[lang] = true
}

// Build constructs a StructuralModel from text and an optional
// language hint. With no hint, the language is inferred from lexical
// cues and the generic mode is used unless the inference is confident
// enough to pick an exact grammar.
func (r *Registry) Build(text, languageHint string) (*model.StructuralModel, error) {
	if looksBinary(text) {
		return nil, fmt.Errorf("%w: content is not valid text", ErrMalformed)
	}

	lang := canonical(languageHint)
	if alias, ok := r.aliases[lang]; ok {
		lang = alias
	}

	if lang == "" || lang == "auto" {
		lang = inferLanguage(text)
	} else if !r.known[lang] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, languageHint)
	}

	if b, ok := r.exact[lang]; ok {
		m, err := b.Build(text)
		if err == nil {
			return m, nil
		}
		// Grammar-level failures degrade to the generic path rather
		// than refusing to score real, possibly unfinished code.
	}

	return buildGeneric(text, lang), nil
}

func canonical(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func defaultAliases() map[string]string {
	return map[string]string{
		"py":         "python",
		"python3":    "python",
		"golang":     "go",
		"js":         "javascript",
		"jsx":        "javascript",
		"ts":         "typescript",
		"c++":        "cpp",
		"c#":         "csharp",
		"shell":      "bash",
		"sh":         "bash",
		"plaintext":  "generic",
		"text":       "generic",
		"plain_text": "generic",
	}
}

// knownLanguages lists every language some tokenizer can handle. Names
// outside this set with an explicit hint are ErrUnsupported.
func knownLanguages() map[string]bool {
	langs := []string{
		"python", "go", "javascript", "typescript", "java", "c", "cpp",
		"csharp", "rust", "ruby", "php", "swift", "kotlin", "scala",
		"bash", "perl", "lua", "dart", "r", "sql", "generic",
	}
	m := make(map[string]bool, len(langs))
	for _, l := range langs {
		m[l] = true
	}
	return m
}

// looksBinary reports whether text cannot be treated as source code at
// all: NUL bytes or a dominant share of invalid UTF-8.
func looksBinary(text string) bool {
	if strings.ContainsRune(text, 0) {
		return true
	}
	if text == "" {
		return false
	}
	invalid := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			invalid++
		}
		i += size
	}
	return float64(invalid)/float64(len(text)) > 0.1
}

// inferLanguage guesses a language from lightweight lexical cues. The
// guess only needs to be good enough to pick a tokenizer; unknown
// input falls back to the generic mode.
func inferLanguage(text string) string {
	type cue struct {
		lang   string
		marker string
		weight int
	}
	cues := []cue{
		{"go", "package ", 2},
		{"go", "func ", 2},
		{"go", ":=", 2},
		{"python", "def ", 2},
		{"python", "import ", 1},
		{"python", "self.", 2},
		{"python", "elif ", 3},
		{"javascript", "function ", 2},
		{"javascript", "const ", 1},
		{"javascript", "=>", 2},
		{"javascript", "console.log", 3},
	}

	scores := make(map[string]int)
	for _, c := range cues {
		if strings.Contains(text, c.marker) {
			scores[c.lang] += c.weight
		}
	}

	best, bestScore := "generic", 0
	for _, lang := range []string{"go", "python", "javascript"} {
		if scores[lang] > bestScore {
			best, bestScore = lang, scores[lang]
		}
	}
	if bestScore < 3 {
		return "generic"
	}
	return best
}
