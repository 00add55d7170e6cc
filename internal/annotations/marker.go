package annotations

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

const (
	// Prefix is the namespace every mediator annotation starts with
	Prefix = "mediator::"

	// LifetimeMarker is the name of the lifetime annotation
	LifetimeMarker = "lifetime"
)

// Marker is a parsed annotation comment such as
//
//	//mediator::lifetime Singleton
//	//mediator::lifetime(2)
//
// Text after the arguments, a trailing comment for instance, is kept in Rest
// and otherwise ignored.
type Marker struct {
	Namespace string      `parser:"Comment? @Ident Separator"`
	Name      string      `parser:"@Ident"`
	Args      []*Argument `parser:"( '(' ( @@ ( ',' @@ )* )? ')' | @@ )?"`
	Rest      []string    `parser:"@(Comment | Separator | String | Float | Int | Ident | Punct | Other)*"`
}

// Argument is one positional marker argument. Exactly one field is set.
type Argument struct {
	Float *float64 `parser:"  @Float"`
	Int   *int64   `parser:"| @Int"`
	Str   *string  `parser:"| @String"`
	Ident *string  `parser:"| @(Ident ( '.' Ident )*)"`
}

// String returns the argument as it would be written in source
func (a *Argument) String() string {
	switch {
	case a == nil:
		return ""
	case a.Float != nil:
		return fmt.Sprintf("%g", *a.Float)
	case a.Int != nil:
		return fmt.Sprintf("%d", *a.Int)
	case a.Str != nil:
		return fmt.Sprintf("%q", *a.Str)
	case a.Ident != nil:
		return *a.Ident
	default:
		return ""
	}
}

var markerLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Separator", Pattern: `::`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Float", Pattern: `[-+]?\d+\.\d+`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[.(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

// markerParser is built once and only read afterwards
var markerParser = participle.MustBuild[Marker](
	participle.Lexer(markerLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// ParseMarker parses a single annotation comment. The leading "//" is
// optional.
func ParseMarker(comment string) (marker *Marker, err error) {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		return nil, fmt.Errorf("not a mediator annotation: %q", comment)
	}

	defer func() {
		if r := recover(); r != nil {
			marker, err = nil, fmt.Errorf("failed to parse annotation %q: %v", comment, r)
		}
	}()

	marker, err = markerParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse annotation %q: %w", comment, err)
	}

	if marker.Namespace+"::" != Prefix {
		return nil, fmt.Errorf("unexpected annotation namespace %q", marker.Namespace)
	}

	return marker, nil
}

// IsAnnotation reports whether a comment line is a mediator annotation
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(stripComment(comment), Prefix)
}

// IsLifetimeMarker reports whether a comment line is a lifetime annotation.
// The check is lexical only; the arguments are validated when resolved.
func IsLifetimeMarker(comment string) bool {
	text := stripComment(comment)
	if !strings.HasPrefix(text, Prefix+LifetimeMarker) {
		return false
	}
	rest := strings.TrimPrefix(text, Prefix+LifetimeMarker)
	return rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '('
}

func stripComment(comment string) string {
	text := strings.TrimSpace(comment)
	text = strings.TrimPrefix(text, "//")
	return strings.TrimSpace(text)
}
