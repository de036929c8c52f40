package views

import (
	"fmt"
	"strconv"
	"strings"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/five82/fontshelf/internal/font"
)

// env is the record shape visible to filter expressions.
type env struct {
	ID       string `expr:"id"`
	Name     string `expr:"name"`
	Family   string `expr:"family"`
	Style    string `expr:"style"`
	Favorite bool   `expr:"favorite"`
	Order    int    `expr:"order"` // -1 when unranked
	Weight   int    `expr:"weight"`
	Italic   bool   `expr:"italic"`
}

func newEnv(r font.Record) env {
	order := -1
	if rank, ok := r.Rank(); ok {
		order = rank
	}
	return env{
		ID:       r.ID,
		Name:     r.DisplayName,
		Family:   r.Family,
		Style:    r.Style,
		Favorite: r.Favorite,
		Order:    order,
		Weight:   font.ParseWeight(r.Style),
		Italic:   font.IsItalic(r.Style),
	}
}

// Filter is a compiled boolean expression over a record, for example
//
//	family == "Inter" && weight >= 600
//	favorite && !italic
type Filter struct {
	source  string
	program *exprvm.Program
}

// Compile parses expression. An empty expression returns a nil filter, which
// matches everything.
func Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}
	program, err := exprlang.Compile(expression, exprlang.Env(env{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return &Filter{source: expression, program: program}, nil
}

// Search builds a case-insensitive substring filter over name, family and id.
func Search(text string) *Filter {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	q := strconv.Quote(strings.ToLower(text))
	source := fmt.Sprintf("lower(name) contains %[1]s || lower(family) contains %[1]s || lower(id) contains %[1]s", q)
	f, err := Compile(source)
	if err != nil {
		return nil
	}
	return f
}

// Query compiles text as an expression and falls back to Search when it is
// not one, so both `weight > 500` and `inter` work in the search box.
func Query(text string) *Filter {
	if f, err := Compile(text); err == nil {
		return f
	}
	return Search(text)
}

// String returns the expression source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match reports whether r satisfies the filter. Evaluation errors count as no
// match.
func (f *Filter) Match(r font.Record) bool {
	if f == nil {
		return true
	}
	out, err := exprlang.Run(f.program, newEnv(r))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Apply returns copies of the matching records in order.
func (f *Filter) Apply(records []font.Record) []font.Record {
	out := make([]font.Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}
