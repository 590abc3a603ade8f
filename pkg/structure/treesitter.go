package structure

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kcaldas/condenser/pkg/lang"
)

// grammar describes how to read one language's syntax tree.
type grammar struct {
	language   func() *sitter.Language
	functions  map[string]bool
	containers map[string]Kind
	types      map[string]bool
	// wrappers hold the real declaration under the named field.
	wrappers map[string]string
	packages map[string]bool
	comments map[string]bool
	// colonHeader marks languages whose signature ends at a ':' token.
	colonHeader bool
	exported    func(n *sitter.Node, name string, src []byte, parent *Unit) bool
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var goGrammar = &grammar{
	language:  golang.GetLanguage,
	functions: set("function_declaration", "method_declaration"),
	types:     set("type_declaration"),
	packages:  set("package_clause"),
	comments:  set("comment"),
	exported: func(_ *sitter.Node, name string, _ []byte, _ *Unit) bool {
		r, _ := utf8.DecodeRuneInString(name)
		return unicode.IsUpper(r)
	},
}

var pythonGrammar = &grammar{
	language:    python.GetLanguage,
	functions:   set("function_definition"),
	containers:  map[string]Kind{"class_definition": KindClass},
	wrappers:    map[string]string{"decorated_definition": "definition"},
	comments:    set("comment"),
	colonHeader: true,
	exported: func(_ *sitter.Node, name string, _ []byte, parent *Unit) bool {
		if parent != nil && !parent.Exported {
			return false
		}
		if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
			return true
		}
		return !strings.HasPrefix(name, "_")
	},
}

func scriptGrammar(language func() *sitter.Language) *grammar {
	return &grammar{
		language:   language,
		functions:  set("function_declaration", "generator_function_declaration", "method_definition"),
		containers: map[string]Kind{"class_declaration": KindClass, "abstract_class_declaration": KindClass},
		types:      set("interface_declaration", "type_alias_declaration", "enum_declaration"),
		wrappers:   map[string]string{"export_statement": "declaration"},
		comments:   set("comment"),
		exported: func(n *sitter.Node, name string, src []byte, parent *Unit) bool {
			if parent == nil {
				return n.Parent() != nil && n.Parent().Type() == "export_statement"
			}
			if !parent.Exported || strings.HasPrefix(name, "#") || strings.HasPrefix(name, "_") {
				return false
			}
			return !strings.HasPrefix(strings.TrimSpace(n.Content(src)), "private")
		},
	}
}

var rustGrammar = &grammar{
	language:   rust.GetLanguage,
	functions:  set("function_item"),
	containers: map[string]Kind{"impl_item": KindImpl, "trait_item": KindType, "mod_item": KindModule},
	types:      set("struct_item", "enum_item", "union_item"),
	comments:   set("line_comment", "block_comment"),
	exported: func(n *sitter.Node, _ string, _ []byte, parent *Unit) bool {
		if n.Type() == "impl_item" {
			return true
		}
		if parent != nil && (parent.Kind == KindType || parent.Name != "" && strings.Contains(parent.Name, " for ")) {
			return parent.Exported
		}
		return hasChildType(n, "visibility_modifier")
	},
}

var javaGrammar = &grammar{
	language:  java.GetLanguage,
	functions: set("method_declaration", "constructor_declaration"),
	containers: map[string]Kind{
		"class_declaration":     KindClass,
		"interface_declaration": KindType,
		"enum_declaration":      KindClass,
		"record_declaration":    KindClass,
	},
	packages: set("package_declaration"),
	comments: set("line_comment", "block_comment"),
	exported: func(n *sitter.Node, _ string, src []byte, parent *Unit) bool {
		if parent != nil && parent.Kind == KindType {
			return parent.Exported
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			c := n.NamedChild(i)
			if c.Type() == "modifiers" {
				return strings.Contains(c.Content(src), "public")
			}
		}
		return false
	},
}

var (
	typescriptGrammar = scriptGrammar(typescript.GetLanguage)
	tsxGrammar        = scriptGrammar(tsx.GetLanguage)
	javascriptGrammar = scriptGrammar(javascript.GetLanguage)
)

func grammarFor(p string, l lang.Language) *grammar {
	switch l.Name {
	case "go":
		return goGrammar
	case "python":
		return pythonGrammar
	case "javascript":
		return javascriptGrammar
	case "typescript":
		if strings.EqualFold(path.Ext(p), ".tsx") {
			return tsxGrammar
		}
		return typescriptGrammar
	case "rust":
		return rustGrammar
	case "java":
		return javaGrammar
	}
	return nil
}

func hasGrammar(p string, l lang.Language) bool { return grammarFor(p, l) != nil }

func hasChildType(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == typ {
			return true
		}
	}
	return false
}

const maxContainerDepth = 3

func parseTreeSitter(ctx context.Context, o *Outline, text string) error {
	g := grammarFor(o.Path, o.Language)
	src := []byte(text)

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("parse %s: %w", o.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{g: g, src: src, lines: o.Lines}
	o.Parser = ParserTreeSitter
	o.Units = w.units(ctx, root, nil, 0)
	o.CommentOnly = w.commentLines(root)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if c := root.NamedChild(i); g.packages[c.Type()] {
			o.Package = int(c.StartPoint().Row)
			break
		}
	}
	return ctx.Err()
}

type walker struct {
	g     *grammar
	src   []byte
	lines []string
}

func (w *walker) units(ctx context.Context, parent *sitter.Node, container *Unit, depth int) []Unit {
	var out []Unit
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		if ctx.Err() != nil {
			return out
		}
		n := parent.NamedChild(i)
		start := n
		if field, ok := w.g.wrappers[n.Type()]; ok {
			inner := n.ChildByFieldName(field)
			if inner == nil {
				inner = firstDeclaration(n)
			}
			if inner == nil {
				continue
			}
			n = inner
		}
		u, ok := w.unit(ctx, start, n, container, depth)
		if ok {
			out = append(out, u)
		}
	}
	return out
}

func firstDeclaration(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		switch c := n.NamedChild(i); c.Type() {
		case "function_declaration", "class_declaration", "lexical_declaration", "function_definition", "class_definition":
			return c
		}
	}
	return nil
}

func (w *walker) unit(ctx context.Context, start, n *sitter.Node, container *Unit, depth int) (Unit, bool) {
	typ := n.Type()
	switch {
	case w.g.functions[typ]:
		kind := KindFunction
		if container != nil || typ == "method_declaration" || typ == "method_definition" {
			kind = KindMethod
		}
		u := w.base(start, n, kind, w.name(n), container)
		w.body(&u, n, n.ChildByFieldName("body"))
		return u, true

	case w.g.containers[typ] != "":
		if depth >= maxContainerDepth {
			return Unit{}, false
		}
		u := w.base(start, n, w.g.containers[typ], w.name(n), container)
		u.Container = true
		body := n.ChildByFieldName("body")
		w.body(&u, n, body)
		if body != nil {
			u.Children = w.units(ctx, body, &u, depth+1)
		}
		return u, true

	case typ == "type_declaration":
		return w.goType(start, n)

	case w.g.types[typ]:
		u := w.base(start, n, KindType, w.name(n), container)
		body := n.ChildByFieldName("body")
		if body == nil {
			body = n.ChildByFieldName("value")
		}
		w.body(&u, n, body)
		return u, true

	case typ == "lexical_declaration" || typ == "variable_declaration":
		return w.scriptFunctionVar(start, n, container)
	}
	return Unit{}, false
}

func (w *walker) base(start, n *sitter.Node, kind Kind, name string, container *Unit) Unit {
	u := Unit{
		Kind:      kind,
		Name:      name,
		Start:     int(start.StartPoint().Row),
		End:       endRow(start),
		HeaderEnd: int(start.StartPoint().Row),
	}
	u.Exported = w.g.exported(n, name, w.src, container)
	return u
}

func (w *walker) name(n *sitter.Node) string {
	if nn := n.ChildByFieldName("name"); nn != nil {
		return nn.Content(w.src)
	}
	if n.Type() == "impl_item" {
		name := ""
		if tr := n.ChildByFieldName("trait"); tr != nil {
			name = tr.Content(w.src) + " for "
		}
		if ty := n.ChildByFieldName("type"); ty != nil {
			name += ty.Content(w.src)
		}
		return name
	}
	return ""
}

// body fills in the header and body layout of u from its body node.
func (w *walker) body(u *Unit, n, body *sitter.Node) {
	if body == nil {
		return
	}
	if w.g.colonHeader {
		u.HeaderEnd = colonRow(n, u.HeaderEnd)
		if int(body.StartPoint().Row) <= u.HeaderEnd || u.End <= u.HeaderEnd {
			return
		}
		u.HasBody = true
		w.docstring(u, body)
		return
	}

	u.HeaderEnd = int(body.StartPoint().Row)
	if u.End <= u.HeaderEnd || u.End >= len(w.lines) {
		return
	}
	last := strings.TrimSpace(w.lines[u.End])
	if !strings.HasPrefix(last, "}") {
		return
	}
	u.HasBody = true
	u.Closing = true
}

func (w *walker) docstring(u *Unit, body *sitter.Node) {
	if body.NamedChildCount() == 0 {
		return
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 || first.NamedChild(0).Type() != "string" {
		return
	}
	str := first.NamedChild(0)
	u.Doc = renderDocstring(str.Content(w.src))
	u.DocLines = endRow(str) - int(str.StartPoint().Row) + 1
}

// renderDocstring keeps the first non-empty line of a string literal and
// closes it on the same line.
func renderDocstring(s string) string {
	quote := `"""`
	prefix := ""
	body := s
	for len(body) > 0 && strings.ContainsRune("rRuUbBfF", rune(body[0])) {
		prefix += body[:1]
		body = body[1:]
	}
	switch {
	case strings.HasPrefix(body, `"""`), strings.HasPrefix(body, `'''`):
		quote = body[:3]
	case strings.HasPrefix(body, `"`), strings.HasPrefix(body, `'`):
		quote = body[:1]
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(body, quote), quote)
	line := ""
	for _, l := range strings.Split(inner, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			line = t
			break
		}
	}
	return prefix + quote + line + quote
}

func colonRow(n *sitter.Node, fallback int) int {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == ":" {
			return int(c.StartPoint().Row)
		}
	}
	return fallback
}

func (w *walker) goType(start, n *sitter.Node) (Unit, bool) {
	var specs []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "type_spec" || c.Type() == "type_alias" {
			specs = append(specs, c)
		}
	}
	if len(specs) == 0 {
		return Unit{}, false
	}
	name := ""
	if nn := specs[0].ChildByFieldName("name"); nn != nil {
		name = nn.Content(w.src)
	}
	u := w.base(start, n, KindType, name, nil)
	if len(specs) > 1 {
		for _, s := range specs[1:] {
			if nn := s.ChildByFieldName("name"); nn != nil && w.g.exported(s, nn.Content(w.src), w.src, nil) {
				u.Exported = true
			}
		}
		return u, true
	}
	w.body(&u, n, specs[0].ChildByFieldName("type"))
	return u, true
}

func (w *walker) scriptFunctionVar(start, n *sitter.Node, container *Unit) (Unit, bool) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		value := d.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Type() {
		case "arrow_function", "function", "function_expression", "generator_function":
		default:
			continue
		}
		body := value.ChildByFieldName("body")
		if body == nil || body.Type() != "statement_block" {
			continue
		}
		name := ""
		if nn := d.ChildByFieldName("name"); nn != nil {
			name = nn.Content(w.src)
		}
		u := w.base(start, n, KindFunction, name, container)
		w.body(&u, n, body)
		return u, true
	}
	return Unit{}, false
}

// commentLines marks lines covered entirely by comment nodes.
func (w *walker) commentLines(root *sitter.Node) []bool {
	out := make([]bool, len(w.lines))
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if w.g.comments[n.Type()] {
			w.markComment(out, n)
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	return out
}

func (w *walker) markComment(out []bool, n *sitter.Node) {
	sp, ep := n.StartPoint(), n.EndPoint()
	r0, r1 := int(sp.Row), int(ep.Row)
	if ep.Column == 0 && r1 > r0 {
		r1--
		ep.Column = uint32(len(w.lines[r1]))
	}
	if r0 >= len(w.lines) || r1 >= len(w.lines) {
		return
	}
	before := w.lines[r0][:min(int(sp.Column), len(w.lines[r0]))]
	after := ""
	if c := int(ep.Column); c < len(w.lines[r1]) {
		after = w.lines[r1][c:]
	}
	if strings.TrimSpace(before) != "" || strings.TrimSpace(after) != "" {
		return
	}
	for r := r0; r <= r1; r++ {
		out[r] = true
	}
}

func endRow(n *sitter.Node) int {
	ep := n.EndPoint()
	row := int(ep.Row)
	if ep.Column == 0 && row > int(n.StartPoint().Row) {
		row--
	}
	return row
}
