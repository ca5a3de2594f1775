package adf

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strings"
)

// Option configures Validate.
type Option func(*validator)

// WithLenientAttributes drops attributes and fields a kind does not define
// instead of rejecting the tree. Payloads from Atlassian editors carry such
// editor-only attributes.
func WithLenientAttributes() Option {
	return func(v *validator) {
		v.lenient = true
	}
}

type validator struct {
	lenient bool
}

// Validate checks tree against the ADF schema and returns a normalized deep
// copy: mark lists sorted canonically, integer attributes typed as int, task
// and decision states upper-cased, adjacent text runs with equal marks
// joined, empty slices and maps dropped. The input is
// never modified. Validating an already validated tree returns an equal tree.
func Validate(tree *Node, opts ...Option) (*Node, error) {
	v := &validator{}
	for _, opt := range opts {
		opt(v)
	}
	if tree == nil {
		return nil, newValidationError(CodeInvalidChildKind, nil, "", "", "document is nil")
	}
	if tree.Type != TypeDoc {
		return nil, newValidationError(CodeInvalidChildKind, nil, tree.Type, string(tree.Type), "root must be a doc node")
	}
	return v.node(tree, Path{})
}

func (v *validator) node(n *Node, path Path) (*Node, error) {
	schema := schemas[n.Type]
	if schema == nil {
		return nil, newValidationError(CodeInvalidChildKind, path, n.Type, string(n.Type), "unknown node type")
	}
	out := &Node{Type: n.Type}

	switch {
	case n.Type == TypeDoc:
		if n.Version == 0 {
			return nil, newValidationError(CodeMissingAttribute, path, n.Type, "version", "")
		}
		if n.Version != CurrentVersion {
			return nil, newValidationError(CodeInvalidAttribute, path, n.Type, "version",
				fmt.Sprintf("unsupported version %d", n.Version))
		}
		out.Version = n.Version
	case n.Version != 0 && !v.lenient:
		return nil, newValidationError(CodeInvalidAttribute, path, n.Type, "version", "only doc carries a version")
	}

	switch {
	case n.Type == TypeText:
		if n.Text == "" {
			return nil, newValidationError(CodeEmptyRequiredContent, path, n.Type, "text", "text node without text")
		}
		out.Text = n.Text
	case n.Text != "" && !v.lenient:
		return nil, newValidationError(CodeInvalidAttribute, path, n.Type, "text", "only text nodes carry text")
	}

	attrs := n.Attrs
	if n.Type == TypeTaskItem || n.Type == TypeDecisionItem {
		attrs = upperState(attrs)
	}
	clean, err := v.attrs(schema.Attrs, attrs, func(code ErrorCode, name, detail string) error {
		return newValidationError(code, path, n.Type, name, detail)
	})
	if err != nil {
		return nil, err
	}
	out.Attrs = clean

	marks, err := v.marks(n, schema, path)
	if err != nil {
		return nil, err
	}
	out.Marks = marks

	if schema.Leaf && len(n.Content) > 0 {
		return nil, newValidationError(CodeInvalidChildKind, path, n.Type, string(n.Content[0].Type), "leaf node has content")
	}
	if schema.NonEmpty && len(n.Content) == 0 {
		return nil, newValidationError(CodeEmptyRequiredContent, path, n.Type, "", "content must not be empty")
	}
	for i, child := range n.Content {
		childPath := path.Child(i)
		if child == nil {
			return nil, newValidationError(CodeInvalidChildKind, childPath, "", "", "nil child")
		}
		if !schema.Children.Contains(child.Type) {
			return nil, newValidationError(CodeInvalidChildKind, childPath, child.Type, string(child.Type),
				fmt.Sprintf("not allowed in %s", n.Type))
		}
		if n.Type == TypeCodeBlock && len(child.Marks) > 0 {
			return nil, newValidationError(CodeInvalidMark, childPath, child.Type, string(child.Marks[0].Type),
				"code block text cannot carry marks")
		}
		// Marks only exist on inline content.
		if child.Type == TypeRaw && len(child.Marks) > 0 && !schema.Children.Contains(TypeText) {
			return nil, newValidationError(CodeInvalidMark, childPath, child.Type, string(child.Marks[0].Type),
				fmt.Sprintf("block-level raw node in %s cannot carry marks", n.Type))
		}
		c, err := v.node(child, childPath)
		if err != nil {
			return nil, err
		}
		out.Content = appendMerged(out.Content, c)
	}
	return out, nil
}

// appendMerged appends c, joining it onto a preceding text run that carries
// the same marks.
func appendMerged(content []*Node, c *Node) []*Node {
	if c.Type == TypeText && len(content) > 0 {
		prev := content[len(content)-1]
		if prev.Type == TypeText && sameMarks(prev.Marks, c.Marks) {
			prev.Text += c.Text
			return content
		}
	}
	return append(content, c)
}

func sameMarks(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || !reflect.DeepEqual(a[i].Attrs, b[i].Attrs) {
			return false
		}
	}
	return true
}

func (v *validator) marks(n *Node, schema *Schema, path Path) ([]*Mark, error) {
	if len(n.Marks) == 0 {
		return nil, nil
	}
	seen := make(map[MarkType]bool, len(n.Marks))
	out := make([]*Mark, 0, len(n.Marks))
	for _, m := range n.Marks {
		if m == nil {
			return nil, newValidationError(CodeInvalidMark, path, n.Type, "", "nil mark")
		}
		spec, known := markSchemas[m.Type]
		if !known {
			return nil, newValidationError(CodeInvalidMark, path, n.Type, string(m.Type), "unknown mark type")
		}
		if schema.Marks == nil || !schema.Marks.Contains(m.Type) {
			return nil, newValidationError(CodeInvalidMark, path, n.Type, string(m.Type),
				fmt.Sprintf("mark not allowed on %s", n.Type))
		}
		if seen[m.Type] {
			return nil, newValidationError(CodeDuplicateMark, path, n.Type, string(m.Type), "")
		}
		seen[m.Type] = true

		clean, err := v.attrs(spec, m.Attrs, func(code ErrorCode, name, detail string) error {
			return newValidationError(code, path, n.Type, string(m.Type)+"."+name, detail)
		})
		if err != nil {
			return nil, err
		}
		if m.Type == MarkLink {
			if href, _ := clean["href"].(string); !wellFormedHref(href) {
				return nil, newValidationError(CodeInvalidAttribute, path, n.Type, "link.href",
					fmt.Sprintf("malformed href %q", href))
			}
		}
		out = append(out, &Mark{Type: m.Type, Attrs: clean})
	}
	SortMarks(out)
	return out, nil
}

func (v *validator) attrs(spec map[string]AttrSpec, in map[string]any, fail func(ErrorCode, string, string) error) (map[string]any, error) {
	var out map[string]any
	for _, name := range sortedKeys(in) {
		value := in[name]
		as, ok := spec[name]
		if !ok {
			if v.lenient {
				continue
			}
			return nil, fail(CodeInvalidAttribute, name, "attribute not defined for this kind")
		}
		if value == nil {
			// JSON null is treated as absent.
			continue
		}
		typed, ok := coerce(as.Kind, value)
		if !ok {
			return nil, fail(CodeInvalidAttribute, name, fmt.Sprintf("expected %s, got %T", as.Kind, value))
		}
		if err := checkRange(as, typed); err != "" {
			return nil, fail(CodeInvalidAttribute, name, err)
		}
		if list, isList := typed.([]int); isList && len(list) == 0 {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(in))
		}
		out[name] = typed
	}
	for _, name := range sortedKeys(spec) {
		if !spec[name].Required {
			continue
		}
		if _, ok := out[name]; !ok {
			return nil, fail(CodeMissingAttribute, name, "")
		}
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkRange(as AttrSpec, v any) string {
	switch val := v.(type) {
	case string:
		if as.Enum != nil && as.Enum.Cardinality() > 0 && !as.Enum.Contains(val) {
			return fmt.Sprintf("value %q not allowed", val)
		}
	case int:
		if as.Max > 0 && (val < as.Min || val > as.Max) {
			return fmt.Sprintf("value %d outside %d..%d", val, as.Min, as.Max)
		}
		if val < 0 {
			return fmt.Sprintf("negative value %d", val)
		}
	}
	return ""
}

func coerce(kind AttrKind, v any) (any, bool) {
	switch kind {
	case AttrString:
		s, ok := v.(string)
		return s, ok
	case AttrBool:
		b, ok := v.(bool)
		return b, ok
	case AttrInt:
		return toInt(v)
	case AttrIntList:
		switch list := v.(type) {
		case []int:
			return append([]int(nil), list...), true
		case []any:
			out := make([]int, 0, len(list))
			for _, item := range list {
				i, ok := toInt(item)
				if !ok {
					return nil, false
				}
				out = append(out, i.(int))
			}
			return out, true
		case []float64:
			out := make([]int, 0, len(list))
			for _, f := range list {
				i, ok := toInt(f)
				if !ok {
					return nil, false
				}
				out = append(out, i.(int))
			}
			return out, true
		}
	}
	return nil, false
}

func toInt(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint32:
		return int(n), true
	case float32:
		return toInt(float64(n))
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return int(n), true
	}
	return nil, false
}

func upperState(attrs map[string]any) map[string]any {
	s, ok := attrs["state"].(string)
	if !ok || s == strings.ToUpper(s) {
		return attrs
	}
	out := cloneAttrs(attrs)
	out["state"] = strings.ToUpper(s)
	return out
}

func wellFormedHref(href string) bool {
	if href == "" || strings.ContainsAny(href, " \t\r\n") {
		return false
	}
	_, err := url.Parse(href)
	return err == nil
}
