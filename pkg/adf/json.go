package adf

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by Parse for input that is not a JSON object.
var ErrInvalidJSON = errors.New("invalid ADF JSON")

// Parse decodes an ADF JSON document. Integral numbers decode as int so that
// parsed trees compare equal to trees built in code. Parse does not validate.
func Parse(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.Wrap(ErrInvalidJSON, "top level value is not an object")
	}
	return parseNode(root), nil
}

// ParseString is Parse for string input.
func ParseString(s string) (*Node, error) {
	return Parse([]byte(s))
}

func parseNode(r gjson.Result) *Node {
	n := &Node{
		Type:    NodeType(r.Get("type").String()),
		Version: int(r.Get("version").Int()),
		Text:    r.Get("text").String(),
		Attrs:   parseAttrs(r.Get("attrs")),
	}
	r.Get("marks").ForEach(func(_, m gjson.Result) bool {
		n.Marks = append(n.Marks, &Mark{
			Type:  MarkType(m.Get("type").String()),
			Attrs: parseAttrs(m.Get("attrs")),
		})
		return true
	})
	r.Get("content").ForEach(func(_, c gjson.Result) bool {
		if c.IsObject() {
			n.Content = append(n.Content, parseNode(c))
		}
		return true
	})
	return n
}

func parseAttrs(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return nil
	}
	var attrs map[string]any
	r.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.Null {
			return true
		}
		if attrs == nil {
			attrs = make(map[string]any)
		}
		attrs[k.String()] = jsonValue(v)
		return true
	})
	return attrs
}

func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.Number:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return int(v.Num)
		}
		return v.Num
	}
	if v.IsArray() {
		var out []any
		v.ForEach(func(_, item gjson.Result) bool {
			out = append(out, jsonValue(item))
			return true
		})
		return out
	}
	return v.Value()
}

// Marshal encodes a tree as ADF JSON.
func Marshal(n *Node) ([]byte, error) {
	return json.Marshal(n)
}

// MarshalIndent encodes a tree as indented ADF JSON.
func MarshalIndent(n *Node) ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}
