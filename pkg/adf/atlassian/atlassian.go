// Package atlassian converts between adf trees and the ADF models used by the
// go-atlassian Jira and Confluence clients.
package atlassian

import (
	"encoding/json"

	"github.com/athapong/adfconv/pkg/adf"
	"github.com/ctreminiom/go-atlassian/pkg/infra/models"
	"github.com/pkg/errors"
)

// FromCommentNode converts a go-atlassian ADF node into a validated tree.
// Editor-only attributes the schema does not know are dropped.
func FromCommentNode(node *models.CommentNodeScheme) (*adf.Node, error) {
	if node == nil {
		return nil, errors.New("nil ADF body")
	}
	return adf.Validate(toNode(node), adf.WithLenientAttributes())
}

// ToCommentNode converts a tree into the go-atlassian representation.
func ToCommentNode(node *adf.Node) *models.CommentNodeScheme {
	if node == nil {
		return nil
	}
	out := &models.CommentNodeScheme{
		Version: node.Version,
		Type:    string(node.Type),
		Text:    node.Text,
	}
	if len(node.Attrs) > 0 {
		out.Attrs = make(map[string]interface{}, len(node.Attrs))
		for k, v := range node.Attrs {
			out.Attrs[k] = v
		}
	}
	for _, mark := range node.Marks {
		ms := &models.MarkScheme{Type: string(mark.Type)}
		if len(mark.Attrs) > 0 {
			ms.Attrs = make(map[string]interface{}, len(mark.Attrs))
			for k, v := range mark.Attrs {
				ms.Attrs[k] = v
			}
		}
		out.Marks = append(out.Marks, ms)
	}
	for _, child := range node.Content {
		out.AppendNode(ToCommentNode(child))
	}
	return out
}

// Unmarshal decodes an ADF body as served by the Atlassian REST APIs, for
// example a Confluence page's atlas_doc_format value.
func Unmarshal(data []byte) (*adf.Node, error) {
	body := &models.CommentNodeScheme{}
	if err := json.Unmarshal(data, body); err != nil {
		return nil, errors.Wrap(err, "failed to parse ADF content")
	}
	return FromCommentNode(body)
}

func toNode(node *models.CommentNodeScheme) *adf.Node {
	n := &adf.Node{
		Type:    adf.NodeType(node.Type),
		Version: node.Version,
		Text:    node.Text,
	}
	if len(node.Attrs) > 0 {
		n.Attrs = make(map[string]any, len(node.Attrs))
		for k, v := range node.Attrs {
			n.Attrs[k] = v
		}
	}
	for _, mark := range node.Marks {
		if mark == nil {
			continue
		}
		m := &adf.Mark{Type: adf.MarkType(mark.Type)}
		if len(mark.Attrs) > 0 {
			m.Attrs = make(map[string]any, len(mark.Attrs))
			for k, v := range mark.Attrs {
				m.Attrs[k] = v
			}
		}
		n.Marks = append(n.Marks, m)
	}
	for _, child := range node.Content {
		if child != nil {
			n.Content = append(n.Content, toNode(child))
		}
	}
	return n
}
