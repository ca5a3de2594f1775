package adf

import "sort"

// MarkType names a formatting mark
type MarkType string

const (
	MarkLink            MarkType = "link"
	MarkStrong          MarkType = "strong"
	MarkEm              MarkType = "em"
	MarkStrike          MarkType = "strike"
	MarkUnderline       MarkType = "underline"
	MarkSubSup          MarkType = "subsup"
	MarkTextColor       MarkType = "textColor"
	MarkBackgroundColor MarkType = "backgroundColor"
	MarkCode            MarkType = "code"
	MarkBorder          MarkType = "border"
)

// markPriority orders marks outermost first. Renderers nest in this order and
// the validator sorts mark lists by it.
var markPriority = map[MarkType]int{
	MarkLink:            0,
	MarkStrong:          1,
	MarkEm:              2,
	MarkStrike:          3,
	MarkUnderline:       4,
	MarkSubSup:          5,
	MarkTextColor:       6,
	MarkBackgroundColor: 7,
	MarkCode:            8,
	MarkBorder:          9,
}

// Mark represents formatting marks in ADF
type Mark struct {
	Type  MarkType       `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Priority returns the canonical rank of the mark type, lower is outer.
// Unknown types rank after every known one.
func (t MarkType) Priority() int {
	if p, ok := markPriority[t]; ok {
		return p
	}
	return len(markPriority)
}

// Known reports whether t belongs to the closed mark set.
func (t MarkType) Known() bool {
	_, ok := markPriority[t]
	return ok
}

// StringAttr returns a string attribute or "".
func (m *Mark) StringAttr(key string) string {
	if m == nil || m.Attrs == nil {
		return ""
	}
	s, _ := m.Attrs[key].(string)
	return s
}

// Clone returns a copy of the mark.
func (m *Mark) Clone() *Mark {
	if m == nil {
		return nil
	}
	c := &Mark{Type: m.Type}
	if m.Attrs != nil {
		c.Attrs = cloneAttrs(m.Attrs)
	}
	return c
}

// SortMarks orders marks canonically in place. The sort is stable so marks
// of the same type keep their relative order.
func SortMarks(marks []*Mark) {
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].Type.Priority() < marks[j].Type.Priority()
	})
}

// CanonicalOrder reports whether marks are strictly increasing in priority.
func CanonicalOrder(marks []*Mark) bool {
	for i := 1; i < len(marks); i++ {
		if marks[i-1].Type.Priority() >= marks[i].Type.Priority() {
			return false
		}
	}
	return true
}
