package adf

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// AttrKind is the value type an attribute must carry.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrInt
	AttrBool
	AttrIntList
)

func (k AttrKind) String() string {
	switch k {
	case AttrInt:
		return "integer"
	case AttrBool:
		return "boolean"
	case AttrIntList:
		return "integer list"
	default:
		return "string"
	}
}

// AttrSpec describes one attribute of a node or mark.
type AttrSpec struct {
	Kind     AttrKind
	Required bool
	// Enum restricts string values when non-empty.
	Enum mapset.Set[string]
	// Min and Max bound integer values when Max > 0.
	Min, Max int
}

// Schema describes what a node kind may hold.
type Schema struct {
	Attrs    map[string]AttrSpec
	Children mapset.Set[NodeType]
	Marks    mapset.Set[MarkType]
	// NonEmpty kinds must have at least one child.
	NonEmpty bool
	// Leaf kinds may not have children.
	Leaf bool
}

func types(ts ...NodeType) mapset.Set[NodeType] {
	return mapset.NewSet[NodeType](ts...)
}

func enum(vs ...string) mapset.Set[string] {
	return mapset.NewSet[string](vs...)
}

var (
	inlineTypes = types(TypeText, TypeHardBreak, TypeMention, TypeEmoji, TypeStatus,
		TypeInlineCard, TypeDate, TypeRaw)

	blockTypes = types(TypeParagraph, TypeHeading, TypeBlockquote, TypeRule, TypeCodeBlock,
		TypePanel, TypeBulletList, TypeOrderedList, TypeTaskList, TypeDecisionList,
		TypeTable, TypeExpand, TypeNestedExpand, TypeMediaSingle, TypeMediaGroup,
		TypeBlockCard, TypeRaw)

	topLevel = types(TypeParagraph, TypeHeading, TypeBlockquote, TypeRule, TypeCodeBlock,
		TypePanel, TypeBulletList, TypeOrderedList, TypeTaskList, TypeDecisionList,
		TypeTable, TypeExpand, TypeMediaSingle, TypeMediaGroup, TypeBlockCard, TypeRaw)

	// cellContent is what table cells and expands accept: everything top level
	// except tables and expands, plus nested expands.
	cellContent = topLevel.Difference(types(TypeTable, TypeExpand)).Union(types(TypeNestedExpand))

	listItemContent = types(TypeParagraph, TypeHeading, TypeBlockquote, TypeRule,
		TypeCodeBlock, TypePanel, TypeBulletList, TypeOrderedList, TypeTaskList,
		TypeDecisionList, TypeMediaSingle, TypeMediaGroup, TypeRaw)

	quoteContent = types(TypeParagraph, TypeHeading, TypeBlockquote, TypeRule,
		TypeCodeBlock, TypeBulletList, TypeOrderedList, TypeTaskList, TypeMediaSingle,
		TypeMediaGroup, TypeRaw)

	panelContent = types(TypeParagraph, TypeHeading, TypeRule, TypeCodeBlock,
		TypeBulletList, TypeOrderedList, TypeTaskList, TypeDecisionList, TypeMediaSingle,
		TypeMediaGroup, TypeBlockCard, TypeRaw)

	textMarks = mapset.NewSet[MarkType](MarkLink, MarkStrong, MarkEm, MarkStrike,
		MarkUnderline, MarkSubSup, MarkTextColor, MarkBackgroundColor, MarkCode)

	// leafMarks are accepted by the inline leaf allow-list.
	leafMarks = textMarks.Difference(mapset.NewSet[MarkType](MarkCode))

	mediaMarks = mapset.NewSet[MarkType](MarkLink, MarkBorder)

	panelTypes   = enum("info", "note", "warning", "success", "error", "tip")
	statusColors = enum("neutral", "purple", "blue", "red", "yellow", "green")
)

var (
	optString = AttrSpec{Kind: AttrString}
	reqString = AttrSpec{Kind: AttrString, Required: true}
	optInt    = AttrSpec{Kind: AttrInt}
	cellAttrs = map[string]AttrSpec{
		"background": optString,
		"colspan":    {Kind: AttrInt, Min: 1, Max: 1000},
		"rowspan":    {Kind: AttrInt, Min: 1, Max: 1000},
		"colwidth":   {Kind: AttrIntList},
	}
)

var schemas = map[NodeType]*Schema{
	TypeDoc:       {Children: topLevel},
	TypeParagraph: {Children: inlineTypes, Attrs: map[string]AttrSpec{"localId": optString}},
	TypeHeading: {
		Children: inlineTypes,
		Attrs: map[string]AttrSpec{
			"level":   {Kind: AttrInt, Required: true, Min: 1, Max: 6},
			"localId": optString,
		},
	},
	TypeBlockquote: {Children: quoteContent, NonEmpty: true},
	TypeRule:       {Leaf: true},
	TypeCodeBlock: {
		Children: types(TypeText),
		Attrs:    map[string]AttrSpec{"language": optString},
	},
	TypePanel: {
		Children: panelContent,
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"panelType": {Kind: AttrString, Required: true, Enum: panelTypes}},
	},
	TypeBulletList:  {Children: types(TypeListItem), NonEmpty: true},
	TypeOrderedList: {Children: types(TypeListItem), NonEmpty: true, Attrs: map[string]AttrSpec{"order": {Kind: AttrInt, Max: 1 << 30}}},
	TypeListItem:    {Children: listItemContent},
	TypeTaskList: {
		Children: types(TypeTaskItem, TypeTaskList),
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"localId": optString},
	},
	TypeTaskItem: {
		Children: inlineTypes,
		Attrs: map[string]AttrSpec{
			"localId": optString,
			"state":   {Kind: AttrString, Required: true, Enum: enum(StateTodo, StateDone)},
		},
	},
	TypeDecisionList: {
		Children: types(TypeDecisionItem),
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"localId": optString},
	},
	TypeDecisionItem: {
		Children: inlineTypes,
		Attrs: map[string]AttrSpec{
			"localId": optString,
			"state":   {Kind: AttrString, Required: true, Enum: enum(StateDecided, StateUndecided)},
		},
	},
	TypeTable: {
		Children: types(TypeTableRow),
		NonEmpty: true,
		Attrs: map[string]AttrSpec{
			"layout":                optString,
			"isNumberColumnEnabled": {Kind: AttrBool},
			"width":                 optInt,
			"displayMode":           optString,
			"localId":               optString,
		},
	},
	TypeTableRow:    {Children: types(TypeTableHeader, TypeTableCell), NonEmpty: true},
	TypeTableHeader: {Children: cellContent, Attrs: cellAttrs},
	TypeTableCell:   {Children: cellContent, Attrs: cellAttrs},
	TypeExpand: {
		Children: cellContent,
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"title": reqString},
	},
	TypeNestedExpand: {
		Children: cellContent.Difference(types(TypeNestedExpand)),
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"title": reqString},
	},
	TypeMediaSingle: {
		Children: types(TypeMedia),
		NonEmpty: true,
		Attrs:    map[string]AttrSpec{"layout": optString, "width": optInt},
	},
	TypeMediaGroup: {Children: types(TypeMedia), NonEmpty: true},
	TypeMedia: {
		Leaf:  true,
		Marks: mediaMarks,
		Attrs: map[string]AttrSpec{
			"id":         reqString,
			"type":       {Kind: AttrString, Required: true, Enum: enum("file", "link", "external")},
			"collection": reqString,
			"alt":        optString,
			"width":      optInt,
			"height":     optInt,
		},
	},
	TypeBlockCard: {Leaf: true, Attrs: map[string]AttrSpec{"url": reqString}},
	TypeText:      {Leaf: true, Marks: textMarks},
	TypeHardBreak: {Leaf: true},
	TypeMention: {
		Leaf:  true,
		Marks: leafMarks,
		Attrs: map[string]AttrSpec{
			"id":          reqString,
			"text":        optString,
			"accessLevel": optString,
			"userType":    optString,
		},
	},
	TypeEmoji: {
		Leaf:  true,
		Marks: leafMarks,
		Attrs: map[string]AttrSpec{"shortName": reqString, "id": optString, "text": optString},
	},
	TypeStatus: {
		Leaf:  true,
		Marks: leafMarks,
		Attrs: map[string]AttrSpec{
			"text":    reqString,
			"color":   {Kind: AttrString, Required: true, Enum: statusColors},
			"localId": optString,
			"style":   optString,
		},
	},
	TypeInlineCard: {Leaf: true, Marks: leafMarks, Attrs: map[string]AttrSpec{"url": reqString}},
	TypeDate:       {Leaf: true, Marks: leafMarks, Attrs: map[string]AttrSpec{"timestamp": reqString}},
	TypeRaw:        {Leaf: true, Marks: leafMarks, Attrs: map[string]AttrSpec{"tag": reqString, "html": reqString}},
}

var markSchemas = map[MarkType]map[string]AttrSpec{
	MarkLink: {
		"href":          reqString,
		"title":         optString,
		"id":            optString,
		"collection":    optString,
		"occurrenceKey": optString,
	},
	MarkStrong:          nil,
	MarkEm:              nil,
	MarkStrike:          nil,
	MarkUnderline:       nil,
	MarkCode:            nil,
	MarkSubSup:          {"type": {Kind: AttrString, Required: true, Enum: enum("sub", "sup")}},
	MarkTextColor:       {"color": reqString},
	MarkBackgroundColor: {"color": reqString},
	MarkBorder: {
		"color": reqString,
		"size":  {Kind: AttrInt, Required: true, Min: 1, Max: 3},
	},
}

// SchemaFor returns the schema of a node kind, or nil for unknown kinds.
func SchemaFor(t NodeType) *Schema {
	return schemas[t]
}
