package model

// FieldKind says where a grouping field's value comes from.
type FieldKind string

const (
	KindBuiltin  FieldKind = "builtin"
	KindMetadata FieldKind = "metadata"
	KindFileRef  FieldKind = "file_ref"
)

// Builtin field ids.
const (
	FieldSeverity = "severity"
	FieldID       = "id"
	FieldFile     = "file"
	FieldCategory = "category"
)

// GroupingField declares a dimension messages can be aggregated along.
// SortOrder, when set, lists group keys in their fixed display order.
type GroupingField struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	SortOrder   []string  `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

// DefaultGroupingFields returns the fields every adapter supports.
func DefaultGroupingFields() []GroupingField {
	return []GroupingField{
		{ID: FieldSeverity, Name: "Severity", Kind: KindBuiltin, Description: "Group by message severity"},
		{ID: FieldID, Name: "Message ID", Kind: KindBuiltin, Description: "Group by message identifier"},
		{ID: FieldFile, Name: "File", Kind: KindFileRef, Description: "Group by source file path"},
		{ID: FieldCategory, Name: "Category", Kind: KindBuiltin, Description: "Group by message category"},
	}
}
