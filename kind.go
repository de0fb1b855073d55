package serde

// Kind is the semantic shape of a node in any context.
type Kind uint8

// Semantic shapes shared by every context.
const (
	KindUnknown Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindBlob
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindNull:    "null",
	KindString:  "string",
	KindNumber:  "number",
	KindBool:    "boolean",
	KindBlob:    "blob",
	KindList:    "list",
	KindMap:     "map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsScalar reports whether the shape is a string, number or boolean.
func (k Kind) IsScalar() bool {
	return k == KindString || k == KindNumber || k == KindBool
}
