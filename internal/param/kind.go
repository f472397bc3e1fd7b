package param

import "fmt"

// Kind identifies the shape a Param accepts.
type Kind int

const (
	Bool Kind = iota + 1
	String
	Float
	Int
	// FloatRange is a bag {low, high} with low <= high.
	FloatRange
	// Enum is a string restricted to a closed member set.
	Enum
	// EnumList is a list of distinct-or-repeated Enum members.
	EnumList
	FloatList
	IntList
	StringList
	// StringMap is a bag of string values with free-form keys.
	StringMap
	// Composite is a bag checked against the Param's Fields.
	Composite
	// CompositeMap is a bag whose values are Composites.
	CompositeMap
	// CompositeList is a list whose elements are Composites.
	CompositeList
)

var kindNames = map[Kind]string{
	Bool:          "bool",
	String:        "string",
	Float:         "float",
	Int:           "int",
	FloatRange:    "float range",
	Enum:          "enum",
	EnumList:      "enum list",
	FloatList:     "float list",
	IntList:       "int list",
	StringList:    "string list",
	StringMap:     "string map",
	Composite:     "composite",
	CompositeMap:  "composite map",
	CompositeList: "composite list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Range sub-field names used by FloatRange values.
const (
	RangeLow  = "low"
	RangeHigh = "high"
)
