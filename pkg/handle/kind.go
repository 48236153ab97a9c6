package handle

// Kind is the object category a handle refers to. A handle minted for one
// kind can only be resolved as that kind.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindGroup
	KindDataset
	KindDatatype
	KindAttribute
	KindConnector
	KindReference
)

var kindString = map[Kind]string{
	KindInvalid:   "invalid",
	KindFile:      "file",
	KindGroup:     "group",
	KindDataset:   "dataset",
	KindDatatype:  "datatype",
	KindAttribute: "attribute",
	KindConnector: "connector",
	KindReference: "reference",
}

func (k Kind) String() string {
	if str, ok := kindString[k]; ok {
		return str
	}
	return "unknown"
}
