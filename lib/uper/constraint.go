package uper

// Kind identifies the ASN.1 type family a Constraint belongs to. It
// selects the wire branch (value encoding vs size encoding) and, for the
// restricted string kinds, the permitted alphabet.
type Kind int

const (
	KindBoolean Kind = iota
	KindInteger
	KindEnumerated
	KindBitString
	KindOctetString
	KindNumericString
	KindPrintableString
	KindIA5String
	KindVisibleString
	KindUTF8String
	KindNull
	KindSequence
	KindSequenceOf
	KindChoice
)

var kindNames = map[Kind]string{
	KindBoolean:         "BOOLEAN",
	KindInteger:         "INTEGER",
	KindEnumerated:      "ENUMERATED",
	KindBitString:       "BIT STRING",
	KindOctetString:     "OCTET STRING",
	KindNumericString:   "NumericString",
	KindPrintableString: "PrintableString",
	KindIA5String:       "IA5String",
	KindVisibleString:   "VisibleString",
	KindUTF8String:      "UTF8String",
	KindNull:            "NULL",
	KindSequence:        "SEQUENCE",
	KindSequenceOf:      "SEQUENCE OF",
	KindChoice:          "CHOICE",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Constraint is the read-only descriptor the generated bindings supply for
// every value. Nil bounds mean no bound is determinable from the schema;
// they are converted to concrete numbers only inside the formulas that
// need one.
//
// For INTEGER, Lb/Ub bound the value itself. For the string kinds,
// bitstrings, octetstrings and SEQUENCE OF, they bound the size in
// characters, bits, octets or components. For SEQUENCE and CHOICE,
// Fields/RootFields/Optional describe the field layout: Fields is the
// serialized field or variant count, RootFields the count before the
// extension marker, Optional the count of OPTIONAL fields among the root
// fields.
type Constraint struct {
	Kind       Kind
	Lb         *int64
	Ub         *int64
	Extensible bool
	Fields     int
	RootFields int
	Optional   int
}

// Bound is a convenience for building descriptor literals.
func Bound(value int64) *int64 {
	return &value
}

// size converts the numeric bounds to the unsigned form the length
// determinant formulas take. Negative size bounds have no meaning and are
// clamped to zero.
func (c *Constraint) size() (lb, ub *uint64) {
	if c == nil {
		return nil, nil
	}
	if c.Lb != nil {
		value := uint64(max(*c.Lb, 0))
		lb = &value
	}
	if c.Ub != nil {
		value := uint64(max(*c.Ub, 0))
		ub = &value
	}
	return lb, ub
}

// extensible is nil-safe sugar for optional descriptors on scalar kinds.
func (c *Constraint) extensible() bool {
	return c != nil && c.Extensible
}
