// Package dataverse implements schema introspection against the Microsoft
// Dataverse Web API and synthesizes a callable operation catalog from the
// discovered entity metadata. Nothing in this package is entity-specific:
// record types, fields, and operations are all discovered at runtime.
package dataverse

// Verb identifies the kind of synthesized operation.
type Verb string

const (
	VerbCreate Verb = "create"
	VerbRead   Verb = "read"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
	VerbList   Verb = "list"
	VerbSearch Verb = "search"
)

// DataKind classifies a Dataverse attribute type into the closed set this
// system reasons about. Unknown remote types decode to KindOther.
type DataKind string

const (
	KindText       DataKind = "text"
	KindLargeText  DataKind = "large_text"
	KindInteger    DataKind = "integer"
	KindBigInteger DataKind = "big_integer"
	KindDecimal    DataKind = "decimal"
	KindDouble     DataKind = "double"
	KindCurrency   DataKind = "currency"
	KindBoolean    DataKind = "boolean"
	KindDateTime   DataKind = "datetime"
	KindReference  DataKind = "reference"
	KindChoice     DataKind = "choice"
	KindState      DataKind = "state"
	KindStatus     DataKind = "status"
	KindOther      DataKind = "other"
)

// Requiredness mirrors the Dataverse RequiredLevel attribute setting.
type Requiredness string

const (
	RequiredNone        Requiredness = "none"
	RequiredRecommended Requiredness = "recommended"
	RequiredByApp       Requiredness = "application"
	RequiredBySystem    Requiredness = "system"
)

// Required reports whether a field must be supplied on create.
func (r Requiredness) Required() bool {
	return r == RequiredByApp || r == RequiredBySystem
}

// RecordType is an immutable snapshot of one entity definition from a single
// introspection pass.
type RecordType struct {
	LogicalName    string
	DisplayName    string
	Description    string
	CollectionName string
}

// Field is an immutable snapshot of one attribute definition.
type Field struct {
	LogicalName  string
	DisplayName  string
	Description  string
	Kind         DataKind
	Creatable    bool
	Readable     bool
	Updatable    bool
	Requiredness Requiredness
}

// Property describes one input parameter of a synthesized operation.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON-Schema-shaped input contract of an operation.
type InputSchema struct {
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Operation is one synthesized callable action for a record type. Operations
// are immutable once synthesized; the whole set for an endpoint is replaced
// together on refresh, never mutated individually.
type Operation struct {
	Name        string      `json:"name"`
	RecordType  string      `json:"record_type"`
	Verb        Verb        `json:"verb"`
	Method      string      `json:"method"`
	URLTemplate string      `json:"url_template"`
	Description string      `json:"description,omitempty"`
	Input       InputSchema `json:"input_schema"`

	// SearchField is set only for verb=search and names the attribute the
	// variant filters on.
	SearchField string `json:"search_field,omitempty"`
}
