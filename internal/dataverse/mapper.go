package dataverse

import "strings"

// MapDataKind converts a remote attribute type name into the JSON-Schema
// primitive used in input contracts. The function is total: unrecognized
// type names map to "string", which never loses information since the
// underlying transport is textual JSON.
//
// Choice-like kinds (picklist, state, status) map to integer because the
// wire value is the underlying numeric option code, not a resolved label.
// DateTime maps to string by ISO-8601 convention; lookups map to string
// carrying the referenced record's identifier.
func MapDataKind(attributeType string) string {
	switch strings.ToLower(attributeType) {
	case "string", "memo":
		return "string"
	case "integer", "bigint":
		return "integer"
	case "decimal", "double", "money":
		return "number"
	case "boolean":
		return "boolean"
	case "datetime":
		return "string"
	case "lookup":
		return "string"
	case "picklist", "state", "status":
		return "integer"
	default:
		return "string"
	}
}

// KindFromAttributeType decodes a remote attribute type name into the closed
// DataKind set. Types outside the known vocabulary decode to KindOther.
func KindFromAttributeType(attributeType string) DataKind {
	switch strings.ToLower(attributeType) {
	case "string":
		return KindText
	case "memo":
		return KindLargeText
	case "integer":
		return KindInteger
	case "bigint":
		return KindBigInteger
	case "decimal":
		return KindDecimal
	case "double":
		return KindDouble
	case "money":
		return KindCurrency
	case "boolean":
		return KindBoolean
	case "datetime":
		return KindDateTime
	case "lookup":
		return KindReference
	case "picklist":
		return KindChoice
	case "state":
		return KindState
	case "status":
		return KindStatus
	default:
		return KindOther
	}
}

// primitiveForKind maps a decoded DataKind to its input-contract primitive.
// Kept consistent with MapDataKind; both exist because the synthesizer works
// from decoded kinds while MapDataKind is the raw-vocabulary entry point.
func primitiveForKind(kind DataKind) string {
	switch kind {
	case KindInteger, KindBigInteger, KindChoice, KindState, KindStatus:
		return "integer"
	case KindDecimal, KindDouble, KindCurrency:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return "string"
	}
}

// RequirednessFromLevel decodes the Dataverse RequiredLevel value.
func RequirednessFromLevel(level string) Requiredness {
	switch strings.ToLower(level) {
	case "applicationrequired":
		return RequiredByApp
	case "systemrequired":
		return RequiredBySystem
	case "recommended":
		return RequiredRecommended
	default:
		return RequiredNone
	}
}
