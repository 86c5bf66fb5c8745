package dataverse

import "fmt"

const (
	// maxSearchVariants caps how many search-by-field operations one record
	// type contributes to the catalog.
	maxSearchVariants = 3

	// defaultListTop and maxListTop bound the $top parameter; the clamp is
	// enforced at execution time, not here.
	defaultListTop = 50
	maxListTop     = 5000
)

// Synthesize produces the fixed operation set for one record type:
// create, read, update, delete, list, plus up to maxSearchVariants
// search-by-field variants. The result is deterministic for a given input.
//
// Search candidates are the readable text and reference fields in the order
// the metadata API returned them; the first maxSearchVariants are taken
// without re-sorting, so the variant set follows remote declaration order.
func Synthesize(recordType RecordType, fields []Field) []Operation {
	ops := make([]Operation, 0, 5+maxSearchVariants)
	collection := recordType.CollectionName
	name := recordType.LogicalName

	// create
	createInput := InputSchema{Properties: map[string]Property{}}
	for _, f := range fields {
		if !f.Creatable {
			continue
		}
		createInput.Properties[f.LogicalName] = fieldProperty(f)
		if f.Requiredness.Required() {
			createInput.Required = append(createInput.Required, f.LogicalName)
		}
	}
	ops = append(ops, Operation{
		Name:        fmt.Sprintf("create_%s", name),
		RecordType:  name,
		Verb:        VerbCreate,
		Method:      "POST",
		URLTemplate: collection,
		Description: fmt.Sprintf("Create a new %s record", name),
		Input:       createInput,
	})

	// read
	ops = append(ops, Operation{
		Name:        fmt.Sprintf("read_%s", name),
		RecordType:  name,
		Verb:        VerbRead,
		Method:      "GET",
		URLTemplate: collection + "({id})",
		Description: fmt.Sprintf("Retrieve a %s record by id", name),
		Input:       idOnlySchema(name),
	})

	// update
	updateInput := InputSchema{
		Properties: map[string]Property{
			"id": idProperty(name),
		},
		Required: []string{"id"},
	}
	for _, f := range fields {
		if !f.Updatable {
			continue
		}
		updateInput.Properties[f.LogicalName] = fieldProperty(f)
	}
	ops = append(ops, Operation{
		Name:        fmt.Sprintf("update_%s", name),
		RecordType:  name,
		Verb:        VerbUpdate,
		Method:      "PATCH",
		URLTemplate: collection + "({id})",
		Description: fmt.Sprintf("Update fields of an existing %s record", name),
		Input:       updateInput,
	})

	// delete
	ops = append(ops, Operation{
		Name:        fmt.Sprintf("delete_%s", name),
		RecordType:  name,
		Verb:        VerbDelete,
		Method:      "DELETE",
		URLTemplate: collection + "({id})",
		Description: fmt.Sprintf("Delete a %s record by id", name),
		Input:       idOnlySchema(name),
	})

	// list
	ops = append(ops, Operation{
		Name:        fmt.Sprintf("list_%s", name),
		RecordType:  name,
		Verb:        VerbList,
		Method:      "GET",
		URLTemplate: collection,
		Description: fmt.Sprintf("List %s records with optional OData filtering", name),
		Input: InputSchema{
			Properties: map[string]Property{
				"filter": {
					Type:        "string",
					Description: "OData $filter expression fragment",
				},
				"select": {
					Type:        "string",
					Description: "Comma-joined list of fields to return",
				},
				"top": {
					Type:        "integer",
					Description: fmt.Sprintf("Maximum records to return (default %d, cap %d)", defaultListTop, maxListTop),
				},
				"orderby": {
					Type:        "string",
					Description: "Field to order by, with optional ' asc' or ' desc' suffix",
				},
			},
		},
	})

	// search variants
	variants := 0
	for _, f := range fields {
		if variants >= maxSearchVariants {
			break
		}
		if !f.Readable || (f.Kind != KindText && f.Kind != KindReference) {
			continue
		}
		ops = append(ops, Operation{
			Name:        fmt.Sprintf("search_%s_by_%s", name, f.LogicalName),
			RecordType:  name,
			Verb:        VerbSearch,
			Method:      "GET",
			URLTemplate: collection,
			Description: fmt.Sprintf("Search %s records by %s", name, f.LogicalName),
			SearchField: f.LogicalName,
			Input: InputSchema{
				Properties: map[string]Property{
					f.LogicalName: fieldProperty(f),
					"exactMatch": {
						Type:        "boolean",
						Description: "Match the value exactly instead of substring containment (default false)",
					},
				},
				Required: []string{f.LogicalName},
			},
		})
		variants++
	}

	return ops
}

func fieldProperty(f Field) Property {
	desc := f.Description
	if desc == "" {
		desc = f.DisplayName
	}
	return Property{Type: primitiveForKind(f.Kind), Description: desc}
}

func idProperty(recordType string) Property {
	return Property{
		Type:        "string",
		Description: fmt.Sprintf("Unique identifier of the %s record", recordType),
	}
}

func idOnlySchema(recordType string) InputSchema {
	return InputSchema{
		Properties: map[string]Property{"id": idProperty(recordType)},
		Required:   []string{"id"},
	}
}
