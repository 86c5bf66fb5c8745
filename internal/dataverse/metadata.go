package dataverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// Attribute selections are restricted to exactly what this system consumes;
// anything wider bloats the metadata payload for large orgs.
const (
	entitySelect    = "LogicalName,EntitySetName,DisplayName,Description"
	attributeSelect = "LogicalName,AttributeType,DisplayName,Description,IsValidForCreate,IsValidForRead,IsValidForUpdate,RequiredLevel"
)

// MetadataClient issues metadata queries against one Dataverse instance and
// decodes the paginated response envelope. It performs no retries; retry
// policy belongs to the caller.
type MetadataClient struct {
	session *Session
}

// NewMetadataClient creates a metadata client bound to a session.
func NewMetadataClient(session *Session) *MetadataClient {
	return &MetadataClient{session: session}
}

// label is the Dataverse localized-label envelope. Only the user-localized
// label is consumed.
type label struct {
	UserLocalizedLabel *struct {
		Label string `json:"Label"`
	} `json:"UserLocalizedLabel"`
}

func (l *label) text() string {
	if l == nil || l.UserLocalizedLabel == nil {
		return ""
	}
	return l.UserLocalizedLabel.Label
}

type entityDefinition struct {
	LogicalName   string `json:"LogicalName"`
	EntitySetName string `json:"EntitySetName"`
	DisplayName   *label `json:"DisplayName"`
	Description   *label `json:"Description"`
}

type attributeDefinition struct {
	LogicalName      string `json:"LogicalName"`
	AttributeType    string `json:"AttributeType"`
	DisplayName      *label `json:"DisplayName"`
	Description      *label `json:"Description"`
	IsValidForCreate bool   `json:"IsValidForCreate"`
	IsValidForRead   bool   `json:"IsValidForRead"`
	IsValidForUpdate bool   `json:"IsValidForUpdate"`
	RequiredLevel    *struct {
		Value string `json:"Value"`
	} `json:"RequiredLevel"`
}

// ListRecordTypes fetches every entity definition from the instance.
func (c *MetadataClient) ListRecordTypes(ctx context.Context) ([]RecordType, error) {
	query := url.Values{"$select": []string{entitySelect}}
	body, err := c.get(ctx, "EntityDefinitions?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Value []entityDefinition `json:"value"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &errors.SchemaFormatError{Resource: "EntityDefinitions", Cause: err}
	}

	types := make([]RecordType, 0, len(envelope.Value))
	for _, def := range envelope.Value {
		types = append(types, RecordType{
			LogicalName:    def.LogicalName,
			DisplayName:    def.DisplayName.text(),
			Description:    def.Description.text(),
			CollectionName: def.EntitySetName,
		})
	}
	return types, nil
}

// ListFields fetches the attribute definitions for one record type. Field
// order is the order the Web API returns, which reflects remote declaration
// order; callers must not assume it is stable across platform versions.
func (c *MetadataClient) ListFields(ctx context.Context, logicalName string) ([]Field, error) {
	query := url.Values{"$select": []string{attributeSelect}}
	resource := fmt.Sprintf("EntityDefinitions(LogicalName='%s')/Attributes?%s",
		escapeODataLiteral(logicalName), query.Encode())
	body, err := c.get(ctx, resource)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Value []attributeDefinition `json:"value"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &errors.SchemaFormatError{Resource: "Attributes(" + logicalName + ")", Cause: err}
	}

	fields := make([]Field, 0, len(envelope.Value))
	for _, def := range envelope.Value {
		requiredLevel := ""
		if def.RequiredLevel != nil {
			requiredLevel = def.RequiredLevel.Value
		}
		fields = append(fields, Field{
			LogicalName:  def.LogicalName,
			DisplayName:  def.DisplayName.text(),
			Description:  def.Description.text(),
			Kind:         KindFromAttributeType(def.AttributeType),
			Creatable:    def.IsValidForCreate,
			Readable:     def.IsValidForRead,
			Updatable:    def.IsValidForUpdate,
			Requiredness: RequirednessFromLevel(requiredLevel),
		})
	}
	return fields, nil
}

// get issues one metadata GET and returns the raw body. Non-2xx statuses
// surface as IntrospectionError so the caller can log root cause.
func (c *MetadataClient) get(ctx context.Context, resource string) ([]byte, error) {
	req, err := c.session.newRequest(ctx, "GET", c.session.apiURL(resource), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.session.do(req)
	if err != nil {
		return nil, &errors.IntrospectionError{Resource: resource, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.IntrospectionError{Resource: resource, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.IntrospectionError{
			Resource:   resource,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}
