package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// Executor renders a synthesized operation plus caller-supplied arguments
// into a concrete Web API request and interprets the response. It is a
// single-shot request/response mapper: no retries, no pagination, no partial
// failure handling.
type Executor struct{}

// NewExecutor creates an executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute performs one synthesized operation. Argument preconditions are
// checked before any network traffic; a failed precondition returns
// ValidationError.
func (e *Executor) Execute(ctx context.Context, session *Session, op Operation, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}

	switch op.Verb {
	case VerbCreate:
		return e.send(ctx, session, op, op.URLTemplate, args, true)

	case VerbRead:
		resource, err := resolveID(op, args)
		if err != nil {
			return nil, err
		}
		return e.send(ctx, session, op, resource, nil, true)

	case VerbUpdate:
		resource, err := resolveID(op, args)
		if err != nil {
			return nil, err
		}
		// id addresses the record in the URL; it must not travel as a data field.
		body := make(map[string]any, len(args))
		for k, v := range args {
			if k != "id" {
				body[k] = v
			}
		}
		return e.send(ctx, session, op, resource, body, false)

	case VerbDelete:
		resource, err := resolveID(op, args)
		if err != nil {
			return nil, err
		}
		return e.send(ctx, session, op, resource, nil, false)

	case VerbList:
		query := buildListQuery(args)
		return e.send(ctx, session, op, op.URLTemplate+"?"+query.Encode(), nil, true)

	case VerbSearch:
		value, ok := args[op.SearchField]
		if !ok || value == nil {
			return nil, &errors.ValidationError{
				Field:   op.SearchField,
				Message: fmt.Sprintf("search value for %q is required", op.SearchField),
			}
		}
		text := formatFilterValue(value)
		if strings.TrimSpace(text) == "" {
			return nil, &errors.ValidationError{
				Field:   op.SearchField,
				Message: fmt.Sprintf("search value for %q is required", op.SearchField),
			}
		}
		filter := buildSearchFilter(op.SearchField, text, boolArg(args, "exactMatch"))
		query := url.Values{
			"$filter": []string{filter},
			"$top":    []string{strconv.Itoa(defaultListTop)},
		}
		return e.send(ctx, session, op, op.URLTemplate+"?"+query.Encode(), nil, true)

	default:
		return nil, &errors.ValidationError{
			Field:   "verb",
			Message: fmt.Sprintf("unsupported operation verb %q", op.Verb),
		}
	}
}

// send issues the HTTP call and interprets the response. parseBody selects
// whether the remote body is decoded and returned (read/list/search/create)
// or a fixed acknowledgment is produced (update/delete, which return no
// content).
func (e *Executor) send(ctx context.Context, session *Session, op Operation, resource string, body map[string]any, parseBody bool) (any, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s request body", op.Name)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := session.newRequest(ctx, op.Method, session.apiURL(resource), reader)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s request", op.Name)
	}
	if op.Verb == VerbCreate {
		// Dataverse returns 204 on create unless asked for the new record.
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := session.do(req)
	if err != nil {
		return nil, &errors.RemoteCallError{Operation: op.Name, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.RemoteCallError{Operation: op.Name, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &errors.RemoteCallError{
			Operation:  op.Name,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	if !parseBody {
		return map[string]any{"success": true, "operation": op.Name}, nil
	}
	if len(respBody) == 0 {
		return map[string]any{"success": true, "operation": op.Name}, nil
	}

	var result any
	if err := json.Unmarshal(respBody, &result); err != nil {
		// Non-JSON success body; hand it back verbatim.
		return string(respBody), nil
	}
	return result, nil
}

// resolveID validates the id argument and substitutes it into the URL
// template.
func resolveID(op Operation, args map[string]any) (string, error) {
	id := strings.TrimSpace(stringArg(args, "id"))
	if id == "" {
		return "", &errors.ValidationError{Field: "id", Message: "id is required"}
	}
	return strings.Replace(op.URLTemplate, "{id}", url.PathEscape(id), 1), nil
}

// buildListQuery assembles the OData query for a list operation. Each
// present argument is escaped individually by Values.Encode; absent optional
// arguments omit their query key entirely.
func buildListQuery(args map[string]any) url.Values {
	query := url.Values{}
	if filter := stringArg(args, "filter"); filter != "" {
		query.Set("$filter", filter)
	}
	if sel := stringArg(args, "select"); sel != "" {
		query.Set("$select", sel)
	}
	if orderby := stringArg(args, "orderby"); orderby != "" {
		query.Set("$orderby", orderby)
	}
	query.Set("$top", strconv.Itoa(clampTop(args["top"])))
	return query
}

// clampTop normalizes the caller-supplied top argument: default when absent
// or unparsable, clamped to the hard cap.
func clampTop(raw any) int {
	top := defaultListTop
	switch v := raw.(type) {
	case int:
		top = v
	case int64:
		top = int(v)
	case float64:
		top = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return defaultListTop
		}
		top = parsed
	case nil:
		return defaultListTop
	}
	if top <= 0 {
		return defaultListTop
	}
	if top > maxListTop {
		return maxListTop
	}
	return top
}

// buildSearchFilter renders the OData filter for a search variant. The value
// is escaped with escapeODataLiteral so embedded quotes cannot break out of
// the string literal.
func buildSearchFilter(field, value string, exactMatch bool) string {
	escaped := escapeODataLiteral(value)
	if exactMatch {
		return fmt.Sprintf("%s eq '%s'", field, escaped)
	}
	return fmt.Sprintf("contains(%s, '%s')", field, escaped)
}

// escapeODataLiteral escapes a value for inclusion in an OData single-quoted
// string literal. Single quotes are doubled per the OData ABNF.
func escapeODataLiteral(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(args map[string]any, key string) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return false
}

// formatFilterValue renders an argument value for filter interpolation.
// Strings pass through; numbers avoid exponent formatting.
func formatFilterValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
