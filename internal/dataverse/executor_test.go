package dataverse

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Leon4s4/dynamics-mcp/pkg/errors"
)

// capturedRequest records what the fake Dataverse instance received.
type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]any
	Header http.Header
}

// newFakeInstance returns a session against an httptest server that records
// every request and replies with the given status and JSON body.
func newFakeInstance(t *testing.T, status int, responseBody string) (*Session, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
			Header: r.Header.Clone(),
		}
		for key, values := range r.URL.Query() {
			req.Query[key] = values[0]
		}
		if body, _ := io.ReadAll(r.Body); len(body) > 0 {
			_ = json.Unmarshal(body, &req.Body)
		}
		captured = append(captured, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(responseBody))
	}))
	t.Cleanup(srv.Close)

	return NewSession(srv.URL, "test-token", srv.Client()), &captured
}

func listOp() Operation {
	return Operation{Name: "list_account", RecordType: "account", Verb: VerbList, Method: "GET", URLTemplate: "accounts"}
}

func searchOp() Operation {
	return Operation{
		Name: "search_account_by_name", RecordType: "account", Verb: VerbSearch,
		Method: "GET", URLTemplate: "accounts", SearchField: "name",
	}
}

func TestExecutor_List_DefaultTop(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	_, err := NewExecutor().Execute(context.Background(), session, listOp(), nil)
	require.NoError(t, err)

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "50", req.Query["$top"])
	assert.NotContains(t, req.Query, "$filter")
	assert.NotContains(t, req.Query, "$select")
	assert.NotContains(t, req.Query, "$orderby")
}

func TestExecutor_List_TopClamp(t *testing.T) {
	tests := []struct {
		name string
		top  any
		want string
	}{
		{"above cap", float64(100000), "5000"},
		{"within cap", float64(200), "200"},
		{"zero falls back", float64(0), "50"},
		{"negative falls back", float64(-5), "50"},
		{"unparsable string falls back", "lots", "50"},
		{"numeric string honored", "75", "75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)
			_, err := NewExecutor().Execute(context.Background(), session, listOp(), map[string]any{"top": tt.top})
			require.NoError(t, err)
			assert.Equal(t, tt.want, (*captured)[0].Query["$top"])
		})
	}
}

func TestExecutor_List_AllParams(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	_, err := NewExecutor().Execute(context.Background(), session, listOp(), map[string]any{
		"filter":  "revenue gt 100000",
		"select":  "name,revenue",
		"orderby": "name desc",
		"top":     float64(10),
	})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, "revenue gt 100000", req.Query["$filter"])
	assert.Equal(t, "name,revenue", req.Query["$select"])
	assert.Equal(t, "name desc", req.Query["$orderby"])
	assert.Equal(t, "10", req.Query["$top"])
}

func TestExecutor_Search_EscapesQuotes(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	_, err := NewExecutor().Execute(context.Background(), session, searchOp(), map[string]any{"name": "O'Brien"})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, "contains(name, 'O''Brien')", req.Query["$filter"])
	assert.Equal(t, "50", req.Query["$top"])
}

func TestExecutor_Search_ExactMatch(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	_, err := NewExecutor().Execute(context.Background(), session, searchOp(), map[string]any{
		"name":       "Acme",
		"exactMatch": true,
	})
	require.NoError(t, err)

	assert.Equal(t, "name eq 'Acme'", (*captured)[0].Query["$filter"])
}

func TestExecutor_Search_RejectsEmptyValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"nil value", nil},
		{"empty string", ""},
		{"whitespace string", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

			_, err := NewExecutor().Execute(context.Background(), session, searchOp(), map[string]any{"name": tt.value})

			var validationErr *pkgerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, "name", validationErr.Field)
			assert.Empty(t, *captured, "a failed precondition must not reach the network")
		})
	}
}

func TestExecutor_Search_NumericValue(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	// JSON numbers arrive as float64; they render without an exponent.
	_, err := NewExecutor().Execute(context.Background(), session, searchOp(), map[string]any{"name": float64(42)})
	require.NoError(t, err)

	assert.Equal(t, "contains(name, '42')", (*captured)[0].Query["$filter"])
}

func TestExecutor_Search_MissingValue(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"value":[]}`)

	_, err := NewExecutor().Execute(context.Background(), session, searchOp(), map[string]any{"exactMatch": true})

	var validationErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Field)
	assert.Empty(t, *captured, "a failed precondition must not reach the network")
}

func TestExecutor_Create(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusCreated, `{"accountid":"42","name":"Acme"}`)
	op := Operation{Name: "create_account", RecordType: "account", Verb: VerbCreate, Method: "POST", URLTemplate: "accounts"}

	result, err := NewExecutor().Execute(context.Background(), session, op, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/data/v9.2/accounts", req.Path)
	assert.Equal(t, map[string]any{"name": "Acme"}, req.Body)
	assert.Equal(t, "return=representation", req.Header.Get("Prefer"))
	assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
	assert.Equal(t, "4.0", req.Header.Get("OData-Version"))

	created, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42", created["accountid"])
}

func TestExecutor_Read(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusOK, `{"accountid":"42"}`)
	op := Operation{Name: "read_account", RecordType: "account", Verb: VerbRead, Method: "GET", URLTemplate: "accounts({id})"}

	_, err := NewExecutor().Execute(context.Background(), session, op, map[string]any{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/api/data/v9.2/accounts(42)", (*captured)[0].Path)
}

func TestExecutor_Update_StripsID(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusNoContent, "")
	op := Operation{Name: "update_account", RecordType: "account", Verb: VerbUpdate, Method: "PATCH", URLTemplate: "accounts({id})"}

	result, err := NewExecutor().Execute(context.Background(), session, op, map[string]any{
		"id":   "42",
		"name": "Acme Renamed",
	})
	require.NoError(t, err)

	req := (*captured)[0]
	assert.Equal(t, "PATCH", req.Method)
	assert.Equal(t, "/api/data/v9.2/accounts(42)", req.Path)
	assert.Equal(t, map[string]any{"name": "Acme Renamed"}, req.Body, "id must not travel in the body")

	ack, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, ack["success"])
}

func TestExecutor_Delete(t *testing.T) {
	session, captured := newFakeInstance(t, http.StatusNoContent, "")
	op := Operation{Name: "delete_account", RecordType: "account", Verb: VerbDelete, Method: "DELETE", URLTemplate: "accounts({id})"}

	result, err := NewExecutor().Execute(context.Background(), session, op, map[string]any{"id": "42"})
	require.NoError(t, err)

	assert.Equal(t, "DELETE", (*captured)[0].Method)
	ack, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, ack["success"])
}

func TestExecutor_IDRequired(t *testing.T) {
	for _, verb := range []Verb{VerbRead, VerbUpdate, VerbDelete} {
		t.Run(string(verb), func(t *testing.T) {
			session, captured := newFakeInstance(t, http.StatusOK, "{}")
			op := Operation{Name: "x_account", Verb: verb, Method: "GET", URLTemplate: "accounts({id})"}

			for _, args := range []map[string]any{nil, {"id": ""}, {"id": "   "}} {
				_, err := NewExecutor().Execute(context.Background(), session, op, args)
				var validationErr *pkgerrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, "id", validationErr.Field)
			}
			assert.Empty(t, *captured)
		})
	}
}

func TestExecutor_RemoteFailure(t *testing.T) {
	session, _ := newFakeInstance(t, http.StatusForbidden, `{"error":{"message":"no privilege"}}`)

	_, err := NewExecutor().Execute(context.Background(), session, listOp(), nil)

	var remoteErr *pkgerrors.RemoteCallError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
	assert.Contains(t, remoteErr.Body, "no privilege")
	assert.Equal(t, "list_account", remoteErr.Operation)
}

func TestBuildSearchFilter(t *testing.T) {
	assert.Equal(t, "contains(name, 'O''Brien')", buildSearchFilter("name", "O'Brien", false))
	assert.Equal(t, "name eq 'O''Brien'", buildSearchFilter("name", "O'Brien", true))
	assert.Equal(t, "name eq 'it''s ''quoted'''", buildSearchFilter("name", "it's 'quoted'", true))
}
