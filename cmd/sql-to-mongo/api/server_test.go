package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongobridge/sql-to-mongo/lib/mongodb"
	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
)

func newTestServer(t *testing.T, cfg Config, exec Executor) *Server {
	t.Helper()
	srv, err := NewServer(cfg, exec, nil)
	require.NoError(t, err)
	return srv
}

func postSQL(t *testing.T, srv *Server, path, sql string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"sql": sql})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHandleTranslate(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.ReadOnly()}, nil)

	rec := postSQL(t, srv, "/api/v1/translate", "SELECT * FROM users WHERE age > 30")
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeResponse(t, rec)
	assert.Equal(t, string(mongoql.KindSimpleRead), payload["kind"])
	assert.Equal(t, "simple", payload["tier"])
	assert.Equal(t, "users", payload["collection"])
	assert.Contains(t, payload["command"], `db.users.find({ "age": { $gt: 30 } })`)
	assert.NotEmpty(t, payload["tokens"])
}

func TestHandleTranslateUsesCatalog(t *testing.T) {
	srv := newTestServer(t, Config{
		Capabilities: mongoql.ReadOnly(),
		Tables:       map[string]string{"users": "app_users"},
	}, nil)

	rec := postSQL(t, srv, "/api/v1/translate", "SELECT * FROM users")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeResponse(t, rec)
	assert.Equal(t, "app_users", payload["collection"])
}

func TestHandleTranslateErrorMapping(t *testing.T) {
	srv := newTestServer(t, Config{
		Capabilities: mongoql.ReadOnly(),
		Tables:       map[string]string{"users": "users"},
		StrictTables: true,
	}, nil)

	cases := []struct {
		name string
		sql  string
		code int
	}{
		{"syntax error", "SELECT name", http.StatusBadRequest},
		{"unknown table", "SELECT * FROM missing", http.StatusBadRequest},
		{"capability denied", "DROP TABLE users", http.StatusForbidden},
		{"join fails closed", "SELECT u.name FROM users u JOIN users o ON u.id = o.id", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postSQL(t, srv, "/api/v1/translate", tc.sql)
			assert.Equal(t, tc.code, rec.Code)
			payload := decodeResponse(t, rec)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestHandleTranslateFlagsDropHighImpact(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.AllowAll()}, nil)

	rec := postSQL(t, srv, "/api/v1/translate", "DROP TABLE sessions")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeResponse(t, rec)
	assert.Equal(t, "ddl", payload["tier"])
	assert.Equal(t, true, payload["high_impact"])
}

func TestHandleTranslateBlocksUnboundedUpdate(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.AllowAll()}, nil)

	rec := postSQL(t, srv, "/api/v1/translate", "UPDATE users SET active = FALSE")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	payload := decodeResponse(t, rec)
	assert.Contains(t, payload["error"], "WHERE")
}

func TestHandleTranslateRejectsBadPayloads(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.ReadOnly()}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postSQL(t, srv, "/api/v1/translate", "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/translate", nil)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

type fakeExecutor struct {
	result *mongodb.Result
	err    error
	got    *mongoql.TranslationResult
}

func (f *fakeExecutor) Execute(_ context.Context, tr *mongoql.TranslationResult) (*mongodb.Result, error) {
	f.got = tr
	return f.result, f.err
}

func TestHandleExecute(t *testing.T) {
	exec := &fakeExecutor{result: &mongodb.Result{Matched: 2, Modified: 2}}
	srv := newTestServer(t, Config{Capabilities: mongoql.AllowAll()}, exec)

	rec := postSQL(t, srv, "/api/v1/execute", "UPDATE users SET active = TRUE WHERE age > 18")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, exec.got)
	assert.Equal(t, mongoql.KindUpdate, exec.got.Kind)

	payload := decodeResponse(t, rec)
	result := payload["result"].(map[string]any)
	assert.Equal(t, float64(2), result["modified"])
}

func TestHandleExecuteWithoutExecutor(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.ReadOnly()}, nil)

	rec := postSQL(t, srv, "/api/v1/execute", "SELECT * FROM users")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleExecuteMapsBackendErrors(t *testing.T) {
	exec := &fakeExecutor{err: &mongodb.ExecError{Message: "mongodb: find failed"}}
	srv := newTestServer(t, Config{Capabilities: mongoql.ReadOnly()}, exec)

	rec := postSQL(t, srv, "/api/v1/execute", "SELECT * FROM users")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleCapabilities(t *testing.T) {
	srv := newTestServer(t, Config{
		Capabilities: mongoql.Capabilities{Select: true, Insert: true},
		Tables:       map[string]string{"users": "users"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/capabilities", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeResponse(t, rec)
	assert.ElementsMatch(t, []any{"select", "insert"}, payload["capabilities"])
	assert.Equal(t, []any{"users"}, payload["tables"])
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, Config{Capabilities: mongoql.ReadOnly()}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
