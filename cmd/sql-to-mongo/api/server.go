// Package api exposes the translation engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mongobridge/sql-to-mongo/lib/mongodb"
	"github.com/mongobridge/sql-to-mongo/lib/mongoql"
	"github.com/mongobridge/sql-to-mongo/lib/mongosh"
	"github.com/mongobridge/sql-to-mongo/lib/sql/parser"
	"github.com/mongobridge/sql-to-mongo/lib/store/catalog"
)

// Config configures the HTTP server.
type Config struct {
	ListenAddr   string               `yaml:"listen_addr" json:"listen_addr"`
	Tables       map[string]string    `yaml:"tables" json:"tables"`
	StrictTables bool                 `yaml:"strict_tables" json:"strict_tables"`
	Capabilities mongoql.Capabilities `yaml:"capabilities" json:"capabilities"`
	Mongo        mongodb.Config       `yaml:"mongo" json:"mongo"`
}

// Executor runs translated commands; satisfied by mongodb.Executor.
type Executor interface {
	Execute(ctx context.Context, tr *mongoql.TranslationResult) (*mongodb.Result, error)
}

// Server translates SQL over HTTP and optionally executes the result.
type Server struct {
	mux     *http.ServeMux
	catalog *catalog.Catalog
	caps    mongoql.Capabilities
	exec    Executor
	logger  *slog.Logger
}

// NewServer wires the routes. exec may be nil; the execute endpoint then
// reports that execution is not configured.
func NewServer(cfg Config, exec Executor, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := catalog.New(cfg.Tables, cfg.StrictTables)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	srv := &Server{
		mux:     http.NewServeMux(),
		catalog: cat,
		caps:    cfg.Capabilities,
		exec:    exec,
		logger:  logger,
	}
	srv.mux.HandleFunc("/healthz", srv.withMiddleware(srv.handleHealth))
	srv.mux.HandleFunc("/api/v1/translate", srv.withMiddleware(srv.handleTranslate))
	srv.mux.HandleFunc("/api/v1/execute", srv.withMiddleware(srv.handleExecute))
	srv.mux.HandleFunc("/api/v1/capabilities", srv.withMiddleware(srv.handleCapabilities))
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// withMiddleware adds security headers and per-request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		s.logger.Info("request", "id", requestID, "method", r.Method, "path", r.URL.Path)
		next(w, r)
	}
}

type translateRequest struct {
	SQL string `json:"sql"`
}

type translateResponse struct {
	Kind       mongoql.Kind    `json:"kind,omitempty"`
	Tier       string          `json:"tier,omitempty"`
	HighImpact bool            `json:"high_impact,omitempty"`
	Collection string          `json:"collection,omitempty"`
	Command    string          `json:"command,omitempty"`
	Tokens     []mongosh.Token `json:"tokens,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func newTranslateResponse(result *mongoql.TranslationResult, invocation *mongosh.Invocation) translateResponse {
	return translateResponse{
		Kind:       result.Kind,
		Tier:       result.Kind.Tier(),
		HighImpact: result.Kind.HighImpact(),
		Collection: result.Collection,
		Command:    invocation.Text,
		Tokens:     invocation.Tokens,
	}
}

type executeResponse struct {
	translateResponse
	Result *mongodb.Result `json:"result,omitempty"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	sql, ok := s.decodeSQL(w, r)
	if !ok {
		return
	}

	result, invocation, err := s.translate(sql)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newTranslateResponse(result, invocation))
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if s.exec == nil {
		writeJSON(w, http.StatusServiceUnavailable, translateResponse{Error: "execution is not configured; set a mongo connection"})
		return
	}
	sql, ok := s.decodeSQL(w, r)
	if !ok {
		return
	}

	result, invocation, err := s.translate(sql)
	if err != nil {
		s.writeError(w, err)
		return
	}

	execResult, err := s.exec.Execute(r.Context(), result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, executeResponse{
		translateResponse: newTranslateResponse(result, invocation),
		Result:            execResult,
	})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"capabilities": s.caps.List(),
		"tables":       s.catalog.ListTables(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) translate(sql string) (*mongoql.TranslationResult, *mongosh.Invocation, error) {
	ps, err := mongoql.Classify(sql)
	if err != nil {
		return nil, nil, err
	}
	collection := ps.Table
	if ps.Table != "" {
		// multi-collection statements have no single table; the
		// translator rejects them with a better error than the catalog
		collection, err = s.catalog.Resolve(ps.Table)
		if err != nil {
			return nil, nil, err
		}
	}
	result, err := mongoql.TranslateInto(ps, s.caps, collection)
	if err != nil {
		return nil, nil, err
	}
	invocation, err := mongosh.Render(result, sql)
	if err != nil {
		return nil, nil, err
	}
	return result, invocation, nil
}

func (s *Server) decodeSQL(w http.ResponseWriter, r *http.Request) (string, bool) {
	defer r.Body.Close()

	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Error("failed to decode request", "error", err)
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: "invalid request payload"})
		return "", false
	}
	sql := strings.TrimSpace(req.SQL)
	if sql == "" {
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: "sql statement is required"})
		return "", false
	}
	return sql, true
}

// writeError maps engine errors onto HTTP statuses: syntax and catalog
// failures are client errors, capability denials are forbidden, and
// untranslatable or unsafe statements are unprocessable.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)

	var (
		syntaxErr    *parser.SyntaxError
		permErr      *mongoql.PermissionError
		dangerErr    *mongoql.DangerousOperationError
		ambiguousErr *mongoql.AmbiguousTranslationError
		tableErr     *catalog.UnknownTableError
		execErr      *mongodb.ExecError
	)
	switch {
	case errors.As(err, &syntaxErr):
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: err.Error()})
	case errors.As(err, &tableErr):
		writeJSON(w, http.StatusBadRequest, translateResponse{Error: err.Error()})
	case errors.As(err, &permErr):
		writeJSON(w, http.StatusForbidden, translateResponse{Error: err.Error()})
	case errors.As(err, &dangerErr), errors.As(err, &ambiguousErr):
		writeJSON(w, http.StatusUnprocessableEntity, translateResponse{Error: err.Error()})
	case errors.As(err, &execErr):
		writeJSON(w, http.StatusBadGateway, translateResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, translateResponse{Error: "query processing failed"})
	}
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
