package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"fintrack/internal/log"
)

const maxBodyBytes = 1 << 20

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type graphQLHandler struct {
	schema graphql.Schema
}

func newGraphQLHandler(schema graphql.Schema) http.Handler {
	return &graphQLHandler{schema: schema}
}

func (h *graphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		req graphQLRequest
		err error
	)
	switch r.Method {
	case http.MethodPost:
		req, err = decodePost(w, r)
	case http.MethodGet:
		req, err = decodeGet(r)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeGraphQLError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		writeGraphQLError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeGraphQLError(w, http.StatusBadRequest, "missing query")
		return
	}

	// mutations over GET would bypass CORS preflight
	if r.Method == http.MethodGet {
		if kind, err := operationKind(req.Query, req.OperationName); err == nil && kind != ast.OperationTypeQuery {
			w.Header().Set("Allow", "POST")
			writeGraphQLError(w, http.StatusMethodNotAllowed, kind+" operations require POST")
			return
		}
	}

	ctx := r.Context()
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	if result.HasErrors() {
		log.FromContext(ctx).DebugContext(ctx, "GraphQL request returned errors",
			log.FieldGraphQLOp, req.OperationName,
			"error_count", len(result.Errors))
	}
	writeJSON(w, http.StatusOK, result)
}

func decodePost(w http.ResponseWriter, r *http.Request) (graphQLRequest, error) {
	var req graphQLRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if ct := r.Header.Get("Content-Type"); strings.HasPrefix(ct, "application/graphql") {
		b, err := io.ReadAll(body)
		if err != nil {
			return req, fmt.Errorf("read body: %w", err)
		}
		req.Query = string(b)
		return req, nil
	}

	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return req, fmt.Errorf("request body exceeds %d bytes", tooBig.Limit)
		}
		return req, errors.New("request body must be a JSON object")
	}
	normalizeVariables(req.Variables)
	return req, nil
}

func decodeGet(r *http.Request) (graphQLRequest, error) {
	q := r.URL.Query()
	req := graphQLRequest{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if v := q.Get("variables"); v != "" {
		dec := json.NewDecoder(strings.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&req.Variables); err != nil {
			return req, errors.New("variables must be a JSON object")
		}
		normalizeVariables(req.Variables)
	}
	return req, nil
}

// normalizeVariables turns json.Number into int when the value is integral
// and float64 otherwise, so Int and Float variables coerce correctly.
func normalizeVariables(vars map[string]any) {
	for k, v := range vars {
		vars[k] = normalizeNumbers(v)
	}
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	case json.Number:
		if i, err := strconv.Atoi(t.String()); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	}
	return v
}

// operationKind returns the type of the operation that would run.
func operationKind(query, operationName string) (string, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return "", err
	}
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if operationName == "" || (op.Name != nil && op.Name.Value == operationName) {
			return op.Operation, nil
		}
	}
	return "", errors.New("operation not found")
}

func writeGraphQLError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
}

func writeRateLimited(w http.ResponseWriter, r *http.Request, retryAfter int) {
	ctx := r.Context()
	log.FromContext(ctx).WarnContext(ctx, "Rate limit exceeded",
		log.FieldPath, r.URL.Path)
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	writeGraphQLError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
