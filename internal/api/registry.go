package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type OperationKind int

const (
	Query OperationKind = iota
	Mutation
)

func (k OperationKind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// errInternal is what clients see for anything outside the domain taxonomy.
var errInternal = errors.New("internal error")

// Operation is one entry of the API: its GraphQL signature, whether it needs
// an authenticated caller, and how a call is executed.
type Operation struct {
	Name        string
	Kind        OperationKind
	Description string
	Public      bool
	Args        graphql.FieldConfigArgument
	Output      graphql.Output

	call func(ctx context.Context, user *core.User, args map[string]any) (any, error)
}

// Handler holds the three steps of an operation: Decode validates the raw
// arguments, Run calls the domain service and Shape builds the response
// value. Shape may be nil when Run's result is already the response.
type Handler[In, Out any] struct {
	Decode func(args map[string]any) (In, error)
	Run    func(ctx context.Context, user *core.User, in In) (Out, error)
	Shape  func(Out) any
}

// Define builds an Operation from a typed handler.
func Define[In, Out any](op Operation, h Handler[In, Out]) Operation {
	op.call = func(ctx context.Context, user *core.User, raw map[string]any) (any, error) {
		var in In
		if h.Decode != nil {
			var err error
			if in, err = h.Decode(raw); err != nil {
				return nil, err
			}
		}
		out, err := h.Run(ctx, user, in)
		if err != nil {
			return nil, err
		}
		if h.Shape == nil {
			return out, nil
		}
		return h.Shape(out), nil
	}
	return op
}

// UserLookup loads the caller of a protected operation.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*core.User, error)
}

// Registry owns the operation table and builds the schema from it.
type Registry struct {
	ops    []Operation
	byName map[string]int
	users  UserLookup
	logger *log.Logger
}

func NewRegistry(users UserLookup, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Registry{
		byName: make(map[string]int),
		users:  users,
		logger: logger.WithComponent(log.ComponentAPI),
	}
}

// Register adds operations. Names are unique across queries and mutations.
func (r *Registry) Register(ops ...Operation) error {
	for _, op := range ops {
		if op.Name == "" || op.Output == nil || op.call == nil {
			return fmt.Errorf("operation %q is incomplete", op.Name)
		}
		if _, dup := r.byName[op.Name]; dup {
			return fmt.Errorf("operation %q registered twice", op.Name)
		}
		r.byName[op.Name] = len(r.ops)
		r.ops = append(r.ops, op)
	}
	return nil
}

// Lookup returns the named operation.
func (r *Registry) Lookup(name string) (Operation, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Operation{}, false
	}
	return r.ops[i], true
}

// Operations returns the registered operations in registration order.
func (r *Registry) Operations() []Operation {
	return append([]Operation(nil), r.ops...)
}

// Schema builds the GraphQL schema from the registered operations.
func (r *Registry) Schema() (graphql.Schema, error) {
	queries := graphql.Fields{}
	mutations := graphql.Fields{}
	for _, op := range r.ops {
		field := &graphql.Field{
			Type:        op.Output,
			Args:        op.Args,
			Description: op.Description,
			Resolve:     r.resolver(op),
		}
		if op.Kind == Mutation {
			mutations[op.Name] = field
		} else {
			queries[op.Name] = field
		}
	}

	cfg := graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{Name: "Query", Fields: queries}),
	}
	if len(mutations) > 0 {
		cfg.Mutation = graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: mutations})
	}
	schema, err := graphql.NewSchema(cfg)
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("build schema: %w", err)
	}
	r.logger.Debug("GraphQL schema built", "queries", len(queries), "mutations", len(mutations))
	return schema, nil
}

func (r *Registry) resolver(op Operation) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		ctx := p.Context
		if ctx == nil {
			ctx = context.Background()
		}

		var user *core.User
		if !op.Public {
			var err error
			if user, err = r.caller(ctx); err != nil {
				return nil, r.publicError(ctx, op, err)
			}
		}

		out, err := op.call(ctx, user, p.Args)
		if err != nil {
			return nil, r.publicError(ctx, op, err)
		}
		return out, nil
	}
}

// caller resolves the request identity to an existing user.
func (r *Registry) caller(ctx context.Context) (*core.User, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, core.ErrUnauthenticated
	}
	user, err := r.users.FindByID(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("load caller: %w", err)
	}
	if user == nil {
		return nil, core.ErrUnauthenticated
	}
	return user, nil
}

// publicError passes domain errors through and masks everything else.
func (r *Registry) publicError(ctx context.Context, op Operation, err error) error {
	if core.IsDomainError(err) {
		log.FromContext(ctx).DebugContext(ctx, "Operation rejected",
			log.FieldGraphQLOp, op.Name,
			log.FieldError, err)
		return err
	}
	fields := log.NewFields().WithOperation(op.Kind.String())
	fields[log.FieldGraphQLOp] = op.Name
	log.FromContext(ctx).Fail(ctx, "Operation failed", err, fields)
	return errInternal
}
