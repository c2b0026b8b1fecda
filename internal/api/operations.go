package api

import (
	"context"

	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// Services are the domain services the operations delegate to.
type Services struct {
	Auth         *services.AuthService
	Users        *services.UserService
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
}

type none struct{}

// NewRegistry builds the registry holding every fintrack operation.
func (s Services) NewRegistry(logger *log.Logger) (*Registry, error) {
	r := NewRegistry(s.Users, logger)
	for _, group := range [][]Operation{
		s.authOperations(),
		s.userOperations(),
		s.categoryOperations(),
		s.transactionOperations(),
		s.dashboardOperations(),
	} {
		if err := r.Register(group...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewSchema is NewRegistry followed by Schema.
func (s Services) NewSchema(logger *log.Logger) (graphql.Schema, error) {
	r, err := s.NewRegistry(logger)
	if err != nil {
		return graphql.Schema{}, err
	}
	return r.Schema()
}

type credentials struct {
	name, email, password string
}

func (s Services) authOperations() []Operation {
	shape := func(p *services.AuthPayload) any {
		return map[string]any{
			"token":        p.Token,
			"refreshToken": p.RefreshToken,
			"user":         shapeUser(p.User),
		}
	}
	nonNullString := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}

	return []Operation{
		Define(Operation{
			Name:   "register",
			Kind:   Mutation,
			Public: true,
			Args: graphql.FieldConfigArgument{
				"name":     nonNullString,
				"email":    nonNullString,
				"password": nonNullString,
			},
			Output: graphql.NewNonNull(authPayloadType),
		}, Handler[credentials, *services.AuthPayload]{
			Decode: func(raw map[string]any) (credentials, error) {
				a := args(raw)
				return credentials{name: a.str("name"), email: a.str("email"), password: a.str("password")}, nil
			},
			Run: func(ctx context.Context, _ *core.User, in credentials) (*services.AuthPayload, error) {
				return s.Auth.Register(ctx, in.name, in.email, in.password)
			},
			Shape: shape,
		}),
		Define(Operation{
			Name:   "login",
			Kind:   Mutation,
			Public: true,
			Args: graphql.FieldConfigArgument{
				"email":    nonNullString,
				"password": nonNullString,
			},
			Output: graphql.NewNonNull(authPayloadType),
		}, Handler[credentials, *services.AuthPayload]{
			Decode: func(raw map[string]any) (credentials, error) {
				a := args(raw)
				return credentials{email: a.str("email"), password: a.str("password")}, nil
			},
			Run: func(ctx context.Context, _ *core.User, in credentials) (*services.AuthPayload, error) {
				return s.Auth.Login(ctx, in.email, in.password)
			},
			Shape: shape,
		}),
	}
}

func (s Services) userOperations() []Operation {
	shape := func(u *core.User) any { return shapeUser(*u) }

	return []Operation{
		Define(Operation{
			Name:   "me",
			Kind:   Query,
			Output: userType,
		}, Handler[none, *core.User]{
			Run: func(ctx context.Context, user *core.User, _ none) (*core.User, error) {
				u, err := s.Users.FindByID(ctx, user.ID)
				if err != nil {
					return nil, err
				}
				if u == nil {
					return nil, core.ErrUserNotFound
				}
				return u, nil
			},
			Shape: shape,
		}),
		Define(Operation{
			Name: "updateUser",
			Kind: Mutation,
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateUserInput)},
			},
			Output: graphql.NewNonNull(userType),
		}, Handler[string, *core.User]{
			Decode: func(raw map[string]any) (string, error) {
				return args(raw).object("data").str("name"), nil
			},
			Run: func(ctx context.Context, user *core.User, name string) (*core.User, error) {
				return s.Users.Update(ctx, user.ID, name)
			},
			Shape: shape,
		}),
	}
}
