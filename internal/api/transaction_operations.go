package api

import (
	"context"

	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
)

type transactionPage struct {
	filter     *core.TransactionFilter
	pagination *core.Pagination
}

type transactionUpdate struct {
	id    string
	patch core.TransactionPatch
}

func decodeNewTransaction(raw map[string]any) (core.NewTransaction, error) {
	d := args(raw).object("data")

	amount, err := d.optMoney("amount")
	if err != nil {
		return core.NewTransaction{}, err
	}
	if amount == nil {
		return core.NewTransaction{}, &core.ValidationError{Field: "amount", Reason: "is required"}
	}
	typ, err := d.optType("type")
	if err != nil {
		return core.NewTransaction{}, err
	}
	if typ == nil {
		return core.NewTransaction{}, &core.ValidationError{Field: "type", Reason: "is required"}
	}
	date, err := d.optTime("date")
	if err != nil {
		return core.NewTransaction{}, err
	}

	in := core.NewTransaction{
		Description: d.str("description"),
		Amount:      *amount,
		Type:        *typ,
		Date:        date,
		CategoryID:  d.optStr("categoryId"),
	}
	if in.CategoryID != nil && *in.CategoryID == "" {
		in.CategoryID = nil
	}
	return in, in.Validate()
}

// decodeTransactionPatch maps an empty categoryId, like clearCategory, to
// detaching the category.
func decodeTransactionPatch(raw map[string]any) (transactionUpdate, error) {
	a := args(raw)
	id, err := a.id("id")
	if err != nil {
		return transactionUpdate{}, err
	}
	d := a.object("data")

	var p core.TransactionPatch
	p.Description = d.optStr("description")
	if p.Amount, err = d.optMoney("amount"); err != nil {
		return transactionUpdate{}, err
	}
	if p.Type, err = d.optType("type"); err != nil {
		return transactionUpdate{}, err
	}
	if p.Date, err = d.optTime("date"); err != nil {
		return transactionUpdate{}, err
	}
	p.CategoryID = d.optStr("categoryId")
	if d.flag("clearCategory") || (p.CategoryID != nil && *p.CategoryID == "") {
		p.ClearCategory = true
		p.CategoryID = nil
	}
	return transactionUpdate{id: id, patch: p}, p.Validate()
}

func decodeTransactionPage(raw map[string]any) (transactionPage, error) {
	a := args(raw)
	var in transactionPage

	if f := a.object("filters"); f != nil {
		typ, err := f.optType("type")
		if err != nil {
			return in, err
		}
		in.filter = &core.TransactionFilter{
			Description: f.str("description"),
			Type:        typ,
			CategoryID:  f.optStr("categoryId"),
			Month:       f.optInt("month"),
			Year:        f.optInt("year"),
		}
		if err := in.filter.Validate(); err != nil {
			return in, err
		}
	}
	if p := a.object("pagination"); p != nil {
		in.pagination = &core.Pagination{}
		if v := p.optInt("page"); v != nil {
			in.pagination.Page = *v
		}
		if v := p.optInt("limit"); v != nil {
			in.pagination.Limit = *v
		}
	}
	return in, nil
}

func (s Services) transactionOperations() []Operation {
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	decodeID := func(raw map[string]any) (string, error) { return args(raw).id("id") }
	shapeOne := func(t *core.Transaction) any { return shapeTransaction(*t) }

	return []Operation{
		Define(Operation{
			Name:        "transactions",
			Kind:        Query,
			Description: "Every transaction of the caller, newest first",
			Output:      graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(transactionType))),
		}, Handler[none, []core.Transaction]{
			Run: func(ctx context.Context, user *core.User, _ none) ([]core.Transaction, error) {
				return s.Transactions.FindAll(ctx, user.ID)
			},
			Shape: func(ts []core.Transaction) any { return shapeTransactions(ts) },
		}),
		Define(Operation{
			Name: "transactionsPaginated",
			Kind: Query,
			Args: graphql.FieldConfigArgument{
				"filters":    &graphql.ArgumentConfig{Type: transactionFilterInput},
				"pagination": &graphql.ArgumentConfig{Type: paginationInput},
			},
			Output: graphql.NewNonNull(paginatedTransactionsType),
		}, Handler[transactionPage, *core.PaginatedTransactions]{
			Decode: decodeTransactionPage,
			Run: func(ctx context.Context, user *core.User, in transactionPage) (*core.PaginatedTransactions, error) {
				return s.Transactions.FindAllWithFilters(ctx, user.ID, in.filter, in.pagination)
			},
			Shape: func(p *core.PaginatedTransactions) any {
				return map[string]any{
					"transactions": shapeTransactions(p.Transactions),
					"total":        p.Total,
					"page":         p.Page,
					"limit":        p.Limit,
					"totalPages":   p.TotalPages,
				}
			},
		}),
		Define(Operation{
			Name:   "transaction",
			Kind:   Query,
			Args:   idArg,
			Output: transactionType,
		}, Handler[string, *core.Transaction]{
			Decode: decodeID,
			Run: func(ctx context.Context, user *core.User, id string) (*core.Transaction, error) {
				t, err := s.Transactions.FindByID(ctx, id, user.ID)
				if err != nil {
					return nil, err
				}
				if t == nil {
					return nil, core.ErrTransactionNotFound
				}
				return t, nil
			},
			Shape: shapeOne,
		}),
		Define(Operation{
			Name: "createTransaction",
			Kind: Mutation,
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createTransactionInput)},
			},
			Output: graphql.NewNonNull(transactionType),
		}, Handler[core.NewTransaction, *core.Transaction]{
			Decode: decodeNewTransaction,
			Run: func(ctx context.Context, user *core.User, in core.NewTransaction) (*core.Transaction, error) {
				return s.Transactions.Create(ctx, user.ID, in)
			},
			Shape: shapeOne,
		}),
		Define(Operation{
			Name: "updateTransaction",
			Kind: Mutation,
			Args: graphql.FieldConfigArgument{
				"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateTransactionInput)},
			},
			Output: graphql.NewNonNull(transactionType),
		}, Handler[transactionUpdate, *core.Transaction]{
			Decode: decodeTransactionPatch,
			Run: func(ctx context.Context, user *core.User, in transactionUpdate) (*core.Transaction, error) {
				return s.Transactions.Update(ctx, in.id, user.ID, in.patch)
			},
			Shape: shapeOne,
		}),
		Define(Operation{
			Name:   "deleteTransaction",
			Kind:   Mutation,
			Args:   idArg,
			Output: graphql.NewNonNull(deleteResultType),
		}, Handler[string, none]{
			Decode: decodeID,
			Run: func(ctx context.Context, user *core.User, id string) (none, error) {
				return none{}, s.Transactions.Delete(ctx, id, user.ID)
			},
			Shape: func(none) any { return shapeDeleted("Transaction deleted successfully") },
		}),
	}
}
