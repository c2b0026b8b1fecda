package api

import (
	"context"

	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
)

type period struct {
	month, year *int
}

func (s Services) dashboardOperations() []Operation {
	return []Operation{
		Define(Operation{
			Name:        "dashboard",
			Kind:        Query,
			Description: "Lifetime balance, month totals, recent activity and top categories",
			Args: graphql.FieldConfigArgument{
				"month": &graphql.ArgumentConfig{Type: graphql.Int},
				"year":  &graphql.ArgumentConfig{Type: graphql.Int},
			},
			Output: graphql.NewNonNull(dashboardType),
		}, Handler[period, *core.Dashboard]{
			Decode: func(raw map[string]any) (period, error) {
				a := args(raw)
				p := period{month: a.optInt("month"), year: a.optInt("year")}
				return p, core.ValidatePeriod(p.month, p.year)
			},
			Run: func(ctx context.Context, user *core.User, p period) (*core.Dashboard, error) {
				return s.Dashboard.Get(ctx, user.ID, p.month, p.year)
			},
			Shape: shapeDashboard,
		}),
	}
}

func shapeDashboard(d *core.Dashboard) any {
	top := make([]any, len(d.TopCategories))
	for i, u := range d.TopCategories {
		top[i] = map[string]any{
			"category":         shapeCategory(u.Category, &u.TransactionCount),
			"transactionCount": u.TransactionCount,
			"totalAmount":      u.TotalAmount.Float64(),
		}
	}
	return map[string]any{
		"balance": map[string]any{
			"total":   d.Balance.Total.Float64(),
			"income":  d.Balance.Income.Float64(),
			"expense": d.Balance.Expense.Float64(),
		},
		"recentTransactions": shapeTransactions(d.RecentTransactions),
		"topCategories":      top,
	}
}
