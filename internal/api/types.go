package api

import (
	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
)

// Output types. Resolvers return the map shapes built by the shape*
// functions below; graphql-go reads fields from maps by key.
var (
	transactionTypeEnum = graphql.NewEnum(graphql.EnumConfig{
		Name:        "TransactionType",
		Description: "Kind of transaction: income or expense",
		Values: graphql.EnumValueConfigMap{
			string(core.Income):  &graphql.EnumValueConfig{Value: string(core.Income)},
			string(core.Expense): &graphql.EnumValueConfig{Value: string(core.Expense)},
		},
	})

	userType = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"createdAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"name":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description":      &graphql.Field{Type: graphql.String},
			"icon":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"color":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"userId":           &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"transactionCount": &graphql.Field{Type: graphql.Int},
			"createdAt":        &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedAt":        &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	transactionType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Transaction",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"amount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"type":        &graphql.Field{Type: graphql.NewNonNull(transactionTypeEnum)},
			"date":        &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"userId":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"categoryId":  &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: categoryType},
			"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
			"updatedAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	authPayloadType = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"refreshToken": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"user":         &graphql.Field{Type: graphql.NewNonNull(userType)},
		},
	})

	deleteResultType = graphql.NewObject(graphql.ObjectConfig{
		Name: "DeleteResult",
		Fields: graphql.Fields{
			"success": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"message": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	categoryStatsType = graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryStats",
		Fields: graphql.Fields{
			"totalCategories":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalTransactions":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"mostUsedCategory":      &graphql.Field{Type: categoryType},
			"mostUsedCategoryCount": &graphql.Field{Type: graphql.Int},
		},
	})

	paginatedTransactionsType = graphql.NewObject(graphql.ObjectConfig{
		Name: "PaginatedTransactions",
		Fields: graphql.Fields{
			"transactions": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(transactionType)))},
			"total":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"page":         &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"limit":        &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalPages":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	balanceType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Balance",
		Fields: graphql.Fields{
			"total":   &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"income":  &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
			"expense": &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	categoryUsageType = graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryUsage",
		Fields: graphql.Fields{
			"category":         &graphql.Field{Type: graphql.NewNonNull(categoryType)},
			"transactionCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"totalAmount":      &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		},
	})

	dashboardType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Dashboard",
		Fields: graphql.Fields{
			"balance":            &graphql.Field{Type: graphql.NewNonNull(balanceType)},
			"recentTransactions": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(transactionType)))},
			"topCategories":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(categoryUsageType)))},
		},
	})
)

// Input types.
var (
	updateUserInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	createCategoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateCategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"icon":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"color":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	updateCategoryInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateCategoryInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"icon":        &graphql.InputObjectFieldConfig{Type: graphql.String},
			"color":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	createTransactionInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateTransactionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"description": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"amount":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
			"type":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(transactionTypeEnum)},
			"date":        &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
			"categoryId":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	updateTransactionInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateTransactionInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"amount":      &graphql.InputObjectFieldConfig{Type: graphql.Float},
			"type":        &graphql.InputObjectFieldConfig{Type: transactionTypeEnum},
			"date":        &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
			"categoryId":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"clearCategory": &graphql.InputObjectFieldConfig{
				Type:        graphql.Boolean,
				Description: "Detach the transaction from its category",
			},
		},
	})

	transactionFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "TransactionFilterInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"type":        &graphql.InputObjectFieldConfig{Type: transactionTypeEnum},
			"categoryId":  &graphql.InputObjectFieldConfig{Type: graphql.String},
			"month":       &graphql.InputObjectFieldConfig{Type: graphql.Int},
			"year":        &graphql.InputObjectFieldConfig{Type: graphql.Int},
		},
	})

	paginationInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "TransactionPaginationInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"page":  &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: core.DefaultPage},
			"limit": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: core.DefaultLimit},
		},
	})
)

func shapeUser(u core.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
}

// shapeCategory leaves transactionCount null when count is nil.
func shapeCategory(c core.Category, count *int) map[string]any {
	out := map[string]any{
		"id":               c.ID,
		"name":             c.Name,
		"description":      nil,
		"icon":             c.Icon,
		"color":            c.Color,
		"userId":           c.UserID,
		"transactionCount": nil,
		"createdAt":        c.CreatedAt,
		"updatedAt":        c.UpdatedAt,
	}
	if c.Description != nil {
		out["description"] = *c.Description
	}
	if count != nil {
		out["transactionCount"] = *count
	}
	return out
}

func shapeCategoryWithCount(c core.CategoryWithCount) map[string]any {
	n := c.TransactionCount
	return shapeCategory(c.Category, &n)
}

func shapeTransaction(t core.Transaction) map[string]any {
	out := map[string]any{
		"id":          t.ID,
		"description": t.Description,
		"amount":      t.Amount.Float64(),
		"type":        string(t.Type),
		"date":        t.Date,
		"userId":      t.UserID,
		"categoryId":  nil,
		"category":    nil,
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
	}
	if t.CategoryID != nil {
		out["categoryId"] = *t.CategoryID
	}
	if t.Category != nil {
		out["category"] = shapeCategory(*t.Category, nil)
	}
	return out
}

func shapeTransactions(ts []core.Transaction) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = shapeTransaction(t)
	}
	return out
}

func shapeDeleted(message string) map[string]any {
	return map[string]any{"success": true, "message": message}
}
