package api

import (
	"context"

	"github.com/graphql-go/graphql"

	"fintrack/internal/core"
)

type categoryUpdate struct {
	id    string
	patch core.CategoryPatch
}

func (s Services) categoryOperations() []Operation {
	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}
	decodeID := func(raw map[string]any) (string, error) { return args(raw).id("id") }

	return []Operation{
		Define(Operation{
			Name:        "categories",
			Kind:        Query,
			Description: "Categories of the caller, newest first, with usage counts",
			Output:      graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(categoryType))),
		}, Handler[none, []core.CategoryWithCount]{
			Run: func(ctx context.Context, user *core.User, _ none) ([]core.CategoryWithCount, error) {
				return s.Categories.FindAll(ctx, user.ID)
			},
			Shape: func(cs []core.CategoryWithCount) any {
				out := make([]any, len(cs))
				for i, c := range cs {
					out[i] = shapeCategoryWithCount(c)
				}
				return out
			},
		}),
		Define(Operation{
			Name:   "category",
			Kind:   Query,
			Args:   idArg,
			Output: categoryType,
		}, Handler[string, *core.CategoryWithCount]{
			Decode: decodeID,
			Run: func(ctx context.Context, user *core.User, id string) (*core.CategoryWithCount, error) {
				c, err := s.Categories.FindByID(ctx, id, user.ID)
				if err != nil {
					return nil, err
				}
				if c == nil {
					return nil, core.ErrCategoryNotFound
				}
				return c, nil
			},
			Shape: func(c *core.CategoryWithCount) any { return shapeCategoryWithCount(*c) },
		}),
		Define(Operation{
			Name:   "categoryStats",
			Kind:   Query,
			Output: graphql.NewNonNull(categoryStatsType),
		}, Handler[none, *core.CategoryStats]{
			Run: func(ctx context.Context, user *core.User, _ none) (*core.CategoryStats, error) {
				return s.Categories.Stats(ctx, user.ID)
			},
			Shape: func(st *core.CategoryStats) any {
				out := map[string]any{
					"totalCategories":       st.TotalCategories,
					"totalTransactions":     st.TotalTransactions,
					"mostUsedCategory":      nil,
					"mostUsedCategoryCount": st.MostUsedCategoryCount,
				}
				if st.MostUsedCategory != nil {
					out["mostUsedCategory"] = shapeCategory(*st.MostUsedCategory, &st.MostUsedCategoryCount)
				}
				return out
			},
		}),
		Define(Operation{
			Name: "createCategory",
			Kind: Mutation,
			Args: graphql.FieldConfigArgument{
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createCategoryInput)},
			},
			Output: graphql.NewNonNull(categoryType),
		}, Handler[core.NewCategory, *core.Category]{
			Decode: func(raw map[string]any) (core.NewCategory, error) {
				d := args(raw).object("data")
				in := core.NewCategory{
					Name:        d.str("name"),
					Description: d.optStr("description"),
					Icon:        d.str("icon"),
					Color:       d.str("color"),
				}
				return in, in.Validate()
			},
			Run: func(ctx context.Context, user *core.User, in core.NewCategory) (*core.Category, error) {
				return s.Categories.Create(ctx, user.ID, in)
			},
			Shape: func(c *core.Category) any { return shapeCategory(*c, nil) },
		}),
		Define(Operation{
			Name: "updateCategory",
			Kind: Mutation,
			Args: graphql.FieldConfigArgument{
				"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"data": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateCategoryInput)},
			},
			Output: graphql.NewNonNull(categoryType),
		}, Handler[categoryUpdate, *core.Category]{
			Decode: func(raw map[string]any) (categoryUpdate, error) {
				a := args(raw)
				id, err := a.id("id")
				if err != nil {
					return categoryUpdate{}, err
				}
				d := a.object("data")
				p := core.CategoryPatch{
					Name:        d.optStr("name"),
					Description: d.optStr("description"),
					Icon:        d.optStr("icon"),
					Color:       d.optStr("color"),
				}
				return categoryUpdate{id: id, patch: p}, p.Validate()
			},
			Run: func(ctx context.Context, user *core.User, in categoryUpdate) (*core.Category, error) {
				return s.Categories.Update(ctx, in.id, user.ID, in.patch)
			},
			Shape: func(c *core.Category) any { return shapeCategory(*c, nil) },
		}),
		Define(Operation{
			Name:   "deleteCategory",
			Kind:   Mutation,
			Args:   idArg,
			Output: graphql.NewNonNull(deleteResultType),
		}, Handler[string, none]{
			Decode: decodeID,
			Run: func(ctx context.Context, user *core.User, id string) (none, error) {
				return none{}, s.Categories.Delete(ctx, id, user.ID)
			},
			Shape: func(none) any { return shapeDeleted("Category deleted successfully") },
		}),
	}
}
