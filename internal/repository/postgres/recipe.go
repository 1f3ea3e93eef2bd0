package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
)

type RecipeRepo struct {
	db DBTX
}

const getActiveRecipe = `-- name: GetActiveRecipe
SELECT id, name, shop_item_id, active, sort_order FROM recipes
WHERE id = $1 AND active
`

func (r *RecipeRepo) GetActiveRecipe(ctx context.Context, recipeID uuid.UUID) (models.Recipe, error) {
	rows, _ := r.db.Query(ctx, getActiveRecipe, recipeID)
	recipe, err := pgx.CollectOneRow(rows, rowToRecipe)

	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		return recipe, apperrors.ErrRecipeUnavailable
	default:
		return recipe, dbError(err)
	}

	recipe.Lines, err = r.listLines(ctx, recipe.ID)
	if err != nil {
		return recipe, err
	}

	return recipe, nil
}

const listActiveRecipes = `-- name: ListActiveRecipes
SELECT id, name, shop_item_id, active, sort_order FROM recipes
WHERE active
ORDER BY sort_order, id
`

func (r *RecipeRepo) ListActiveRecipes(ctx context.Context) ([]models.Recipe, error) {
	rows, _ := r.db.Query(ctx, listActiveRecipes)
	recipes, err := pgx.CollectRows(rows, rowToRecipe)

	if err != nil {
		return nil, dbError(err)
	}

	for i := range recipes {
		recipes[i].Lines, err = r.listLines(ctx, recipes[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return recipes, nil
}

const createRecipe = `-- name: CreateRecipe
INSERT INTO recipes (id, name, shop_item_id, active, sort_order)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, shop_item_id, active, sort_order
`

const createRecipeLine = `-- name: CreateRecipeLine
INSERT INTO recipe_lines (recipe_id, prize_id, quantity)
VALUES ($1, $2, $3)
`

func (r *RecipeRepo) CreateRecipe(ctx context.Context, recipe models.Recipe) (models.Recipe, error) {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}

	lines := recipe.Lines

	rows, _ := r.db.Query(ctx, createRecipe, recipe.ID, recipe.Name, recipe.ShopItemID, recipe.Active, recipe.SortOrder)
	recipe, err := pgx.CollectOneRow(rows, rowToRecipe)
	if err != nil {
		return recipe, dbError(err)
	}

	for _, line := range lines {
		_, err := r.db.Exec(ctx, createRecipeLine, recipe.ID, line.PrizeID, line.Quantity)
		if err != nil {
			return recipe, dbError(err)
		}
	}

	recipe.Lines = lines
	return recipe, nil
}

const listRecipeLines = `-- name: ListRecipeLines
SELECT prize_id, quantity FROM recipe_lines
WHERE recipe_id = $1
ORDER BY prize_id
`

func (r *RecipeRepo) listLines(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeLine, error) {
	rows, _ := r.db.Query(ctx, listRecipeLines, recipeID)
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RecipeLine, error) {
		var l models.RecipeLine
		err := row.Scan(&l.PrizeID, &l.Quantity)
		return l, err
	})

	if err != nil {
		return nil, dbError(err)
	}

	return lines, nil
}

func rowToRecipe(row pgx.CollectableRow) (models.Recipe, error) {
	var r models.Recipe
	err := row.Scan(&r.ID, &r.Name, &r.ShopItemID, &r.Active, &r.SortOrder)
	return r, err
}
