package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/ourstory/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresRecipeRepository stores recipes in the recipes table.
type PostgresRecipeRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRecipeRepository creates a PostgresRecipeRepository using the
// provided *sql.DB.
func NewPostgresRecipeRepository(db *sql.DB) *PostgresRecipeRepository {
	return &PostgresRecipeRepository{DB: db}
}

// Insert stores rec under a freshly generated id and returns that id.
func (r *PostgresRecipeRepository) Insert(ctx context.Context, rec models.Recipe) (string, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO recipes (id, title, description, image, category, time, difficulty, ingredients, steps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id, rec.Title, rec.Description, rec.Image, string(rec.Category), rec.Time, string(rec.Difficulty),
		pq.Array(nonNil(rec.Ingredients)), pq.Array(nonNil(rec.Steps)), rec.CreatedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("insert recipe: %w", err)
	}
	return id, nil
}

// List returns recipes newest first, capped to limit when limit > 0.
func (r *PostgresRecipeRepository) List(ctx context.Context, limit int) ([]models.Recipe, error) {
	query := `
		SELECT id, title, description, image, category, time, difficulty, ingredients, steps, created_at
		  FROM recipes ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var (
			rec                  models.Recipe
			category, difficulty string
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Image, &category, &rec.Time,
			&difficulty, pq.Array(&rec.Ingredients), pq.Array(&rec.Steps), &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec.Category = models.Category(category)
		rec.Difficulty = models.Difficulty(difficulty)
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// DeleteMany removes the recipes with the given ids.
func (r *PostgresRecipeRepository) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM recipes WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete recipes: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
