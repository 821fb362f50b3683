package core

import (
	"context"
	"strings"

	"github.com/atinyakov/ourstory/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CategoryAll matches every recipe category.
const CategoryAll models.Category = "all"

// RecipeDraft is the add-recipe form. Ingredients and Steps hold one entry
// per line.
type RecipeDraft struct {
	Title       string
	Description string
	Image       string
	Category    models.Category
	Time        string
	Difficulty  models.Difficulty
	Ingredients string
	Steps       string
}

// Recipes returns the held recipes, newest first, that belong to category
// and whose title or description contains search, ignoring case.
func (a *App) Recipes(category models.Category, search string) []models.Recipe {
	a.mu.Lock()
	items := a.recipes.snapshot()
	a.mu.Unlock()

	lower := cases.Lower(language.Turkish)
	needle := lower.String(search)
	out := items[:0]
	for _, r := range items {
		if category != CategoryAll && category != "" && r.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(lower.String(r.Title), needle) &&
			!strings.Contains(lower.String(r.Description), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// AddRecipe appends the draft as a new recipe. Blank lines in ingredients
// and steps are dropped. Failure reaches the Alerter as "add recipe".
func (a *App) AddRecipe(d RecipeDraft) error {
	if err := a.privileged(); err != nil {
		return err
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return ErrMissingField
	}
	r := models.Recipe{
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
		Category:    d.Category,
		Time:        strings.TrimSpace(d.Time),
		Difficulty:  d.Difficulty,
		Ingredients: splitLines(d.Ingredients),
		Steps:       splitLines(d.Steps),
		CreatedAt:   a.cfg.Now().UTC(),
	}
	if r.Category == "" {
		r.Category = models.CategoryMain
	}
	if r.Difficulty == "" {
		r.Difficulty = models.DifficultyMedium
	}
	return a.spawn("add recipe", func(ctx context.Context) error {
		if _, err := a.cfg.Recipes.Append(ctx, r); err != nil {
			a.cfg.Alerter.Alert("add recipe", err)
			return err
		}
		return nil
	})
}

// DeleteRecipe removes one recipe. Failure reaches the Alerter as
// "delete recipe".
func (a *App) DeleteRecipe(id string) error {
	if err := a.privileged(); err != nil {
		return err
	}
	if id == "" {
		return ErrNotFound
	}
	return a.spawn("delete recipe", func(ctx context.Context) error {
		if err := a.cfg.Recipes.DeleteMany(ctx, []string{id}); err != nil {
			a.cfg.Alerter.Alert("delete recipe", err)
			return err
		}
		return nil
	})
}

func splitLines(s string) []string {
	lines := []string{}
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
