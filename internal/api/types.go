package api

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// recipeResponse converts a stored recipe into its API form. A failure to
// resolve the image URL is logged and leaves image_url empty.
func recipeResponse(ctx context.Context, images storage.ImageStore, logger *slog.Logger, r *model.Recipe) types.Recipe {
	out := types.Recipe{
		ID:              r.ID,
		Title:           r.Title,
		Category:        string(r.Category),
		CategoryLabel:   r.Category.Label(),
		Difficulty:      string(r.Difficulty),
		DifficultyLabel: r.Difficulty.Label(),
		CookingTime:     r.CookingTime,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		Image:           r.Image,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Image != nil && images != nil {
		url, err := images.URL(ctx, *r.Image)
		if err != nil {
			logger.Warn("failed to resolve image url", "recipe_id", r.ID, "error", err)
		} else {
			out.ImageURL = url
		}
	}
	return out
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		ve := &service.ValidationError{}
		ve.Add("id", "A valid positive integer is required.")
		return 0, ve
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		ve := &service.ValidationError{}
		ve.Add(name, "A valid non-negative integer is required.")
		return 0, ve
	}
	return n, nil
}

// splitOrdering turns "-created_at,title" into its field list.
func splitOrdering(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func choices(in []model.Choice) []types.Choice {
	out := make([]types.Choice, len(in))
	for i, ch := range in {
		out[i] = types.Choice{Value: ch.Value, Label: ch.Label}
	}
	return out
}

func bodyError(err error) error {
	ve := &service.ValidationError{}
	ve.Add("body", "Invalid JSON body: "+err.Error())
	return ve
}
