package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// AdminPageSize matches the Django admin's list_per_page.
const AdminPageSize = 100

var (
	adminColumns      = []string{"title", "category", "difficulty", "cooking_time", "created_at"}
	adminSearchFields = []string{"title", "ingredients"}
)

// AdminHandler serves the recipe change list used by the admin UI.
type AdminHandler struct {
	recipes service.IRecipeService
}

func NewAdminHandler(recipes service.IRecipeService) *AdminHandler {
	return &AdminHandler{recipes: recipes}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup, protect ...gin.HandlerFunc) {
	admin := router.Group("/admin", protect...)
	{
		admin.GET("/recipes", h.ListRecipes)
	}
}

// ListRecipes accepts category, difficulty, q (search), o (comma separated
// ordering) and page.
func (h *AdminHandler) ListRecipes(c *gin.Context) {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if page < 1 {
		ve := &service.ValidationError{}
		ve.Add("page", "A valid page number is required.")
		_ = c.Error(ve)
		return
	}

	opts := service.ListOptions{
		Category:   model.Category(c.Query("category")),
		Difficulty: model.Difficulty(c.Query("difficulty")),
		Search:     strings.TrimSpace(c.Query("q")),
		Ordering:   splitOrdering(c.Query("o")),
	}

	ctx := c.Request.Context()
	count, err := h.recipes.Count(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	numPages := numPages(count)
	if page > numPages {
		_ = c.Error(fmt.Errorf("%w: page %d", service.ErrNotFound, page))
		return
	}

	opts.Limit = AdminPageSize
	opts.Offset = (page - 1) * AdminPageSize
	recipes, err := h.recipes.List(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rows := make([]types.AdminRecipeRow, 0, len(recipes))
	for _, r := range recipes {
		rows = append(rows, types.AdminRecipeRow{
			ID:          r.ID,
			Title:       r.String(),
			Category:    string(r.Category),
			Difficulty:  string(r.Difficulty),
			CookingTime: r.CookingTime,
			CreatedAt:   r.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, types.AdminRecipeList{
		Columns:      adminColumns,
		SearchFields: adminSearchFields,
		Filters: []types.ChoiceFilter{
			{Field: "category", Choices: choices(model.CategoryChoices())},
			{Field: "difficulty", Choices: choices(model.DifficultyChoices())},
		},
		Results:  rows,
		Count:    count,
		Page:     page,
		NumPages: numPages,
	})
}

// numPages never returns less than one so an empty list still has a first page.
func numPages(count int64) int {
	if count <= 0 {
		return 1
	}
	return int((count + AdminPageSize - 1) / AdminPageSize)
}
