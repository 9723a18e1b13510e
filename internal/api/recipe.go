package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/storage"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100

	// multipartOverhead allows for boundaries and headers around the file.
	multipartOverhead = 64 << 10
)

type RecipeHandler struct {
	recipes       service.IRecipeService
	images        storage.ImageStore
	metrics       *observability.Metrics
	logger        *slog.Logger
	maxImageBytes int64
}

func NewRecipeHandler(recipes service.IRecipeService, images storage.ImageStore, metrics *observability.Metrics, logger *slog.Logger, maxImageBytes int64) *RecipeHandler {
	return &RecipeHandler{
		recipes:       recipes,
		images:        images,
		metrics:       metrics,
		logger:        logger,
		maxImageBytes: maxImageBytes,
	}
}

// RegisterRoutes mounts the recipe endpoints. Reads are public; protect is
// run before every write.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, protect ...gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}

	writes := recipes.Group("", protect...)
	{
		writes.POST("", h.CreateRecipe)
		writes.PUT("/:id", h.ReplaceRecipe)
		writes.PATCH("/:id", h.UpdateRecipe)
		writes.DELETE("/:id", h.DeleteRecipe)
		writes.POST("/:id/image", h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultPageLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if limit == 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		_ = c.Error(err)
		return
	}

	opts := service.ListOptions{
		Category:   model.Category(c.Query("category")),
		Difficulty: model.Difficulty(c.Query("difficulty")),
		Search:     c.Query("search"),
		Ordering:   splitOrdering(c.Query("ordering")),
		Limit:      limit,
		Offset:     offset,
	}

	ctx := c.Request.Context()
	recipes, err := h.recipes.List(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	count, err := h.recipes.Count(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]types.Recipe, 0, len(recipes))
	for i := range recipes {
		out = append(out, recipeResponse(ctx, h.images, h.logger, &recipes[i]))
	}
	c.JSON(http.StatusOK, types.RecipeList{
		Recipes: out,
		Count:   count,
		Limit:   limit,
		Offset:  offset,
	})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse(c.Request.Context(), h.images, h.logger, recipe)})
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bodyError(err))
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), service.RecipeInput{
		Title:        req.Title,
		Category:     model.Category(req.Category),
		Difficulty:   model.Difficulty(req.Difficulty),
		CookingTime:  req.CookingTime,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Image:        req.Image,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	observability.WithRecipe(h.logger, recipe.ID).Info("recipe created", "admin", c.GetString("username"))
	c.JSON(http.StatusCreated, gin.H{"recipe": recipeResponse(c.Request.Context(), h.images, h.logger, recipe)})
}

// ReplaceRecipe handles PUT. Every field is replaced; omitted category and
// difficulty fall back to their defaults and an omitted image is cleared.
func (h *RecipeHandler) ReplaceRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bodyError(err))
		return
	}
	if req.CookingTime == nil {
		ve := &service.ValidationError{}
		ve.Add("cooking_time", "This field is required.")
		_ = c.Error(ve)
		return
	}

	category := model.Category(req.Category)
	if category == "" {
		category = model.DefaultCategory
	}
	difficulty := model.Difficulty(req.Difficulty)
	if difficulty == "" {
		difficulty = model.DefaultDifficulty
	}

	patch := service.RecipePatch{
		Title:        &req.Title,
		Category:     &category,
		Difficulty:   &difficulty,
		CookingTime:  req.CookingTime,
		Ingredients:  &req.Ingredients,
		Instructions: &req.Instructions,
		Image:        req.Image,
		ClearImage:   req.Image == nil,
	}
	h.update(c, id, patch)
}

// UpdateRecipe handles PATCH.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req types.PatchRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bodyError(err))
		return
	}

	ve := &service.ValidationError{}
	for field, null := range map[string]bool{
		"title":        req.Title.IsNull(),
		"category":     req.Category.IsNull(),
		"difficulty":   req.Difficulty.IsNull(),
		"cooking_time": req.CookingTime.IsNull(),
		"ingredients":  req.Ingredients.IsNull(),
		"instructions": req.Instructions.IsNull(),
	} {
		if null {
			ve.Add(field, "This field may not be null.")
		}
	}
	if err := ve.OrNil(); err != nil {
		_ = c.Error(err)
		return
	}

	patch := service.RecipePatch{
		Title:        req.Title.Ptr(),
		CookingTime:  req.CookingTime.Ptr(),
		Ingredients:  req.Ingredients.Ptr(),
		Instructions: req.Instructions.Ptr(),
		Image:        req.Image.Ptr(),
		ClearImage:   req.Image.IsNull(),
	}
	if v := req.Category.Ptr(); v != nil {
		category := model.Category(*v)
		patch.Category = &category
	}
	if v := req.Difficulty.Ptr(); v != nil {
		difficulty := model.Difficulty(*v)
		patch.Difficulty = &difficulty
	}
	h.update(c, id, patch)
}

func (h *RecipeHandler) update(c *gin.Context, id uint, patch service.RecipePatch) {
	recipe, err := h.recipes.Update(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	observability.WithRecipe(h.logger, id).Info("recipe updated", "admin", c.GetString("username"))
	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse(c.Request.Context(), h.images, h.logger, recipe)})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	observability.WithRecipe(h.logger, id).Info("recipe deleted", "admin", c.GetString("username"))
	c.Status(http.StatusNoContent)
}

// UploadImage stores the multipart "image" field and saves its reference
// on the recipe.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.recipes.Get(ctx, id); err != nil {
		_ = c.Error(err)
		return
	}

	requestLimit := h.maxImageBytes + multipartOverhead
	if c.Request.ContentLength > requestLimit {
		h.tooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, requestLimit)

	header, err := c.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(c)
			return
		}
		h.metrics.IncUpload(h.images.Backend(), "invalid")
		ve := &service.ValidationError{}
		ve.Add("image", "No file was submitted.")
		_ = c.Error(ve)
		return
	}
	if header.Size > h.maxImageBytes {
		h.tooLarge(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	ref, err := h.images.Save(ctx, file)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			h.metrics.IncUpload(h.images.Backend(), "invalid")
			ve := &service.ValidationError{}
			ve.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
			_ = c.Error(ve)
			return
		}
		h.metrics.IncUpload(h.images.Backend(), "error")
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.SetImage(ctx, id, ref)
	if err != nil {
		h.metrics.IncUpload(h.images.Backend(), "error")
		if derr := h.images.Delete(context.WithoutCancel(ctx), ref); derr != nil {
			observability.WithRecipe(h.logger, id).Error("failed to remove orphaned image",
				"image", ref, "backend", h.images.Backend(), "error", derr)
		}
		_ = c.Error(err)
		return
	}
	h.metrics.IncUpload(h.images.Backend(), "ok")
	observability.WithRecipe(h.logger, id).Info("recipe image uploaded", "image", ref, "backend", h.images.Backend())
	c.JSON(http.StatusOK, gin.H{"recipe": recipeResponse(ctx, h.images, h.logger, recipe)})
}

func (h *RecipeHandler) tooLarge(c *gin.Context) {
	h.metrics.IncUpload(h.images.Backend(), "too_large")
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("image exceeds the %d byte limit", h.maxImageBytes),
	})
}
