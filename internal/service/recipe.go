package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/observability"
)

const (
	msgRequired = "This field is required."
)

// DefaultOrdering is applied when ListOptions.Ordering is empty.
var DefaultOrdering = []string{"-created_at"}

var orderableFields = map[string]bool{
	"id":           true,
	"title":        true,
	"category":     true,
	"difficulty":   true,
	"cooking_time": true,
	"created_at":   true,
	"updated_at":   true,
}

// RecipeInput holds the fields supplied on create. A nil CookingTime means
// the field was not provided.
type RecipeInput struct {
	Title        string
	Category     model.Category
	Difficulty   model.Difficulty
	CookingTime  *int
	Ingredients  string
	Instructions string
	Image        *string
}

// RecipePatch holds a partial update; nil fields are left unchanged.
type RecipePatch struct {
	Title        *string
	Category     *model.Category
	Difficulty   *model.Difficulty
	CookingTime  *int
	Ingredients  *string
	Instructions *string
	Image        *string
	ClearImage   bool
}

// ListOptions restricts and orders a listing.
type ListOptions struct {
	Category   model.Category
	Difficulty model.Difficulty
	// Search is matched case-insensitively against title and ingredients.
	// Every whitespace-separated word must match one of the two.
	Search   string
	Ordering []string
	Limit    int
	Offset   int
}

// RecipeService handles recipe operations
type RecipeService struct {
	db      *gorm.DB
	metrics *observability.Metrics
	now     func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, metrics *observability.Metrics) *RecipeService {
	return &RecipeService{
		db:      db,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock replaces the time source used for timestamps.
func (s *RecipeService) WithClock(now func() time.Time) *RecipeService {
	s.now = now
	return s
}

// Create validates and inserts a new recipe.
func (s *RecipeService) Create(ctx context.Context, in RecipeInput) (_ *model.Recipe, err error) {
	defer func() { s.metrics.IncRecipeOp("create", outcome(err)) }()

	recipe := &model.Recipe{
		Title:        strings.TrimSpace(in.Title),
		Category:     in.Category,
		Difficulty:   in.Difficulty,
		Ingredients:  strings.TrimSpace(in.Ingredients),
		Instructions: strings.TrimSpace(in.Instructions),
		Image:        normalizeImage(in.Image),
	}
	if recipe.Category == "" {
		recipe.Category = model.DefaultCategory
	}
	if recipe.Difficulty == "" {
		recipe.Difficulty = model.DefaultDifficulty
	}

	ve := validateRecipe(recipe)
	if in.CookingTime == nil {
		ve.Add("cooking_time", msgRequired)
	} else {
		recipe.CookingTime = *in.CookingTime
		validateCookingTime(ve, recipe.CookingTime)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	now := s.timestamp()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, fmt.Errorf("failed to create recipe: %w", err)
	}
	return recipe, nil
}

// Get retrieves a recipe by ID
func (s *RecipeService) Get(ctx context.Context, id uint) (_ *model.Recipe, err error) {
	defer func() { s.metrics.IncRecipeOp("get", outcome(err)) }()

	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return &recipe, nil
}

// List returns one page of recipes.
func (s *RecipeService) List(ctx context.Context, opts ListOptions) (_ []model.Recipe, err error) {
	defer func() { s.metrics.IncRecipeOp("list", outcome(err)) }()

	q, err := s.listQuery(ctx, opts)
	if err != nil {
		return nil, err
	}
	recipes := []model.Recipe{}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Iterate streams matching recipes one row at a time. Breaking out of the
// loop releases the underlying cursor.
func (s *RecipeService) Iterate(ctx context.Context, opts ListOptions) iter.Seq2[*model.Recipe, error] {
	return func(yield func(*model.Recipe, error) bool) {
		q, err := s.listQuery(ctx, opts)
		if err != nil {
			yield(nil, err)
			return
		}
		rows, err := q.Rows()
		if err != nil {
			yield(nil, fmt.Errorf("failed to query recipes: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var recipe model.Recipe
			if err := s.db.ScanRows(rows, &recipe); err != nil {
				yield(nil, fmt.Errorf("failed to scan recipe: %w", err))
				return
			}
			if !yield(&recipe, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("failed to iterate recipes: %w", err))
		}
	}
}

// Count returns the number of recipes matching the filters and search in opts.
func (s *RecipeService) Count(ctx context.Context, opts ListOptions) (int64, error) {
	q, err := s.filterQuery(ctx, opts)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return n, nil
}

// Update applies patch to the recipe and refreshes updated_at.
func (s *RecipeService) Update(ctx context.Context, id uint, patch RecipePatch) (_ *model.Recipe, err error) {
	defer func() { s.metrics.IncRecipeOp("update", outcome(err)) }()

	var updated model.Recipe
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Recipe
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: recipe %d", ErrNotFound, id)
			}
			return fmt.Errorf("failed to load recipe %d: %w", id, err)
		}

		next := current
		patch.apply(&next)
		ve := validateRecipe(&next)
		validateCookingTime(ve, next.CookingTime)
		if err := ve.OrNil(); err != nil {
			return err
		}
		next.UpdatedAt = s.nextUpdatedAt(current.UpdatedAt)

		err := tx.Model(&model.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":        next.Title,
			"category":     next.Category,
			"difficulty":   next.Difficulty,
			"cooking_time": next.CookingTime,
			"ingredients":  next.Ingredients,
			"instructions": next.Instructions,
			"image":        next.Image,
			"updated_at":   next.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update recipe %d: %w", id, err)
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetImage stores a new image reference on the recipe.
func (s *RecipeService) SetImage(ctx context.Context, id uint, ref string) (*model.Recipe, error) {
	return s.Update(ctx, id, RecipePatch{Image: &ref})
}

// Delete removes a recipe. Deleting a missing recipe fails with ErrNotFound.
func (s *RecipeService) Delete(ctx context.Context, id uint) (err error) {
	defer func() { s.metrics.IncRecipeOp("delete", outcome(err)) }()

	result := s.db.WithContext(ctx).Delete(&model.Recipe{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: recipe %d", ErrNotFound, id)
	}
	return nil
}

func (s *RecipeService) filterQuery(ctx context.Context, opts ListOptions) (*gorm.DB, error) {
	q := s.db.WithContext(ctx).Model(&model.Recipe{})

	ve := &ValidationError{}
	if opts.Category != "" {
		if !opts.Category.Valid() {
			ve.Add("category", invalidChoice(string(opts.Category)))
		}
		q = q.Where("category = ?", opts.Category)
	}
	if opts.Difficulty != "" {
		if !opts.Difficulty.Valid() {
			ve.Add("difficulty", invalidChoice(string(opts.Difficulty)))
		}
		q = q.Where("difficulty = ?", opts.Difficulty)
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	for _, word := range strings.Fields(opts.Search) {
		like := "%" + escapeLike(strings.ToLower(word)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(ingredients) LIKE ? ESCAPE '\')`, like, like)
	}
	return q, nil
}

func (s *RecipeService) listQuery(ctx context.Context, opts ListOptions) (*gorm.DB, error) {
	q, err := s.filterQuery(ctx, opts)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(opts.Ordering)
	if err != nil {
		return nil, err
	}
	q = q.Order(order)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q, nil
}

// orderBy converts "-field" style names into an ORDER BY clause. id is
// appended as a tie-breaker so pages are stable.
func orderBy(ordering []string) (clause.OrderBy, error) {
	fields := make([]string, 0, len(ordering)+1)
	for _, f := range ordering {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		fields = append(fields, DefaultOrdering...)
	}

	var columns []clause.OrderByColumn
	hasID := false
	for _, f := range fields {
		name := strings.TrimPrefix(f, "-")
		if !orderableFields[name] {
			return clause.OrderBy{}, fieldError("ordering", fmt.Sprintf("Cannot order by %q.", name))
		}
		if name == "id" {
			hasID = true
		}
		columns = append(columns, clause.OrderByColumn{
			Column: clause.Column{Name: name},
			Desc:   strings.HasPrefix(f, "-"),
		})
	}
	if !hasID {
		columns = append(columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true})
	}
	return clause.OrderBy{Columns: columns}, nil
}

func (p RecipePatch) apply(r *model.Recipe) {
	if p.Title != nil {
		r.Title = strings.TrimSpace(*p.Title)
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Difficulty != nil {
		r.Difficulty = *p.Difficulty
	}
	if p.CookingTime != nil {
		r.CookingTime = *p.CookingTime
	}
	if p.Ingredients != nil {
		r.Ingredients = strings.TrimSpace(*p.Ingredients)
	}
	if p.Instructions != nil {
		r.Instructions = strings.TrimSpace(*p.Instructions)
	}
	switch {
	case p.ClearImage:
		r.Image = nil
	case p.Image != nil:
		r.Image = normalizeImage(p.Image)
	}
}

// validateRecipe checks everything except cooking_time, whose presence
// only the caller can tell.
func validateRecipe(r *model.Recipe) *ValidationError {
	ve := &ValidationError{}
	if r.Title == "" {
		ve.Add("title", msgRequired)
	} else if n := utf8.RuneCountInString(r.Title); n > model.TitleMaxLength {
		ve.Add("title", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", model.TitleMaxLength, n))
	}
	if !r.Category.Valid() {
		ve.Add("category", invalidChoice(string(r.Category)))
	}
	if !r.Difficulty.Valid() {
		ve.Add("difficulty", invalidChoice(string(r.Difficulty)))
	}
	if r.Ingredients == "" {
		ve.Add("ingredients", msgRequired)
	}
	if r.Instructions == "" {
		ve.Add("instructions", msgRequired)
	}
	if r.Image != nil {
		if n := utf8.RuneCountInString(*r.Image); n > model.ImageMaxLength {
			ve.Add("image", fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", model.ImageMaxLength, n))
		}
	}
	return ve
}

func validateCookingTime(ve *ValidationError, minutes int) {
	if minutes < math.MinInt32 || minutes > math.MaxInt32 {
		ve.Add("cooking_time", "Ensure this value fits in a 32-bit integer.")
	}
}

func invalidChoice(value string) string {
	return fmt.Sprintf("Value %q is not a valid choice.", value)
}

func normalizeImage(ref *string) *string {
	if ref == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*ref)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *RecipeService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// nextUpdatedAt keeps updated_at strictly increasing even when the clock
// has not moved since the previous write.
func (s *RecipeService) nextUpdatedAt(prev time.Time) time.Time {
	now := s.timestamp()
	if !now.After(prev) {
		return prev.UTC().Add(time.Microsecond)
	}
	return now
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case IsValidationError(err):
		return "invalid"
	default:
		return "error"
	}
}
