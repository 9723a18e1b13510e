package types

import (
	"time"
)

// Recipe is the API representation of a stored recipe.
type Recipe struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	CategoryLabel   string    `json:"category_label"`
	Difficulty      string    `json:"difficulty"`
	DifficultyLabel string    `json:"difficulty_label"`
	CookingTime     int       `json:"cooking_time"`
	Ingredients     string    `json:"ingredients"`
	Instructions    string    `json:"instructions"`
	Image           *string   `json:"image"`
	ImageURL        string    `json:"image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CreateRecipeRequest represents the request body for creating a recipe.
// It is also used for full replacement with PUT.
type CreateRecipeRequest struct {
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Difficulty   string  `json:"difficulty"`
	CookingTime  *int    `json:"cooking_time"`
	Ingredients  string  `json:"ingredients"`
	Instructions string  `json:"instructions"`
	Image        *string `json:"image"`
}

// PatchRecipeRequest carries a partial update. Absent fields are unchanged;
// "image": null clears the image and null on any other field is rejected.
type PatchRecipeRequest struct {
	Title        Nullable[string] `json:"title"`
	Category     Nullable[string] `json:"category"`
	Difficulty   Nullable[string] `json:"difficulty"`
	CookingTime  Nullable[int]    `json:"cooking_time"`
	Ingredients  Nullable[string] `json:"ingredients"`
	Instructions Nullable[string] `json:"instructions"`
	Image        Nullable[string] `json:"image"`
}

// RecipeList is the response of the public listing endpoint.
type RecipeList struct {
	Recipes []Recipe `json:"recipes"`
	Count   int64    `json:"count"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// AdminRecipeRow holds the columns shown in the admin list view.
type AdminRecipeRow struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Difficulty  string    `json:"difficulty"`
	CookingTime int       `json:"cooking_time"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChoiceFilter describes one list filter and its options.
type ChoiceFilter struct {
	Field   string   `json:"field"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// AdminRecipeList is the response of the admin list view.
type AdminRecipeList struct {
	Columns      []string         `json:"columns"`
	SearchFields []string         `json:"search_fields"`
	Filters      []ChoiceFilter   `json:"filters"`
	Results      []AdminRecipeRow `json:"results"`
	Count        int64            `json:"count"`
	Page         int              `json:"page"`
	NumPages     int              `json:"num_pages"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
