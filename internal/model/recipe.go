package model

import (
	"time"
)

// Category is the meal slot a recipe belongs to.
type Category string

const (
	CategoryBreakfast Category = "BREAKFAST"
	CategoryLunch     Category = "LUNCH"
	CategoryDinner    Category = "DINNER"
	CategoryDessert   Category = "DESSERT"
	CategorySnack     Category = "SNACK"

	DefaultCategory = CategoryLunch
)

// Difficulty is how hard a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"

	DefaultDifficulty = DifficultyMedium
)

// Choice pairs a stored value with its display label.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var categoryLabels = map[Category]string{
	CategoryBreakfast: "Breakfast",
	CategoryLunch:     "Lunch",
	CategoryDinner:    "Dinner",
	CategoryDessert:   "Dessert",
	CategorySnack:     "Snack",
}

var difficultyLabels = map[Difficulty]string{
	DifficultyEasy:   "Easy",
	DifficultyMedium: "Medium",
	DifficultyHard:   "Hard",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{CategoryBreakfast, CategoryLunch, CategoryDinner, CategoryDessert, CategorySnack}
}

// Difficulties returns every difficulty in declaration order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}

func (d Difficulty) Valid() bool {
	_, ok := difficultyLabels[d]
	return ok
}

func (d Difficulty) Label() string {
	return difficultyLabels[d]
}

// CategoryChoices lists the categories with their labels.
func CategoryChoices() []Choice {
	out := make([]Choice, 0, len(categoryLabels))
	for _, c := range Categories() {
		out = append(out, Choice{Value: string(c), Label: c.Label()})
	}
	return out
}

// DifficultyChoices lists the difficulties with their labels.
func DifficultyChoices() []Choice {
	out := make([]Choice, 0, len(difficultyLabels))
	for _, d := range Difficulties() {
		out = append(out, Choice{Value: string(d), Label: d.Label()})
	}
	return out
}

const (
	TitleMaxLength = 200
	ImageMaxLength = 100
)

type Recipe struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title        string     `gorm:"size:200;not null" json:"title"`
	Category     Category   `gorm:"size:20;not null;default:'LUNCH';index;check:chk_recipes_category,category IN ('BREAKFAST','LUNCH','DINNER','DESSERT','SNACK')" json:"category"`
	Difficulty   Difficulty `gorm:"size:10;not null;default:'MEDIUM';index;check:chk_recipes_difficulty,difficulty IN ('EASY','MEDIUM','HARD')" json:"difficulty"`
	CookingTime  int        `gorm:"type:integer;not null" json:"cooking_time"`
	Ingredients  string     `gorm:"type:text;not null" json:"ingredients"`
	Instructions string     `gorm:"type:text;not null" json:"instructions"`
	Image        *string    `gorm:"size:100" json:"image"`
	CreatedAt    time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (Recipe) TableName() string {
	return "recipes"
}

// String returns the recipe title.
func (r Recipe) String() string {
	return r.Title
}
