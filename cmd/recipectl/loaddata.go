package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

const recipeFixtureModel = "recipes.recipe"

// fixture is one entry of a Django-style fixture file.
type fixture struct {
	Model  string        `yaml:"model"`
	Fields recipeFixture `yaml:"fields"`
}

type recipeFixture struct {
	Title        string  `yaml:"title"`
	Category     string  `yaml:"category"`
	Difficulty   string  `yaml:"difficulty"`
	CookingTime  *int    `yaml:"cooking_time"`
	Ingredients  string  `yaml:"ingredients"`
	Instructions string  `yaml:"instructions"`
	Image        *string `yaml:"image"`
}

func newLoadDataCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "loaddata <file.yaml>",
		Short: "Load recipes from a YAML fixture",
		Long: `Load recipes from a YAML fixture. Every entry is validated and the
whole file is loaded in one transaction, so a bad entry loads nothing.

Fixture format:
  - model: recipes.recipe
    fields:
      title: Pancakes
      category: BREAKFAST
      difficulty: EASY
      cooking_time: 20
      ingredients: flour, milk, eggs
      instructions: Mix and fry.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixtures, err := readFixtures(args[0])
			if err != nil {
				return err
			}

			err = a.db.WithContext(cmd.Context()).Transaction(func(tx *gorm.DB) error {
				recipes := service.NewRecipeService(tx, nil)
				for i, f := range fixtures {
					if f.Model != recipeFixtureModel {
						return fmt.Errorf("entry %d: unsupported model %q", i+1, f.Model)
					}
					if _, err := recipes.Create(cmd.Context(), f.Fields.input()); err != nil {
						return fmt.Errorf("entry %d (%q): %w", i+1, f.Fields.Title, err)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Installed %d object(s) from 1 fixture(s)\n", len(fixtures))
			return nil
		},
	}
}

func readFixtures(path string) ([]fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var fixtures []fixture
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return fixtures, nil
}

func (f recipeFixture) input() service.RecipeInput {
	return service.RecipeInput{
		Title:        f.Title,
		Category:     model.Category(f.Category),
		Difficulty:   model.Difficulty(f.Difficulty),
		CookingTime:  f.CookingTime,
		Ingredients:  f.Ingredients,
		Instructions: f.Instructions,
		Image:        f.Image,
	}
}
