package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{
	Light: "#399ee6",
	Dark:  "#59c2ff",
})

func newRecipesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Inspect and remove recipes",
	}
	cmd.AddCommand(newRecipesListCmd(a), newRecipesGetCmd(a), newRecipesDeleteCmd(a))
	return cmd
}

func newRecipesListCmd(a *app) *cobra.Command {
	var (
		opts     service.ListOptions
		category string
		level    string
		ordering string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recipes, newest first",
		Long: `List recipes with the columns of the admin change list.

Examples:
  recipectl recipes list --category DINNER
  recipectl recipes list --search "beef carrot" --ordering cooking_time,title
  recipectl recipes list --limit 10 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Category = model.Category(strings.ToUpper(category))
			opts.Difficulty = model.Difficulty(strings.ToUpper(level))
			if ordering != "" {
				opts.Ordering = strings.Split(ordering, ",")
			}

			var recipes []*model.Recipe
			for r, err := range a.recipes.Iterate(cmd.Context(), opts) {
				if err != nil {
					return err
				}
				recipes = append(recipes, r)
			}

			if asJSON {
				if recipes == nil {
					recipes = []*model.Recipe{}
				}
				return writeJSON(a, recipes)
			}
			return writeTable(a, recipes)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&level, "difficulty", "", "Filter by difficulty")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Search title and ingredients")
	cmd.Flags().StringVar(&ordering, "ordering", "", "Comma separated fields, prefix with - for descending")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of recipes (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRecipesGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			recipe, err := a.recipes.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a, recipe)
			}

			image := "-"
			if recipe.Image != nil {
				image = *recipe.Image
			}
			fmt.Fprintf(a.out, "%s\n\n", headerStyle.Render(recipe.String()))
			fmt.Fprintf(a.out, "ID:           %d\n", recipe.ID)
			fmt.Fprintf(a.out, "Category:     %s\n", recipe.Category.Label())
			fmt.Fprintf(a.out, "Difficulty:   %s\n", recipe.Difficulty.Label())
			fmt.Fprintf(a.out, "Cooking time: %d min\n", recipe.CookingTime)
			fmt.Fprintf(a.out, "Image:        %s\n", image)
			fmt.Fprintf(a.out, "Created:      %s\n", recipe.CreatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(a.out, "Updated:      %s\n", recipe.UpdatedAt.Format("2006-01-02 15:04"))
			fmt.Fprintf(a.out, "\nIngredients:\n%s\n\nInstructions:\n%s\n", recipe.Ingredients, recipe.Instructions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newRecipesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecipeID(args[0])
			if err != nil {
				return err
			}
			if err := a.recipes.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted recipe %d\n", id)
			return nil
		},
	}
}

func parseRecipeID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid recipe id %q", raw)
	}
	return uint(id), nil
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTable aligns the rows with tabwriter and styles the header line
// afterwards so escape codes do not skew the column widths.
func writeTable(a *app, recipes []*model.Recipe) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tDIFFICULTY\tCOOKING TIME\tCREATED AT")
	for _, r := range recipes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.String(), r.Category.Label(), r.Difficulty.Label(), r.CookingTime,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	header, rest, _ := strings.Cut(buf.String(), "\n")
	fmt.Fprintln(a.out, headerStyle.Render(strings.TrimRight(header, " ")))
	fmt.Fprint(a.out, rest)
	fmt.Fprintf(a.out, "\n%d recipe(s)\n", len(recipes))
	return nil
}
