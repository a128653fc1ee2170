package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage product categories",
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryAdd,
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var categoryRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryRm,
}

var categorySortOrder int

func init() {
	categoryAddCmd.Flags().IntVar(&categorySortOrder, "sort-order", 0, "display position")

	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryRmCmd)
}

func runCategoryAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	// The category inherits the device's business when one has been
	// downloaded; until then the repair pass fills it in after first sync.
	var businessID string
	if businesses, err := store.New[models.Business](a.database, a.log).FindAll(); err == nil && len(businesses) > 0 {
		businessID = businesses[0].ID
	}

	category := &models.Category{
		BusinessID: businessID,
		Name:       args[0],
		SortOrder:  categorySortOrder,
	}

	if err := store.New[models.Category](a.database, a.log).Create(category); err != nil {
		return fmt.Errorf("add category: %w", err)
	}

	fmt.Printf("Added %s (%s)\n", okStyle.Render(category.Name), category.ID)
	return nil
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	categories, err := store.New[models.Category](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(categories) == 0 {
		fmt.Println("No categories.")
		return nil
	}

	for _, c := range categories {
		synced := okStyle.Render("synced")
		if c.IsLocalOnly {
			synced = warnStyle.Render("local")
		}
		fmt.Printf("  %-42s %-26s %s\n", dimStyle.Render(c.ID), c.Name, synced)
	}
	return nil
}

func runCategoryRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.New[models.Category](a.database, a.log).SoftDelete(args[0]); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	fmt.Printf("Deleted %s (removal propagates on next sync)\n", args[0])
	return nil
}
