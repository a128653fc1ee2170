package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products",
}

var productAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	Args:  cobra.NoArgs,
	RunE:  runProductAdd,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

var productRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductRm,
}

var productFlags struct {
	sku        string
	name       string
	category   string
	price      float64
	cost       float64
	taxExempt  bool
}

func init() {
	productAddCmd.Flags().StringVar(&productFlags.sku, "sku", "", "unique SKU (required)")
	productAddCmd.Flags().StringVar(&productFlags.name, "name", "", "display name (required)")
	productAddCmd.Flags().StringVar(&productFlags.category, "category", "", "local category id")
	productAddCmd.Flags().Float64Var(&productFlags.price, "price", 0, "unit price")
	productAddCmd.Flags().Float64Var(&productFlags.cost, "cost", 0, "cost price")
	productAddCmd.Flags().BoolVar(&productFlags.taxExempt, "tax-exempt", false, "exempt from sales tax")
	_ = productAddCmd.MarkFlagRequired("sku")
	_ = productAddCmd.MarkFlagRequired("name")

	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productListCmd)
	productCmd.AddCommand(productRmCmd)
}

func runProductAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if productFlags.category != "" {
		if _, err := store.New[models.Category](a.database, a.log).FindByID(productFlags.category); err != nil {
			return fmt.Errorf("category %s: %w", productFlags.category, err)
		}
	}

	product := &models.Product{
		SKU:        productFlags.sku,
		Name:       productFlags.name,
		CategoryID: productFlags.category,
		UnitPrice:  productFlags.price,
		CostPrice:  productFlags.cost,
		TaxExempt:  productFlags.taxExempt,
		IsActive:   true,
	}

	if err := store.New[models.Product](a.database, a.log).Create(product); err != nil {
		return fmt.Errorf("add product: %w", err)
	}

	fmt.Printf("Added %s %s at $%.2f (%s)\n",
		okStyle.Render(product.SKU), product.Name, product.UnitPrice, product.ID)
	return nil
}

func runProductList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	products, err := store.New[models.Product](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Println("No products.")
		return nil
	}

	for _, p := range products {
		synced := okStyle.Render("synced")
		if p.IsLocalOnly {
			synced = warnStyle.Render("local")
		}
		fmt.Printf("  %-42s %-14s %-26s $%-8.2f %s\n",
			dimStyle.Render(p.ID), p.SKU, p.Name, p.UnitPrice, synced)
	}
	return nil
}

func runProductRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.New[models.Product](a.database, a.log).SoftDelete(args[0]); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	fmt.Printf("Deleted %s (removal propagates on next sync)\n", args[0])
	return nil
}
