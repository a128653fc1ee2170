package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Manage customers",
}

var customerAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a customer",
	Args:  cobra.NoArgs,
	RunE:  runCustomerAdd,
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	Args:  cobra.NoArgs,
	RunE:  runCustomerList,
}

var customerRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomerRm,
}

var customerFlags struct {
	phone     string
	firstName string
	lastName  string
	email     string
	starch    string
	notes     string
}

func init() {
	customerAddCmd.Flags().StringVar(&customerFlags.phone, "phone", "", "phone number (required)")
	customerAddCmd.Flags().StringVar(&customerFlags.firstName, "first-name", "", "first name")
	customerAddCmd.Flags().StringVar(&customerFlags.lastName, "last-name", "", "last name")
	customerAddCmd.Flags().StringVar(&customerFlags.email, "email", "", "email address")
	customerAddCmd.Flags().StringVar(&customerFlags.starch, "starch", models.StarchNone, "starch preference (none|light|medium|heavy)")
	customerAddCmd.Flags().StringVar(&customerFlags.notes, "notes", "", "free-form notes")
	_ = customerAddCmd.MarkFlagRequired("phone")

	customerCmd.AddCommand(customerAddCmd)
	customerCmd.AddCommand(customerListCmd)
	customerCmd.AddCommand(customerRmCmd)
}

func runCustomerAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	customer := &models.Customer{
		Phone:     customerFlags.phone,
		FirstName: customerFlags.firstName,
		LastName:  customerFlags.lastName,
		Email:     customerFlags.email,
		Starch:    customerFlags.starch,
		Notes:     customerFlags.notes,
	}

	customers := store.New[models.Customer](a.database, a.log)
	if err := customers.Create(customer); err != nil {
		return fmt.Errorf("add customer: %w", err)
	}

	fmt.Printf("Added %s (%s)\n", okStyle.Render(customer.FirstName+" "+customer.LastName), customer.ID)
	return nil
}

func runCustomerList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	customers, err := store.New[models.Customer](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(customers) == 0 {
		fmt.Println("No customers.")
		return nil
	}

	for _, c := range customers {
		synced := okStyle.Render("synced")
		if c.IsLocalOnly {
			synced = warnStyle.Render("local")
		}
		fmt.Printf("  %-42s %-22s %-16s %s\n",
			dimStyle.Render(c.ID), c.FirstName+" "+c.LastName, c.Phone, synced)
	}
	return nil
}

func runCustomerRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.New[models.Customer](a.database, a.log).SoftDelete(args[0]); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	fmt.Printf("Deleted %s (removal propagates on next sync)\n", args[0])
	return nil
}
