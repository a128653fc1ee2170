package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/hash"
	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var employeeCmd = &cobra.Command{
	Use:   "employee",
	Short: "Manage register operators",
}

var employeeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an employee",
	Args:  cobra.NoArgs,
	RunE:  runEmployeeAdd,
}

var employeeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees",
	Args:  cobra.NoArgs,
	RunE:  runEmployeeList,
}

var employeeRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Deactivate and delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeRm,
}

var employeeVerifyCmd = &cobra.Command{
	Use:   "verify <id>",
	Short: "Check an operator PIN",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmployeeVerify,
}

var employeeFlags struct {
	email     string
	firstName string
	lastName  string
	pin       string
	role      string
}

func init() {
	employeeAddCmd.Flags().StringVar(&employeeFlags.email, "email", "", "email address (required)")
	employeeAddCmd.Flags().StringVar(&employeeFlags.firstName, "first-name", "", "first name")
	employeeAddCmd.Flags().StringVar(&employeeFlags.lastName, "last-name", "", "last name")
	employeeAddCmd.Flags().StringVar(&employeeFlags.pin, "pin", "", "register PIN; stored hashed")
	employeeAddCmd.Flags().StringVar(&employeeFlags.role, "role", models.RoleClerk, "role (owner|manager|clerk)")
	_ = employeeAddCmd.MarkFlagRequired("email")

	employeeVerifyCmd.Flags().StringVar(&employeeFlags.pin, "pin", "", "PIN to check (required)")
	_ = employeeVerifyCmd.MarkFlagRequired("pin")

	employeeCmd.AddCommand(employeeAddCmd)
	employeeCmd.AddCommand(employeeListCmd)
	employeeCmd.AddCommand(employeeRmCmd)
	employeeCmd.AddCommand(employeeVerifyCmd)
}

func runEmployeeAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	employee := &models.Employee{
		Email:     employeeFlags.email,
		FirstName: employeeFlags.firstName,
		LastName:  employeeFlags.lastName,
		Role:      employeeFlags.role,
		IsActive:  true,
	}
	if employeeFlags.pin != "" {
		employee.PinHash = hash.PIN(employee.Email, employeeFlags.pin)
	}

	// New operators are scoped to the register's business when one exists.
	businesses, err := store.New[models.Business](a.database, a.log).FindAll()
	if err != nil {
		return err
	}
	if len(businesses) > 0 {
		employee.BusinessID = businesses[0].ID
	}

	employees := store.New[models.Employee](a.database, a.log)
	if err := employees.Create(employee); err != nil {
		return fmt.Errorf("add employee: %w", err)
	}

	fmt.Printf("Added %s (%s)\n", okStyle.Render(employee.Email), employee.ID)
	return nil
}

func runEmployeeList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	employees, err := store.New[models.Employee](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(employees) == 0 {
		fmt.Println("No employees.")
		return nil
	}

	for _, e := range employees {
		synced := okStyle.Render("synced")
		if e.IsLocalOnly {
			synced = warnStyle.Render("local")
		}
		active := ""
		if !e.IsActive {
			active = errStyle.Render(" inactive")
		}
		fmt.Printf("  %-42s %-30s %-10s %s%s\n",
			dimStyle.Render(e.ID), e.Email, e.Role, synced, active)
	}
	return nil
}

func runEmployeeRm(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := store.New[models.Employee](a.database, a.log).SoftDelete(args[0]); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}

	fmt.Printf("Deleted %s (removal propagates on next sync)\n", args[0])
	return nil
}

func runEmployeeVerify(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	employee, err := store.New[models.Employee](a.database, a.log).FindByID(args[0])
	if err != nil {
		return fmt.Errorf("look up employee: %w", err)
	}

	if employee.IsDeleted || !employee.IsActive {
		return fmt.Errorf("employee %s is inactive", employee.Email)
	}
	if employee.PinHash == "" {
		return fmt.Errorf("employee %s has no PIN set", employee.Email)
	}
	if !hash.VerifyPIN(employee.Email, employeeFlags.pin, employee.PinHash) {
		return fmt.Errorf("PIN rejected for %s", employee.Email)
	}

	fmt.Printf("PIN accepted for %s\n", okStyle.Render(employee.Email))
	return nil
}
