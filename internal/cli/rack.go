package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var rackCmd = &cobra.Command{
	Use:   "rack",
	Short: "Manage rack assignments",
}

var rackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List occupied rack slots",
	Args:  cobra.NoArgs,
	RunE:  runRackList,
}

var rackCheckinCmd = &cobra.Command{
	Use:   "checkin <slot> <order-id>",
	Short: "Put a finished order on a rack slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runRackCheckin,
}

var rackCheckoutCmd = &cobra.Command{
	Use:   "checkout <id>",
	Short: "Take an order off the rack",
	Args:  cobra.ExactArgs(1),
	RunE:  runRackCheckout,
}

func init() {
	rackCmd.AddCommand(rackListCmd)
	rackCmd.AddCommand(rackCheckinCmd)
	rackCmd.AddCommand(rackCheckoutCmd)
}

func runRackList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	racks, err := store.New[models.RackAssignment](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(racks) == 0 {
		fmt.Println("Rack is empty.")
		return nil
	}

	for _, r := range racks {
		if r.CheckedOutAt != nil {
			continue
		}
		fmt.Printf("  %-6s %-42s since %s\n",
			okStyle.Render(r.Slot), dimStyle.Render(r.OrderID),
			r.CheckedInAt.Local().Format("Jan 2 15:04"))
	}
	return nil
}

func runRackCheckin(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	order, err := store.New[models.Order](a.database, a.log).FindByID(args[1])
	if err != nil {
		return fmt.Errorf("order %s: %w", args[1], err)
	}

	assignment := &models.RackAssignment{
		Slot:        args[0],
		OrderID:     order.ID,
		CustomerID:  order.CustomerID,
		CheckedInAt: time.Now().UTC(),
	}

	if err := store.New[models.RackAssignment](a.database, a.log).Create(assignment); err != nil {
		return fmt.Errorf("check in: %w", err)
	}

	fmt.Printf("Order #%s on slot %s (%s)\n", order.Number, okStyle.Render(assignment.Slot), assignment.ID)
	return nil
}

func runRackCheckout(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	racks := store.New[models.RackAssignment](a.database, a.log)
	assignment, err := racks.FindByID(args[0])
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	assignment.CheckedOutAt = &now
	if err := racks.Update(assignment); err != nil {
		return fmt.Errorf("check out: %w", err)
	}

	fmt.Printf("Slot %s is free\n", okStyle.Render(assignment.Slot))
	return nil
}
