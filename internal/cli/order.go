package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/models"
	"github.com/tillworks/till/internal/store"
)

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE:  runOrderList,
}

var orderPickupCmd = &cobra.Command{
	Use:   "pickup <id>",
	Short: "Mark an order picked up",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderPickup,
}

var orderVoidCmd = &cobra.Command{
	Use:   "void <id>",
	Short: "Void an order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrderVoid,
}

func init() {
	orderCmd.AddCommand(orderListCmd)
	orderCmd.AddCommand(orderPickupCmd)
	orderCmd.AddCommand(orderVoidCmd)
}

func runOrderList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	orders, err := store.New[models.Order](a.database, a.log).FindAll()
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Println("No orders.")
		return nil
	}

	for _, o := range orders {
		synced := okStyle.Render("synced")
		if o.IsLocalOnly {
			synced = warnStyle.Render("local")
		}
		fmt.Printf("  %-42s #%-10s %-10s %2d item(s) $%-8.2f %s\n",
			dimStyle.Render(o.ID), o.Number, o.Status, len(o.Items), o.Total, synced)
	}
	return nil
}

func runOrderPickup(cmd *cobra.Command, args []string) error {
	return updateOrderStatus(args[0], models.OrderPickedUp)
}

func runOrderVoid(cmd *cobra.Command, args []string) error {
	return updateOrderStatus(args[0], models.OrderVoided)
}

func updateOrderStatus(id, status string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	orders := store.New[models.Order](a.database, a.log)
	order, err := orders.FindByID(id)
	if err != nil {
		return err
	}

	order.Status = status
	if status == models.OrderPickedUp {
		now := time.Now().UTC()
		order.PickedUpAt = &now
	}

	if err := orders.Update(order); err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	fmt.Printf("Order #%s is now %s\n", order.Number, okStyle.Render(status))
	return nil
}
