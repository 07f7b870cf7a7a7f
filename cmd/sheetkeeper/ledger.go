package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newMoneyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "money " + identityUsage + " AMOUNT",
		Short: "Add or spend money",
		Long:  "Adds a signed AMOUNT to the balance. Negative balances are allowed.",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: must be a number", args[3])
			}

			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				balance, err := d.Ledger.HandleMoney(ctx, identityArgs(d.Owner, args), amount)
				if err != nil {
					return fmt.Errorf("adjusting money: %w", err)
				}

				style := goodStyle
				if balance < 0 {
					style = badStyle
				}
				fmt.Printf("%s now has %s\n", args[2], style.Render(formatMoney(balance)))
				return nil
			})
		},
	}

	cmd.Flags().SetInterspersed(false)

	return cmd
}

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"inventory"},
		Short:   "Manage a character's inventory",
	}

	cmd.AddCommand(
		newItemAddCmd(),
		newItemRemoveCmd(),
		newItemListCmd(),
	)

	return cmd
}

func newItemAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add " + identityUsage + " ITEM [QUANTITY]",
		Short: "Add items to the inventory",
		Long:  "Adds QUANTITY (default 1) of ITEM. An existing stack grows and keeps its description.",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := quantityArg(args, 4)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				item, err := d.Ledger.HandleAddItem(ctx, identityArgs(d.Owner, args), args[3], quantity, description)
				if err != nil {
					return fmt.Errorf("adding item: %w", err)
				}
				fmt.Printf("%s now carries %s x%d\n", args[2], valueStyle.Render(displayName(item.Name)), item.Quantity)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Item description")

	return cmd
}

func newItemRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove " + identityUsage + " ITEM [QUANTITY]",
		Short: "Remove items from the inventory",
		Args:  cobra.RangeArgs(4, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := quantityArg(args, 4)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				remaining, err := d.Ledger.HandleRemoveItem(ctx, identityArgs(d.Owner, args), args[3], quantity)
				if err != nil {
					return fmt.Errorf("removing item: %w", err)
				}
				if remaining == 0 {
					fmt.Printf("%s no longer carries %s\n", args[2], displayName(args[3]))
					return nil
				}
				fmt.Printf("%s now carries %s x%d\n", args[2], valueStyle.Render(displayName(args[3])), remaining)
				return nil
			})
		},
	}
}

func newItemListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list " + identityUsage,
		Short: "Show the inventory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				items, err := d.Ledger.HandleListItems(ctx, identityArgs(d.Owner, args))
				if err != nil {
					return fmt.Errorf("listing inventory: %w", err)
				}
				fmt.Println(renderInventory(args[2], items))
				return nil
			})
		},
	}
}

// quantityArg parses args[i] as a quantity, defaulting to 1 when absent.
func quantityArg(args []string, i int) (int, error) {
	if len(args) <= i {
		return 1, nil
	}
	quantity, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid quantity %q: must be an integer", args[i])
	}
	return quantity, nil
}
