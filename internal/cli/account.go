package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var balancesCmd = &cobra.Command{
	Use:          "balances",
	Short:        "spot balances of the subaccount",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		balances, err := c.GetSpotBalances(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ASSET\tQUANTITY\tPENDING WITHDRAWAL")
		for _, b := range balances {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.Asset, units(b.Quantity), units(b.PendingWithdrawal))
		}
		return w.Flush()
	},
}

var positionsCmd = &cobra.Command{
	Use:          "positions [symbol]",
	Short:        "open positions",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var symbol string
		if len(args) == 1 {
			symbol = args[0]
		}
		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		positions, err := c.GetPosition(ctx, symbol)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SYMBOL\tQUANTITY\tENTRY\tPNL\tMARGIN\tLIQUIDATION")
		for _, p := range positions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ProductSymbol,
				units(p.Quantity), units(p.AvgEntryPrice), units(p.PnL),
				units(p.Margin), units(p.LiquidationPrice))
		}
		return w.Flush()
	},
}

var openOrdersCmd = &cobra.Command{
	Use:          "open-orders [symbol]",
	Short:        "open orders of the subaccount",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var symbol string
		if len(args) == 1 {
			symbol = args[0]
		}
		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		orders, err := c.GetOpenOrders(ctx, symbol)
		if err != nil {
			return err
		}
		return output(cmd, orders)
	},
}

var ordersCmd = &cobra.Command{
	Use:          "orders [symbol]",
	Short:        "order history, optionally by id",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		var symbol string
		if len(args) == 1 {
			symbol = args[0]
		}
		ids, _ := cmd.Flags().GetStringSlice("id")

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		orders, err := c.GetOrders(ctx, symbol, ids)
		if err != nil {
			return err
		}
		return output(cmd, orders)
	},
}

var signersCmd = &cobra.Command{
	Use:          "approved-signers",
	Short:        "signers approved for the subaccount",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		signers, err := c.GetApprovedSigners(ctx)
		if err != nil {
			return err
		}
		return output(cmd, signers)
	},
}

var sessionCmd = &cobra.Command{
	Use:          "session",
	Short:        "log in and print the session status",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		status, err := c.SessionStatus(ctx)
		if err != nil {
			return err
		}
		if logout, _ := cmd.Flags().GetBool("logout"); logout {
			if _, err := c.Logout(ctx); err != nil {
				return err
			}
		}
		return output(cmd, status)
	},
}

func init() {
	ordersCmd.Flags().StringSlice("id", nil, "order ids")
	sessionCmd.Flags().Bool("logout", true, "end the session afterwards")

	RootCmd.AddCommand(balancesCmd, positionsCmd, openOrdersCmd, ordersCmd, signersCmd, sessionCmd)
}
