package cli

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/journal"
)

func productID(ctx context.Context, c *client.Client, symbol string) (uint32, error) {
	id, err := c.ProductID(ctx, symbol)
	if err != nil {
		return 0, errors.Wrapf(err, "lookup product %s", symbol)
	}
	return id, nil
}

var orderCmd = &cobra.Command{
	Use:   "order SYMBOL SIDE QUANTITY [PRICE]",
	Short: "place an order",
	Example: "  hundredx order ethperp buy 0.1 3000\n" +
		"  hundredx order ethperp sell 0.1 --type market\n" +
		"  hundredx order ethperp buy 0.1 2990 --replace 100001",
	Args:         cobra.RangeArgs(3, 4),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		side, err := types.ParseOrderSide(args[1])
		if err != nil {
			return err
		}
		req := client.OrderRequest{Side: side}
		if req.Quantity, err = parseDecimal("quantity", args[2]); err != nil {
			return err
		}
		if len(args) == 4 {
			if req.Price, err = parseDecimal("price", args[3]); err != nil {
				return err
			}
		}

		orderType, _ := cmd.Flags().GetString("type")
		if req.OrderType, err = types.ParseOrderType(orderType); err != nil {
			return err
		}
		tif, _ := cmd.Flags().GetString("tif")
		if req.TimeInForce, err = types.ParseTimeInForce(tif); err != nil {
			return err
		}

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		if req.ProductID, err = productID(ctx, c, args[0]); err != nil {
			return err
		}

		var order *types.Order
		action := journal.ActionOrder
		if replace, _ := cmd.Flags().GetString("replace"); replace != "" {
			action = journal.ActionReplace
			order, err = c.CancelAndReplaceOrder(ctx, req, replace)
		} else {
			order, err = c.CreateOrder(ctx, req)
		}
		if err != nil {
			return err
		}
		recordOrders(ctx, c, action, order)
		return output(cmd, order)
	},
}

var cancelCmd = &cobra.Command{
	Use:          "cancel SYMBOL ORDER_ID",
	Short:        "cancel one order",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		id, err := productID(ctx, c, args[0])
		if err != nil {
			return err
		}
		ack, err := c.CancelOrder(ctx, client.CancelOrderRequest{ProductID: id, OrderID: args[1]})
		if err != nil {
			return err
		}
		recordEntry(ctx, c, journal.Entry{Action: journal.ActionCancel, Symbol: args[0], OrderID: args[1]})
		return output(cmd, ack)
	},
}

var cancelAllCmd = &cobra.Command{
	Use:          "cancel-all SYMBOL",
	Short:        "cancel every open order of a product",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		id, err := productID(ctx, c, args[0])
		if err != nil {
			return err
		}
		ack, err := c.CancelAllOrders(ctx, client.CancelAllOrdersRequest{ProductID: id})
		if err != nil {
			return err
		}
		recordEntry(ctx, c, journal.Entry{Action: journal.ActionCancelAll, Symbol: args[0]})
		return output(cmd, ack)
	},
}

var closeAllCmd = &cobra.Command{
	Use:          "close-all",
	Short:        "close every long position with a market order",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		log.Infof("wallet %s subaccount %d", c.Address().Hex(), c.Subaccount())

		balances, err := c.GetSpotBalances(ctx)
		if err != nil {
			return err
		}
		for _, b := range balances {
			log.Infof("balance %s: %s", b.Asset, units(b.Quantity))
		}

		orders, err := closePositions(ctx, c)
		recordOrders(ctx, c, journal.ActionOrder, orders...)
		if err != nil {
			return err
		}
		return output(cmd, orders)
	},
}

// closePositions sells every position with a positive quantity at market,
// using the current mark price as the order price.
func closePositions(ctx context.Context, c *client.Client) ([]*types.Order, error) {
	positions, err := c.GetPosition(ctx, "")
	if err != nil {
		return nil, err
	}

	var orders []*types.Order
	for _, p := range positions {
		if !p.Quantity.IsPositive() {
			continue
		}
		ticker, err := c.GetSymbol(ctx, p.ProductSymbol)
		if err != nil {
			return orders, err
		}
		size := client.WeiToDecimal(p.Quantity)
		exit := client.WeiToDecimal(ticker.MarkPrice).Truncate(0)

		log.WithFields(log.Fields{
			"symbol": p.ProductSymbol,
			"size":   size.String(),
			"entry":  units(p.AvgEntryPrice),
			"exit":   exit.String(),
		}).Info("closing position")

		order, err := c.CreateOrder(ctx, client.OrderRequest{
			ProductID:   p.ProductID,
			Quantity:    size,
			Price:       exit,
			Side:        types.OrderSideSell,
			OrderType:   types.OrderTypeMarket,
			TimeInForce: types.TimeInForceGTC,
		})
		if err != nil {
			return orders, errors.Wrapf(err, "close %s", p.ProductSymbol)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func init() {
	orderCmd.Flags().String("type", "LIMIT", "order type: "+strings.Join(orderTypeNames(), ", "))
	orderCmd.Flags().String("tif", "GTC", "time in force: GTC, FOK, IOC")
	orderCmd.Flags().String("replace", "", "order id to cancel and replace")

	RootCmd.AddCommand(orderCmd, cancelCmd, cancelAllCmd, closeAllCmd)
}

func orderTypeNames() []string {
	var names []string
	for t := types.OrderTypeLimit; t.Valid(); t++ {
		names = append(names, t.String())
	}
	return names
}
