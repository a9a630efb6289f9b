package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
)

var productsCmd = &cobra.Command{
	Use:          "products [symbol]",
	Short:        "list products, or show one",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := newClient(false)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			p, err := c.GetProduct(ctx, args[0])
			if err != nil {
				return err
			}
			return output(cmd, p)
		}

		products, err := c.ListProducts(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSYMBOL\tTYPE\tACTIVE\tMARK\tMIN QTY\tINCREMENT")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%s\t%s\n",
				p.ID, p.Symbol, p.ProductType, p.IsActive,
				units(p.MarkPrice), units(p.MinQuantity), units(p.Increment))
		}
		return w.Flush()
	},
}

var tickerCmd = &cobra.Command{
	Use:          "ticker [symbol]",
	Short:        "24h ticker of one symbol or of all symbols",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := newClient(false)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			t, err := c.GetSymbol(ctx, args[0])
			if err != nil {
				return err
			}
			return output(cmd, t)
		}
		tickers, err := c.GetSymbols(ctx)
		if err != nil {
			return err
		}
		return output(cmd, tickers)
	},
}

var depthCmd = &cobra.Command{
	Use:          "depth SYMBOL",
	Short:        "order book snapshot",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		limit, _ := cmd.Flags().GetInt("limit")
		granularity, _ := cmd.Flags().GetInt("granularity")

		c, err := newClient(false)
		if err != nil {
			return err
		}
		depth, err := c.GetDepth(ctx, args[0], client.DepthOptions{Limit: limit, Granularity: granularity})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SIDE\tPRICE\tQUANTITY")
		for i := len(depth.Asks) - 1; i >= 0; i-- {
			fmt.Fprintf(w, "ask\t%s\t%s\n", units(depth.Asks[i].Price()), units(depth.Asks[i].Quantity()))
		}
		for _, l := range depth.Bids {
			fmt.Fprintf(w, "bid\t%s\t%s\n", units(l.Price()), units(l.Quantity()))
		}
		return w.Flush()
	},
}

var timeCmd = &cobra.Command{
	Use:          "time",
	Short:        "server time",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := newClient(false)
		if err != nil {
			return err
		}
		st, err := c.GetServerTime(ctx)
		if err != nil {
			return err
		}
		server := time.UnixMilli(st.ServerTime)
		fmt.Fprintf(cmd.OutOrStdout(), "%s (drift %s)\n", server.UTC().Format(time.RFC3339Nano), time.Since(server).Round(time.Millisecond))
		return nil
	},
}

var tradesCmd = &cobra.Command{
	Use:          "trades SYMBOL",
	Short:        "recent public trades",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		lookback, _ := cmd.Flags().GetInt("lookback")
		c, err := newClient(false)
		if err != nil {
			return err
		}
		trades, err := c.GetTradeHistory(ctx, args[0], lookback)
		if err != nil {
			return err
		}
		return output(cmd, trades)
	},
}

var klinesCmd = &cobra.Command{
	Use:          "klines SYMBOL",
	Short:        "candlesticks",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		interval, _ := cmd.Flags().GetString("interval")
		limit, _ := cmd.Flags().GetInt("limit")
		since, _ := cmd.Flags().GetDuration("since")

		opts := client.CandleOptions{Interval: interval, Limit: limit}
		if since > 0 {
			opts.StartTime = time.Now().Add(-since).UnixMilli()
		}

		c, err := newClient(false)
		if err != nil {
			return err
		}
		candles, err := c.GetCandlestick(ctx, args[0], opts)
		if err != nil {
			return err
		}
		return output(cmd, candles)
	},
}

func init() {
	depthCmd.Flags().Int("limit", 5, "number of levels")
	depthCmd.Flags().Int("granularity", 0, "price granularity")
	tradesCmd.Flags().Int("lookback", 10, "number of trades")
	klinesCmd.Flags().String("interval", "1m", "candle interval")
	klinesCmd.Flags().Int("limit", 0, "max candles")
	klinesCmd.Flags().Duration("since", 0, "start this long ago")

	RootCmd.AddCommand(productsCmd, tickerCmd, depthCmd, timeCmd, tradesCmd, klinesCmd)
}
