package cli

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/stream"
)

var watchCmd = &cobra.Command{
	Use:          "watch SYMBOL",
	Short:        "print live market stream frames",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		env, err := cfg.ClientEnvironment()
		if err != nil {
			return err
		}
		kinds, _ := cmd.Flags().GetStringSlice("stream")
		interval, _ := cmd.Flags().GetString("interval")

		symbol := args[0]
		var names []string
		for _, k := range kinds {
			switch k {
			case "depth":
				names = append(names, stream.DepthStream(symbol))
			case "trade":
				names = append(names, stream.TradeStream(symbol))
			case "ticker":
				names = append(names, stream.TickerStream(symbol))
			case "kline":
				names = append(names, stream.KlineStream(symbol, interval))
			default:
				return fmt.Errorf("unknown stream kind %q", k)
			}
		}

		sc, err := stream.Dial(ctx, stream.Config{URL: env.WebsocketURL})
		if err != nil {
			return err
		}
		defer sc.Close()

		if err := sc.Subscribe(names...); err != nil {
			return err
		}
		log.Infof("subscribed to %v", sc.Subscriptions())

		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-sc.Errors():
				return err
			case msg, ok := <-sc.Messages():
				if !ok {
					return nil
				}
				if msg.Stream == "" {
					log.Debugf("control frame: %s", msg.Raw)
					continue
				}
				fmt.Fprintf(out, "%s %s\n", msg.Stream, msg.Data)
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringSlice("stream", []string{"depth", "trade"}, "streams: depth, trade, ticker, kline")
	watchCmd.Flags().String("interval", "1m", "kline interval")

	RootCmd.AddCommand(watchCmd)
}
