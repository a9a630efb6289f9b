package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/config"
	"github.com/hundredx/go100x/pkg/journal"
)

// recordOrders journals orders when a journal is configured. Failures are
// logged and never fail the command: the exchange already accepted the action.
func recordOrders(ctx context.Context, c *client.Client, action string, orders ...*types.Order) {
	withJournal(func(j *journal.Journal) error {
		for _, o := range orders {
			if _, err := j.RecordOrder(ctx, string(c.Environment().Name), action, o); err != nil {
				return err
			}
		}
		return nil
	})
}

func recordEntry(ctx context.Context, c *client.Client, e journal.Entry) {
	e.Env = string(c.Environment().Name)
	e.Account = c.Address().Hex()
	e.Subaccount = c.Subaccount()
	withJournal(func(j *journal.Journal) error {
		_, err := j.Record(ctx, e)
		return err
	})
}

func withJournal(fn func(j *journal.Journal) error) {
	if cfg == nil || cfg.Journal == "" {
		return
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		log.WithError(err).Warn("journal unavailable")
		return
	}
	defer j.Close()
	if err := fn(j); err != nil {
		log.WithError(err).Warn("journal write failed")
	}
}

var journalCmd = &cobra.Command{
	Use:          "journal",
	Short:        "list write actions recorded locally",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if cfg.Journal == "" {
			return errors.Errorf("no journal configured: set %s or journal in the config file", config.EnvJournal)
		}
		limit, _ := cmd.Flags().GetInt("limit")
		account, _ := cmd.Flags().GetString("account")

		j, err := journal.Open(cfg.Journal)
		if err != nil {
			return err
		}
		defer j.Close()

		entries, err := j.List(ctx, account, limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tENV\tACTION\tSYMBOL\tORDER\tSIDE\tTYPE\tPRICE\tQUANTITY\tSTATUS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.Time.Local().Format("2006-01-02 15:04:05"), e.Env, e.Action, e.Symbol,
				e.OrderID, e.Side, e.OrderType, e.Price, e.Quantity, e.Status)
		}
		return w.Flush()
	},
}

func init() {
	journalCmd.Flags().Int("limit", 50, "max entries")
	journalCmd.Flags().String("account", "", "only this wallet address")

	RootCmd.AddCommand(journalCmd)
}
