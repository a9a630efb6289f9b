package cli

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/journal"
)

var withdrawCmd = &cobra.Command{
	Use:          "withdraw QUANTITY",
	Short:        "withdraw from the subaccount to the wallet",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		qty, err := parseDecimal("quantity", args[0])
		if err != nil {
			return err
		}
		asset, _ := cmd.Flags().GetString("asset")

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		ack, err := c.Withdraw(ctx, client.WithdrawRequest{Quantity: qty, Asset: asset})
		if err != nil {
			return err
		}
		recordEntry(ctx, c, journal.Entry{Action: journal.ActionWithdraw, Symbol: assetLabel(asset), Quantity: qty.String()})
		return output(cmd, ack)
	},
}

var depositCmd = &cobra.Command{
	Use:          "deposit QUANTITY",
	Short:        "deposit from the wallet into the subaccount on chain",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		qty, err := parseDecimal("quantity", args[0])
		if err != nil {
			return err
		}
		asset, _ := cmd.Flags().GetString("asset")

		c, err := newClient(true)
		if err != nil {
			return err
		}
		ok, err := c.Deposit(ctx, client.DepositRequest{Quantity: qty, Asset: asset})
		if err != nil {
			return err
		}
		status := "CONFIRMED"
		if !ok {
			status = "REVERTED"
		}
		recordEntry(ctx, c, journal.Entry{Action: journal.ActionDeposit, Symbol: assetLabel(asset), Quantity: qty.String(), Status: status})
		if !ok {
			return errors.New("deposit transaction reverted")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deposited %s %s into subaccount %d\n", qty, assetLabel(asset), c.Subaccount())
		return nil
	},
}

var referralCmd = &cobra.Command{
	Use:          "referral CODE",
	Short:        "register a referral code",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		c, err := loggedInClient(ctx)
		if err != nil {
			return err
		}
		ack, err := c.AddReferralCode(ctx, args[0])
		if errors.Is(err, types.ErrAlreadyReferred) {
			log.Warn("account is already referred")
			return nil
		}
		if err != nil {
			return err
		}
		return output(cmd, ack)
	},
}

func assetLabel(asset string) string {
	if asset == "" {
		return client.AssetUSDB
	}
	return asset
}

func init() {
	withdrawCmd.Flags().String("asset", client.AssetUSDB, "asset name or token address")
	depositCmd.Flags().String("asset", client.AssetUSDB, "asset name or token address")

	RootCmd.AddCommand(withdrawCmd, depositCmd, referralCmd)
}
