// Package cli implements the hundredx command line tool.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/pkg/config"
	"github.com/hundredx/go100x/pkg/logger"
	"github.com/hundredx/go100x/pkg/ratelimit"
)

// cfg is loaded once by the root command's PersistentPreRunE.
var cfg *config.Config

var RootCmd = &cobra.Command{
	Use:   "hundredx",
	Short: "100x exchange command line client",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

func init() {
	RootCmd.PersistentFlags().String("config", "", "config file (yaml or json)")
	RootCmd.PersistentFlags().String("env", "", "environment: prod, testnet or local")
	RootCmd.PersistentFlags().Int("subaccount", -1, "subaccount id, overrides the config")
	RootCmd.PersistentFlags().String("rest-url", "", "override the REST base URL")
	RootCmd.PersistentFlags().Bool("debug", false, "debug logging")
}

func setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	configFile, _ := flags.GetString("config")
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if env, _ := flags.GetString("env"); env != "" {
		loaded.Environment = env
	}
	if sub, _ := flags.GetInt("subaccount"); sub >= 0 {
		loaded.SubaccountID = sub
	}
	if restURL, _ := flags.GetString("rest-url"); restURL != "" {
		loaded.Endpoints.RestURL = restURL
	}
	if debug, _ := flags.GetBool("debug"); debug {
		loaded.Log.Level = "debug"
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	// stdout carries command output.
	loaded.Log.Stderr = true
	if err := logger.Init(loaded.Log); err != nil {
		return errors.Wrap(err, "init logger")
	}
	cfg = loaded
	return nil
}

// newClient builds a client from the loaded config. The key is only resolved
// when withKey is set so market data commands work without a wallet.
func newClient(withKey bool) (*client.Client, error) {
	env, err := cfg.ClientEnvironment()
	if err != nil {
		return nil, err
	}
	unit, err := cfg.ExpirationUnit()
	if err != nil {
		return nil, err
	}
	opts := []client.Option{
		client.WithSubaccount(uint8(cfg.SubaccountID)),
		client.WithTimeout(cfg.Timeout),
		client.WithExpirationUnit(unit),
		client.WithLogger(logger.WithField("component", "hundredx.client")),
		client.WithRateLimiter(ratelimit.NewManager()),
	}
	if !withKey {
		return client.NewClient(env, nil, opts...)
	}
	key, err := cfg.ResolvePrivateKey()
	if err != nil {
		return nil, err
	}
	c, err := client.NewClient(env, key, opts...)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"env":        env.Name,
		"wallet":     c.Address().Hex(),
		"subaccount": c.Subaccount(),
	}).Debug("client ready")
	return c, nil
}

// loggedInClient returns a keyed client with an open session.
func loggedInClient(ctx context.Context) (*client.Client, error) {
	c, err := newClient(true)
	if err != nil {
		return nil, err
	}
	if err := c.Login(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// commandContext is cancelled on SIGINT or SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func Execute() {
	if err := RootCmd.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("cannot execute command")
		os.Exit(1)
	}
}
