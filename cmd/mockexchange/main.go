package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/internal/mockexchange"
	"github.com/hundredx/go100x/pkg/logger"
	"github.com/hundredx/go100x/pkg/shutdown"
)

func main() {
	// Load .env (best-effort). If missing, fall back to real env vars.
	_ = godotenv.Load()

	getenv := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}

	var (
		listenAddr = flag.String("listen", getenv("MOCKEXCHANGE_LISTEN", ":8080"), "HTTP listen address")
		envName    = flag.String("env", getenv("HUNDRED_X_ENV", "testnet"), "environment whose signing domain is accepted")
		expiration = flag.String("expiration-unit", "micros", "order expiration unit: micros or millis")
		accounts   = flag.String("accounts", getenv("MOCKEXCHANGE_ACCOUNTS", ""), "comma separated addresses seeded with a balance and positions")
		logLevel   = flag.String("log-level", getenv("HUNDRED_X_LOG_LEVEL", "info"), "log level")
	)
	flag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel}); err != nil {
		panic(err)
	}

	name, err := types.ParseEnvironment(*envName)
	if err != nil {
		logger.Errorf("invalid environment: %v", err)
		os.Exit(1)
	}
	env, err := client.EnvironmentFor(name)
	if err != nil {
		logger.Errorf("invalid environment: %v", err)
		os.Exit(1)
	}

	cfg := mockexchange.Config{Domain: env.Domain(), ExpirationScale: 1000}
	if *expiration == "millis" {
		cfg.ExpirationScale = 1
	}
	for _, a := range strings.Split(*accounts, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !common.IsHexAddress(a) {
			logger.Errorf("invalid account address %q", a)
			os.Exit(1)
		}
		balances, positions := mockexchange.AccountFixtures(common.HexToAddress(a).Hex(), 0)
		cfg.Balances = append(cfg.Balances, balances...)
		cfg.Positions = append(cfg.Positions, positions...)
	}

	srv := mockexchange.New(cfg)
	httpSrv := &http.Server{
		Addr:              *listenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	manager := shutdown.NewManager()
	manager.OnShutdown(func(ctx context.Context) {
		_ = httpSrv.Shutdown(ctx)
	})

	go func() {
		logger.Infof("mock exchange (%s, chain %d) listening on %s", env.Name, env.ChainID, *listenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("http server error: %v", err)
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	<-stopCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	manager.Shutdown(ctx)
	_ = logger.Close()
}
