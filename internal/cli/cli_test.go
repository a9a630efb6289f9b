package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/internal/mockexchange"
	"github.com/hundredx/go100x/pkg/config"
)

const (
	testPrivateKey = "0x8f58e47491ac5fe6897216208fe1fed316d6ee89de6c901bfc521c2178ebe6dd"
	testAddress    = "0xEEF7faba495b4875d67E3ED8FB3a32433d3DB3b3"
)

func startMock(t *testing.T) (*mockexchange.Server, string) {
	t.Helper()
	env, err := client.EnvironmentFor(types.EnvironmentTestnet)
	require.NoError(t, err)
	balances, positions := mockexchange.AccountFixtures(testAddress, 0)
	mock := mockexchange.New(mockexchange.Config{
		Domain:    env.Domain(),
		Balances:  balances,
		Positions: positions,
	})
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return mock, srv.URL
}

// cliEnv points the CLI at restURL with a clean environment.
func cliEnv(t *testing.T, restURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvEnvironment, "testnet")
	t.Setenv(config.EnvPrivateKey, testPrivateKey)
	t.Setenv(config.EnvMnemonic, "")
	t.Setenv(config.EnvSecretDB, "")
	t.Setenv(config.EnvSubaccountID, "")
	t.Setenv(config.EnvJournal, "")
	t.Setenv(config.EnvRestURL, restURL)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProductsCommand(t *testing.T) {
	_, url := startMock(t)
	cliEnv(t, url)
	out, err := runCLI(t, "products")
	require.NoError(t, err)
	assert.Contains(t, out, "btcperp")
	assert.Contains(t, out, "ethperp")
	assert.Contains(t, out, "3000")
}

func TestBalancesCommand(t *testing.T) {
	_, url := startMock(t)
	cliEnv(t, url)
	out, err := runCLI(t, "balances")
	require.NoError(t, err)
	assert.Contains(t, out, "USDB")
	assert.Contains(t, out, "10000")
}

func TestOrderCommand(t *testing.T) {
	mock, url := startMock(t)
	cliEnv(t, url)
	out, err := runCLI(t, "order", "ethperp", "buy", "0.1", "2990.5", "--type", "LIMIT", "--tif", "GTC", "--replace", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "OPEN"`)

	orders := mock.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, uint32(1002), orders[0].ProductID)
	assert.True(t, orders[0].IsBuy)
	assert.Equal(t, "2990500000000000000000", orders[0].Price.String())

	_, err = runCLI(t, "order", "ethperp", "hold", "0.1")
	assert.True(t, types.IsValidation(err))
}

func TestCloseAllCommand(t *testing.T) {
	mock, url := startMock(t)
	cliEnv(t, url)
	journalPath := filepath.Join(t.TempDir(), "journal.db")
	t.Setenv(config.EnvJournal, journalPath)

	_, err := runCLI(t, "close-all")
	require.NoError(t, err)

	// Only the ETH long is closed; the BTC short is left alone.
	orders := mock.Orders()
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, uint32(1002), o.ProductID)
	assert.False(t, o.IsBuy)
	assert.Equal(t, types.OrderTypeMarket, o.OrderType)
	assert.Equal(t, "1500000000000000000", o.Quantity.String())
	assert.Equal(t, "3000000000000000000000", o.Price.String())

	out, err := runCLI(t, "journal", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "ethperp")
	assert.Contains(t, out, o.ID)
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "MARKET")
	assert.Contains(t, out, "1.5")
}

func TestClosePositionsWithoutLongs(t *testing.T) {
	env, err := client.EnvironmentFor(types.EnvironmentTestnet)
	require.NoError(t, err)
	mock := mockexchange.New(mockexchange.Config{Domain: env.Domain()})
	srv := httptest.NewServer(mock.Handler())
	defer srv.Close()
	env.RestURL = srv.URL

	key, err := signing.PrivateKeyFromHex(testPrivateKey)
	require.NoError(t, err)
	c, err := client.NewClient(env, key)
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	orders, err := closePositions(context.Background(), c)
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, mock.Orders())
}

func TestNormalizeWalletInput(t *testing.T) {
	got, err := normalizeWalletInput(strings.TrimPrefix(testPrivateKey, "0x"), "")
	require.NoError(t, err)
	assert.Equal(t, testPrivateKey, got)

	got, err = normalizeWalletInput("test test test test test test test test test test test junk", "")
	require.NoError(t, err)
	assert.Equal(t, "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", got)

	_, err = normalizeWalletInput("zz", "")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("quantity", "4000.73")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("4000.73")))

	_, err = parseDecimal("quantity", "1,5")
	assert.True(t, types.IsValidation(err))
}
