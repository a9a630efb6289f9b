package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/secretstore"
)

const (
	testKey     = "0x8f58e47491ac5fe6897216208fe1fed316d6ee89de6c901bfc521c2178ebe6dd"
	testAddress = "0xEEF7faba495b4875d67E3ED8FB3a32433d3DB3b3"
	hardhat     = "test test test test test test test test test test test junk"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvEnvironment, EnvPrivateKey, EnvMnemonic, EnvDerivationPath, EnvSubaccountID,
		EnvRestURL, EnvWebsocketURL, EnvRPCURL, EnvSecretDB, EnvSecretKey, EnvSecretName, EnvLogLevel, EnvJournal,
	} {
		t.Setenv(k, "")
	}
	// Keep a stray .env in the package directory from leaking in.
	t.Chdir(t.TempDir())
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "testnet", cfg.Environment)
	assert.Equal(t, client.DefaultTimeout, cfg.Timeout)

	unit, err := cfg.ExpirationUnit()
	require.NoError(t, err)
	assert.Equal(t, client.ExpirationMicros, unit)

	_, err = cfg.ResolvePrivateKey()
	assert.ErrorIs(t, err, types.ErrMissingKey)
}

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "go100x.yaml", `
environment: prod
subaccount_id: 2
expiration_unit: millis
timeout: 5s
wallet:
  private_key: "0x01"
endpoints:
  rest_url: http://127.0.0.1:9000
  contracts:
    usdb: "0x0000000000000000000000000000000000000042"
log:
  level: debug
`)
	t.Setenv(EnvPrivateKey, testKey)
	t.Setenv(EnvSubaccountID, "4")
	t.Setenv(EnvJournal, "data/journal.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.SubaccountID)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data/journal.db", cfg.Journal)

	unit, err := cfg.ExpirationUnit()
	require.NoError(t, err)
	assert.Equal(t, client.ExpirationMillis, unit)

	env, err := cfg.ClientEnvironment()
	require.NoError(t, err)
	assert.Equal(t, types.EnvironmentProd, env.Name)
	assert.Equal(t, "http://127.0.0.1:9000", env.RestURL)
	assert.Equal(t, int64(81457), env.ChainID)
	assert.Equal(t, common.HexToAddress("0x42"), env.Contracts[client.AssetUSDB])

	key, err := cfg.ResolvePrivateKey()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), crypto.PubkeyToAddress(key.PublicKey))
}

func TestLoadJSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "go100x.json", `{"environment":"local","wallet":{"mnemonic":"`+hardhat+`"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	env, err := cfg.ClientEnvironment()
	require.NoError(t, err)
	assert.Equal(t, types.EnvironmentDevnet, env.Name)

	key, err := cfg.ResolvePrivateKey()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), crypto.PubkeyToAddress(key.PublicKey))
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		file string
		body string
		env  map[string]string
		key  string
	}{
		{"environment", "a.yaml", "environment: moon\n", nil, "environment"},
		{"subaccount", "b.yaml", "subaccount_id: 300\n", nil, "subaccount_id"},
		{"expiration", "c.yaml", "expiration_unit: nanos\n", nil, "expiration_unit"},
		{"contract", "d.yaml", "endpoints:\n  contracts:\n    usdb: nope\n", nil, "endpoints.contracts.usdb"},
		{"subaccount env", "e.yaml", "", map[string]string{EnvSubaccountID: "two"}, EnvSubaccountID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, tt.file, tt.body))
			var cerr *types.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.key, cerr.Key)
		})
	}

	_, err := Load(writeFile(t, "x.toml", "a = 1"))
	assert.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolvePrivateKeyFromSecretStore(t *testing.T) {
	clearEnv(t)
	encKey := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	raw, err := secretstore.ParseKey(encKey)
	require.NoError(t, err)
	dbPath := filepath.Join(t.TempDir(), "secrets")

	store, err := secretstore.Open(secretstore.OpenOptions{Path: dbPath, EncryptionKey: raw})
	require.NoError(t, err)
	require.NoError(t, store.SetString(DefaultSecretName, testKey))
	require.NoError(t, store.Close())

	cfg := defaults()
	cfg.Wallet.SecretDB = dbPath
	cfg.Wallet.SecretKey = encKey

	key, err := cfg.ResolvePrivateKey()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), crypto.PubkeyToAddress(key.PublicKey))

	cfg.Wallet.SecretName = "wallet/other"
	_, err = cfg.ResolvePrivateKey()
	assert.ErrorIs(t, err, types.ErrMissingKey)
}
