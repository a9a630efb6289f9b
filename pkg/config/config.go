package config

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/logger"
	"github.com/hundredx/go100x/pkg/secretstore"
)

// Environment variables read by Load. They win over the config file.
const (
	EnvEnvironment    = "HUNDRED_X_ENV"
	EnvPrivateKey     = "HUNDRED_X_PRIVATE_KEY"
	EnvMnemonic       = "HUNDRED_X_MNEMONIC"
	EnvDerivationPath = "HUNDRED_X_DERIVATION_PATH"
	EnvSubaccountID   = "HUNDRED_X_SUBACCOUNT_ID"
	EnvRestURL        = "HUNDRED_X_REST_URL"
	EnvWebsocketURL   = "HUNDRED_X_WS_URL"
	EnvRPCURL         = "HUNDRED_X_RPC_URL"
	EnvSecretDB       = "HUNDRED_X_SECRET_DB"
	EnvSecretKey      = "HUNDRED_X_SECRET_KEY"
	EnvSecretName     = "HUNDRED_X_SECRET_NAME"
	EnvLogLevel       = "HUNDRED_X_LOG_LEVEL"
	EnvJournal        = "HUNDRED_X_JOURNAL"
)

// DefaultSecretName is the secret store entry holding the hex private key.
const DefaultSecretName = "wallet/private_key"

// WalletConfig lists the key sources, tried in order: PrivateKey, Mnemonic,
// then the secret store.
type WalletConfig struct {
	PrivateKey     string `yaml:"private_key" json:"private_key"`
	Mnemonic       string `yaml:"mnemonic" json:"mnemonic"`
	DerivationPath string `yaml:"derivation_path" json:"derivation_path"`
	SecretDB       string `yaml:"secret_db" json:"secret_db"`
	SecretKey      string `yaml:"secret_key" json:"secret_key"`
	SecretName     string `yaml:"secret_name" json:"secret_name"`
}

// EndpointOverrides replace parts of the built-in environment descriptor.
type EndpointOverrides struct {
	RestURL           string            `yaml:"rest_url" json:"rest_url"`
	WebsocketURL      string            `yaml:"websocket_url" json:"websocket_url"`
	RPCURL            string            `yaml:"rpc_url" json:"rpc_url"`
	ChainID           int64             `yaml:"chain_id" json:"chain_id"`
	VerifyingContract string            `yaml:"verifying_contract" json:"verifying_contract"`
	Contracts         map[string]string `yaml:"contracts" json:"contracts"`
}

// Config is the application configuration of the CLI and tools.
type Config struct {
	Environment  string            `yaml:"environment" json:"environment"`
	SubaccountID int               `yaml:"subaccount_id" json:"subaccount_id"`
	Expiration   string            `yaml:"expiration_unit" json:"expiration_unit"` // micros or millis
	Timeout      time.Duration     `yaml:"timeout" json:"timeout"`
	Wallet       WalletConfig      `yaml:"wallet" json:"wallet"`
	Endpoints    EndpointOverrides `yaml:"endpoints" json:"endpoints"`
	Log          logger.Config     `yaml:"log" json:"log"`
	// Journal is the SQLite file recording write actions. Empty disables it.
	Journal string `yaml:"journal" json:"journal"`
}

func defaults() *Config {
	return &Config{
		Environment: string(types.EnvironmentTestnet),
		Expiration:  client.ExpirationMicros.String(),
		Timeout:     client.DefaultTimeout,
		Log:         logger.Config{Level: "info"},
	}
}

// Load reads the optional YAML or JSON file at path, then .env in the
// working directory, then the process environment.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	// .env is optional.
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(err, "parse YAML config %s", path)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return errors.Wrapf(err, "parse JSON config %s", path)
		}
	default:
		return errors.Errorf("unsupported config format %s (want .yaml, .yml or .json)", ext)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Environment, EnvEnvironment)
	setString(&cfg.Wallet.PrivateKey, EnvPrivateKey)
	setString(&cfg.Wallet.Mnemonic, EnvMnemonic)
	setString(&cfg.Wallet.DerivationPath, EnvDerivationPath)
	setString(&cfg.Wallet.SecretDB, EnvSecretDB)
	setString(&cfg.Wallet.SecretKey, EnvSecretKey)
	setString(&cfg.Wallet.SecretName, EnvSecretName)
	setString(&cfg.Endpoints.RestURL, EnvRestURL)
	setString(&cfg.Endpoints.WebsocketURL, EnvWebsocketURL)
	setString(&cfg.Endpoints.RPCURL, EnvRPCURL)
	setString(&cfg.Log.Level, EnvLogLevel)
	setString(&cfg.Journal, EnvJournal)
	if v := strings.TrimSpace(os.Getenv(EnvSubaccountID)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &types.ConfigError{Key: EnvSubaccountID, Reason: fmt.Sprintf("%q is not an integer", v)}
		}
		cfg.SubaccountID = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	if _, err := types.ParseEnvironment(c.Environment); err != nil {
		return &types.ConfigError{Key: "environment", Reason: err.Error()}
	}
	if c.SubaccountID < 0 || c.SubaccountID > 255 {
		return &types.ConfigError{Key: "subaccount_id", Reason: fmt.Sprintf("must be within [0, 255], got %d", c.SubaccountID)}
	}
	if _, err := c.ExpirationUnit(); err != nil {
		return err
	}
	if v := c.Endpoints.VerifyingContract; v != "" && !common.IsHexAddress(v) {
		return &types.ConfigError{Key: "endpoints.verifying_contract", Reason: fmt.Sprintf("%q is not an address", v)}
	}
	for name, addr := range c.Endpoints.Contracts {
		if !common.IsHexAddress(addr) {
			return &types.ConfigError{Key: "endpoints.contracts." + name, Reason: fmt.Sprintf("%q is not an address", addr)}
		}
	}
	return nil
}

func (c *Config) ExpirationUnit() (client.ExpirationUnit, error) {
	switch strings.ToLower(strings.TrimSpace(c.Expiration)) {
	case "", "micros":
		return client.ExpirationMicros, nil
	case "millis":
		return client.ExpirationMillis, nil
	}
	return 0, &types.ConfigError{Key: "expiration_unit", Reason: fmt.Sprintf("want micros or millis, got %q", c.Expiration)}
}

// ClientEnvironment returns the built-in descriptor with overrides applied.
func (c *Config) ClientEnvironment() (client.Environment, error) {
	name, err := types.ParseEnvironment(c.Environment)
	if err != nil {
		return client.Environment{}, &types.ConfigError{Key: "environment", Reason: err.Error()}
	}
	env, err := client.EnvironmentFor(name)
	if err != nil {
		return client.Environment{}, err
	}
	o := c.Endpoints
	if o.RestURL != "" {
		env.RestURL = o.RestURL
	}
	if o.WebsocketURL != "" {
		env.WebsocketURL = o.WebsocketURL
	}
	if o.RPCURL != "" {
		env.RPCURL = o.RPCURL
	}
	if o.ChainID > 0 {
		env.ChainID = o.ChainID
	}
	if o.VerifyingContract != "" {
		env.VerifyingContract = common.HexToAddress(o.VerifyingContract)
	}
	for name, addr := range o.Contracts {
		env.Contracts[strings.ToUpper(name)] = common.HexToAddress(addr)
	}
	return env, env.Validate()
}

// ResolvePrivateKey returns the first configured key, or types.ErrMissingKey.
func (c *Config) ResolvePrivateKey() (*ecdsa.PrivateKey, error) {
	w := c.Wallet
	switch {
	case strings.TrimSpace(w.PrivateKey) != "":
		return signing.PrivateKeyFromHex(w.PrivateKey)
	case strings.TrimSpace(w.Mnemonic) != "":
		return signing.PrivateKeyFromMnemonic(w.Mnemonic, w.DerivationPath)
	case strings.TrimSpace(w.SecretDB) != "":
		return c.keyFromSecretStore()
	}
	return nil, types.ErrMissingKey
}

func (c *Config) keyFromSecretStore() (*ecdsa.PrivateKey, error) {
	w := c.Wallet
	encKey, err := secretstore.ParseKey(w.SecretKey)
	if err != nil {
		return nil, &types.ConfigError{Key: "wallet.secret_key", Reason: err.Error()}
	}
	store, err := secretstore.Open(secretstore.OpenOptions{Path: w.SecretDB, EncryptionKey: encKey, ReadOnly: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open secret store %s", w.SecretDB)
	}
	defer store.Close()

	name := w.SecretName
	if name == "" {
		name = DefaultSecretName
	}
	hexKey, ok, err := store.GetString(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read secret %s", name)
	}
	if !ok {
		return nil, errors.Wrapf(types.ErrMissingKey, "secret %s not found in %s", name, w.SecretDB)
	}
	return signing.PrivateKeyFromHex(hexKey)
}
