package cli

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/pkg/config"
	"github.com/hundredx/go100x/pkg/secretstore"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "manage the encrypted wallet store",
}

var secretsSetKeyCmd = &cobra.Command{
	Use:          "set-key",
	Short:        "read a hex private key or a mnemonic from stdin and store the key",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		hexKey, err := normalizeWalletInput(line, cfg.Wallet.DerivationPath)
		if err != nil {
			return err
		}

		store, err := openSecretStore(false)
		if err != nil {
			return err
		}
		defer store.Close()

		name := secretName()
		if err := store.SetString(name, hexKey); err != nil {
			return err
		}
		key, _ := signing.PrivateKeyFromHex(hexKey)
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s for %s in %s\n", name, crypto.PubkeyToAddress(key.PublicKey).Hex(), cfg.Wallet.SecretDB)
		return nil
	},
}

var secretsImportCmd = &cobra.Command{
	Use:          "import [FILE]",
	Short:        "copy the entries of a .env file into the store",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ".env"
		if len(args) == 1 {
			path = args[0]
		}
		prefix, _ := cmd.Flags().GetString("prefix")

		kv, err := godotenv.Read(path)
		if err != nil {
			return errors.Wrapf(err, "read %s", path)
		}

		store, err := openSecretStore(false)
		if err != nil {
			return err
		}
		defer store.Close()

		for k, v := range kv {
			if err := store.SetString(prefix+k, v); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries into %s (prefix %s)\n", len(kv), cfg.Wallet.SecretDB, prefix)
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:          "list [PREFIX]",
	Short:        "list stored keys",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 1 {
			prefix = args[0]
		}
		store, err := openSecretStore(true)
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.Keys(prefix)
		if err != nil {
			return err
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}

func openSecretStore(readOnly bool) (*secretstore.Store, error) {
	w := cfg.Wallet
	if strings.TrimSpace(w.SecretDB) == "" {
		return nil, errors.Errorf("no secret store configured: set %s or wallet.secret_db", config.EnvSecretDB)
	}
	key, err := secretstore.ParseKey(w.SecretKey)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errors.Errorf("secret key is required: set %s or wallet.secret_key", config.EnvSecretKey)
	}
	return secretstore.Open(secretstore.OpenOptions{Path: w.SecretDB, EncryptionKey: key, ReadOnly: readOnly})
}

func secretName() string {
	if cfg.Wallet.SecretName != "" {
		return cfg.Wallet.SecretName
	}
	return config.DefaultSecretName
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}

// normalizeWalletInput accepts a hex private key or a mnemonic phrase and
// returns the 0x prefixed hex key.
func normalizeWalletInput(input, derivationPath string) (string, error) {
	if len(strings.Fields(input)) > 1 {
		key, err := signing.PrivateKeyFromMnemonic(input, derivationPath)
		if err != nil {
			return "", err
		}
		return "0x" + hex.EncodeToString(crypto.FromECDSA(key)), nil
	}
	key, err := signing.PrivateKeyFromHex(input)
	if err != nil {
		return "", err
	}
	return "0x" + hex.EncodeToString(crypto.FromECDSA(key)), nil
}

func init() {
	secretsCmd.PersistentFlags().String("db", "", "secret store path, overrides the config")
	secretsCmd.PersistentFlags().String("key", "", "store encryption key (hex or base64, 32 bytes)")
	secretsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd); err != nil {
			return err
		}
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			cfg.Wallet.SecretDB = db
		}
		if key, _ := cmd.Flags().GetString("key"); key != "" {
			cfg.Wallet.SecretKey = key
		}
		return nil
	}
	secretsImportCmd.Flags().String("prefix", "env/", "key prefix inside the store")

	secretsCmd.AddCommand(secretsSetKeyCmd, secretsImportCmd, secretsListCmd)
	RootCmd.AddCommand(secretsCmd)
}
