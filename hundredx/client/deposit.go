package client

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/types"
)

// ChainBackend is the part of *ethclient.Client used by deposits.
type ChainBackend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
}

var _ ChainBackend = (*ethclient.Client)(nil)

// ReceiptPolling bounds the wait for a transaction receipt.
type ReceiptPolling struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultReceiptPolling waits up to a minute for a receipt.
var DefaultReceiptPolling = ReceiptPolling{Interval: time.Second, MaxAttempts: 60}

var (
	erc20ABI    = mustParseABI(ERC20ABI)
	protocolABI = mustParseABI(ProtocolABI)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// DepositRequest describes an on-chain deposit. Quantity is in units.
type DepositRequest struct {
	SubAccountID *int
	Quantity     decimal.Decimal
	// Asset is a contract name such as "USDB" or a hex address. Defaults to USDB.
	Asset string
}

func (c *Client) chainBackend(ctx context.Context) (ChainBackend, error) {
	c.chainMu.Lock()
	defer c.chainMu.Unlock()
	if c.chain != nil {
		return c.chain, nil
	}
	if c.env.RPCURL == "" {
		return nil, &types.ConfigError{Key: "rpc_url", Reason: "missing JSON-RPC URL"}
	}
	ec, err := ethclient.DialContext(ctx, c.env.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.env.RPCURL)
	}
	c.chain = ec
	return ec, nil
}

// Allowance returns how much of asset the protocol contract may pull from owner.
func (c *Client) Allowance(ctx context.Context, asset, owner common.Address) (*big.Int, error) {
	backend, err := c.chainBackend(ctx)
	if err != nil {
		return nil, err
	}
	protocol, err := c.env.ContractAddress(ContractProtocol)
	if err != nil {
		return nil, err
	}
	data, err := erc20ABI.Pack("allowance", owner, protocol)
	if err != nil {
		return nil, errors.Wrap(err, "pack allowance")
	}
	result, err := backend.CallContract(ctx, ethereum.CallMsg{To: &asset, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "call allowance")
	}
	var allowance *big.Int
	if err := erc20ABI.UnpackIntoInterface(&allowance, "allowance", result); err != nil {
		return nil, errors.Wrap(err, "unpack allowance")
	}
	return allowance, nil
}

// Deposit moves funds from the wallet into a subaccount: it approves the
// protocol contract when the allowance is short, then calls deposit and
// waits for the receipt. The result reports whether the deposit succeeded.
func (c *Client) Deposit(ctx context.Context, req DepositRequest) (bool, error) {
	s, err := c.requireSigner()
	if err != nil {
		return false, err
	}
	sub, err := c.resolveSubaccount(req.SubAccountID)
	if err != nil {
		return false, err
	}
	if !req.Quantity.IsPositive() {
		return false, types.NewValidationError("quantity", "must be positive, got %s", req.Quantity)
	}
	wei, err := ToWei("quantity", req.Quantity)
	if err != nil {
		return false, err
	}
	assetName := req.Asset
	if strings.TrimSpace(assetName) == "" {
		assetName = AssetUSDB
	}
	asset, err := c.env.ContractAddress(assetName)
	if err != nil {
		return false, err
	}
	protocol, err := c.env.ContractAddress(ContractProtocol)
	if err != nil {
		return false, err
	}

	allowance, err := c.Allowance(ctx, asset, s.Address())
	if err != nil {
		return false, err
	}
	if allowance.Cmp(wei) < 0 {
		data, err := erc20ABI.Pack("approve", protocol, wei)
		if err != nil {
			return false, errors.Wrap(err, "pack approve")
		}
		hash, err := c.sendContractTx(ctx, asset, data)
		if err != nil {
			return false, errors.Wrap(err, "approve")
		}
		c.log.WithField("tx", hash.Hex()).Info("approval sent")
		if _, err := c.WaitForTransaction(ctx, hash); err != nil {
			return false, err
		}
	}

	data, err := protocolABI.Pack("deposit", s.Address(), sub, wei, asset)
	if err != nil {
		return false, errors.Wrap(err, "pack deposit")
	}
	hash, err := c.sendContractTx(ctx, protocol, data)
	if err != nil {
		return false, errors.Wrap(err, "deposit")
	}
	c.log.WithField("tx", hash.Hex()).Info("deposit sent")
	receipt, err := c.WaitForTransaction(ctx, hash)
	if err != nil {
		return false, err
	}
	return receipt.Status == ethtypes.ReceiptStatusSuccessful, nil
}

func (c *Client) sendContractTx(ctx context.Context, to common.Address, data []byte) (common.Hash, error) {
	backend, err := c.chainBackend(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	from := c.signer.Address()
	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "pending nonce")
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "suggest gas price")
	}
	gasLimit, err := backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data, Value: big.NewInt(0)})
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "estimate gas")
	}
	tx := ethtypes.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)
	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(big.NewInt(c.env.ChainID)), c.signer.PrivateKey())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign transaction")
	}
	if err := backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, errors.Wrap(err, "send transaction")
	}
	return signed.Hash(), nil
}

// WaitForTransaction polls for the receipt of hash at a fixed interval and
// gives up with types.ErrConfirmationTimeout after the configured attempts.
func (c *Client) WaitForTransaction(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	backend, err := c.chainBackend(ctx)
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < c.poll.MaxAttempts; attempt++ {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, errors.Wrapf(err, "receipt %s", hash.Hex())
		}
		timer := time.NewTimer(c.poll.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, errors.Wrapf(types.ErrConfirmationTimeout, "tx %s after %d attempts", hash.Hex(), c.poll.MaxAttempts)
}
