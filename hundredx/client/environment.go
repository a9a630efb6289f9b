package client

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

// Contract names understood by Environment.ContractAddress.
const (
	ContractProtocol = "PROTOCOL"
	AssetUSDB        = "USDB"
)

// Environment describes one deployment: endpoints, chain and contracts.
type Environment struct {
	Name              types.Environment
	RestURL           string
	WebsocketURL      string
	RPCURL            string
	ChainID           int64
	VerifyingContract common.Address
	Contracts         map[string]common.Address
}

var environments = map[types.Environment]Environment{
	types.EnvironmentProd: {
		Name:              types.EnvironmentProd,
		RestURL:           "https://api.100x.finance",
		WebsocketURL:      "https://stream.100x.finance",
		RPCURL:            "https://rpc.blast.io",
		ChainID:           81457,
		VerifyingContract: common.HexToAddress("0x691a5fc3a81a144e36c6C4fBCa1fC82843c80d0d"),
		Contracts: map[string]common.Address{
			ContractProtocol: common.HexToAddress("0x1BaEbEE6B00B3f559B0Ff0719B47E0aF22A6bfC4"),
			AssetUSDB:        common.HexToAddress("0x4300000000000000000000000000000000000003"),
		},
	},
	types.EnvironmentTestnet: {
		Name:              types.EnvironmentTestnet,
		RestURL:           "https://api.staging.100x.finance",
		WebsocketURL:      "https://stream.staging.100x.finance",
		RPCURL:            "https://sepolia.blast.io",
		ChainID:           168587773,
		VerifyingContract: common.HexToAddress("0x02Ca4fcB63E2D3C89fa20D86ccDcfc540c683545"),
		Contracts: map[string]common.Address{
			ContractProtocol: common.HexToAddress("0x0c3b9472b3923CfE199bAE24B5f5bD75FAD2bae9"),
			AssetUSDB:        common.HexToAddress("0x79A59c326C715AC2d31C169C85d1232319E341ce"),
		},
	},
	types.EnvironmentDevnet: {
		Name:              types.EnvironmentDevnet,
		RestURL:           "https://api.dev.ciaobella.dev",
		WebsocketURL:      "https://stream.dev.ciaobella.dev",
		RPCURL:            "https://sepolia.blast.io",
		ChainID:           168587773,
		VerifyingContract: common.HexToAddress("0x8ffdD4755aa383cD4CB715ABD8e1375926123729"),
		Contracts: map[string]common.Address{
			ContractProtocol: common.HexToAddress("0x9E4d21FeFE19EbD9ce94b71A60bce6CD793DD2BF"),
			AssetUSDB:        common.HexToAddress("0x79A59c326C715AC2d31C169C85d1232319E341ce"),
		},
	},
}

// EnvironmentFor returns a copy of the built-in descriptor for env.
func EnvironmentFor(env types.Environment) (Environment, error) {
	e, ok := environments[env]
	if !ok {
		return Environment{}, &types.ConfigError{Key: "environment", Reason: "unknown environment " + string(env)}
	}
	return e.clone(), nil
}

func (e Environment) clone() Environment {
	contracts := make(map[string]common.Address, len(e.Contracts))
	for k, v := range e.Contracts {
		contracts[k] = v
	}
	e.Contracts = contracts
	return e
}

// Validate reports the first missing piece of the descriptor.
func (e Environment) Validate() error {
	switch {
	case strings.TrimSpace(e.RestURL) == "":
		return &types.ConfigError{Key: "rest_url", Reason: "missing REST base URL"}
	case strings.TrimSpace(e.WebsocketURL) == "":
		return &types.ConfigError{Key: "websocket_url", Reason: "missing websocket base URL"}
	case e.ChainID <= 0:
		return &types.ConfigError{Key: "chain_id", Reason: "chain id must be positive"}
	case e.VerifyingContract == (common.Address{}):
		return &types.ConfigError{Key: "verifying_contract", Reason: "missing verifying contract"}
	}
	return nil
}

// URL returns the base URL for the given API type.
func (e Environment) URL(api types.ApiType) string {
	if api == types.ApiTypeWebsocket {
		return e.WebsocketURL
	}
	return e.RestURL
}

// Domain returns the EIP-712 domain of this deployment.
func (e Environment) Domain() signing.Domain {
	return signing.NewDomain(e.ChainID, e.VerifyingContract)
}

// ContractAddress resolves a contract or asset by name, or accepts a raw hex address.
func (e Environment) ContractAddress(name string) (common.Address, error) {
	if addr, ok := e.Contracts[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return addr, nil
	}
	if common.IsHexAddress(name) {
		return common.HexToAddress(name), nil
	}
	return common.Address{}, types.NewValidationError("asset", "unknown contract %q in %s", name, e.Name)
}
