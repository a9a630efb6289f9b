package signing

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/types"
)

// Schema is the ordered field list of one typed message. Field order and
// integer widths are part of the signed encoding.
type Schema struct {
	Name   string
	Fields []apitypes.Type
}

var (
	LoginSchema = Schema{
		Name: "LoginMessage",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "message", Type: "string"},
			{Name: "timestamp", Type: "uint64"},
		},
	}

	WithdrawSchema = Schema{
		Name: "Withdraw",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "subAccountId", Type: "uint8"},
			{Name: "asset", Type: "address"},
			{Name: "quantity", Type: "uint128"},
			{Name: "nonce", Type: "uint64"},
		},
	}

	OrderSchema = Schema{
		Name: "Order",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "subAccountId", Type: "uint8"},
			{Name: "productId", Type: "uint32"},
			{Name: "isBuy", Type: "bool"},
			{Name: "orderType", Type: "uint8"},
			{Name: "timeInForce", Type: "uint8"},
			{Name: "expiration", Type: "uint64"},
			{Name: "price", Type: "uint128"},
			{Name: "quantity", Type: "uint128"},
			{Name: "nonce", Type: "uint64"},
		},
	}

	CancelOrderSchema = Schema{
		Name: "CancelOrder",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "subAccountId", Type: "uint8"},
			{Name: "productId", Type: "uint32"},
			{Name: "orderId", Type: "string"},
		},
	}

	CancelOrdersSchema = Schema{
		Name: "CancelOrders",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "subAccountId", Type: "uint8"},
			{Name: "productId", Type: "uint32"},
		},
	}

	ReferralSchema = Schema{
		Name: "Referral",
		Fields: []apitypes.Type{
			{Name: "account", Type: "address"},
			{Name: "code", Type: "string"},
			{Name: "signedAt", Type: "uint64"},
		},
	}
)

// TypeString renders the schema as it appears in the EIP-712 type hash,
// e.g. "CancelOrders(address account,uint8 subAccountId,uint32 productId)".
func (s Schema) TypeString() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Type + " " + f.Name
	}
	return s.Name + "(" + strings.Join(parts, ",") + ")"
}

// TypedMessage holds values validated against a Schema.
// Addresses are common.Address, integers *big.Int, plus bool and string.
type TypedMessage struct {
	schema Schema
	values map[string]interface{}
}

// NewMessage validates values against schema. Missing fields, unknown
// fields, negative integers and integers wider than the declared width are
// rejected with a *types.ValidationError.
func NewMessage(schema Schema, values map[string]interface{}) (*TypedMessage, error) {
	known := make(map[string]struct{}, len(schema.Fields))
	for _, f := range schema.Fields {
		known[f.Name] = struct{}{}
	}
	extra := make([]string, 0)
	for k := range values {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, types.NewValidationError(extra[0], "not a field of %s", schema.Name)
	}

	normalized := make(map[string]interface{}, len(schema.Fields))
	for _, f := range schema.Fields {
		raw, ok := values[f.Name]
		if !ok || raw == nil {
			return nil, types.NewValidationError(f.Name, "missing field of %s", schema.Name)
		}
		v, err := normalize(f, raw)
		if err != nil {
			return nil, err
		}
		normalized[f.Name] = v
	}
	return &TypedMessage{schema: schema, values: normalized}, nil
}

func (m *TypedMessage) Schema() Schema { return m.schema }

// Value returns the normalized value of a field, or nil.
func (m *TypedMessage) Value(name string) interface{} { return m.values[name] }

// Uint returns an integer field, or nil if the field is not an integer.
func (m *TypedMessage) Uint(name string) *big.Int {
	if b, ok := m.values[name].(*big.Int); ok {
		return new(big.Int).Set(b)
	}
	return nil
}

func (m *TypedMessage) typedData(d Domain) apitypes.TypedData {
	msg := make(apitypes.TypedDataMessage, len(m.values))
	for k, v := range m.values {
		switch t := v.(type) {
		case common.Address:
			msg[k] = t.Hex()
		case *big.Int:
			msg[k] = new(big.Int).Set(t)
		default:
			msg[k] = t
		}
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": domainType,
			m.schema.Name:  m.schema.Fields,
		},
		PrimaryType: m.schema.Name,
		Domain:      d.typedDataDomain(),
		Message:     msg,
	}
}

// Payload returns the fields as wire values: checksummed hex addresses and
// *big.Int integers.
func (m *TypedMessage) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(m.values)+1)
	for k, v := range m.values {
		switch t := v.(type) {
		case common.Address:
			out[k] = t.Hex()
		case *big.Int:
			out[k] = new(big.Int).Set(t)
		default:
			out[k] = t
		}
	}
	return out
}

// SignedMessage is a TypedMessage plus its 0x-prefixed 65-byte signature.
type SignedMessage struct {
	Message   *TypedMessage
	Signature string
}

// Payload returns the message fields with the signature under "signature".
func (s *SignedMessage) Payload() map[string]interface{} {
	p := s.Message.Payload()
	p["signature"] = s.Signature
	return p
}

func normalize(f apitypes.Type, raw interface{}) (interface{}, error) {
	switch {
	case f.Type == "address":
		switch v := raw.(type) {
		case common.Address:
			return v, nil
		case *common.Address:
			return *v, nil
		case string:
			if !common.IsHexAddress(v) {
				return nil, types.NewValidationError(f.Name, "%q is not a hex address", v)
			}
			return common.HexToAddress(v), nil
		}
	case f.Type == "bool":
		switch v := raw.(type) {
		case bool:
			return v, nil
		case types.OrderSide:
			return bool(v), nil
		}
	case f.Type == "string":
		switch v := raw.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case strings.HasPrefix(f.Type, "uint"):
		bits, err := strconv.Atoi(strings.TrimPrefix(f.Type, "uint"))
		if err != nil {
			return nil, types.NewValidationError(f.Name, "unsupported type %s", f.Type)
		}
		b, err := toBigInt(f.Name, raw)
		if err != nil {
			return nil, err
		}
		if b.Sign() < 0 {
			return nil, types.NewValidationError(f.Name, "must not be negative, got %s", b)
		}
		if b.BitLen() > bits {
			return nil, types.NewValidationError(f.Name, "%s does not fit in %s", b, f.Type)
		}
		return b, nil
	}
	return nil, types.NewValidationError(f.Name, "value of type %T cannot be encoded as %s", raw, f.Type)
}

func toBigInt(field string, raw interface{}) (*big.Int, error) {
	switch v := raw.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case types.OrderType:
		return new(big.Int).SetUint64(uint64(v)), nil
	case types.TimeInForce:
		return new(big.Int).SetUint64(uint64(v)), nil
	case decimal.Decimal:
		if !v.IsInteger() {
			return nil, types.NewValidationError(field, "%s is not an integer", v)
		}
		return v.BigInt(), nil
	case string:
		b, ok := new(big.Int).SetString(v, 10)
		if !ok {
			return nil, types.NewValidationError(field, "%q is not a base-10 integer", v)
		}
		return b, nil
	}
	return nil, types.NewValidationError(field, "value of type %T is not an integer", raw)
}
