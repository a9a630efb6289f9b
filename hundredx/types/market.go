package types

import (
	"github.com/shopspring/decimal"
)

// Prices and quantities returned by the API are fixed-point integers scaled by 1e18.
// decimal.Decimal decodes both the quoted and the bare JSON forms.

type Product struct {
	ID                    int64           `json:"id"`
	ProductType           string          `json:"productType"`
	Symbol                string          `json:"symbol"`
	BaseAsset             string          `json:"baseAsset"`
	QuoteAsset            string          `json:"quoteAsset"`
	Blockchain            string          `json:"blockchain,omitempty"`
	IsActive              bool            `json:"isActive"`
	Increment             decimal.Decimal `json:"increment"`
	MinQuantity           decimal.Decimal `json:"minQuantity"`
	MaxQuantity           decimal.Decimal `json:"maxQuantity"`
	InitialLongWeight     decimal.Decimal `json:"initialLongWeight"`
	MaintenanceLongWeight decimal.Decimal `json:"maintenanceLongWeight"`
	MakerFee              decimal.Decimal `json:"makerFee"`
	TakerFee              decimal.Decimal `json:"takerFee"`
	MarkPrice             decimal.Decimal `json:"markPrice"`
}

// Ticker is one entry of the 24h ticker endpoint.
type Ticker struct {
	ProductID          int64           `json:"productId"`
	ProductSymbol      string          `json:"productSymbol"`
	PriceChange        decimal.Decimal `json:"priceChange"`
	PriceChangePercent decimal.Decimal `json:"priceChangePercent"`
	HighPrice          decimal.Decimal `json:"highPrice"`
	LowPrice           decimal.Decimal `json:"lowPrice"`
	LastPrice          decimal.Decimal `json:"lastPrice"`
	MarkPrice          decimal.Decimal `json:"markPrice"`
	OraclePrice        decimal.Decimal `json:"oraclePrice"`
	Volume             decimal.Decimal `json:"volume"`
	QuoteVolume        decimal.Decimal `json:"quoteVolume"`
	OpenInterest       decimal.Decimal `json:"openInterest"`
	FundingRate        decimal.Decimal `json:"fundingRate"`
	NextFundingTime    int64           `json:"nextFundingTime"`
}

// PriceLevel is a [price, quantity] pair.
type PriceLevel [2]decimal.Decimal

func (l PriceLevel) Price() decimal.Decimal    { return l[0] }
func (l PriceLevel) Quantity() decimal.Decimal { return l[1] }

type Depth struct {
	LastUpdateID int64        `json:"lastUpdateId,omitempty"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

type Candle struct {
	OpenTime  int64           `json:"openTime"`
	CloseTime int64           `json:"closeTime"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    decimal.Decimal `json:"volume"`
}

type Trade struct {
	ID            string          `json:"id"`
	ProductSymbol string          `json:"productSymbol,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	IsBuyerMaker  bool            `json:"isBuyerMaker"`
	Time          int64           `json:"time"`
}

type ServerTime struct {
	ServerTime int64 `json:"serverTime"`
}
