package mockexchange

import (
	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/types"
)

func wei(units string) decimal.Decimal {
	return decimal.RequireFromString(units).Shift(18)
}

func DefaultProducts() []types.Product {
	return []types.Product{
		{
			ID: 1001, ProductType: "PERP", Symbol: "btcperp", BaseAsset: "BTC", QuoteAsset: "USDB",
			IsActive: true, Increment: wei("0.001"), MinQuantity: wei("0.001"), MaxQuantity: wei("100"),
			MakerFee: wei("0.0002"), TakerFee: wei("0.0005"), MarkPrice: wei("65000"),
		},
		{
			ID: 1002, ProductType: "PERP", Symbol: "ethperp", BaseAsset: "ETH", QuoteAsset: "USDB",
			IsActive: true, Increment: wei("0.01"), MinQuantity: wei("0.01"), MaxQuantity: wei("1000"),
			MakerFee: wei("0.0002"), TakerFee: wei("0.0005"), MarkPrice: wei("3000"),
		},
	}
}

func DefaultTickers() []types.Ticker {
	return []types.Ticker{
		{ProductID: 1001, ProductSymbol: "btcperp", LastPrice: wei("65010"), MarkPrice: wei("65000"), OraclePrice: wei("64990")},
		{ProductID: 1002, ProductSymbol: "ethperp", LastPrice: wei("3001"), MarkPrice: wei("3000"), OraclePrice: wei("2999")},
	}
}

func defaultDepth() types.Depth {
	return types.Depth{
		LastUpdateID: 1,
		Bids: []types.PriceLevel{
			{wei("2999"), wei("1.5")},
			{wei("2998"), wei("3")},
		},
		Asks: []types.PriceLevel{
			{wei("3001"), wei("2")},
			{wei("3002"), wei("4")},
		},
	}
}

func defaultCandles() []types.Candle {
	return []types.Candle{
		{OpenTime: 1711722300000, CloseTime: 1711722359999, Open: wei("3000"), High: wei("3010"), Low: wei("2995"), Close: wei("3005"), Volume: wei("12")},
		{OpenTime: 1711722360000, CloseTime: 1711722419999, Open: wei("3005"), High: wei("3007"), Low: wei("3001"), Close: wei("3002"), Volume: wei("7")},
	}
}

func defaultTrades() []types.Trade {
	return []types.Trade{
		{ID: "t-1", Price: wei("3001"), Quantity: wei("0.5"), IsBuyerMaker: false, Time: 1711722371000},
		{ID: "t-2", Price: wei("3000"), Quantity: wei("1"), IsBuyerMaker: true, Time: 1711722372000},
	}
}

// AccountFixtures returns a USDB balance and an ETH long for account, handy
// for seeding Config.Balances and Config.Positions.
func AccountFixtures(account string, subaccount uint8) ([]types.Balance, []types.Position) {
	balances := []types.Balance{
		{Account: account, SubAccountID: subaccount, Asset: "USDB", Quantity: wei("10000"), PendingWithdrawal: decimal.Zero},
	}
	positions := []types.Position{
		{
			Account: account, SubAccountID: subaccount, ProductID: 1002, ProductSymbol: "ethperp",
			Quantity: wei("1.5"), AvgEntryPrice: wei("2950"), Margin: wei("450"), LiquidationPrice: wei("2100"),
		},
		{
			Account: account, SubAccountID: subaccount, ProductID: 1001, ProductSymbol: "btcperp",
			Quantity: wei("-0.1"), AvgEntryPrice: wei("66000"), Margin: wei("660"), LiquidationPrice: wei("72000"),
		},
	}
	return balances, positions
}
