package cli

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/hundredx/go100x/hundredx/client"
	"github.com/hundredx/go100x/hundredx/types"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func output(cmd *cobra.Command, v interface{}) error {
	return printJSON(cmd.OutOrStdout(), v)
}

// units converts a 1e18 scaled API value to units for display.
func units(wei decimal.Decimal) string {
	return client.WeiToDecimal(wei).String()
}

func parseDecimal(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, types.NewValidationError(field, "not a decimal: %q", raw)
	}
	return d, nil
}
