package main

import (
	"fmt"
	"math/big"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newQuoteCmd(a *app) *cobra.Command {
	var reserve0, reserve1, amount0 string

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote buy0 and sell0 against a pool without trading",
		Long: `Quote builds a pool from the given reserves and prints the asset-1 cost of
buying, and the asset-1 proceeds of selling, the given amount of asset-0.
Amounts accept decimal or 0x-prefixed hex.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r0, err := parseAmount("reserve0", reserve0)
			if err != nil {
				return err
			}
			r1, err := parseAmount("reserve1", reserve1)
			if err != nil {
				return err
			}
			a0, err := parseAmount("amount", amount0)
			if err != nil {
				return err
			}

			pool, err := partialamm.NewReservePool(r0, r1, partialamm.WithLogger(a.logger), partialamm.WithMetrics(a.metrics))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			a.header(w, pool.String())
			t := a.newTable(w, "Quotes for "+amount(a0)+" of asset 0")
			t.AppendHeader(table.Row{"Operation", "Amount 1", "Result"})
			buy, buyErr := pool.QuoteBuy0(a0)
			t.AppendRow(table.Row{"buy0", amount(buy), a.result(buyErr)})
			sell, sellErr := pool.QuoteSell0(a0)
			t.AppendRow(table.Row{"sell0", amount(sell), a.result(sellErr)})
			alignNumbers(t, 2)
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&reserve0, "reserve0", "", "asset-0 reserve")
	cmd.Flags().StringVar(&reserve1, "reserve1", "", "asset-1 reserve")
	cmd.Flags().StringVarP(&amount0, "amount", "a", "", "asset-0 amount to quote")
	return cmd
}

func (a *app) result(err error) string {
	if err != nil {
		return a.colorize(Red, err.Error())
	}
	return a.colorize(Green, "ok")
}

func parseAmount(name, s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	v, ok := math.ParseBig256(s)
	if !ok {
		return nil, fmt.Errorf("invalid --%s %q", name, s)
	}
	return v, nil
}
