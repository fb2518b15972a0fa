package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/dragonfly-xyz/nottingham-contracts/protocols/partialamm"
	"github.com/dragonfly-xyz/nottingham-contracts/simulation"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func (a *app) renderTrajectory(w io.Writer, traj *simulation.Trajectory, format string) error {
	switch format {
	case formatTable:
		a.header(w, "SCENARIO "+traj.Scenario)
		a.renderPools(w, "Initial state", traj.Initial)
		a.renderSteps(w, traj.Steps)
		a.renderPools(w, "Final state", traj.Final)
		a.renderPriceSummary(w, traj)
		return nil
	case formatJSON:
		return writeJSON(w, newTrajectoryJSON(traj))
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (a *app) newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	if a.noColor {
		t.Style().Color = table.ColorOptions{}
	} else {
		t.Style().Color.Header = text.Colors{text.Bold}
	}
	return t
}

func (a *app) renderPools(w io.Writer, title string, pools []partialamm.Pool) {
	t := a.newTable(w, title)
	t.AppendHeader(table.Row{"Pool", "ID", "Reserve 0", "Reserve 1", "k", "Price 0"})
	for _, p := range pools {
		price, _ := p.Price0()
		t.AppendRow(table.Row{p.Name, p.ID, amount(p.Reserve0), amount(p.Reserve1), amount(p.Invariant()), formatPrice(price)})
	}
	alignNumbers(t, 3, 4, 5, 6)
	t.Render()
}

func (a *app) renderSteps(w io.Writer, steps []simulation.Step) {
	t := a.newTable(w, "Steps")
	t.AppendHeader(table.Row{"#", "Pool", "Action", "Amount 0", "Amount 1", "Price 0", "Result"})
	for _, step := range steps {
		result := a.colorize(Green, "ok")
		if step.Err != nil {
			result = a.colorize(Red, step.Err.Error())
		}
		t.AppendRow(table.Row{step.Index, step.Pool, step.Action, amount(step.AmountIn), amount(step.AmountOut), formatPrice(step.Price0), result})
	}
	alignNumbers(t, 4, 5, 6)
	t.Render()
}

// renderPriceSummary lists each pool's price at the start and end of the run
// and the number of successful steps in between.
func (a *app) renderPriceSummary(w io.Writer, traj *simulation.Trajectory) {
	t := a.newTable(w, "Price trajectory")
	t.AppendHeader(table.Row{"Pool", "Steps", "Start", "End", "Change"})
	for _, p := range traj.Initial {
		prices := traj.Prices(p.Name)
		start, end := prices[0], prices[len(prices)-1]
		change := "n/a"
		if start != 0 {
			change = fmt.Sprintf("%+.2f%%", (end/start-1)*100)
		}
		t.AppendRow(table.Row{p.Name, len(prices) - 1, formatPrice(start), formatPrice(end), change})
	}
	alignNumbers(t, 2, 3, 4, 5)
	t.Render()
}

func (a *app) colorize(color, s string) string {
	if a.noColor {
		return s
	}
	return color + s + Reset
}

func alignNumbers(t table.Writer, columns ...int) {
	configs := make([]table.ColumnConfig, len(columns))
	for i, n := range columns {
		configs[i] = table.ColumnConfig{Number: n, Align: text.AlignRight}
	}
	t.SetColumnConfigs(configs)
}

// amount formats an integer amount with thousands separators, or "-" for nil.
// BigComma divides its argument in place, so it is given a copy.
func amount(v *big.Int) string {
	if v == nil {
		return "-"
	}
	return humanize.BigComma(new(big.Int).Set(v))
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.6f", p)
}

type stepJSON struct {
	simulation.Step
	Error string `json:"error,omitempty"`
}

type trajectoryJSON struct {
	Scenario string            `json:"scenario"`
	Initial  []partialamm.Pool `json:"initial"`
	Steps    []stepJSON        `json:"steps"`
	Final    []partialamm.Pool `json:"final"`
}

func newTrajectoryJSON(traj *simulation.Trajectory) trajectoryJSON {
	out := trajectoryJSON{
		Scenario: traj.Scenario,
		Initial:  traj.Initial,
		Steps:    make([]stepJSON, len(traj.Steps)),
		Final:    traj.Final,
	}
	for i, step := range traj.Steps {
		out.Steps[i] = stepJSON{Step: step}
		if step.Err != nil {
			out.Steps[i].Error = step.Err.Error()
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
