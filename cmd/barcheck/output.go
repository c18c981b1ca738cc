package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/rickgao/barcheck/internal/model"
	"github.com/rickgao/barcheck/internal/reconcile"
	"github.com/rickgao/barcheck/internal/writer"
)

// output is the JSON shape of a run.
type output struct {
	RunID       string          `json:"run_id"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	ReportField string          `json:"report_field"`
	Mismatches  int             `json:"mismatches"`
	Assets      []assetOutput   `json:"assets"`
	Failures    []failureOutput `json:"failures,omitempty"`
	Abandoned   []int64         `json:"abandoned,omitempty"`
}

type assetOutput struct {
	SID     int64    `json:"sid"`
	Symbol  string   `json:"symbol,omitempty"`
	Days    []string `json:"days"`
	ValuesA []int64  `json:"values_a"`
	ValuesB []int64  `json:"values_b"`
}

type failureOutput struct {
	SID   int64  `json:"sid"`
	Error string `json:"error"`
}

func newOutput(run writer.Run, report model.Report, partial *reconcile.PartialError) output {
	out := output{
		RunID:       run.ID.String(),
		Start:       run.Start.Format(time.DateOnly),
		End:         run.End.Format(time.DateOnly),
		ReportField: run.ReportField,
		Mismatches:  report.Mismatches(),
		Assets:      make([]assetOutput, 0, len(report)),
	}

	for asset, u := range report {
		days := make([]string, len(u.Days))
		for i, d := range u.Days {
			days[i] = d.Format(time.DateOnly)
		}
		out.Assets = append(out.Assets, assetOutput{
			SID:     asset.SID,
			Symbol:  asset.Symbol,
			Days:    days,
			ValuesA: u.A,
			ValuesB: u.B,
		})
	}
	slices.SortFunc(out.Assets, func(a, b assetOutput) int { return cmp.Compare(a.SID, b.SID) })

	if partial != nil {
		for _, asset := range partial.FailedAssets() {
			out.Failures = append(out.Failures, failureOutput{
				SID:   asset.SID,
				Error: partial.Failures[asset].Error(),
			})
		}
		for _, asset := range partial.Abandoned {
			out.Abandoned = append(out.Abandoned, asset.SID)
		}
	}

	return out
}

func (o output) encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
