package results

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/electionlab/votesim/internal/sweep"
)

// RenderTable writes sweep rows to w as an aligned text table, one row
// per configuration. Configurations under attack are labeled "DoS",
// the rest "Normal".
func RenderTable(w io.Writer, rows []sweep.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Scenario", "Voters", "Fail Rate", "Base ms", "Repl",
		"Mean ms", "CI95 ms", "P95 ms", "Success", "Tamper Det",
	})

	for _, row := range rows {
		scenario := "Normal"
		if row.DoSActive {
			scenario = "DoS"
		}
		tamper := "-"
		if row.TamperEvaluated {
			tamper = fmt.Sprintf("%.3f", row.TamperRate)
		}
		table.Append([]string{
			scenario,
			strconv.Itoa(row.VoterCount),
			fmt.Sprintf("%.3f", row.FailureRate),
			fmt.Sprintf("%.1f", row.BaseLatencyMS),
			strconv.Itoa(row.ReplicationFactor),
			fmt.Sprintf("%.2f", row.MeanLatencyMS),
			fmt.Sprintf("%.2f", row.CI95HalfWidthMS),
			fmt.Sprintf("%.2f", row.P95LatencyMS),
			fmt.Sprintf("%.3f", row.SuccessRate),
			tamper,
		})
	}

	table.Render()
}
