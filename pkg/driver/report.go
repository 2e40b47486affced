package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatBatchReport formats a BatchReport for terminal output.
func FormatBatchReport(report *BatchReport) string {
	var builder strings.Builder

	builder.WriteString("\nAbbreviation Extraction Report\n")
	builder.WriteString(strings.Repeat("═", 60) + "\n")
	builder.WriteString(fmt.Sprintf("Run: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("Attempted: %d | Succeeded: %d | Failed: %d\n",
		report.Attempted, report.Succeeded, report.Failed))
	builder.WriteString(strings.Repeat("─", 60) + "\n")

	for _, document := range report.Documents {
		status := "[OK]"
		if document.Status == StatusFailed {
			status = "[FAIL]"
		}

		label := document.LawNumber
		if label == "" {
			label = document.Path
		}

		line := fmt.Sprintf("  %-8s %-30s (%d citations", status, label, document.Citations)
		if document.Generic > 0 {
			line += fmt.Sprintf(", %d generic", document.Generic)
		}
		line += ")"
		if document.FragmentErrors > 0 {
			line += fmt.Sprintf(" %d fragment errors", document.FragmentErrors)
		}
		if document.Error != "" {
			line += fmt.Sprintf(" error: %s", document.Error)
		}
		builder.WriteString(line + "\n")
	}

	return builder.String()
}

// FormatBatchReportJSON formats a BatchReport as JSON.
func FormatBatchReportJSON(report *BatchReport) string {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}
