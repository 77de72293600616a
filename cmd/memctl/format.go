package main

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats numbers with digit grouping (1,048,576).
var printer = message.NewPrinter(language.English)

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func formatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

func formatRate(opsPerSec float64) string {
	return printer.Sprintf("%.0f ops/s", opsPerSec)
}
