package ordering

import (
	"encoding/csv"
	"io"
	"strconv"
)

// WritePeriodCSV serialises one billing period's orders to CSV, one row per
// order plus a header.
func WritePeriodCSV(w io.Writer, period ClosingPeriod, orders []OrderWithUser) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Period", "Date", "User", "Menu", "Status", "Note"}); err != nil {
		return err
	}
	for _, o := range orders {
		menu := ""
		if o.MenuName != nil {
			menu = *o.MenuName
		}
		note := ""
		if o.Note != nil {
			note = *o.Note
		}
		record := []string{
			period.Label,
			FormatISODate(o.OrderDate),
			o.UserName,
			menu,
			string(o.Status),
			note,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePeriodSummaryCSV emits per-user order counts for one period.
func WritePeriodSummaryCSV(w io.Writer, period ClosingPeriod, orders []OrderWithUser) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Period", "User", "Orders"}); err != nil {
		return err
	}

	counts := make(map[string]int)
	names := make([]string, 0)
	for _, o := range orders {
		if o.Status != OrderStatusPlaced {
			continue
		}
		if _, seen := counts[o.UserName]; !seen {
			names = append(names, o.UserName)
		}
		counts[o.UserName]++
	}
	for _, name := range names {
		if err := writer.Write([]string{period.Label, name, strconv.Itoa(counts[name])}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
