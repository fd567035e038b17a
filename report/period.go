package report

import (
	"html/template"
	"strings"

	"github.com/lunchline/lunchline/internal/ordering"
)

var periodTemplate = template.Must(template.New("period").Parse(`<html>
<head><title>Lunchline Billing Period</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
<h1>Billing Period {{.Label}}</h1>
<p>{{.Start}} to {{.End}} ({{.Placed}} placed orders)</p>
<table>
<tr><th>Date</th><th>User</th><th>Menu</th><th>Status</th></tr>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.User}}</td><td>{{.Menu}}</td><td>{{.Status}}</td></tr>
{{end}}</table>
</body>
</html>`))

type periodRow struct {
	Date   string
	User   string
	Menu   string
	Status string
}

type periodData struct {
	Label  string
	Start  string
	End    string
	Placed int
	Rows   []periodRow
}

// PeriodHTML renders the order listing for one billing period as HTML ready
// for PDF conversion.
func PeriodHTML(period ordering.ClosingPeriod, orders []ordering.OrderWithUser) (string, error) {
	data := periodData{
		Label: period.Label,
		Start: ordering.FormatISODate(period.StartDate),
		End:   ordering.FormatISODate(period.EndDate),
		Rows:  make([]periodRow, 0, len(orders)),
	}
	for i := range orders {
		o := &orders[i]
		if o.Status == ordering.OrderStatusPlaced {
			data.Placed++
		}
		menu := ""
		if o.MenuName != nil {
			menu = *o.MenuName
		}
		data.Rows = append(data.Rows, periodRow{
			Date:   ordering.FormatISODate(o.OrderDate),
			User:   o.UserName,
			Menu:   menu,
			Status: string(o.Status),
		})
	}

	var buf strings.Builder
	if err := periodTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
