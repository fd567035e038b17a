package ordering

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPeriod() ClosingPeriod {
	start := date("2025-02-26")
	end := date("2025-03-25")
	return ClosingPeriod{StartDate: start, EndDate: end, Label: periodLabel(start, end)}
}

func testOrders() []OrderWithUser {
	katsu := "Katsu curry"
	soba := "Zaru soba"
	note := "no pickles"
	return []OrderWithUser{
		{Order: Order{OrderDate: date("2025-03-03"), Status: OrderStatusPlaced, Note: &note}, UserName: "Sato", MenuName: &katsu},
		{Order: Order{OrderDate: date("2025-03-04"), Status: OrderStatusPlaced}, UserName: "Sato", MenuName: &soba},
		{Order: Order{OrderDate: date("2025-03-04"), Status: OrderStatusCancelled}, UserName: "Tanaka", MenuName: &soba},
		{Order: Order{OrderDate: date("2025-03-05"), Status: OrderStatusPlaced}, UserName: "Tanaka"},
	}
}

func TestWritePeriodCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePeriodCSV(&buf, testPeriod(), testOrders()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)

	assert.Equal(t, []string{"Period", "Date", "User", "Menu", "Status", "Note"}, records[0])
	assert.Equal(t, []string{"Feb 26, 2025 - Mar 25, 2025", "2025-03-03", "Sato", "Katsu curry", "PLACED", "no pickles"}, records[1])
	assert.Equal(t, "CANCELLED", records[3][4])
	// missing menu renders empty, not a literal nil
	assert.Equal(t, "", records[4][3])
}

func TestWritePeriodSummaryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePeriodSummaryCSV(&buf, testPeriod(), testOrders()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Period", "User", "Orders"}, records[0])
	// cancelled orders do not count; first-seen order of names is preserved
	assert.Equal(t, []string{"Feb 26, 2025 - Mar 25, 2025", "Sato", "2"}, records[1])
	assert.Equal(t, []string{"Feb 26, 2025 - Mar 25, 2025", "Tanaka", "1"}, records[2])
}
