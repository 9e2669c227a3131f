package services

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartEntry is one bar of the category chart.
type ChartEntry struct {
	Label string
	Value float64
}

// CategoryChart renders a bar chart of category totals as PNG.
func CategoryChart(title string, entries []ChartEntry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no data to chart")
	}

	bars := make([]chart.Value, len(entries))
	for i, e := range entries {
		bars[i] = chart.Value{Label: e.Label, Value: e.Value}
	}

	bc := chart.BarChart{
		Title:    title,
		Width:    bannerWidth,
		Height:   bannerHeight,
		BarWidth: 60,
		Bars:     bars,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf.Bytes(), nil
}
