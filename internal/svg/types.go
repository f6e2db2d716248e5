// Package svg renders the small inline charts shown on the dashboard.
package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// TickFormat renders y-axis values; defaults to a compact k/M notation.
	TickFormat func(float64) string
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	SeriesLabel string
	Color       string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
	TickFormat  func(float64) string
}

// Defaults for the dashboard charts.
const (
	DefaultWidth   = 560
	DefaultHeight  = 220
	DefaultPadding = 28.0
	DefaultTicks   = 4
)

const (
	brandStroke = "#047857"
	brandFill   = "rgba(16,185,129,0.18)"
	brandBar    = "#0f766e"
	axisGrey    = "#94a3b8"
	gridGrey    = "#e2e8f0"
)
