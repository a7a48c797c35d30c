package services

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tripwindow/planner"
)

var reportPrinter = message.NewPrinter(language.English)

// FormatMoney renders amount in the ISO currency code. Unpriced amounts read "N/A".
func FormatMoney(code string, amount float64) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return "N/A"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return reportPrinter.Sprintf("%.2f %s", amount, strings.ToUpper(code))
	}
	return reportPrinter.Sprint(currency.Symbol(unit.Amount(amount)))
}

// RenderReportPDF lays out a plan as an A4 report and returns the raw bytes.
func RenderReportPDF(res *PlanResult) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: nothing to render", ErrInvalidRequest)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.3)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8,
			tr(fmt.Sprintf("TripWindow travel window report · Prices subject to change · Page %d", pdf.PageNo())),
			"", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	estimated := res.Source == EstimatedFlights{}.Name()
	if estimated {
		pdf.SetTextColor(230, 230, 230)
		pdf.SetFont("Helvetica", "B", 55)
		pdf.TransformBegin()
		pdf.TransformRotate(42, 60, 200)
		pdf.Text(60, 200, "ESTIMATE")
		pdf.TransformEnd()
	}

	// Header bar
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "TripWindow", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, tr(fmt.Sprintf("%s to %s · %s to %s", res.Origin, res.Destination, res.StartDate, res.EndDate)),
		"", 1, "L", false, 0, "")

	pdf.SetY(35)

	// Disclaimer
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	disclaimer := "This is NOT a booking confirmation. Prices were captured when the plan ran and will change."
	if estimated {
		disclaimer = "ESTIMATED PRICES. No live flight source was configured. Verify all prices before booking."
	}
	pdf.MultiCell(164, 4, disclaimer, "", "C", false)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	section := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}
	tableHeader := func(widths []float64, cols ...string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(235, 238, 242)
		pdf.SetTextColor(13, 24, 37)
		for i, c := range cols {
			pdf.CellFormat(widths[i], 7, tr(c), "B", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(20, 20, 20)
	}
	tableRow := func(widths []float64, cols ...string) {
		for i, c := range cols {
			pdf.CellFormat(widths[i], 6, tr(c), "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	section("Trip Overview")
	row("Route", fmt.Sprintf("%s to %s", res.Origin, res.Destination))
	row("Weather location", res.Place)
	row("Date range", fmt.Sprintf("%s to %s", readableDate(res.StartDate), readableDate(res.EndDate)))
	row("Window policy", policyLabel(res.Policy))
	windows := reportPrinter.Sprintf("%d searched", len(res.Windows))
	if res.FallbackWindow {
		windows += " (whole range, no policy window fit)"
	}
	row("Windows", windows)
	row("Flight source", res.Source)
	row("Generated", res.GeneratedAt.UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	section("Cheapest Flights")
	if len(res.Cheapest) == 0 {
		row("Flights", "No flights were found for any window")
	} else {
		widths := []float64{12, 28, 48, 30, 52}
		tableHeader(widths, "#", "Departs", "Airline", "Price", "Return / stops")
		for _, r := range res.Cheapest {
			tableRow(widths,
				fmt.Sprint(r.Rank),
				r.Price.DateKey,
				r.Record.Airline,
				FormatMoney(res.Currency, r.Price.NumericPrice),
				returnLabel(r.Record))
		}
	}
	pdf.Ln(4)

	section("Dates At A Glance")
	if len(res.Bundles) == 0 {
		row("Dates", "Nothing to compare")
	} else {
		widths := []float64{28, 32, 32, 26, 52}
		tableHeader(widths, "Date", "Best price", "Price level", "Rain (mm)", "High / low (C)")
		for _, b := range res.Bundles {
			price, level := "N/A", string(planner.LevelNoData)
			if b.Flight != nil {
				price = FormatMoney(res.Currency, b.Flight.Price.NumericPrice)
				level = string(b.Flight.Evaluation.Level)
			}
			tableRow(widths, b.DateKey, price, level, rainLabel(b.Weather), temperatureLabel(b.Weather))
		}
	}
	pdf.Ln(4)

	if res.Weather != nil && res.Weather.TotalDaysAnalyzed > 0 {
		w := res.Weather
		section("Historical Weather")
		row("Years analysed", reportPrinter.Sprintf("%d (%d days)", w.YearsAnalyzed, w.TotalDaysAnalyzed))
		row("Average high", fmt.Sprintf("%.1f C (%.1f to %.1f)", w.TemperatureMax.Average, w.TemperatureMax.Lowest, w.TemperatureMax.Highest))
		row("Average low", fmt.Sprintf("%.1f C (%.1f to %.1f)", w.TemperatureMin.Average, w.TemperatureMin.Lowest, w.TemperatureMin.Highest))
		row("Rainy days", fmt.Sprintf("%.1f%% of days, %.1f mm per day", w.Precipitation.RainyDaysPercentage, w.Precipitation.AverageDaily))
		pdf.Ln(4)
	} else if res.WeatherError != "" {
		section("Historical Weather")
		row("Weather", "Unavailable for this location")
		pdf.Ln(4)
	}

	if t := res.FlightTrends; t.PricedFlights > 0 {
		section("Market Snapshot")
		row("Flights compared", reportPrinter.Sprintf("%d (%d priced)", t.TotalFlights, t.PricedFlights))
		row("Price range", fmt.Sprintf("%s to %s", FormatMoney(res.Currency, t.PriceStatistics.Min), FormatMoney(res.Currency, t.PriceStatistics.Max)))
		row("Median price", FormatMoney(res.Currency, t.PriceStatistics.Median))
		if t.CheapestAirline != "" {
			row("Cheapest airline", t.CheapestAirline)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func readableDate(iso string) string {
	t, err := time.Parse(planner.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func policyLabel(p planner.Policy) string {
	switch p.Kind {
	case planner.PolicyFixed:
		return fmt.Sprintf("fixed, %d days every %d days", p.TripDuration, p.IntervalDays)
	case planner.PolicyLongWeekend:
		return "long weekend"
	case "":
		return string(planner.PolicyWeekend)
	}
	return string(p.Kind)
}

func returnLabel(f planner.FlightRecord) string {
	out := "one-way"
	if f.ReturnDate != "" {
		out = f.ReturnDate
	}
	switch n := len(f.Layovers); n {
	case 0:
		return out + ", direct"
	case 1:
		return out + ", 1 stop"
	default:
		return fmt.Sprintf("%s, %d stops", out, n)
	}
}

func rainLabel(w *planner.DateWeather) string {
	if w == nil || w.Precipitation == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", w.Precipitation.Average)
}

func temperatureLabel(w *planner.DateWeather) string {
	if w == nil || w.TemperatureMax == nil || w.TemperatureMin == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f / %.1f", w.TemperatureMax.Average, w.TemperatureMin.Average)
}
