// cmd/claimcheck/render.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"claimcheck/internal/models"
	"claimcheck/pkg/registry"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func verdictLabel(v models.Verdict, color bool) string {
	switch v.Normalized() {
	case models.VerdictTrustworthy:
		return paint(text.FgGreen, "TRUSTWORTHY", color)
	case models.VerdictMisleading:
		return paint(text.FgRed, "MISLEADING", color)
	case "":
		return "UNKNOWN"
	default:
		return strings.ToUpper(string(v))
	}
}

func paint(c text.Color, s string, color bool) string {
	if !color {
		return s
	}
	return c.Sprint(s)
}

func renderVerification(w io.Writer, r models.VerificationResult, color bool) {
	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	t.AppendRow(table.Row{"Verdict", verdictLabel(r.Verdict, color)})
	t.AppendRow(table.Row{"Trust score", fmt.Sprintf("%d/100", r.TrustabilityScore)})
	t.AppendRow(table.Row{"Why", r.Why})
	if r.DetailedExplanation != "" {
		t.AppendRow(table.Row{"Details", r.DetailedExplanation})
	}
	t.Render()

	if len(r.Alternatives) == 0 {
		return
	}
	fmt.Fprintln(w, "\nAlternatives")
	renderAlternatives(w, r.Alternatives)
}

func renderAlternatives(w io.Writer, alts []models.AlternativeProduct) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Product", "Brand", "Trust", "Price", "Benefits"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
		{Number: 6, WidthMax: 50},
	})
	for i, a := range alts {
		t.AppendRow(table.Row{i + 1, a.ProductName, a.Brand, a.TrustScore, a.PriceRange, a.HealthBenefits})
	}
	t.Render()
}

func renderHealth(w io.Writer, r models.HealthCheckResponse) {
	t := newTable(w)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
	t.AppendRow(table.Row{"Overall", r.OverallStatus})
	t.AppendRow(table.Row{"Assessment", r.GeneralAssessment})
	t.AppendRow(table.Row{"BMI", fmt.Sprintf("%.1f (%s)", r.BMI.Value, r.BMI.Category)})
	if r.BMI.Interpretation != "" {
		t.AppendRow(table.Row{"", r.BMI.Interpretation})
	}
	t.Render()

	if len(r.HealthRisks) > 0 {
		fmt.Fprintln(w, "\nRisks")
		rt := newTable(w)
		rt.AppendHeader(table.Row{"Risk", "Severity", "Description"})
		rt.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 60}})
		for _, risk := range r.HealthRisks {
			rt.AppendRow(table.Row{risk.Risk, risk.Severity, risk.Description})
		}
		rt.Render()
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations")
		rt := newTable(w)
		rt.AppendHeader(table.Row{"Category", "Suggestion", "Importance"})
		rt.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
		for _, rec := range r.Recommendations {
			rt.AppendRow(table.Row{rec.Category, rec.Suggestion, rec.Importance})
		}
		rt.Render()
	}

	if len(r.LifestyleChanges) > 0 {
		fmt.Fprintln(w, "\nLifestyle changes")
		rt := newTable(w)
		rt.AppendHeader(table.Row{"Area", "Now", "Target", "Timeframe"})
		for _, lc := range r.LifestyleChanges {
			rt.AppendRow(table.Row{lc.Area, lc.CurrentStatus, lc.Target, lc.Timeframe})
		}
		rt.Render()
	}
}

func renderProducts(w io.Writer, products []models.Product, cached bool) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products available.")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Product", "Brand", "Match", "Claims"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 5, WidthMax: 60},
	})
	for i, p := range products {
		t.AppendRow(table.Row{i + 1, p.Title, p.Brand, fmt.Sprintf("%.0f%%", p.MatchScore), p.Claims})
	}
	source := "backend"
	if cached {
		source = "cache"
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d products", len(products)), "", "", "from " + source})
	t.Render()
}

func renderActivities(w io.Writer, activities []registry.Activity) {
	t := newTable(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Task type", "Category", "Timeout", "Status", "Description"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 5, WidthMax: 60}})
	for _, a := range activities {
		t.AppendRow(table.Row{a.TaskType, a.Category, a.Timeout, a.ImplementationStatus, a.Description})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(activities)})
	t.Render()
}
