// Package reports renders admin reports as PDF documents.
package reports

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"marketplace-backend/dtos"

	"github.com/jung-kurt/gofpdf"
)

// Subject identifies the user a report is about.
type Subject struct {
	Name        string
	Email       string
	Role        string
	GeneratedAt time.Time
}

// WriteUserAnalytics renders a one-page analytics summary for subject to w.
func WriteUserAnalytics(w io.Writer, subject Subject, a dtos.UserAnalytics) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("User analytics", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "User Analytics Report", "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 11)
	name := subject.Name
	if name == "" {
		name = subject.Email
	}
	pdf.CellFormat(0, 7, fmt.Sprintf("User: %s <%s>", name, subject.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Role: "+subject.Role, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Generated: "+subject.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section(pdf, fmt.Sprintf("Services (%d)", a.Services.Total))
	countTable(pdf, "Status", a.Services.ByStatus)
	pdf.Ln(2)
	countTable(pdf, "Type", a.Services.ByType)
	pdf.Ln(4)

	section(pdf, "Spending")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Total spent: %.2f (%d of %d payments completed)",
		a.Spending.TotalSpent, a.Spending.CompletedPayments, a.Spending.PaymentCount), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header(pdf, []string{"Method", "Payments", "Amount"})
	for _, method := range sortedKeys(a.Spending.ByMethod) {
		m := a.Spending.ByMethod[method]
		row(pdf, []string{method, fmt.Sprintf("%d", m.Count), fmt.Sprintf("%.2f", m.Amount)})
	}
	pdf.Ln(2)

	header(pdf, []string{"Month", "Payments", "Amount"})
	for _, m := range a.Spending.Monthly {
		row(pdf, []string{m.Month, fmt.Sprintf("%d", m.Count), fmt.Sprintf("%.2f", m.Amount)})
	}
	pdf.Ln(4)

	section(pdf, "Reviews given")
	reviewTable(pdf, a.ReviewsGiven)

	if a.DriverRatings != nil {
		pdf.Ln(4)
		section(pdf, "Ratings received as driver")
		reviewTable(pdf, *a.DriverRatings)
	}

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 9, title, "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func header(pdf *gofpdf.Fpdf, cols []string) {
	pdf.SetFont("Arial", "B", 11)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(50, 8, col, "1", ln, "C", false, 0, "")
	}
}

func row(pdf *gofpdf.Fpdf, cells []string) {
	pdf.SetFont("Arial", "", 11)
	for i, cell := range cells {
		ln, align := 0, "R"
		if i == 0 {
			align = "L"
		}
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(50, 8, cell, "1", ln, align, false, 0, "")
	}
}

func countTable(pdf *gofpdf.Fpdf, label string, counts map[string]int64) {
	header(pdf, []string{label, "Count"})
	for _, k := range sortedKeys(counts) {
		row(pdf, []string{strings.ReplaceAll(k, "_", " "), fmt.Sprintf("%d", counts[k])})
	}
}

func reviewTable(pdf *gofpdf.Fpdf, r dtos.ReviewStats) {
	header(pdf, []string{"Dimension", "Average"})
	row(pdf, []string{fmt.Sprintf("Overall (%d)", r.Count), fmt.Sprintf("%.2f", r.AverageRating)})
	row(pdf, []string{"Punctuality", fmt.Sprintf("%.2f", r.AveragePunctuality)})
	row(pdf, []string{"Cleanliness", fmt.Sprintf("%.2f", r.AverageCleanliness)})
	row(pdf, []string{"Courtesy", fmt.Sprintf("%.2f", r.AverageCourtesy)})
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
