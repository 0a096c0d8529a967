package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/chrisdamba/bagsim/internal/simulator"
)

const (
	labelWidth  = 35
	columnWidth = 20
	ruleWidth   = 100
)

// errWriter keeps the first write error so rendering code stays linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) rule(c byte) {
	ew.printf("%s\n", strings.Repeat(string(c), ruleWidth))
}

func (ew *errWriter) row(label string, cells []string) {
	ew.printf("%-*s", labelWidth, label)
	for _, c := range cells {
		ew.printf("%-*s", columnWidth, c)
	}
	ew.printf("\n")
}

func signed(v int) string {
	if v >= 0 {
		return fmt.Sprintf("+%d", v)
	}
	return fmt.Sprintf("%d", v)
}

func signedFloat(v float64, prec int) string {
	if v >= 0 {
		return fmt.Sprintf("+%.*f", prec, v)
	}
	return fmt.Sprintf("%.*f", prec, v)
}

// WriteText renders the comparison report: a side-by-side metric table, a
// detailed section per strategy and differences against the first result.
func WriteText(w io.Writer, results []*simulator.Result) error {
	summaries := make([]Summary, len(results))
	for i, r := range results {
		summaries[i] = Summarize(r)
	}

	ew := &errWriter{w: w}
	ew.rule('=')
	ew.printf("SURPRISE BAG MARKETPLACE - STRATEGY COMPARISON REPORT\n")
	ew.rule('=')
	ew.printf("\n")

	writeSummaryTable(ew, summaries)
	for _, s := range summaries {
		writeDetails(ew, s)
	}
	writeComparison(ew, summaries)
	return ew.err
}

func writeSummaryTable(ew *errWriter, summaries []Summary) {
	cells := func(f func(Summary) string) []string {
		out := make([]string, len(summaries))
		for i, s := range summaries {
			out[i] = f(s)
		}
		return out
	}

	ew.row("Metric", cells(func(s Summary) string { return strings.ToUpper(s.Strategy) }))
	ew.rule('-')
	ew.row("Bags Sold", cells(func(s Summary) string { return fmt.Sprintf("%d", s.BagsSold) }))
	ew.row("Bags Cancelled", cells(func(s Summary) string { return fmt.Sprintf("%d", s.BagsCancelled) }))
	ew.row("Bags Unsold (Waste)", cells(func(s Summary) string { return fmt.Sprintf("%d", s.BagsUnsold) }))
	ew.row("Revenue Generated ($)", cells(func(s Summary) string { return fmt.Sprintf("%.2f", s.RevenueGenerated) }))
	ew.row("Revenue Lost ($)", cells(func(s Summary) string { return fmt.Sprintf("%.2f", s.RevenueLost) }))
	ew.row("Revenue Efficiency (%)", cells(func(s Summary) string { return fmt.Sprintf("%.2f", s.RevenueEfficiency) }))
	ew.row("Customers Who Left", cells(func(s Summary) string { return fmt.Sprintf("%d", s.CustomersWhoLeft) }))
	ew.row("Conversion Rate (%)", cells(func(s Summary) string { return fmt.Sprintf("%.2f", s.ConversionRate) }))
	ew.row("Gini Coefficient (Fairness)", cells(func(s Summary) string { return fmt.Sprintf("%.4f", s.GiniExposure) }))
	ew.rule('=')
	ew.printf("\n")
}

func writeDetails(ew *errWriter, s Summary) {
	ew.rule('=')
	ew.printf("%s STRATEGY - DETAILED METRICS (run %s, seed %d, %d days)\n", strings.ToUpper(s.Strategy), s.RunID, s.Seed, s.Days)
	ew.rule('=')
	ew.printf("\n--- SALES METRICS ---\n")
	ew.printf("Total Bags Sold: %d\n", s.BagsSold)
	ew.printf("Total Bags Cancelled: %d\n", s.BagsCancelled)
	ew.printf("Total Bags Unsold (Waste): %d\n", s.BagsUnsold)
	ew.printf("\n--- REVENUE METRICS ---\n")
	ew.printf("Total Revenue Generated: $%.2f\n", s.RevenueGenerated)
	ew.printf("Revenue Lost (from cancellations): $%.2f\n", s.RevenueLost)
	ew.printf("Revenue Efficiency: %.2f%%\n", s.RevenueEfficiency)
	ew.printf("\n--- CUSTOMER METRICS ---\n")
	ew.printf("Total Customer Arrivals: %d\n", s.Arrivals)
	ew.printf("Customers Who Left (No Purchase): %d\n", s.CustomersWhoLeft)
	ew.printf("Conversion Rate: %.2f%%\n", s.ConversionRate)
	ew.printf("\n--- FAIRNESS METRICS ---\n")
	ew.printf("Gini Coefficient (Exposure): %.4f\n", s.GiniExposure)
	ew.printf("  (0 = perfect equality, 1 = maximum inequality)\n")

	ew.printf("\n--- STORES ---\n")
	ew.printf("%-30s %8s %8s %6s %6s %6s %10s %10s\n", "Store", "Rating", "Change", "Sold", "Canc", "Waste", "Revenue", "Displayed")
	for _, st := range s.Stores {
		name := st.Name
		if st.Branch != "" {
			name += " - " + st.Branch
		}
		ew.printf("%-30.30s %8.2f %8s %6d %6d %6d %10.2f %10d\n",
			name, st.FinalRating, signedFloat(st.FinalRating-st.InitialRating, 2),
			st.BagsSold, st.BagsCancelled, st.Waste, st.Revenue, st.TimesDisplayed)
	}
	ew.printf("\n")
}

// writeComparison reports every strategy against the first one. Positive
// numbers are improvements: more sold, less waste, more revenue, more
// retained customers, lower Gini.
func writeComparison(ew *errWriter, summaries []Summary) {
	if len(summaries) < 2 {
		return
	}
	base := summaries[0]
	others := summaries[1:]

	ew.rule('=')
	ew.printf("STRATEGY COMPARISON TABLE (vs %s)\n", strings.ToUpper(base.Strategy))
	ew.rule('=')
	ew.printf("\n")

	header := []string{strings.ToUpper(base.Strategy)}
	for _, s := range others {
		header = append(header, strings.ToUpper(s.Strategy))
	}
	ew.row("Metric", header)
	ew.rule('-')

	diffRow := func(label, baseCell string, diff func(Summary) string) {
		cells := []string{baseCell}
		for _, s := range others {
			cells = append(cells, diff(s))
		}
		ew.row(label, cells)
	}
	diffRow("Bags Sold", fmt.Sprintf("%d", base.BagsSold), func(s Summary) string {
		return signed(s.BagsSold - base.BagsSold)
	})
	diffRow("Waste Reduction", fmt.Sprintf("%d", base.BagsUnsold), func(s Summary) string {
		return signed(base.BagsUnsold - s.BagsUnsold)
	})
	diffRow("Revenue Increase ($)", fmt.Sprintf("%.2f", base.RevenueGenerated), func(s Summary) string {
		return signedFloat(s.RevenueGenerated-base.RevenueGenerated, 2)
	})
	diffRow("Customers Retained", fmt.Sprintf("%d", base.Retained()), func(s Summary) string {
		return signed(s.Retained() - base.Retained())
	})
	diffRow("Fairness Improvement", fmt.Sprintf("%.4f", base.GiniExposure), func(s Summary) string {
		return signedFloat(base.GiniExposure-s.GiniExposure, 4)
	})
	ew.rule('=')
}
