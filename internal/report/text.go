// Package report renders SNM results as text, PNG plots and HTML charts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/banshee-data/snm.report/internal/snm"
	"github.com/banshee-data/snm.report/internal/units"
)

const ruleWidth = 70

// WriteText writes the margin summary for one butterfly followed by the
// corners of the square found in each lobe. Margins are printed in volts
// with a second rendering in unit; V pairs with millivolts.
func WriteText(w io.Writer, title string, res *snm.Result, unit string) error {
	if res == nil {
		return fmt.Errorf("nil result for %q", title)
	}
	if !units.IsValid(unit) {
		return fmt.Errorf("invalid unit %q, must be one of %s", unit, units.GetValidUnitsString())
	}
	alt := unit
	if alt == units.V {
		alt = units.MV
	}

	rule := strings.Repeat("=", ruleWidth)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, title, rule)
	fmt.Fprintf(&b, "SNM (reported)      : %.6f V  (%s)\n", res.SNM, units.FormatVoltage(res.SNM, alt))
	fmt.Fprintf(&b, "SNM_left  (lobe)    : %.6f V  (%s)\n", res.Left, units.FormatVoltage(res.Left, alt))
	fmt.Fprintf(&b, "SNM_right (lobe)    : %.6f V  (%s)\n", res.Right, units.FormatVoltage(res.Right, alt))
	b.WriteString("\n")
	writeLobe(&b, "LEFT", res.LeftPlacement)
	b.WriteString("\n")
	writeLobe(&b, "RIGHT", res.RightPlacement)
	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

var cornerLabels = [4]string{
	"P1 bottom-left ",
	"P2 bottom-right",
	"P3 top-right   ",
	"P4 top-left    ",
}

func writeLobe(b *strings.Builder, name string, p *snm.Placement) {
	if p == nil {
		fmt.Fprintf(b, "%s lobe: no square\n", name)
		return
	}
	fmt.Fprintf(b, "%s lobe (max-square side = %.6f V):\n", name, p.Side)
	for i, c := range p.Corners() {
		fmt.Fprintf(b, "  %s: (%.6f, %.6f)\n", cornerLabels[i], c.X, c.Y)
	}
}
