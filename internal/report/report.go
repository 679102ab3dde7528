// Package report renders EngineResult envelopes into a markdown analysis
// report, and to HTML for browser display. The full transformation audit
// trail is reproduced so a reviewer can retrace how a method was selected.
// PDF generation stays outside this codebase.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"vvengine/domain/engine"
)

// Renderer renders engine results
type Renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() *Renderer { return &Renderer{} }

// Markdown renders the result as a markdown document
func (r *Renderer) Markdown(res *engine.EngineResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report %s\n\n", res.ID)
	fmt.Fprintf(&b, "- Module: `%s`\n", res.Module)
	fmt.Fprintf(&b, "- Method used: `%s`\n", res.Method)
	fmt.Fprintf(&b, "- Computed at: %s\n\n", res.ComputedAt)

	r.writeInputs(&b, res)

	switch {
	case res.Attribute != nil:
		r.writeAttribute(&b, *res.Attribute)
	case len(res.AttributeSweep) > 0:
		r.writeSweep(&b, res.AttributeSweep)
	case res.Tolerance != nil:
		r.writeTolerance(&b, res.Tolerance)
	case res.Pipeline != nil:
		r.writePipeline(&b, res.Pipeline)
	case res.Reliability != nil:
		r.writeReliability(&b, res.Reliability)
	}

	return b.String()
}

// HTML renders the result as an HTML document via the markdown renderer
func (r *Renderer) HTML(res *engine.EngineResult) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(r.Markdown(res)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func (r *Renderer) writeInputs(b *strings.Builder, res *engine.EngineResult) {
	if len(res.Inputs) == 0 {
		return
	}
	b.WriteString("## Inputs\n\n")

	keys := make([]string, 0, len(res.Inputs))
	for k := range res.Inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("| Parameter | Value |\n|---|---|\n")
	for _, k := range keys {
		fmt.Fprintf(b, "| %s | %v |\n", k, res.Inputs[k])
	}
	b.WriteString("\n")
}

func (r *Renderer) writeAttribute(b *strings.Builder, a engine.AttributeResult) {
	b.WriteString("## Attribute Sample Size\n\n")
	fmt.Fprintf(b, "With confidence %.4g and reliability %.4g, allowing %d failure(s), ",
		a.Confidence, a.Reliability, a.AllowableFailures)
	fmt.Fprintf(b, "the required sample size is **n = %d** (`%s`).\n\n", a.SampleSize, a.Method)
}

func (r *Renderer) writeSweep(b *strings.Builder, sweep []engine.AttributeResult) {
	b.WriteString("## Attribute Sample Size Sensitivity Sweep\n\n")
	b.WriteString("| Allowable failures (c) | Sample size (n) | Method |\n|---|---|---|\n")
	for _, entry := range sweep {
		fmt.Fprintf(b, "| %d | %d | `%s` |\n", entry.AllowableFailures, entry.SampleSize, entry.Method)
	}
	b.WriteString("\n")
}

func (r *Renderer) writeTolerance(b *strings.Builder, tr *engine.ToleranceResult) {
	b.WriteString("## Tolerance Analysis\n\n")
	fmt.Fprintf(b, "- Sample mean: %.6g\n", tr.Mean)
	fmt.Fprintf(b, "- Sample standard deviation: %.6g\n", tr.StdDev)
	fmt.Fprintf(b, "- Tolerance factor k (%s-sided, n=%d): %.6g\n",
		tr.Factor.Sidedness, tr.Factor.SampleSize, tr.Factor.Factor)
	r.writeLimits(b, tr.Limits)
	if tr.Ppk != nil {
		fmt.Fprintf(b, "- Ppk: %.4g\n", *tr.Ppk)
	}
	r.writeComparison(b, tr.Comparison)
	b.WriteString("\n")
}

func (r *Renderer) writePipeline(b *strings.Builder, p *engine.PipelineResult) {
	b.WriteString("## Non-Normal Pipeline\n\n")
	fmt.Fprintf(b, "- Sample size: %d\n", p.SampleSize)
	fmt.Fprintf(b, "- Mean: %.6g, standard deviation: %.6g\n", p.Mean, p.StdDev)

	b.WriteString("\n### Outlier Screen\n\n")
	fmt.Fprintf(b, "Q1 = %.6g, Q3 = %.6g, IQR = %.6g; fences [%.6g, %.6g].\n",
		p.Screen.Q1, p.Screen.Q3, p.Screen.IQR, p.Screen.LowerFence, p.Screen.UpperFence)
	if len(p.Screen.FlaggedIndices) == 0 {
		b.WriteString("No values flagged.\n")
	} else {
		fmt.Fprintf(b, "Flagged indices (advisory, not removed): %v\n", p.Screen.FlaggedIndices)
	}

	b.WriteString("\n### Normality of Raw Data\n\n")
	r.writeVerdicts(b, p.RawVerdicts)

	if len(p.Attempts) > 0 {
		b.WriteString("\n### Transformation Attempts\n\n")
		for i, attempt := range p.Attempts {
			fmt.Fprintf(b, "%d. `%s`", i+1, attempt.Kind)
			if attempt.Lambda != nil {
				fmt.Fprintf(b, " (lambda = %.6g)", *attempt.Lambda)
			}
			switch {
			case attempt.SkipReason != "":
				fmt.Fprintf(b, " - skipped: %s\n", attempt.SkipReason)
			case attempt.Accepted:
				b.WriteString(" - accepted\n")
			default:
				b.WriteString(" - rejected\n")
			}
			r.writeVerdicts(b, attempt.Verdicts)
		}
	}

	fmt.Fprintf(b, "\n### Result (`%s`)\n\n", p.Method)
	r.writeLimits(b, p.Limits)
	if p.TransformedLimits != nil {
		fmt.Fprintf(b, "- Transformed-scale limits: [%s, %s]\n",
			fmtBound(p.TransformedLimits.Lower), fmtBound(p.TransformedLimits.Upper))
	}
	if p.WilksConfidence != nil {
		fmt.Fprintf(b, "- Achieved non-parametric confidence: %.6g\n", *p.WilksConfidence)
	}
	r.writeComparison(b, p.Comparison)
	b.WriteString("\n")
}

func (r *Renderer) writeReliability(b *strings.Builder, rel *engine.ReliabilityResult) {
	b.WriteString("## Reliability\n\n")
	switch rel.Kind {
	case engine.ReliabilityZeroFailure:
		fmt.Fprintf(b, "Zero-failure demonstration duration: **%.6g** unit-lifetimes.\n\n", rel.Value)
	case engine.ReliabilityAcceleration:
		fmt.Fprintf(b, "Arrhenius acceleration factor: **%.6g**.\n\n", rel.Value)
	default:
		fmt.Fprintf(b, "%s: %.6g\n\n", rel.Kind, rel.Value)
	}
}

func (r *Renderer) writeVerdicts(b *strings.Builder, verdicts []engine.NormalityVerdict) {
	for _, v := range verdicts {
		outcome := "reject"
		if v.Accepted {
			outcome = "accept"
		}
		fmt.Fprintf(b, "   - %s: statistic %.6g", v.TestName, v.Statistic)
		if v.PValue != nil {
			fmt.Fprintf(b, ", p = %.4g", *v.PValue)
		}
		if v.CriticalValue != nil {
			fmt.Fprintf(b, ", critical value %.4g", *v.CriticalValue)
		}
		fmt.Fprintf(b, " (alpha = %.3g) -> %s\n", v.Alpha, outcome)
	}
}

func (r *Renderer) writeLimits(b *strings.Builder, limits engine.ToleranceLimits) {
	fmt.Fprintf(b, "- Limits (%s-sided): [%s, %s]\n",
		limits.Sidedness, fmtBound(limits.Lower), fmtBound(limits.Upper))
}

func (r *Renderer) writeComparison(b *strings.Builder, cmp *engine.SpecComparison) {
	if cmp == nil {
		return
	}
	verdict := "FAIL"
	if cmp.Pass {
		verdict = "PASS"
	}
	fmt.Fprintf(b, "- Specification comparison (LSL %s, USL %s): **%s**\n",
		fmtBound(cmp.Limits.Lower), fmtBound(cmp.Limits.Upper), verdict)
}

func fmtBound(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.6g", *v)
}
