package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/withgalaxy/adapter-static/pkg/classify"
)

type Printer struct {
	Out       io.Writer
	Color     bool
	OutputDir string
}

// NewPrinter enables colours only when f is a terminal.
func NewPrinter(f *os.File, outputDir string) *Printer {
	return &Printer{
		Out:       f,
		Color:     isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
		OutputDir: outputDir,
	}
}

func (p *Printer) paint(code, text string) string {
	if !p.Color {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

func (p *Printer) green(s string) string  { return p.paint("32", s) }
func (p *Printer) yellow(s string) string { return p.paint("33", s) }
func (p *Printer) red(s string) string    { return p.paint("31", s) }
func (p *Printer) gray(s string) string   { return p.paint("90", s) }

func (p *Printer) Routes(r *BuildReport) {
	for _, cr := range r.Routes {
		status := p.green("✓")
		detail := fmt.Sprintf("%d page(s)", len(cr.Documents))
		switch cr.Disposition {
		case classify.FallbackOnly:
			status = p.yellow("↪")
			detail = cr.Reason
		case classify.Invalid:
			status = p.red("✗")
			detail = fmt.Sprintf("%d error(s)", len(cr.Errors))
		case classify.Pending:
			status = p.gray("·")
			detail = "not rendered"
		}
		fmt.Fprintf(p.Out, "  %s %-32s %-9s %s\n", status, cr.ID(), cr.Disposition, p.gray(detail))
	}
}

func (p *Printer) Summary(r *BuildReport, duration time.Duration) {
	fmt.Fprintf(p.Out, "  %d static, %d fallback, %d invalid\n", r.StaticCount, r.FallbackCount, len(r.InvalidRoutes))

	if len(r.InvalidRoutes) > 0 {
		fmt.Fprintln(p.Out)
		fmt.Fprintf(p.Out, "  "+p.red("✗ ")+"Invalid routes (%d):\n", len(r.InvalidRoutes))
		for _, cr := range r.InvalidRoutes {
			fmt.Fprintf(p.Out, "  %s %s\n", p.red("✗"), cr.ID())
			for _, err := range cr.Errors {
				fmt.Fprintf(p.Out, "      • %v\n", err)
			}
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(p.Out)
		fmt.Fprintf(p.Out, "  "+p.yellow("⚠ ")+"Warnings (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(p.Out, "      • %v\n", w)
		}
	}

	if r.Files > 0 {
		fmt.Fprintf(p.Out, "\n  %d files, %s\n", r.Files, humanize.Bytes(uint64(r.Bytes)))
	}

	if duration > 0 {
		fmt.Fprintf(p.Out, "  "+p.green("✓ ")+"Done in %s\n", formatDuration(duration))
	}

	if p.OutputDir != "" {
		fmt.Fprintf(p.Out, "\n  %s\n", p.gray("Output: "+p.OutputDir))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.1fs", float64(d)/float64(time.Second))
}

// RouteList joins route ids for error messages.
func RouteList(routes []classify.ClassifiedRoute) string {
	ids := make([]string, 0, len(routes))
	for _, cr := range routes {
		ids = append(ids, "  - "+cr.ID())
	}
	return strings.Join(ids, "\n")
}
