package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/process"

	"kind2/cmd/kind2/driver"
)

// reporter prints pipeline progress to out and, in debug mode, diagnostics
// to errw. Styles are bound to their writer, so output that is not a
// terminal stays plain text.
type reporter struct {
	out   io.Writer
	errw  io.Writer
	debug bool

	styleStep  lipgloss.Style
	styleCount lipgloss.Style
	styleDebug lipgloss.Style
	styleLabel lipgloss.Style
}

var _ driver.Reporter = (*reporter)(nil)

func newReporter(out, errw io.Writer, debug bool) *reporter {
	ro := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errw)
	return &reporter{
		out:        out,
		errw:       errw,
		debug:      debug,
		styleStep:  ro.NewStyle().Foreground(lipgloss.Color("244")),
		styleCount: ro.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		styleDebug: re.NewStyle().Foreground(lipgloss.Color("241")),
		styleLabel: re.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
	}
}

func (r *reporter) Reducing(string) {
	fmt.Fprintln(r.out, r.styleStep.Render("- Reducing."))
}

func (r *reporter) Reduced(rewrites uint64) {
	fmt.Fprintln(r.out, r.styleStep.Render("- Reduced. ")+r.styleCount.Render(fmt.Sprint(rewrites))+r.styleStep.Render(" rewrites."))
}

func (r *reporter) Output(text string) {
	fmt.Fprintf(r.out, "\n%s\n", text)
}

func (r *reporter) Debugf(format string, args ...any) {
	if !r.debug {
		return
	}
	fmt.Fprintln(r.errw, r.styleDebug.Render("debug: "+fmt.Sprintf(format, args...)))
}

// config dumps the resolved configuration.
func (r *reporter) config(path string, cfg Config) {
	if !r.debug {
		return
	}
	r.Debugf("config file: %s", path)
	for _, line := range strings.Split(strings.TrimRight(spew.Sdump(cfg), "\n"), "\n") {
		r.Debugf("  %s", line)
	}
}

// stats prints the cost of a completed run.
func (r *reporter) stats(res *driver.Result) {
	if !r.debug {
		return
	}
	rows := [][2]string{
		{"command", res.Command.String() + " (" + res.Entry + ")"},
		{"rewrites", humanize.Comma(int64(res.Rewrites))},
		{"elapsed", res.Elapsed.String()},
		{"nodes", humanize.Comma(int64(res.Nodes))},
		{"rss", residentMemory()},
	}
	for _, row := range rows {
		fmt.Fprintln(r.errw, r.styleLabel.Render(fmt.Sprintf("%-9s", row[0]))+" "+row[1])
	}
}

func residentMemory() string {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return "unknown"
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return "unknown"
	}
	return humanize.IBytes(mem.RSS)
}
