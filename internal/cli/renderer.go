package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mfateev/autodev-temporal-go/internal/models"
	"github.com/mfateev/autodev-temporal-go/internal/workflow"
)

const defaultWidth = 100

// maxDetailLines bounds bulky event details (test output, git errors).
const maxDetailLines = 20

// Renderer prints run events as they stream out of the workflow.
type Renderer struct {
	out        io.Writer
	noColor    bool
	noMarkdown bool
	width      int

	persona lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style

	md *glamour.TermRenderer
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, noColor, noMarkdown bool) *Renderer {
	r := &Renderer{
		out:        out,
		noColor:    noColor,
		noMarkdown: noMarkdown,
		width:      terminalWidth(out),
	}

	if noColor {
		plain := lipgloss.NewStyle()
		r.persona, r.ok, r.warn, r.fail, r.dim = plain, plain, plain, plain, plain
	} else {
		lr := lipgloss.NewRenderer(out)
		r.persona = lr.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		r.ok = lr.NewStyle().Foreground(lipgloss.Color("10"))
		r.warn = lr.NewStyle().Foreground(lipgloss.Color("11"))
		r.fail = lr.NewStyle().Foreground(lipgloss.Color("9"))
		r.dim = lr.NewStyle().Faint(true)
	}

	if !noMarkdown {
		md, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(r.width),
		)
		if err == nil {
			r.md = md
		}
	}

	return r
}

// terminalWidth queries the terminal when out is one, else defaults.
func terminalWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return defaultWidth
}

// RenderEvent prints one run event. Returns false for kinds that
// produce no output.
func (r *Renderer) RenderEvent(ev models.RunEvent) bool {
	switch ev.Kind {
	case models.EventPersonaStarted:
		name := ev.Message
		if name == "" {
			name = ev.PersonaID
		}
		fmt.Fprintf(r.out, "\n%s\n", r.persona.Render("== "+name+" ("+ev.PersonaID+") =="))

	case models.EventPatchGenerated:
		fmt.Fprintf(r.out, "%s %s\n", r.ok.Render("patch:"), ev.Message)
		if ev.Patch != nil {
			for _, f := range ev.Patch.Files {
				fmt.Fprintf(r.out, "  %s (+%d -%d)\n", f.Path, f.Added, f.Deleted)
			}
		}

	case models.EventPatchMissing:
		fmt.Fprintf(r.out, "%s %s\n", r.warn.Render("no patch:"), ev.Message)

	case models.EventPatchDryRun:
		fmt.Fprintf(r.out, "%s\n", r.dim.Render("dry run, patch not applied:"))
		r.renderDiff(ev.Detail)

	case models.EventPolicyDenied, models.EventApprovalDenied:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render("denied:"), ev.Message)
		r.renderDetail(ev.Detail)

	case models.EventBranchCreated:
		fmt.Fprintf(r.out, "branch %s\n", ev.Message)

	case models.EventApplyFailed:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render("apply failed:"), ev.Message)
		r.renderDetail(ev.Detail)

	case models.EventCommitted:
		fmt.Fprintf(r.out, "%s %s\n", r.ok.Render("committed:"), ev.Message)

	case models.EventPushed:
		fmt.Fprintf(r.out, "%s %s\n", r.ok.Render("pushed:"), ev.Message)

	case models.EventTestsPassed:
		fmt.Fprintf(r.out, "%s\n", r.ok.Render("tests passed"))

	case models.EventTestsFailed:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render("tests failed:"), ev.Message)
		r.renderDetail(ev.Detail)

	case models.EventTestsSkipped:
		fmt.Fprintf(r.out, "%s %s\n", r.dim.Render("tests skipped:"), ev.Message)

	case models.EventPRCreated:
		fmt.Fprintf(r.out, "%s %s\n", r.ok.Render("pull request:"), ev.Message)

	case models.EventPRSkipped:
		fmt.Fprintf(r.out, "%s %s\n", r.dim.Render("pull request skipped:"), ev.Message)

	case models.EventError:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render("error:"), ev.Message)
		r.renderDetail(ev.Detail)

	default:
		return false
	}
	return true
}

// renderDiff prints a unified diff, through glamour as a fenced diff
// block when markdown rendering is on.
func (r *Renderer) renderDiff(diff string) {
	if diff == "" {
		return
	}
	if r.md != nil {
		if rendered, err := r.md.Render("```diff\n" + diff + "\n```"); err == nil {
			fmt.Fprint(r.out, rendered)
			return
		}
	}
	fmt.Fprintln(r.out, strings.TrimRight(diff, "\n"))
}

// renderDetail prints bulky detail text indented, middle lines
// dropped beyond maxDetailLines.
func (r *Renderer) renderDetail(detail string) {
	if detail == "" {
		return
	}
	lines := strings.Split(strings.TrimRight(detail, "\n"), "\n")
	if len(lines) > maxDetailLines {
		head := lines[:maxDetailLines/2]
		tail := lines[len(lines)-maxDetailLines/2:]
		omitted := len(lines) - len(head) - len(tail)
		lines = append(head, fmt.Sprintf("... %d more lines ...", omitted))
		lines = append(lines, tail...)
	}
	for _, line := range lines {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
}

// RenderApprovalPrompt shows the pending patch before asking.
func (r *Renderer) RenderApprovalPrompt(p workflow.PendingApproval) {
	fmt.Fprintf(r.out, "\n%s persona %s wants to modify:\n", r.warn.Render("approval needed:"), p.PersonaID)
	for _, f := range p.Files {
		fmt.Fprintf(r.out, "  %s\n", f)
	}
	if p.Reason != "" {
		fmt.Fprintf(r.out, "  (%s)\n", p.Reason)
	}
	fmt.Fprintf(r.out, "Apply this patch? [y]es / [n]o / [a]lways: ")
}

// RenderSummary prints the final run result.
func (r *Renderer) RenderSummary(result workflow.RunResult) {
	fmt.Fprintln(r.out)
	applied := 0
	for _, o := range result.Outcomes {
		if o.Applied {
			applied++
		}
	}
	fmt.Fprintf(r.out, "%d persona(s), %d patch(es) applied\n", len(result.Outcomes), applied)
	if result.TestsRan {
		if result.TestsPassed {
			fmt.Fprintf(r.out, "%s\n", r.ok.Render("tests passed"))
		} else {
			fmt.Fprintf(r.out, "%s\n", r.fail.Render("tests failed"))
		}
	}
	if result.PRURL != "" {
		fmt.Fprintf(r.out, "pull request: %s\n", result.PRURL)
	}
	if result.Cancelled {
		fmt.Fprintf(r.out, "%s\n", r.warn.Render("run cancelled"))
	}
}
