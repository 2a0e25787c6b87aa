package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. Enabled only when
// stdin is a terminal; piped input can never satisfy a confirmation.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := false
	if in == nil {
		in = os.Stdin
		interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	} else {
		interactive = true
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter can collect a response.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks the user to approve a gated command. High and critical risk
// demand an explicit typed "yes"; anything lower takes y/N.
func (p *Prompter) Confirm(decision domain.GateDecision, risk domain.RiskAssessment, command string) (bool, error) {
	fmt.Fprintf(p.out, "\n%s risk detected\n", strings.ToUpper(risk.Level.String()))
	if decision.Reason != "" {
		fmt.Fprintf(p.out, " - %s\n", decision.Reason)
	}
	for _, reason := range risk.Reasons {
		if reason != decision.Reason {
			fmt.Fprintf(p.out, " - %s\n", reason)
		}
	}
	fmt.Fprintf(p.out, "Command:\n  %s\n", command)

	if risk.Level.AtLeast(domain.RiskHigh) {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Continue? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to confirm (or anything else to cancel): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
