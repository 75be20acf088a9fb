package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Confirm displays a warning box listing what is about to change and asks
// the user to type "yes". It returns false on any other answer or on EOF.
func (p *Printer) Confirm(in io.Reader, title string, changes []string) bool {
	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  CONFIRM  ─  %s", WarningMarker, title)), ""}
	for _, change := range changes {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+change))
	}
	lines = append(lines, "")

	p.Println(BoxStyle(p.width, WarningColor).Render(strings.Join(lines, "\n")))
	p.Printf("%s", WarningTitleStyle.Render(`Type "yes" to continue: `))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		p.Newline()
		return false
	}

	if strings.EqualFold(strings.TrimSpace(input), "yes") {
		return true
	}

	p.Println(lipgloss.NewStyle().Foreground(MutedColor).Render("  Operation cancelled."))
	return false
}

// ReadPassword prompts for a password on the terminal without echoing it.
// It fails when stdin is not a terminal.
func (p *Printer) ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal")
	}

	p.Printf("%s", prompt)
	password, err := term.ReadPassword(fd)
	p.Newline()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
