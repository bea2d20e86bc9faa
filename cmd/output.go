package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kass/emergency-locator/pkg/models"
)

// Commands print through stdout so tests can capture it
var stdout io.Writer = os.Stdout

// interactive is false when stdout is piped; progress bars are skipped then
var interactive = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7263D"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F1FA8C"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(22)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

func printTitle(title string) {
	fmt.Fprintf(stdout, "\n%s\n%s\n", headerStyle.Render("🚨 "+title), faintStyle.Render(strings.Repeat("─", 60)))
}

func printSubtitle(subtitle string) {
	fmt.Fprintf(stdout, "\n%s\n", sectionStyle.Render(subtitle))
}

func printSuccess(message string) {
	fmt.Fprintln(stdout, okStyle.Render("✓ "+message))
}

func printInfo(message string) {
	fmt.Fprintln(stdout, noteStyle.Render("• "+message))
}

func printError(message string) {
	fmt.Fprintln(stdout, failStyle.Render("✗ "+message))
}

// printStat prints an aligned "label  value" row
func printStat(label string, value any) {
	fmt.Fprintf(stdout, "  %s %v\n", labelStyle.Render(label+":"), value)
}

// printPlace prints one numbered result with its distance from the search
// centre, rating and address
func printPlace(n int, p models.PlaceResult, metres float64) {
	line := fmt.Sprintf("%2d. %s", n, p.Name)
	meta := formatDistance(metres)
	if p.Rating != nil {
		meta += fmt.Sprintf(" · ★ %.1f", *p.Rating)
	}
	fmt.Fprintf(stdout, "%s %s\n", okStyle.Render(line), faintStyle.Render("("+meta+")"))
	if p.Address != "" {
		fmt.Fprintf(stdout, "    %s\n", p.Address)
	}
}

func formatDistance(metres float64) string {
	if metres < 1000 {
		return fmt.Sprintf("%.0f m", metres)
	}
	return fmt.Sprintf("%.1f km", metres/1000)
}

var bar = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

// printProgress redraws a progress line; it prints nothing when stdout is not a terminal
func printProgress(current, total int, label string) {
	if !interactive || total <= 0 {
		return
	}
	percent := float64(current) / float64(total)
	fmt.Fprintf(stdout, "\r%s %s", label, bar.ViewAs(percent))
	if current >= total {
		fmt.Fprintln(stdout)
	}
}
