package prompt

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"
)

// Interactive reports whether prompts can be shown: stdin must be a
// terminal to read keys and stderr one to render on.
func Interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stderr)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// run renders model on stderr so stdout stays clean for URLs and
// listings, e.g. when piping `itg pr open`.
func run(model tea.Model) (tea.Model, error) {
	profile := colorprofile.Detect(os.Stderr, os.Environ())
	p := tea.NewProgram(model,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	return p.Run()
}
