// Package prompt is the terminal adapter for the prompt conflict policy. The
// engine yields one pending decision per conflicted file; this package asks
// the operator and feeds the answer back, keeping the engine itself free of
// terminal I/O.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	"rulesync/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"
)

const (
	choiceUseRemote = "use-remote"
	choiceKeepLocal = "keep-local"
	choiceBackup    = "backup"
	choiceShowDiff  = "show-diff"
)

// Interactive reports whether an operator is attached to decide conflicts.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// CLIPrompter resolves conflicts by asking on the terminal. show-diff prints
// a local/remote diff and re-asks the same file; remote content was already
// fetched for the cycle, so the loop never touches the network.
type CLIPrompter struct {
	rulesDir string
}

func NewCLIPrompter(rulesDir string) *CLIPrompter {
	return &CLIPrompter{rulesDir: rulesDir}
}

func (p *CLIPrompter) Decide(c model.Classification, remoteContent []byte) (model.Action, error) {
	for {
		var choice string

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title(fmt.Sprintf("Conflict: %s changed both locally and remotely", c.Path)).
					Options(
						huh.NewOption("Use remote version", choiceUseRemote),
						huh.NewOption("Keep local version", choiceKeepLocal),
						huh.NewOption("Backup local, then use remote", choiceBackup),
						huh.NewOption("Show diff", choiceShowDiff),
					).
					Value(&choice),
			),
		)

		if err := form.Run(); err != nil {
			return "", fmt.Errorf("prompt aborted: %w", err)
		}

		switch choice {
		case choiceUseRemote:
			return model.ActionOverwrite, nil
		case choiceKeepLocal:
			return model.ActionKeep, nil
		case choiceBackup:
			return model.ActionBackupThenOverwrite, nil
		case choiceShowDiff:
			p.showDiff(c, remoteContent)
		}
	}
}

func (p *CLIPrompter) showDiff(c model.Classification, remoteContent []byte) {
	localContent, err := os.ReadFile(filepath.Join(p.rulesDir, filepath.FromSlash(c.Path)))
	if err != nil && !os.IsNotExist(err) {
		fmt.Printf("cannot read local file: %v\n", err)
		return
	}

	if c.Remote == model.HashAbsent {
		fmt.Printf("--- %s\nremote side deleted this file; local edits shown below:\n%s\n", c.Path, localContent)
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(localContent), string(remoteContent), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	fmt.Printf("--- %s (local vs remote)\n%s\n", c.Path, dmp.DiffPrettyText(diffs))
}
