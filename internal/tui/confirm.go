package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// ConfirmDelete asks whether count history entries should be deleted.
func ConfirmDelete(count int) (bool, error) {
	noun := "summaries"
	if count == 1 {
		noun = "summary"
	}

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d %s?", count, noun)).
				Description("This cannot be undone.").
				Affirmative("Yes, delete").
				Negative("No, cancel").
				Value(&confirm),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}
	return confirm, nil
}
