package cli

import (
	"github.com/charmbracelet/huh"
)

func confirmForm(title string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).WithShowHelp(false).Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
