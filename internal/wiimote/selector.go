package wiimote

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/hsanzg/wiinote/internal/logger"
)

// PickDevice presents an interactive selection when several remotes
// are connected. With exactly one remote it is chosen automatically.
func PickDevice(addrs []Address) (Address, error) {
	if len(addrs) == 0 {
		return Address{}, ErrNotFound
	}
	if len(addrs) == 1 {
		logger.Infof("Auto-selected wii remote: %s", addrs[0].ID())
		return addrs[0], nil
	}

	options := make([]huh.Option[int], len(addrs))
	for i, addr := range addrs {
		label := fmt.Sprintf("%s (%s)", addr.Name, addr.ID())
		if level, err := addr.Battery(); err == nil {
			label = fmt.Sprintf("%s, battery %d%%", label, level)
		}
		options[i] = huh.NewOption(label, i)
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select Wii Remote").
				Description("Several remotes are connected; choose the one to use").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return Address{}, fmt.Errorf("device selection cancelled: %w", err)
	}
	return addrs[selected], nil
}
