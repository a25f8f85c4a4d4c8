package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hsanzg/wiinote/internal/wiimote"
	"github.com/spf13/cobra"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true).Padding(0, 1)
	listCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	listSubtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected Wii Remotes",
	Long:  `List all Wii Remotes currently known to the kernel, with their sysfs address, input node and battery level.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := wiimote.NewMonitor(false, 0).Enumerate()
		if err != nil {
			return fmt.Errorf("failed to enumerate devices: %w", err)
		}

		if len(addrs) == 0 {
			fmt.Println("No wii remotes connected")
			fmt.Println(listSubtleStyle.Render("Pair one over Bluetooth, then run wiinote (or wiinote --discover)"))
			return nil
		}

		rows := make([][]string, 0, len(addrs))
		for _, addr := range addrs {
			battery := "-"
			if level, err := addr.Battery(); err == nil {
				battery = fmt.Sprintf("%d%%", level)
			}
			rows = append(rows, []string{addr.ID(), addr.Name, addr.Event, battery})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(listSubtleStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == 0 {
					return listHeaderStyle
				}
				return listCellStyle
			}).
			Headers("DEVICE", "NAME", "NODE", "BATTERY").
			Rows(rows...)

		fmt.Println(t.String())
		fmt.Println(listSubtleStyle.Render(fmt.Sprintf("Total: %d remote(s) connected", len(addrs))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
