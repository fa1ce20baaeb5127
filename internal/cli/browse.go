package cli

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/edgeshift/edgeshift/internal/monitor"
	"github.com/edgeshift/edgeshift/internal/store"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a saved inventory in a TUI",
	Long: `Load the inventory.json written by a previous scan and browse its
hostnames interactively: filter with /, inspect the selected hostname's
classified rules and certificate coverage.`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().String("inventory", "./out/inventory.json", "Path to a saved inventory")
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("inventory")
	if err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading inventory: %w", err)
	}
	var inv store.Inventory
	if err := json.Unmarshal(b, &inv); err != nil {
		return fmt.Errorf("decoding inventory: %w", err)
	}

	p := tea.NewProgram(monitor.NewModel(&inv), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
