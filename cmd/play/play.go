package play

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"he-demo/config"
	"he-demo/service"
	"he-demo/tui"
)

var confPath string

var Cmd = &cobra.Command{
	Use:   "play",
	Short: "Run the demo in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(confPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		// The logger stays silent here, output would tear the alt screen.
		demo, err := service.NewDemo(service.DemoOptions{
			ID: "terminal",
			Timings: service.Timings{
				Encrypt: cfg.Stages.Encrypt.D(),
				Send:    cfg.Stages.Send.D(),
				Compute: cfg.Stages.Compute.D(),
			},
		})
		if err != nil {
			return err
		}
		defer demo.Close()

		p := tea.NewProgram(tui.New(demo, cfg.Theme), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&confPath, "config", "c", "", "Path to the YAML configuration file.")
}
