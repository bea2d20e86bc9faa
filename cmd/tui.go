package main

import (
	"context"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/session"
	"github.com/kass/emergency-locator/pkg/tui"
)

var logFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive map",
	Long:  `Open the interactive map with category filters, the result list and the emergency contacts popup.`,
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&logFile, "log-file", "emergency-locator.log", "Log file while the map is open")
	rootCmd.Flags().AddFlagSet(tuiCmd.Flags())
}

func runTUI(cmd *cobra.Command, args []string) error {
	f, err := tea.LogToFile(logFile, "emergency-locator")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	locator, err := newLocator(cfg)
	if err != nil {
		return err
	}

	canvas := tui.NewCanvas()
	service, closer, serviceErr := newPlacesService(ctx, cfg)
	if serviceErr == nil {
		defer closer.Close()
	}

	sess := session.New(locator, newOrchestrator(service, cfg), canvas, session.Options{
		Center:   models.Position{Lat: cfg.Map.CenterLat, Lon: cfg.Map.CenterLon},
		Zoom:     cfg.Map.Zoom,
		Contacts: cfg.Contacts,
	})
	log.Printf("session %s started (provider %s)", sess.ID, cfg.Provider)

	if serviceErr != nil {
		sess.MapFailed(serviceErr)
	}

	p := tea.NewProgram(tui.New(ctx, sess, canvas), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("map closed with error: %w", err)
	}
	log.Printf("session %s ended", sess.ID)
	return nil
}
