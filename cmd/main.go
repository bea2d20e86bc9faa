package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/kass/emergency-locator/pkg/config"
)

var (
	configFile string
	provider   string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "emergency-locator",
	Short: "Find hospitals, pharmacies and police stations near you",
	Long: `Emergency locator finds the nearest hospitals, urgent care units, emergency rooms,
pharmacies and police stations around your position and lists emergency phone numbers.

Run without a subcommand to open the interactive map.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default config.yaml, then config.yaml.example)")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Places provider: google, local or postgis")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(tuiCmd, searchCmd, nearestCmd, categoriesCmd, loadCmd, benchCmd)
}

func loadSettings(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	switch {
	case errors.Is(err, config.ErrNotFound):
		if verbose {
			log.Printf("No config file found, using defaults")
		}
	case err != nil:
		return err
	case c.Source == "config.yaml.example":
		log.Printf("Using config.yaml.example (copy to config.yaml for custom settings)")
	}

	if provider != "" {
		c.Provider = provider
		if err := c.Validate(); err != nil {
			return err
		}
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
