package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kass/emergency-locator/pkg/geo"
	"github.com/kass/emergency-locator/pkg/location"
	"github.com/kass/emergency-locator/pkg/models"
	"github.com/kass/emergency-locator/pkg/places"
	"github.com/kass/emergency-locator/pkg/search"
)

var (
	searchLat  float64
	searchLon  float64
	outputJSON bool
	nearestN   int
)

var searchCmd = &cobra.Command{
	Use:   "search <category>",
	Short: "Search places of a category near a position",
	Long: `Search places of a category near a position. Without --lat and --lon the
configured location source is asked for the current position.

Categories: hospital, farmacia, upa, prontosocorro, delegacia. Any other value is
sent to the provider as a place type.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "List the places closest to a position in the offline index",
	Long: `List the places closest to a position in the local index file, whatever their
category. Handy when a category search comes back empty.`,
	Args: cobra.NoArgs,
	RunE: runNearest,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the search categories and their provider codes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printTitle("Categories")
		for _, c := range search.Categories() {
			printStat(c.Key, fmt.Sprintf("%s (%s)", c.Label, strings.Join(c.Codes, ", ")))
		}
	},
}

func init() {
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "Latitude of the search centre")
	searchCmd.Flags().Float64Var(&searchLon, "lon", 0, "Longitude of the search centre")
	searchCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results as JSON")

	nearestCmd.Flags().Float64Var(&searchLat, "lat", 0, "Latitude of the search centre")
	nearestCmd.Flags().Float64Var(&searchLon, "lon", 0, "Longitude of the search centre")
	nearestCmd.Flags().IntVarP(&nearestN, "count", "n", 5, "Number of places to list")
	nearestCmd.Flags().BoolVar(&outputJSON, "json", false, "Output results as JSON")
}

type searchResult struct {
	Category string               `json:"category,omitempty"`
	Code     string               `json:"code,omitempty"`
	Center   models.Position      `json:"center"`
	Places   []models.PlaceResult `json:"places"`
}

// currentPosition uses --lat/--lon when given and the configured location
// source otherwise
func currentPosition(cmd *cobra.Command) (models.Position, error) {
	ctx := cmd.Context()
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		s, err := location.NewStatic(searchLat, searchLon)
		if err != nil {
			return models.Position{}, err
		}
		return s.CurrentPosition(ctx)
	}

	locator, err := newLocator(cfg)
	if err != nil {
		return models.Position{}, err
	}
	pos, err := locator.CurrentPosition(ctx)
	if err != nil {
		return models.Position{}, fmt.Errorf("could not get your location (%s): %w", location.Classify(err), err)
	}
	return pos, nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	category := args[0]

	pos, err := currentPosition(cmd)
	if err != nil {
		return err
	}

	service, closer, err := newPlacesService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	start := time.Now()
	out := newOrchestrator(service, cfg).Search(ctx, category, pos)
	elapsed := time.Since(start)

	if outputJSON {
		return writeJSON(searchResult{Category: category, Code: out.Code, Center: pos, Places: out.Places})
	}

	printTitle(fmt.Sprintf("%s near %.5f, %.5f", category, pos.Lat, pos.Lon))
	if out.Kind != search.Success {
		printError("No places found nearby. Try another category.")
		if verbose && out.Err != nil {
			printInfo(out.Err.Error())
		}
		return nil
	}

	for i, p := range out.Places {
		printPlace(i+1, p, geo.Distance(pos, p.Location))
	}

	printSubtitle("Search")
	printStat("Provider", cfg.Provider)
	printStat("Code", out.Code)
	printStat("Calls", out.Calls)
	printStat("Time", elapsed.Round(time.Millisecond))
	return nil
}

func runNearest(cmd *cobra.Command, args []string) error {
	if nearestN <= 0 {
		return fmt.Errorf("count must be positive")
	}
	pos, err := currentPosition(cmd)
	if err != nil {
		return err
	}

	local, err := places.OpenLocal(cfg.Local.IndexFile, verbose)
	if err != nil {
		return err
	}
	found := local.Nearest(pos, nearestN)

	if outputJSON {
		return writeJSON(searchResult{Center: pos, Places: found})
	}

	printTitle(fmt.Sprintf("Nearest places to %.5f, %.5f", pos.Lat, pos.Lon))
	if len(found) == 0 {
		printError("The index is empty. Build it with the load command.")
		return nil
	}
	for i, p := range found {
		printPlace(i+1, p, geo.Distance(pos, p.Location))
	}
	return nil
}
