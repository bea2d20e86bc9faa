package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kass/emergency-locator/pkg/geo"
	"github.com/kass/emergency-locator/pkg/postgis"
)

var (
	indexFile   string
	loadPostGIS bool
	batchSize   int
)

var loadCmd = &cobra.Command{
	Use:   "load <csv>",
	Short: "Build the offline place index from a CSV file",
	Long: `Read places from a CSV file (id,name,address,types,lat,lon,rating) and write the
R-Tree index used by the local provider. With --postgis the places are also
upserted into the configured PostGIS database.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVarP(&indexFile, "output", "o", "", "Index file path (default local.index_file from config)")
	loadCmd.Flags().BoolVar(&loadPostGIS, "postgis", false, "Also load the places into PostGIS")
	loadCmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Rows per PostGIS transaction")
}

const indexChunk = 500

func runLoad(cmd *cobra.Command, args []string) error {
	if indexFile == "" {
		indexFile = cfg.Local.IndexFile
	}

	printTitle("Loading places")
	ps, err := geo.ReadCSVFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	printInfo(fmt.Sprintf("Read %d places from %s", len(ps), args[0]))

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		start := time.Now()
		index := geo.NewPlaceIndex()
		for i := 0; i < len(ps); i += indexChunk {
			end := i + indexChunk
			if end > len(ps) {
				end = len(ps)
			}
			index.IndexPlaces(ps[i:end])
			if !loadPostGIS {
				printProgress(end, len(ps), "Indexing")
			}
		}
		if err := index.SaveToFile(indexFile); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
		printSuccess(fmt.Sprintf("Indexed %d places in %v", index.Size(), time.Since(start).Round(time.Millisecond)))

		if info, err := os.Stat(indexFile); err == nil {
			printStat("Index file", indexFile)
			printStat("Size", fmt.Sprintf("%.2f KB", float64(info.Size())/1024))
		}
		return nil
	})

	if loadPostGIS {
		g.Go(func() error {
			start := time.Now()
			store, err := postgis.Open(ctx, postgis.Options(cfg.PostGIS))
			if err != nil {
				return err
			}
			defer store.Close()
			store.SetVerbose(verbose)

			if err := store.InitSchema(ctx); err != nil {
				return err
			}
			if err := store.BulkInsertPlaces(ctx, ps, batchSize); err != nil {
				return err
			}
			n, err := store.Count(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("PostGIS holds %d places (loaded in %v)", n, time.Since(start).Round(time.Millisecond)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		printError(err.Error())
		return err
	}
	if verbose {
		log.Printf("load finished: %s", args[0])
	}
	return nil
}
