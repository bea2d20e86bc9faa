package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kass/emergency-locator/pkg/models"
)

// csvColumns is the expected header of a places dataset
var csvColumns = []string{"id", "name", "address", "types", "lat", "lon", "rating"}

// ReadCSVFile reads a places dataset from disk
func ReadCSVFile(path string) ([]*models.Place, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses rows of id,name,address,types,lat,lon,rating.
// Types are separated by '|'; rating may be empty.
func ReadCSV(r io.Reader) ([]*models.Place, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) < len(csvColumns)-1 {
		return nil, fmt.Errorf("unexpected header %v, want %v", header, csvColumns)
	}

	var places []*models.Place
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		place, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		places = append(places, place)
	}

	return places, nil
}

func parseRecord(record []string) (*models.Place, error) {
	if len(record) < 6 {
		return nil, fmt.Errorf("expected at least 6 fields, got %d", len(record))
	}

	lat, err := strconv.ParseFloat(record[4], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", record[4], err)
	}
	lon, err := strconv.ParseFloat(record[5], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lon %q: %w", record[5], err)
	}

	var types []string
	for _, t := range strings.Split(record[3], "|") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}

	place := &models.Place{
		PlaceResult: models.PlaceResult{
			ID:       record[0],
			Name:     record[1],
			Address:  record[2],
			Location: models.Position{Lat: lat, Lon: lon},
			Types:    types,
		},
	}

	if len(record) > 6 && record[6] != "" {
		rating, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rating %q: %w", record[6], err)
		}
		place.Rating = &rating
	}

	place.Keywords = strings.ToLower(place.Name + " " + strings.Join(types, " "))
	return place, nil
}
