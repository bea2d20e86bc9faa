package geo

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kass/emergency-locator/pkg/models"
)

// IndexData represents the serializable form of the place index
type IndexData struct {
	Places []*models.Place `json:"places"`
	Count  int64           `json:"count"`
}

// SaveToFile saves the index to a binary file
func (g *PlaceIndex) SaveToFile(filename string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data := IndexData{
		Places: g.all(),
		Count:  g.itemCount.Load(),
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(data); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	return nil
}

// LoadFromFile replaces the index contents with the places stored in filename
func (g *PlaceIndex) LoadFromFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var data IndexData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	g.Clear()
	g.IndexPlaces(data.Places)

	if g.Size() != data.Count {
		return fmt.Errorf("index file %s is inconsistent: expected %d places, loaded %d", filename, data.Count, g.Size())
	}
	return nil
}
