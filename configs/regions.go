package configs

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/DioGolang/fleettrack/internal/application/region"
	"github.com/DioGolang/fleettrack/internal/domain/geo"
)

//go:embed regions.yaml
var defaultRegions []byte

var ErrNoRegions = errors.New("region table is empty")

type regionRow struct {
	Name     string      `mapstructure:"name"`
	Active   *bool       `mapstructure:"active"`
	Boundary [][]float64 `mapstructure:"boundary"`
}

// LoadRegions reads the region table from file, or the embedded default when
// file is empty. Missing active flags default to true.
func LoadRegions(file string) ([]region.Definition, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	var err error
	if file == "" {
		err = v.ReadConfig(bytes.NewReader(defaultRegions))
	} else {
		v.SetConfigFile(file)
		err = v.ReadInConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}

	var rows []regionRow
	if err := v.UnmarshalKey("regions", &rows); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRegions
	}

	defs := make([]region.Definition, 0, len(rows))
	for i, row := range rows {
		boundary := make([]geo.Coordinate, 0, len(row.Boundary))
		for j, pair := range row.Boundary {
			if len(pair) != 2 {
				return nil, fmt.Errorf("region %d (%s) vertex %d: want [longitude, latitude], got %d values: %w",
					i, row.Name, j, len(pair), geo.ErrInvalidPolygon)
			}
			boundary = append(boundary, geo.Coordinate{Longitude: pair[0], Latitude: pair[1]})
		}
		active := true
		if row.Active != nil {
			active = *row.Active
		}
		defs = append(defs, region.Definition{Name: row.Name, Boundary: boundary, Active: active})
	}
	return defs, nil
}
