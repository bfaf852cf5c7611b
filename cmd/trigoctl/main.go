package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/pkg/geospatial"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trigoctl",
		Short:         "Geospatial helpers for TODA zone work",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newDistanceCmd(), newCircleCmd(), newRandomCmd(), newLocateCmd())
	return root
}

func parseCoordinate(latArg, lonArg string) (geospatial.Coordinate, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil {
		return geospatial.Coordinate{}, fmt.Errorf("latitude %q: %w", latArg, err)
	}
	lon, err := strconv.ParseFloat(lonArg, 64)
	if err != nil {
		return geospatial.Coordinate{}, fmt.Errorf("longitude %q: %w", lonArg, err)
	}
	c := geospatial.Coordinate{Latitude: lat, Longitude: lon}
	return c, c.Validate()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat1> <lon1> <lat2> <lon2>",
		Short: "Great-circle distance in kilometres and initial bearing",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := parseCoordinate(args[2], args[3])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.3f km, bearing %.1f°\n",
				geospatial.Distance(from, to), geospatial.Bearing(from, to))
			return nil
		},
	}
}

func newCircleCmd() *cobra.Command {
	var radius float64
	var points int
	cmd := &cobra.Command{
		Use:   "circle <lat> <lon>",
		Short: "Print a circle as a GeoJSON polygon feature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			f, err := geospatial.CircleFeature("circle", geospatial.Zone{Center: center, RadiusKm: radius}, points, nil)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0.5, "radius in kilometres")
	cmd.Flags().IntVarP(&points, "points", "n", geospatial.DefaultCirclePoints, "polygon vertices")
	return cmd
}

func newRandomCmd() *cobra.Command {
	var radius float64
	var count int
	var seed uint64
	cmd := &cobra.Command{
		Use:   "random <lat> <lon>",
		Short: "Sample uniformly distributed points inside a circle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			center, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("count must be positive, got %d", count)
			}
			if seed == 0 {
				seed = rand.Uint64()
			}
			rng := rand.New(rand.NewPCG(seed, seed))
			for range count {
				p, err := geospatial.RandomPointInCircle(rng, center, radius)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.6f,%.6f\n", p.Latitude, p.Longitude)
			}
			return nil
		},
	}
	cmd.Flags().Float64VarP(&radius, "radius", "r", 0.5, "radius in kilometres")
	cmd.Flags().IntVarP(&count, "count", "c", 1, "number of points")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}

func newLocateCmd() *cobra.Command {
	var zonesFile string
	cmd := &cobra.Command{
		Use:   "locate <lat> <lon>",
		Short: "Find the TODA zone serving a point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}
			zones, err := loadZones(zonesFile)
			if err != nil {
				return err
			}

			idx := geospatial.NewZoneIndex()
			byID := make(map[string]domain.TodaZone, len(zones))
			for _, z := range zones {
				if err := idx.Add(z.ID, z.Geo()); err != nil {
					return fmt.Errorf("zone %s: %w", z.ID, err)
				}
				byID[z.ID] = z
			}

			id, ok := idx.Locate(p)
			if !ok {
				return fmt.Errorf("%s: %w", p, domain.ErrUnserviceable)
			}
			z := byID[id]
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s), %.3f km from center\n",
				z.ID, z.Name, z.AreaOfOperation, geospatial.Distance(p, z.Center))
			return nil
		},
	}
	cmd.Flags().StringVarP(&zonesFile, "zones", "z", "configs/seed.yaml", "YAML file with a zones list")
	return cmd
}

func loadZones(path string) ([]domain.TodaZone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Zones []domain.TodaZone `yaml:"zones"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Zones, nil
}
