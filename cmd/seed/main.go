package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/trigo/internal/adapters/postgres"
	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/usecases"
	"github.com/samirrijal/trigo/internal/pkg/config"
	"github.com/samirrijal/trigo/internal/pkg/logging"
)

// Fixtures is the layout of configs/seed.yaml.
type Fixtures struct {
	Zones   []domain.TodaZone `yaml:"zones"`
	Triders []domain.Trider   `yaml:"triders"`
}

func decodeFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixtures
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

func main() {
	path := "configs/seed.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load("trigo-seed")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("trigo-seed", cfg.Log.Level, cfg.Log.Format)

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	fixtures, err := decodeFixtures(file)
	if err != nil {
		log.Fatalf("%s: %v", path, err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	zoneRepo := postgres.NewZoneRepo(db)
	zones := usecases.NewZoneService(zoneRepo, nil)
	triders := usecases.NewTriderService(postgres.NewTriderRepo(db), zoneRepo, nil)

	for i := range fixtures.Zones {
		if err := zones.Upsert(ctx, &fixtures.Zones[i]); err != nil {
			log.Fatalf("zone %s: %v", fixtures.Zones[i].ID, err)
		}
	}
	for i := range fixtures.Triders {
		if err := triders.Register(ctx, &fixtures.Triders[i]); err != nil {
			log.Fatalf("trider %s: %v", fixtures.Triders[i].ID, err)
		}
	}

	slog.Info("seed complete", "file", path, "zones", len(fixtures.Zones), "triders", len(fixtures.Triders))
}
