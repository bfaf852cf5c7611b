package usecases_test

import (
	"testing"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/usecases"
)

func TestFareCalculator_Quote(t *testing.T) {
	calc := usecases.NewFareCalculator(usecases.DefaultTariff())

	tests := []struct {
		name     string
		distance float64
		zone     *domain.TodaZone
		want     float64
	}{
		{"within base distance", 1.2, nil, 26},
		{"exactly base distance", 2, nil, 26},
		{"beyond base distance", 4.5, nil, 51},
		{"zone base fare override", 1, &domain.TodaZone{BaseFare: 30}, 31},
		{"distance rounds to 10 m before pricing", 2.333, nil, 29.30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := calc.Quote(tt.distance, tt.zone)
			if q.Total != tt.want {
				t.Errorf("expected total %.2f, got %.2f (%+v)", tt.want, q.Total, q)
			}
			if q.ConvenienceFee != 1 {
				t.Errorf("expected convenience fee 1, got %.2f", q.ConvenienceFee)
			}
			parts := domain.PesosToCentavos(q.BaseFare) + domain.PesosToCentavos(q.DistanceFare) + domain.PesosToCentavos(q.ConvenienceFee)
			if parts != q.TotalCentavos || domain.PesosToCentavos(q.Total) != q.TotalCentavos {
				t.Errorf("parts %d and total %.2f disagree with %d centavos", parts, q.Total, q.TotalCentavos)
			}
		})
	}
}

func TestFareCalculator_Quote_DistanceFareMatchesShownDistance(t *testing.T) {
	calc := usecases.NewFareCalculator(usecases.DefaultTariff())

	q := calc.Quote(3.926, nil)
	if q.DistanceKm != 3.93 {
		t.Fatalf("expected 3.93 km, got %v", q.DistanceKm)
	}
	// (3.93 - 2) km at 10 pesos.
	if q.DistanceFare != 19.30 {
		t.Errorf("expected distance fare 19.30, got %.2f", q.DistanceFare)
	}
	if q.TotalCentavos != 4530 || q.Total != 45.30 {
		t.Errorf("expected 45.30, got %.2f (%d)", q.Total, q.TotalCentavos)
	}
}

func TestFareCalculator_SimulatedFare(t *testing.T) {
	calc := usecases.NewFareCalculator(usecases.DefaultTariff())
	if got := calc.SimulatedFare(3.456, nil); got != 54.56 {
		t.Errorf("expected 54.56, got %.2f", got)
	}
}
