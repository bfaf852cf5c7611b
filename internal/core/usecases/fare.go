package usecases

import (
	"math"

	"github.com/samirrijal/trigo/internal/core/domain"
)

// FareTariff holds the fare constants, in pesos.
type FareTariff struct {
	BaseFare       float64
	BaseDistanceKm float64
	PerKm          float64
	ConvenienceFee float64
	TodaBaseFare   float64
}

// DefaultTariff is ₱25 for the first 2 km, ₱10 per km after, plus a ₱1 fee.
func DefaultTariff() FareTariff {
	return FareTariff{
		BaseFare:       25,
		BaseDistanceKm: 2,
		PerKm:          10,
		ConvenienceFee: 1,
		TodaBaseFare:   20,
	}
}

// FareCalculator prices rides.
type FareCalculator struct {
	tariff FareTariff
}

// NewFareCalculator creates a new FareCalculator.
func NewFareCalculator(tariff FareTariff) *FareCalculator {
	return &FareCalculator{tariff: tariff}
}

// Quote prices a trip of distanceKm. A zone with its own base fare
// replaces the tariff base.
//
// The distance is rounded to 10 m first and every component is computed in
// centavos from that rounded figure, so the parts always add up to the total.
func (f *FareCalculator) Quote(distanceKm float64, zone *domain.TodaZone) domain.FareQuote {
	base := f.tariff.BaseFare
	if zone != nil && zone.BaseFare > 0 {
		base = zone.BaseFare
	}

	distHm := int64(math.Round(distanceKm * 100)) // hundredths of a km
	var distanceC int64
	if extraHm := distHm - int64(math.Round(f.tariff.BaseDistanceKm*100)); extraHm > 0 {
		distanceC = (extraHm*domain.PesosToCentavos(f.tariff.PerKm) + 50) / 100
	}
	baseC := domain.PesosToCentavos(base)
	feeC := domain.PesosToCentavos(f.tariff.ConvenienceFee)
	totalC := baseC + distanceC + feeC

	return domain.FareQuote{
		DistanceKm:     float64(distHm) / 100,
		BaseFare:       centavosToPesos(baseC),
		DistanceFare:   centavosToPesos(distanceC),
		ConvenienceFee: centavosToPesos(feeC),
		Total:          centavosToPesos(totalC),
		TotalCentavos:  totalC,
	}
}

// SimulatedFare is the dispatcher console's flat pricing: base plus ₱10 per km.
func (f *FareCalculator) SimulatedFare(distanceKm float64, zone *domain.TodaZone) float64 {
	base := f.tariff.TodaBaseFare
	if zone != nil && zone.BaseFare > 0 {
		base = zone.BaseFare
	}
	return roundCentavos(base + distanceKm*f.tariff.PerKm)
}

func centavosToPesos(c int64) float64 {
	return float64(c) / 100
}

func roundCentavos(v float64) float64 {
	return math.Round(v*100) / 100
}
