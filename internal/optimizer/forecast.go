package optimizer

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const (
	// DefaultHorizon is used when a forecast is requested without a horizon.
	DefaultHorizon = 30
	// MaxHorizon caps how far ahead a forecast may reach.
	MaxHorizon = 365
	// baseWindowDays is the trailing window the base demand is averaged over.
	baseWindowDays = 30
	// highConfidenceDays is how many leading points are labelled High confidence.
	highConfidenceDays = 7

	jitterLow  = 0.9
	jitterHigh = 1.1
)

var weekdayFactors = map[time.Weekday]float64{
	time.Monday:    1.2,
	time.Friday:    1.2,
	time.Wednesday: 0.8,
	time.Thursday:  0.8,
}

// Jitter supplies the multiplicative noise applied to every forecast point.
type Jitter interface {
	Factor() float64
}

type uniformJitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewUniformJitter returns noise uniform in [0.9, 1.1]. A zero seed uses the clock.
func NewUniformJitter(seed int64) Jitter {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &uniformJitter{rng: rand.New(rand.NewSource(seed))}
}

func (j *uniformJitter) Factor() float64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return jitterLow + j.rng.Float64()*(jitterHigh-jitterLow)
}

type fixedJitter float64

func (f fixedJitter) Factor() float64 { return float64(f) }

// NoJitter disables forecast noise.
func NoJitter() Jitter {
	return fixedJitter(1)
}

// FixedJitter applies the same factor to every point.
func FixedJitter(factor float64) Jitter {
	return fixedJitter(factor)
}

// Forecaster projects daily demand from recent sales history.
type Forecaster struct {
	jitter Jitter
	now    func() time.Time
}

// NewForecaster builds a forecaster. Nil arguments fall back to no jitter and time.Now.
func NewForecaster(jitter Jitter, now func() time.Time) *Forecaster {
	if jitter == nil {
		jitter = NoJitter()
	}
	if now == nil {
		now = time.Now
	}
	return &Forecaster{jitter: jitter, now: now}
}

// DailyTotal is the summed sales of one calendar date.
type DailyTotal struct {
	Date     time.Time
	Quantity float64
	Revenue  float64
}

// AggregateDaily sums sales per calendar date, ascending. An empty productID keeps
// every product.
func AggregateDaily(sales []domain.SalesRecord, productID string) []DailyTotal {
	byDate := make(map[time.Time]*DailyTotal)
	for _, r := range sales {
		if productID != "" && r.ProductID != productID {
			continue
		}
		y, m, d := r.Date.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		total, ok := byDate[day]
		if !ok {
			total = &DailyTotal{Date: day}
			byDate[day] = total
		}
		total.Quantity += r.QuantitySold
		total.Revenue += r.Revenue
	}

	days := make([]DailyTotal, 0, len(byDate))
	for _, t := range byDate {
		days = append(days, *t)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// baseDemand is the mean daily quantity over the trailing window.
func baseDemand(days []DailyTotal) float64 {
	if len(days) == 0 {
		return 0
	}
	window := days
	if len(window) > baseWindowDays {
		window = window[len(window)-baseWindowDays:]
	}
	var sum float64
	for _, d := range window {
		sum += d.Quantity
	}
	return sum / float64(len(window))
}

// ForecastDemand predicts demand for each of the next days, starting tomorrow.
// A zero horizon uses DefaultHorizon.
func (f *Forecaster) ForecastDemand(sales []domain.SalesRecord, productID string, days int) ([]domain.ForecastPoint, error) {
	if days == 0 {
		days = DefaultHorizon
	}
	if days < 0 || days > MaxHorizon {
		return nil, fmt.Errorf("forecast %d days: %w", days, domain.ErrInvalidHorizon)
	}

	base := baseDemand(AggregateDaily(sales, productID))

	y, m, d := f.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	points := make([]domain.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		date := today.AddDate(0, 0, i)

		factor, ok := weekdayFactors[date.Weekday()]
		if !ok {
			factor = 1
		}

		predicted := math.Max(0, base*factor*f.jitter.Factor())

		confidence := domain.ConfidenceMedium
		if i <= highConfidenceDays {
			confidence = domain.ConfidenceHigh
		}

		points = append(points, domain.ForecastPoint{
			Date:            date.Format("2006-01-02"),
			PredictedDemand: int(math.Round(predicted)),
			Confidence:      confidence,
		})
	}

	return points, nil
}
