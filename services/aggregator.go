package services

import (
	"sort"

	"realty-analyzer/models"
	"realty-analyzer/utils"
)

type yearAcc struct {
	sum   float64
	count int
}

// groupByYear reduces value(r) per year and returns years in ascending order.
// Records for which value reports false are skipped; a year whose records
// are all skipped does not appear.
func groupByYear(records []models.Record, value func(models.Record) (float64, bool)) ([]int, map[int]*yearAcc) {
	groups := make(map[int]*yearAcc)
	for _, r := range records {
		v, ok := value(r)
		if !ok {
			continue
		}
		acc, ok := groups[r.Year]
		if !ok {
			acc = &yearAcc{}
			groups[r.Year] = acc
		}
		acc.sum += v
		acc.count++
	}

	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, groups
}

func unitsOf(r models.Record) (float64, bool) { return r.FlatTotal, true }

func rateOf(r models.Record) (float64, bool) { return r.FlatRate, !r.RateMissing }

// DemandByYear sums flat units per year for one area's records and tags
// every point with the title-cased area name.
func DemandByYear(records []models.Record, area string) []models.ChartPoint {
	years, groups := groupByYear(records, unitsOf)
	label := utils.TitleCase(area)

	points := make([]models.ChartPoint, 0, len(years))
	for _, y := range years {
		points = append(points, models.ChartPoint{Year: y, Value: groups[y].sum, Area: label})
	}
	return points
}

// PriceTrend averages the weighted flat rate per year.
func PriceTrend(records []models.Record) []models.ChartPoint {
	years, groups := groupByYear(records, rateOf)

	points := make([]models.ChartPoint, 0, len(years))
	for _, y := range years {
		g := groups[y]
		points = append(points, models.ChartPoint{Year: y, Value: g.sum / float64(g.count)})
	}
	return points
}

// Totals returns the mean flat rate and the summed flat units over records,
// both truncated toward zero. Rows with a missing rate count toward units
// only. No rated rows yields an average of zero.
func Totals(records []models.Record) (avgPrice, totalUnits int64) {
	var (
		rate, units float64
		rated       int
	)
	for _, r := range records {
		units += r.FlatTotal
		if r.RateMissing {
			continue
		}
		rate += r.FlatRate
		rated++
	}
	if rated > 0 {
		avgPrice = int64(rate / float64(rated))
	}
	return avgPrice, int64(units)
}
