package services

import (
	"context"
	"fmt"

	"realty-analyzer/models"
	"realty-analyzer/storage"
	"realty-analyzer/utils"
)

// Analyzer answers Analyze and Compare queries against a Dataset.
type Analyzer struct {
	dataset    *storage.Dataset
	summarizer *Summarizer
	logger     *utils.Logger
}

// NewAnalyzer creates an Analyzer over an already loaded dataset.
func NewAnalyzer(dataset *storage.Dataset, summarizer *Summarizer, logger *utils.Logger) *Analyzer {
	return &Analyzer{dataset: dataset, summarizer: summarizer, logger: logger}
}

// Dataset exposes the underlying read-only dataset.
func (a *Analyzer) Dataset() *storage.Dataset { return a.dataset }

// Run parses raw and computes the response. The returned Intent is the
// zero value when parsing fails. Query problems come back as *QueryError;
// any other error, including a recovered panic, is an internal failure.
func (a *Analyzer) Run(ctx context.Context, raw string) (models.Intent, *models.AnalysisResponse, error) {
	return a.run(ctx, raw, true)
}

// Table computes the same response as Run without producing a summary, so
// it never calls the text generator. Summary is left empty.
func (a *Analyzer) Table(ctx context.Context, raw string) (models.Intent, *models.AnalysisResponse, error) {
	return a.run(ctx, raw, false)
}

func (a *Analyzer) run(ctx context.Context, raw string, withSummary bool) (intent models.Intent, resp *models.AnalysisResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("[analyzer] panic handling %q: %v", raw, r)
			resp, err = nil, fmt.Errorf("%v", r)
		}
	}()

	intent, err = ParseQuery(raw)
	if err != nil {
		return intent, nil, err
	}

	switch intent.Kind {
	case models.IntentCompare:
		resp, err = a.compare(intent, withSummary)
	case models.IntentAnalyze:
		resp, err = a.analyze(ctx, intent, withSummary)
	default:
		err = fmt.Errorf("unhandled intent %v", intent.Kind)
	}
	return intent, resp, err
}

func (a *Analyzer) compare(intent models.Intent, withSummary bool) (*models.AnalysisResponse, error) {
	if err := ValidateAreas(a.dataset, intent.Area1, intent.Area2); err != nil {
		return nil, err
	}

	chart := DemandByYear(a.dataset.Filter(intent.Area1), intent.Area1)
	chart = append(chart, DemandByYear(a.dataset.Filter(intent.Area2), intent.Area2)...)

	a.logger.Debug("[analyzer] compare %q vs %q: %d chart points", intent.Area1, intent.Area2, len(chart))
	resp := &models.AnalysisResponse{Chart: chart, Table: []models.Record{}}
	if withSummary {
		resp.Summary = a.summarizer.Compare(intent.Area1, intent.Area2)
	}
	return resp, nil
}

func (a *Analyzer) analyze(ctx context.Context, intent models.Intent, withSummary bool) (*models.AnalysisResponse, error) {
	rows := a.dataset.Filter(intent.Area)
	if len(rows) == 0 {
		return nil, errNoData(intent.Area)
	}

	avgPrice, totalUnits := Totals(rows)
	a.logger.Debug("[analyzer] analyze %q: %d rows, avg ₹%d, %d units", intent.Area, len(rows), avgPrice, totalUnits)

	resp := &models.AnalysisResponse{Chart: PriceTrend(rows), Table: rows}
	if withSummary {
		resp.Summary = a.summarizer.Analyze(ctx, intent.Area, avgPrice, totalUnits)
	}
	return resp, nil
}
