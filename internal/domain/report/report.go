// Package report holds the arithmetic behind the admin reporting view.
package report

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
)

// CompletionRate returns the share of claimed seats whose holders finished,
// as a whole percentage. Zero claimed seats yields 0.
func CompletionRate(complete, claimed int) int {
	if claimed <= 0 {
		return 0
	}
	return int(math.Round(float64(complete) / float64(claimed) * 100))
}

// Cohort summarizes one survey type across respondents.
type Cohort struct {
	Type             string
	Respondents      int
	QuestionAverages []float64
	Mean             float64
}

// Summarize averages each question independently across rows.
// A zero score means the question was not asked and is skipped.
// PRE: rows hold Likert scores in question order
// POST: QuestionAverages has one entry per question seen; Mean is their mean
func Summarize(surveyType string, rows [][]int) Cohort {
	c := Cohort{Type: surveyType, Respondents: len(rows)}

	var columns [][]float64
	for _, row := range rows {
		for q, score := range row {
			if score == 0 {
				continue
			}
			for len(columns) <= q {
				columns = append(columns, nil)
			}
			columns[q] = append(columns[q], float64(score))
		}
	}

	for _, col := range columns {
		avg, err := stats.Mean(col)
		if err != nil {
			avg = 0
		}
		c.QuestionAverages = append(c.QuestionAverages, avg)
	}
	if mean, err := stats.Mean(c.QuestionAverages); err == nil {
		c.Mean = mean
	}
	return c
}

// Delta is the post mean minus the pre mean.
// ok is false when either cohort has no respondents.
func Delta(pre, post Cohort) (delta float64, ok bool) {
	if pre.Respondents == 0 || post.Respondents == 0 {
		return 0, false
	}
	return post.Mean - pre.Mean, true
}

// FormatDelta renders a delta with an explicit sign and two decimals.
func FormatDelta(d float64) string {
	return fmt.Sprintf("%+.2f", d)
}

// FormatAverage renders an average with two decimals.
func FormatAverage(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
