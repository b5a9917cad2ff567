package launcher

import (
	"fmt"
	"strings"

	"adlauncher/adcsv"
)

// Defaults carry the account-level settings every job shares.
type Defaults struct {
	AccountID        string
	PageID           string
	InstagramActorID string
	CallToAction     string
}

// Job launches one row into one ad set.
type Job struct {
	Row          adcsv.AdRow
	AdSetID      string
	Name         string
	CallToAction string
}

// Plan expands every valid row into one job per ad set ID. Invalid rows are
// not launched and are counted as skipped.
func Plan(rows []adcsv.AdRow, defaults Defaults) ([]Job, int) {
	jobs := make([]Job, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		if !row.IsValid {
			skipped++
			continue
		}

		name := row.DisplayName()
		if name == "" {
			name = fmt.Sprintf("Row %d", row.RowNumber())
		}
		cta := strings.TrimSpace(row.CallToAction)
		if cta == "" {
			cta = defaults.CallToAction
		}
		if cta == "" {
			cta = adcsv.DefaultCallToAction
		}

		for _, adSetID := range row.AdSetIDs {
			jobs = append(jobs, Job{
				Row:          row,
				AdSetID:      adSetID,
				Name:         name,
				CallToAction: cta,
			})
		}
	}

	return jobs, skipped
}

func (j Job) primaryText() string {
	return first(j.Row.PrimaryTextVariations)
}

func (j Job) headline() string {
	return first(j.Row.HeadlineVariations)
}

// urlTags returns UTM parameters in the form Graph expects for url_tags.
func (j Job) urlTags() string {
	return strings.TrimLeft(strings.TrimSpace(j.Row.UTMParameters), "?&")
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
