package adcsv

import (
	"encoding/csv"
	"fmt"
	"strings"
)

var sampleHeaders = []string{
	"Row Type",
	"Custom Name",
	"Primary Text Variation 1",
	"Headline Variation 1",
	"Ad Description",
	"Link",
	"Display Link",
	"UTM Parameters",
	"CTA",
	"Partnership Code",
	"Launch Paused",
	"Video URLs",
	"Ad Set IDs",
	"Headline Variation 2",
	"Headline Variation 3",
	"Primary Text Variation 2",
	"Primary Text Variation 3",
}

var sampleRow = []string{
	"Single",
	"my_ad_name",
	"This is the primary ad text...",
	"Main Headline",
	"Optional description",
	"https://example.com/landing",
	"https://example.com",
	"utm_source=facebook&utm_campaign={{campaign.name}}",
	"LEARN_MORE",
	"",
	"No",
	"https://media.example.com/video.mp4",
	"123456789012345",
	"Headline Variation 2",
	"",
	"Alternative primary text...",
	"",
}

// SampleCSV returns the downloadable template: the header row plus one example ad.
func SampleCSV() (string, error) {
	var out strings.Builder
	writer := csv.NewWriter(&out)
	writer.UseCRLF = true

	if err := writer.WriteAll([][]string{sampleHeaders, sampleRow}); err != nil {
		return "", fmt.Errorf("write sample csv: %w", err)
	}
	return strings.TrimSuffix(out.String(), "\r\n"), nil
}
