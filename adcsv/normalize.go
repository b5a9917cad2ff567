package adcsv

import "fmt"

// Canonical field names produced by Normalize.
const (
	FieldRowType         = "rowType"
	FieldCustomName      = "customName"
	FieldAdDescription   = "adDescription"
	FieldLink            = "link"
	FieldDisplayLink     = "displayLink"
	FieldUTMParameters   = "utmParameters"
	FieldCallToAction    = "callToAction"
	FieldPartnershipCode = "partnershipCode"
	FieldLaunchPaused    = "launchPaused"
	FieldVideoURLs       = "videoUrls"
	FieldAdSetIDs        = "adSetIds"
)

// Normalized maps canonical field names to trimmed cell values.
// Carousel columns keep their header text as key.
type Normalized map[string]string

var columnMapping = map[string]string{
	"Row Type":                 FieldRowType,
	"Custom Name":              FieldCustomName,
	"Primary Text Variation 1": "primaryText1",
	"Primary Text Variation 2": "primaryText2",
	"Primary Text Variation 3": "primaryText3",
	"Primary Text Variation 4": "primaryText4",
	"Primary Text Variation 5": "primaryText5",
	"Headline Variation 1":     "headline1",
	"Headline Variation 2":     "headline2",
	"Headline Variation 3":     "headline3",
	"Headline Variation 4":     "headline4",
	"Headline Variation 5":     "headline5",
	"Ad Description":           FieldAdDescription,
	"Link":                     FieldLink,
	"Display Link":             FieldDisplayLink,
	"UTM Parameters":           FieldUTMParameters,
	"CTA":                      FieldCallToAction,
	"Partnership Code":         FieldPartnershipCode,
	"Launch Paused":            FieldLaunchPaused,
	"Video URLs":               FieldVideoURLs,
	"Ad Set IDs":               FieldAdSetIDs,
}

// Normalize renames known headers to canonical fields and trims every value.
// Unknown headers are kept verbatim. It never drops a field; when an unknown header
// already spells a canonical name, the mapped header's value wins.
func Normalize(values map[string]string) Normalized {
	normalized := make(Normalized, len(values))
	for key, value := range values {
		if _, ok := columnMapping[key]; !ok {
			normalized[key] = trim(value)
		}
	}
	for key, value := range values {
		if canonical, ok := columnMapping[key]; ok {
			normalized[canonical] = trim(value)
		}
	}
	return normalized
}

func primaryTextField(slot int) string {
	return fmt.Sprintf("primaryText%d", slot)
}

func headlineField(slot int) string {
	return fmt.Sprintf("headline%d", slot)
}

func carouselField(slot int, attribute string) string {
	return fmt.Sprintf("Carousel %d %s", slot, attribute)
}
