package adcsv

import "strings"

const (
	msgMissingPrimaryText = "Missing primary text"
	msgMissingHeadline    = "Missing headline"
	msgMissingLink        = "Missing destination link"
	msgMissingAdSetIDs    = "Missing ad set IDs"
	msgNoMedia            = "No video/image URL specified - will need to select media"
	msgCarouselTooSmall   = "Carousel needs at least 2 cards"
)

// ParseRow turns one normalized row into an AdRow. It never fails: every problem
// becomes an entry in Errors (fatal) or Warnings (advisory).
func ParseRow(row Normalized, index int) AdRow {
	rowType := RowTypeSingle
	if row[FieldRowType] == string(RowTypeCarousel) {
		rowType = RowTypeCarousel
	}

	out := AdRow{
		RowIndex:              index,
		RowType:               rowType,
		CustomName:            row[FieldCustomName],
		PrimaryTextVariations: collectVariations(row, primaryTextField),
		HeadlineVariations:    collectVariations(row, headlineField),
		AdDescription:         row[FieldAdDescription],
		Link:                  row[FieldLink],
		DisplayLink:           row[FieldDisplayLink],
		UTMParameters:         row[FieldUTMParameters],
		CallToAction:          fallback(row[FieldCallToAction], DefaultCallToAction),
		PartnershipCode:       row[FieldPartnershipCode],
		LaunchPaused:          strings.ToLower(row[FieldLaunchPaused]) == "yes",
		VideoURLs:             splitList(row[FieldVideoURLs]),
		AdSetIDs:              splitList(row[FieldAdSetIDs]),
		CarouselCards:         collectCarouselCards(row),
		Errors:                []string{},
		Warnings:              []string{},
	}

	if len(out.PrimaryTextVariations) == 0 {
		out.Errors = append(out.Errors, msgMissingPrimaryText)
	}
	if len(out.HeadlineVariations) == 0 {
		out.Errors = append(out.Errors, msgMissingHeadline)
	}
	// Carousel cards carry their own links.
	if out.Link == "" && rowType == RowTypeSingle {
		out.Errors = append(out.Errors, msgMissingLink)
	}
	if len(out.AdSetIDs) == 0 {
		out.Errors = append(out.Errors, msgMissingAdSetIDs)
	}
	if rowType == RowTypeSingle && len(out.VideoURLs) == 0 {
		out.Warnings = append(out.Warnings, msgNoMedia)
	}
	if rowType == RowTypeCarousel && len(out.CarouselCards) < 2 {
		out.Errors = append(out.Errors, msgCarouselTooSmall)
	}

	out.IsValid = len(out.Errors) == 0
	return out
}

func collectVariations(row Normalized, field func(slot int) string) []string {
	values := make([]string, 0, MaxVariations)
	for slot := 1; slot <= MaxVariations; slot++ {
		if value := row[field(slot)]; value != "" {
			values = append(values, value)
		}
	}
	return values
}

func collectCarouselCards(row Normalized) []CarouselCard {
	cards := make([]CarouselCard, 0)
	for slot := 1; slot <= MaxCarouselCards; slot++ {
		card := CarouselCard{
			MediaURL:         row[carouselField(slot, "Media URL")],
			PortraitMediaURL: row[carouselField(slot, "Portrait Media URL")],
			Title:            row[carouselField(slot, "Title")],
			Description:      row[carouselField(slot, "Description")],
			Link:             row[carouselField(slot, "Link")],
		}
		if card.MediaURL == "" && card.Title == "" {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

// splitList splits a comma-separated cell, trimming items and dropping empty ones.
func splitList(value string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		if item = trim(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func fallback(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
