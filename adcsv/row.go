package adcsv

type RowType string

const (
	RowTypeSingle   RowType = "Single"
	RowTypeCarousel RowType = "Carousel"
)

const (
	DefaultCallToAction = "LEARN_MORE"

	MaxVariations    = 5
	MaxCarouselCards = 10
)

// CarouselCard is one slide of a carousel ad. Slot position gives its order.
type CarouselCard struct {
	MediaURL         string `json:"mediaUrl,omitempty"`
	PortraitMediaURL string `json:"portraitMediaUrl,omitempty"`
	Title            string `json:"title,omitempty"`
	Description      string `json:"description,omitempty"`
	Link             string `json:"link,omitempty"`
}

// AdRow is the launch intent parsed from one input row together with its findings.
// Rows are built once by ParseRow and never changed afterwards.
type AdRow struct {
	RowIndex              int            `json:"rowIndex"`
	RowType               RowType        `json:"rowType"`
	CustomName            string         `json:"customName,omitempty"`
	PrimaryTextVariations []string       `json:"primaryTextVariations"`
	HeadlineVariations    []string       `json:"headlineVariations"`
	AdDescription         string         `json:"adDescription,omitempty"`
	Link                  string         `json:"link,omitempty"`
	DisplayLink           string         `json:"displayLink,omitempty"`
	UTMParameters         string         `json:"utmParameters,omitempty"`
	CallToAction          string         `json:"callToAction"`
	PartnershipCode       string         `json:"partnershipCode,omitempty"`
	LaunchPaused          bool           `json:"launchPaused"`
	VideoURLs             []string       `json:"videoUrls"`
	AdSetIDs              []string       `json:"adSetIds"`
	CarouselCards         []CarouselCard `json:"carouselCards"`
	IsValid               bool           `json:"isValid"`
	Errors                []string       `json:"errors"`
	Warnings              []string       `json:"warnings"`
}

// RowNumber is the 1-based number shown to users.
func (r AdRow) RowNumber() int {
	return r.RowIndex + 1
}

func (r AdRow) IsCarousel() bool {
	return r.RowType == RowTypeCarousel
}

// DisplayName returns the custom name, falling back to the first headline.
func (r AdRow) DisplayName() string {
	if r.CustomName != "" {
		return r.CustomName
	}
	if len(r.HeadlineVariations) > 0 {
		return r.HeadlineVariations[0]
	}
	return ""
}
