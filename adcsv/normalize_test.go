package adcsv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize_MapsKnownHeadersAndTrims(t *testing.T) {
	t.Parallel()

	got := Normalize(map[string]string{
		"Row Type":                 " Carousel ",
		"Primary Text Variation 3": "\tHello\n",
		"CTA":                      "SHOP_NOW",
		"Ad Set IDs":               " 1, 2 ",
		"Carousel 2 Title":         "  Slide  ",
		"Some Extra Column":        "kept",
	})

	want := Normalized{
		"rowType":           "Carousel",
		"primaryText3":      "Hello",
		"callToAction":      "SHOP_NOW",
		"adSetIds":          "1, 2",
		"Carousel 2 Title":  "Slide",
		"Some Extra Column": "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected normalized row (-want +got):\n%s", diff)
	}
}

func TestNormalize_HeadersAreCaseSensitive(t *testing.T) {
	t.Parallel()

	got := Normalize(map[string]string{"link": "https://a.example", "Link Text": "x"})
	if got["link"] != "https://a.example" {
		t.Fatalf("expected verbatim lower-case key to survive, got %+v", got)
	}
	if _, ok := got["Link Text"]; !ok {
		t.Fatalf("expected unmapped header to pass through, got %+v", got)
	}
}

func TestNormalize_MappedHeaderWinsOverVerbatimCollision(t *testing.T) {
	t.Parallel()

	got := Normalize(map[string]string{"link": "verbatim", "Link": "mapped"})
	if got["link"] != "mapped" {
		t.Fatalf("expected mapped header value, got %q", got["link"])
	}
}

func TestNormalize_EmptyAndBOMValues(t *testing.T) {
	t.Parallel()

	got := Normalize(map[string]string{"Custom Name": "", "Link": "\ufeffhttps://x.com "})
	if got["customName"] != "" {
		t.Fatalf("expected empty custom name, got %q", got["customName"])
	}
	if got["link"] != "https://x.com" {
		t.Fatalf("expected trimmed link, got %q", got["link"])
	}
}
