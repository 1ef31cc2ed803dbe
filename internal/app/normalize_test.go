package app_test

import (
	"errors"
	"testing"

	"github.com/xyd945/travel-ai-agent/internal/app"
	"github.com/xyd945/travel-ai-agent/internal/domain"
)

const lisbon = `{"location":"Lisbon, Portugal","placesOfInterest":[{"name":"Time Out Market","description":"Food hall","type":"restaurant","priceRange":"budget","experience":"local"}]}`

func TestStripFences_Variants(t *testing.T) {
	inputs := []string{
		lisbon,
		"```json\n" + lisbon + "\n```",
		"```JSON " + lisbon + "```",
		"```\n" + lisbon + "\n```",
		"`" + lisbon + "`",
		"  \n```json\n" + lisbon + "\n```\n  ",
	}
	for _, in := range inputs {
		got := app.StripFences(in)
		if got != lisbon {
			t.Fatalf("StripFences(%q) = %q", in, got)
		}
		if again := app.StripFences(got); again != got {
			t.Fatalf("not idempotent: %q -> %q", got, again)
		}
	}
}

func TestNormalize_OK(t *testing.T) {
	ans, err := app.Normalize("```json\n" + lisbon + "\n```")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ans.Location.Kind != domain.LocationKnown || ans.Location.Name != "Lisbon, Portugal" {
		t.Fatalf("unexpected location: %+v", ans.Location)
	}
	if len(ans.PlacesOfInterest) != 1 {
		t.Fatalf("want 1 place, got %d", len(ans.PlacesOfInterest))
	}
	p := ans.PlacesOfInterest[0]
	if p.Name != "Time Out Market" || p.Type != domain.PlaceRestaurant || p.PriceRange != domain.PriceBudget || p.Experience != domain.ExperienceLocal {
		t.Fatalf("unexpected place: %+v", p)
	}
}

func TestNormalize_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":           "here are some places",
		"partial":            `{"location":"Paris, France","placesOfInterest":[`,
		"missing location":   `{"placesOfInterest":[]}`,
		"missing places":     `{"location":"Paris, France"}`,
		"location number":    `{"location":42,"placesOfInterest":[]}`,
		"location null":      `{"location":null,"placesOfInterest":[]}`,
		"places object":      `{"location":"Paris, France","placesOfInterest":{}}`,
		"place without name": `{"location":"Paris, France","placesOfInterest":[{"description":"x"}]}`,
		"array payload":      `[{"location":"Paris"}]`,
		"name null":          `{"location":"Paris, France","placesOfInterest":[{"name":null}]}`,
		"place not object":   `{"location":"Paris, France","placesOfInterest":["Louvre"]}`,
		"type number":        `{"location":"Paris, France","placesOfInterest":[{"name":"Louvre","type":3}]}`,
	}
	for name, raw := range cases {
		ans, err := app.Normalize(raw)
		if !errors.Is(err, domain.ErrMalformedResponse) {
			t.Fatalf("%s: want ErrMalformedResponse, got %v", name, err)
		}
		var me *domain.MalformedResponseError
		if !errors.As(err, &me) || me.Raw != raw {
			t.Fatalf("%s: raw text not carried: %v", name, err)
		}
		if ans.PlacesOfInterest != nil || ans.Location.Name != "" {
			t.Fatalf("%s: partial answer returned: %+v", name, ans)
		}
	}
}

func TestNormalize_UnrelatedForcesEmpty(t *testing.T) {
	ans, err := app.Normalize(`{"location":"not_travel_related","placesOfInterest":[{"name":"Louvre"}]}`)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ans.Location.Kind != domain.LocationUnrelated {
		t.Fatalf("want unrelated, got %+v", ans.Location)
	}
	if ans.PlacesOfInterest == nil || len(ans.PlacesOfInterest) != 0 || len(ans.Places()) != 0 {
		t.Fatalf("places must be empty, got %+v", ans.PlacesOfInterest)
	}
}

func TestNormalize_NullLocation(t *testing.T) {
	ans, err := app.Normalize(`{"location":"null","placesOfInterest":[]}`)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ans.Location.Kind != domain.LocationUnspecified {
		t.Fatalf("want unspecified, got %+v", ans.Location)
	}
}

func TestNormalize_DropsUnknownEnums(t *testing.T) {
	ans, err := app.Normalize(`{"location":"Rome, Italy","placesOfInterest":[{"name":" Colosseum ","type":"Attraction","priceRange":"free","experience":"spooky"}]}`)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	p := ans.PlacesOfInterest[0]
	if p.Name != "Colosseum" || p.Type != domain.PlaceAttraction || p.PriceRange != "" || p.Experience != "" {
		t.Fatalf("unexpected place: %+v", p)
	}
}

func TestNormalize_KeysAreCaseSensitive(t *testing.T) {
	cases := map[string]string{
		"top-level keys":  `{"LOCATION":"Paris, France","PlacesOfInterest":[]}`,
		"mixed top-level": `{"location":"Paris, France","placesofinterest":[]}`,
		"place name key":  `{"location":"Paris, France","placesOfInterest":[{"NAME":"Louvre"}]}`,
	}
	for name, raw := range cases {
		if _, err := app.Normalize(raw); !errors.Is(err, domain.ErrMalformedResponse) {
			t.Fatalf("%s: want ErrMalformedResponse, got %v", name, err)
		}
	}

	// other keys are ignored, wrong-case optional fields just stay empty
	ans, err := app.Normalize(`{"location":"Paris, France","placesOfInterest":[{"name":"Louvre","Type":"attraction"}],"note":"x"}`)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p := ans.PlacesOfInterest[0]; p.Name != "Louvre" || p.Type != "" {
		t.Fatalf("unexpected place: %+v", p)
	}
}
