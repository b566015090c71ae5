package resolver

import (
	"reflect"
	"testing"

	"filmbridge/internal/film"
)

func TestQueryTitlesOrdering(t *testing.T) {
	labels := []string{"USA", "Velká Británie", "anglický název"}
	tests := []struct {
		name   string
		source film.SourceRecord
		want   []string
	}{
		{
			name:   "primary only",
			source: film.SourceRecord{Title: "Ucho"},
			want:   []string{"Ucho"},
		},
		{
			name: "origin first then english market then primary then rest",
			source: film.SourceRecord{
				Title:         "Stín",
				OriginalTitle: "Kage",
				Origin:        "Japonsko",
				LocalizedTitles: map[string]string{
					"Japonsko":       "Kagemusha",
					"Francie":        "L'ombre du guerrier",
					"anglický název": "Shadow Warrior",
				},
			},
			want: []string{"Kagemusha", "Shadow Warrior", "Stín", "Kage", "L'ombre du guerrier"},
		},
		{
			name: "duplicates collapse after normalization",
			source: film.SourceRecord{
				Title:           "Ucho",
				OriginalTitle:   "UCHO",
				LocalizedTitles: map[string]string{"USA": "The Ear", "Velká Británie": "the ear"},
			},
			want: []string{"The Ear", "Ucho"},
		},
		{
			name: "multi-country origin matches whole words",
			source: film.SourceRecord{
				Title:           "Obchod na korze",
				Origin:          "Československo / USA",
				LocalizedTitles: map[string]string{"Československo": "Obchod na korze", "USA": "The Shop on Main Street"},
			},
			want: []string{"Obchod na korze", "The Shop on Main Street"},
		},
		{
			name:   "blank titles dropped",
			source: film.SourceRecord{Title: "  ", LocalizedTitles: map[string]string{"Kanada": ""}},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QueryTitles(tt.source, labels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("QueryTitles() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscalationSteps(t *testing.T) {
	known := escalation(1970, true)
	if len(known) != 4 || known[2].year != 1971 || known[3].year != 1969 {
		t.Fatalf("unexpected known-year escalation %#v", known)
	}
	yearless := escalation(0, false)
	last := yearless[len(yearless)-1]
	if last.rung != RungUnconstrained || last.year != 0 || last.kinds != nil {
		t.Fatalf("expected final unconstrained step, got %#v", last)
	}
}
