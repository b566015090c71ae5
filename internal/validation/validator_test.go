package validation

import (
	"testing"

	"filmbridge/internal/film"
)

func TestKindAllowed(t *testing.T) {
	v := New()
	tests := []struct {
		kind film.Kind
		want bool
	}{
		{film.KindMovie, true},
		{film.KindTVMovie, true},
		{film.KindShort, true},
		{film.KindVideo, true},
		{film.KindTVMiniSeries, true},
		{"", true},
		{"hologram-experience", true},
		{film.KindPodcastSeries, false},
		{film.KindPodcastEpisode, false},
		{film.KindTVSeries, false},
		{film.KindTVEpisode, false},
		{film.KindVideoGame, false},
		{film.KindMusicVideo, false},
		{"tvSeries", false},
	}

	for _, tt := range tests {
		if got := v.KindAllowed(tt.kind); got != tt.want {
			t.Errorf("KindAllowed(%q) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestYearValid(t *testing.T) {
	v := New()
	source := film.SourceRecord{Year: "1970"}
	tests := []struct {
		name      string
		source    film.SourceRecord
		candidate film.CandidateMatch
		want      bool
	}{
		{"exact", source, film.CandidateMatch{Year: 1970}, true},
		{"plus one", source, film.CandidateMatch{Year: 1971}, true},
		{"minus one", source, film.CandidateMatch{Year: 1969}, true},
		{"two year gap", source, film.CandidateMatch{Year: 1972}, false},
		{"two year gap rescued by listing", source, film.CandidateMatch{Title: "Ucho", Year: 1972, Listing: "Ucho (1970) feature, Karel Kachyňa"}, true},
		{"listing off by one does not rescue", source, film.CandidateMatch{Title: "Ucho", Year: 1972, Listing: "Ucho (1971)"}, false},
		{"numeric title is not a listing year", film.SourceRecord{Year: "1984"}, film.CandidateMatch{Title: "1984", Year: 1956, Listing: "1984 (1956-03-06)"}, false},
		{"year inside title ignored", film.SourceRecord{Year: "2001"}, film.CandidateMatch{Title: "2001: A Space Odyssey", Year: 1968, Listing: "2001: A Space Odyssey (1968) feature"}, false},
		{"candidate without year", source, film.CandidateMatch{}, false},
		{"unknown source year", film.SourceRecord{Year: "neuvedeno"}, film.CandidateMatch{Year: 1990}, true},
		{"empty source year", film.SourceRecord{}, film.CandidateMatch{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.YearValid(tt.source, tt.candidate); got != tt.want {
				t.Errorf("YearValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectorsMatch(t *testing.T) {
	v := New()
	tests := []struct {
		name      string
		source    []string
		candidate []string
		want      bool
	}{
		{"no source directors", nil, nil, true},
		{"candidate without directors", []string{"Karel Kachyňa"}, nil, false},
		{"diacritics folded", []string{"Karel Kachyňa"}, []string{"Karel Kachyna"}, true},
		{"order independent", []string{"Wong Kar-wai"}, []string{"Kar-wai Wong"}, true},
		{"japanese transcription", []string{"Jasudžiró Ozu"}, []string{"Yasujirô Ozu"}, true},
		{"one of many", []string{"Ján Kadár", "Elmar Klos"}, []string{"Elmar Klos"}, true},
		{"unrelated", []string{"Karel Kachyňa"}, []string{"Steven Spielberg"}, false},
		{"blank candidate names", []string{"Karel Kachyňa"}, []string{"  ", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.DirectorsMatch(tt.source, tt.candidate); got != tt.want {
				t.Errorf("DirectorsMatch(%v, %v) = %v, want %v", tt.source, tt.candidate, got, tt.want)
			}
		})
	}
}

func TestDirectorsMatchRomanizedCandidateExactly(t *testing.T) {
	// Strict threshold: only an exact normalized match passes.
	v := New(WithDirectorThreshold(1))
	if !v.DirectorsMatch([]string{"Džuzó Itami"}, []string{"Juzo Itami"}) {
		t.Fatal("Czech transcription should equal the Hepburn credit exactly")
	}
	if v.DirectorsMatch([]string{"Džuzó Itami"}, []string{"Yuzo Itami"}) {
		t.Fatal("a different romanized name must not match exactly")
	}
}

func TestCheckExcludedKindIsAbsolute(t *testing.T) {
	v := New()
	source := film.SourceRecord{Title: "Ucho", Year: "1970", Directors: []string{"Karel Kachyňa"}}
	candidate := film.CandidateMatch{ID: "tt9999999", Title: "Ucho", Year: 1970, Kind: film.KindPodcastSeries}

	verdict := v.Check(source, candidate, []string{"Karel Kachyňa"})
	if verdict.Valid {
		t.Fatal("podcast series must be rejected even with a perfect title, year and director")
	}
	if verdict.Reason != ReasonExcludedKind {
		t.Fatalf("reason = %q, want %q", verdict.Reason, ReasonExcludedKind)
	}
}

func TestCheckReasons(t *testing.T) {
	v := New()
	source := film.SourceRecord{Year: "1970", Directors: []string{"Karel Kachyňa"}}
	tests := []struct {
		name      string
		candidate film.CandidateMatch
		directors []string
		want      Verdict
	}{
		{"accepted", film.CandidateMatch{Year: 1970, Kind: film.KindMovie}, []string{"Karel Kachyna"}, Verdict{Valid: true, Reason: ReasonAccepted}},
		{"year", film.CandidateMatch{Year: 1980}, []string{"Karel Kachyna"}, Verdict{Reason: ReasonYearMismatch}},
		{"no directors", film.CandidateMatch{Year: 1970}, nil, Verdict{Reason: ReasonNoCandidateDirector}},
		{"wrong director", film.CandidateMatch{Year: 1970}, []string{"Miloš Forman"}, Verdict{Reason: ReasonDirectorMismatch}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Check(source, tt.candidate, tt.directors); got != tt.want {
				t.Errorf("Check() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckWithoutSourceDirectorsSkipsCredits(t *testing.T) {
	v := New()
	source := film.SourceRecord{Year: "1970"}
	if v.NeedsDirectors(source) {
		t.Fatal("NeedsDirectors should be false without source directors")
	}
	verdict := v.Check(source, film.CandidateMatch{Year: 1970}, nil)
	if !verdict.Valid {
		t.Fatalf("expected valid verdict, got %+v", verdict)
	}
}

func TestWithDirectorThresholdIgnoresInvalid(t *testing.T) {
	v := New(WithDirectorThreshold(0), WithDirectorThreshold(1.5))
	if v.threshold != DefaultDirectorThreshold {
		t.Fatalf("threshold = %v, want default", v.threshold)
	}
	v = New(WithDirectorThreshold(0.9))
	if v.threshold != 0.9 {
		t.Fatalf("threshold = %v, want 0.9", v.threshold)
	}
}
