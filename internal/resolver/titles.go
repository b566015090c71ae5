package resolver

import (
	"sort"
	"strings"

	"filmbridge/internal/film"
	"filmbridge/internal/textutil"
)

// QueryTitles returns the de-duplicated search titles for a source record in
// the order they should be tried: the localized title of the origin country,
// English-market localized titles, the primary title, the original title, and
// then every remaining localized title.
func QueryTitles(source film.SourceRecord, englishLabels []string) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
		used = make(map[string]struct{})
	)
	add := func(title string) {
		title = strings.TrimSpace(title)
		if title == "" {
			return
		}
		key := textutil.Normalize(title)
		if key == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, title)
	}

	labels := sortedLabels(source.LocalizedTitles)

	for _, label := range originLabels(source.Origin, labels) {
		add(source.LocalizedTitles[label])
		used[label] = struct{}{}
	}

	for _, want := range englishLabels {
		want = textutil.Fold(want)
		if want == "" {
			continue
		}
		for _, label := range labels {
			if textutil.Fold(label) == want {
				add(source.LocalizedTitles[label])
				used[label] = struct{}{}
			}
		}
	}

	add(source.Title)
	add(source.OriginalTitle)

	for _, label := range labels {
		if _, ok := used[label]; ok {
			continue
		}
		add(source.LocalizedTitles[label])
	}
	return out
}

// originLabels returns the labels naming an origin country, in the order the
// countries appear. Origin strings list several countries
// ("Československo / USA"), so labels match on whole words.
func originLabels(origin string, labels []string) []string {
	origin = textutil.Fold(origin)
	if origin == "" {
		return nil
	}
	padded := " " + origin + " "
	type hit struct {
		label string
		at    int
	}
	var hits []hit
	for _, label := range labels {
		folded := textutil.Fold(label)
		if folded == "" {
			continue
		}
		if at := strings.Index(padded, " "+folded+" "); at >= 0 {
			hits = append(hits, hit{label: label, at: at})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.label)
	}
	return out
}

func sortedLabels(titles map[string]string) []string {
	labels := make([]string, 0, len(titles))
	for label := range titles {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
