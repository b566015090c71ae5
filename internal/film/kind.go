package film

import "strings"

// Kind is a normalized title classification shared by both services.
// Values outside the declared constants are allowed; services add new
// classifications over time.
type Kind string

const (
	KindMovie          Kind = "movie"
	KindTVMovie        Kind = "tv-movie"
	KindShort          Kind = "short"
	KindTVSpecial      Kind = "tv-special"
	KindVideo          Kind = "video"
	KindTVMiniSeries   Kind = "tv-mini-series"
	KindTVSeries       Kind = "tv-series"
	KindTVEpisode      Kind = "tv-episode"
	KindPodcastSeries  Kind = "podcast-series"
	KindPodcastEpisode Kind = "podcast-episode"
	KindVideoGame      Kind = "video-game"
	KindMusicVideo     Kind = "music-video"
)

// FeatureKinds restricts a search to feature films.
func FeatureKinds() []Kind {
	return []Kind{KindMovie}
}

// RelaxedKinds widens a search to classifications services commonly assign
// to features by mistake.
func RelaxedKinds() []Kind {
	return []Kind{KindMovie, KindTVMovie, KindShort, KindTVSpecial}
}

// ParseKind folds service-specific spellings onto the shared vocabulary.
func ParseKind(raw string) Kind {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.NewReplacer(" ", "-", "_", "-").Replace(value)
	switch value {
	case "", "unknown":
		return ""
	case "movie", "feature", "film", "feature-film":
		return KindMovie
	case "tvmovie", "tv-movie":
		return KindTVMovie
	case "short", "tvshort", "tv-short", "short-film":
		return KindShort
	case "tvspecial", "tv-special":
		return KindTVSpecial
	case "video", "video-movie":
		return KindVideo
	case "tvminiseries", "tv-mini-series", "tv-miniseries", "miniseries":
		return KindTVMiniSeries
	case "tvseries", "tv-series", "series":
		return KindTVSeries
	case "tvepisode", "tv-episode", "episode":
		return KindTVEpisode
	case "podcastseries", "podcast-series":
		return KindPodcastSeries
	case "podcastepisode", "podcast-episode":
		return KindPodcastEpisode
	case "videogame", "video-game":
		return KindVideoGame
	case "musicvideo", "music-video":
		return KindMusicVideo
	default:
		return Kind(value)
	}
}

// ContainsKind reports whether kinds includes k. A nil filter matches all.
func ContainsKind(kinds []Kind, k Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, candidate := range kinds {
		if candidate == k {
			return true
		}
	}
	return false
}
