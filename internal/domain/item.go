package domain

// ItemKind names the kind of a catalog item. Informational on stored
// mappings; drives the URL template during generation.
type ItemKind string

// Catalog item kinds with friendly URL templates.
const (
	KindMovie      ItemKind = "movie"
	KindShow       ItemKind = "show"
	KindSeason     ItemKind = "season"
	KindEpisode    ItemKind = "episode"
	KindPerson     ItemKind = "person"
	KindCollection ItemKind = "collection"
	KindGenre      ItemKind = "genre"
	KindStudio     ItemKind = "studio"
)

// Supported reports whether the kind has a friendly URL template at all.
func (k ItemKind) Supported() bool {
	switch k {
	case KindMovie, KindShow, KindSeason, KindEpisode,
		KindPerson, KindCollection, KindGenre, KindStudio:
		return true
	default:
		return false
	}
}

// String returns the kind as a string.
func (k ItemKind) String() string {
	return string(k)
}

// CatalogItem is a content entity supplied by the host's catalog. The
// permalink server never stores items; it only reads them to build mappings.
type CatalogItem struct {
	// ID is the host's opaque item identifier.
	ID string

	// Kind classifies the item; unrecognized host types map to "".
	Kind ItemKind

	// Name is the display name the slug derives from.
	Name string

	// ParentShow is the display name of the parent show. Required for
	// seasons and episodes; empty means the parent is unresolved.
	ParentShow string

	// SeasonIndex is the season number (seasons and episodes).
	SeasonIndex int

	// EpisodeIndex is the episode number within the season (episodes only).
	EpisodeIndex int

	// ProductionYear disambiguates movies and shows in the URL.
	ProductionYear int
}
