package models

// Rating is the normalized trail difficulty, ordered easiest to
// hardest so `ORDER BY rating` reads top to bottom the way a trail map
// does. The ordinal values are part of the storage format.
type Rating int

const (
	RatingGreen Rating = iota
	RatingBlue
	RatingBlack
	RatingDoubleBlack
	RatingTripleBlack
	RatingGlades
	RatingDoubleGlades
	RatingWooded
	RatingTerrainPark
)

// RatingUnknown marks a site-reported trail type with no mapping. It is
// persisted as NULL, which sorts after every real rating.
const RatingUnknown Rating = -1

var ratingSlugs = map[Rating]string{
	RatingGreen:        "green",
	RatingBlue:         "blue",
	RatingBlack:        "black-1",
	RatingDoubleBlack:  "black-2",
	RatingTripleBlack:  "black-3",
	RatingGlades:       "glades-blue",
	RatingDoubleGlades: "glades-black",
	RatingWooded:       "wooded",
	RatingTerrainPark:  "terrain-park",
}

// Slug returns the stable string form served by the API and the CSV
// export. Unknown ratings render as the empty string.
func (r Rating) Slug() string {
	return ratingSlugs[r]
}

// RatingFor looks up the site-reported trail type in a per-strategy
// mapping. An unmapped type yields RatingUnknown, not an error.
func RatingFor(mapping map[string]Rating, trailType string) Rating {
	rating, ok := mapping[trailType]
	if !ok {
		return RatingUnknown
	}
	return rating
}
