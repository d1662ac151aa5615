package models

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/desertthunder/correx/internal/shared"
)

// EntityType names the kind of wiki entity a correction targets.
type EntityType string

const (
	EntityArtist     EntityType = "Artist"
	EntityLabel      EntityType = "Label"
	EntityRelease    EntityType = "Release"
	EntitySong       EntityType = "Song"
	EntityTag        EntityType = "Tag"
	EntityEvent      EntityType = "Event"
	EntitySongLyrics EntityType = "SongLyrics"
	EntityCreditRole EntityType = "CreditRole"
)

// EntityTypes lists every entity type in declaration order.
var EntityTypes = []EntityType{
	EntityArtist, EntityLabel, EntityRelease, EntitySong,
	EntityTag, EntityEvent, EntitySongLyrics, EntityCreditRole,
}

var entitySegments = map[EntityType]string{
	EntityArtist:     "artist",
	EntityLabel:      "label",
	EntityRelease:    "release",
	EntitySong:       "song",
	EntityTag:        "tag",
	EntityEvent:      "event",
	EntitySongLyrics: "song-lyrics",
	EntityCreditRole: "credit-role",
}

// PathSegment returns the kebab-case segment used by the history endpoint, e.g. "song-lyrics".
func (e EntityType) PathSegment() string {
	return entitySegments[e]
}

// Label returns the human-readable name.
func (e EntityType) Label() string {
	switch e {
	case EntitySongLyrics:
		return "Song lyrics"
	case EntityCreditRole:
		return "Credit role"
	default:
		return string(e)
	}
}

// WebRoute returns the wiki page path for an entity, or false for types without a page.
func (e EntityType) WebRoute(id int) (string, bool) {
	switch e {
	case EntityArtist, EntityLabel, EntityRelease, EntitySong, EntityTag, EntityEvent:
		return "/" + e.PathSegment() + "/" + strconv.Itoa(id), true
	default:
		return "", false
	}
}

// Valid reports whether e is a known entity type.
func (e EntityType) Valid() bool {
	_, ok := entitySegments[e]
	return ok
}

func (e *EntityType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if !EntityType(s).Valid() {
		return fmt.Errorf("%w: unknown entity type %q", shared.ErrInvalidResponse, s)
	}
	*e = EntityType(s)
	return nil
}

// ParseEntityType accepts either the wire name ("SongLyrics") or the path segment ("song-lyrics").
func ParseEntityType(s string) (EntityType, error) {
	for _, e := range EntityTypes {
		if s == string(e) || s == e.PathSegment() {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity type %q", shared.ErrInvalidArgument, s)
}
