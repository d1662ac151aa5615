package query

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/correx/internal/models"
)

// Tag names the operation a cache key belongs to.
type Tag string

const (
	TagDetail    Tag = "correction::detail"
	TagRevisions Tag = "correction::revisions"
	TagDiff      Tag = "correction::diff"
	TagCompare   Tag = "correction::compare"
	TagHistory   Tag = "correction::history"
	TagPending   Tag = "correction::pending"
)

// Tags lists every operation tag.
var Tags = []Tag{TagDetail, TagRevisions, TagDiff, TagCompare, TagHistory, TagPending}

// Key identifies a cache slot: an operation tag followed by its parameters.
//
// Keys with the same tag and parameters share a slot regardless of where they were built.
// The canonical form is the JSON array text, e.g. ["correction::compare",98,104].
type Key struct {
	tag       Tag
	canonical string
}

// NewKey builds a key from a tag and JSON-encodable parameters.
func NewKey(tag Tag, params ...any) Key {
	parts := make([]any, 0, len(params)+1)
	parts = append(parts, string(tag))
	parts = append(parts, params...)

	data, err := json.Marshal(parts)
	if err != nil {
		// parameters are ints and strings
		panic(fmt.Sprintf("query: unencodable key parameters %v: %v", params, err))
	}
	return Key{tag: tag, canonical: string(data)}
}

func (k Key) Tag() Tag { return k.tag }

func (k Key) String() string { return k.canonical }

// ParseKey reads a canonical key back.
func ParseKey(s string) (Key, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal([]byte(s), &parts); err != nil || len(parts) == 0 {
		return Key{}, fmt.Errorf("invalid cache key %q", s)
	}

	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil || tag == "" {
		return Key{}, fmt.Errorf("invalid cache key tag in %q", s)
	}

	params := make([]any, 0, len(parts)-1)
	for _, p := range parts[1:] {
		var v any
		if err := json.Unmarshal(p, &v); err != nil {
			return Key{}, fmt.Errorf("invalid cache key parameter in %q", s)
		}
		params = append(params, v)
	}
	return NewKey(Tag(tag), params...), nil
}

func DetailKey(id int) Key { return NewKey(TagDetail, id) }

func RevisionsKey(id int) Key { return NewKey(TagRevisions, id) }

func DiffKey(id int) Key { return NewKey(TagDiff, id) }

// CompareKey is the key of the diff from base to target.
func CompareKey(base, target int) Key { return NewKey(TagCompare, base, target) }

// HistoryKey is keyed by the entity's path segment, e.g. ["correction::history","artist",24].
func HistoryKey(entityType models.EntityType, id int) Key {
	return NewKey(TagHistory, entityType.PathSegment(), id)
}

func PendingKey(entityType models.EntityType, id int) Key {
	return NewKey(TagPending, entityType.PathSegment(), id)
}
