package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Tag names a set of cached entries that a write can invalidate together.
type Tag string

const (
	tagAll       = "all"
	tagID        = "id"
	tagStatus    = "status"
	tagDimension = "dimension"
	tagList      = "list"
)

// AllTag covers every cached read of kind.
func AllTag(kind string) Tag { return Tag(tagAll + ":" + kind) }

// IDTag covers reads of one entity.
func IDTag(kind, id string) Tag { return Tag(tagID + ":" + kind + ":" + id) }

// StatusTag covers list views filtered by status.
func StatusTag(kind, status string) Tag { return Tag(tagStatus + ":" + kind + ":" + status) }

// DimensionTag covers list views filtered by the kind's classification value.
func DimensionTag(kind, value string) Tag { return Tag(tagDimension + ":" + kind + ":" + value) }

// ListTag covers every list view of kind regardless of filters. Search and
// pagination do not get their own tags.
func ListTag(kind string) Tag { return Tag(tagList + ":" + kind) }

// Prefix returns the tag family, e.g. "status".
func (t Tag) Prefix() string {
	prefix, _, _ := strings.Cut(string(t), ":")
	return prefix
}

// Row is the tag-relevant projection of a stored entity.
type Row struct {
	Kind      string
	ID        string
	Status    string
	Dimension string
}

// TagsFor returns the tags a read of shape depends on.
func TagsFor(shape QueryShape) []Tag {
	set := newTagSet()
	set.add(AllTag(shape.Kind))
	switch shape.Type {
	case ShapeDetail, ShapeHistory:
		set.add(IDTag(shape.Kind, shape.ID))
	case ShapeList:
		set.add(ListTag(shape.Kind))
		if shape.Status != "" {
			set.add(StatusTag(shape.Kind, shape.Status))
		}
		if shape.Dimension != "" {
			set.add(DimensionTag(shape.Kind, shape.Dimension))
		}
	}
	return set.sorted()
}

// TagsAffectedBy returns the tags a write invalidates. before is nil for a
// create, after is nil for a delete.
func TagsAffectedBy(before, after *Row) []Tag {
	set := newTagSet()
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		set.add(AllTag(after.Kind))
		set.add(ListTag(after.Kind))
	case after == nil:
		set.add(AllTag(before.Kind))
		set.add(IDTag(before.Kind, before.ID))
		set.add(ListTag(before.Kind))
		if before.Status != "" {
			set.add(StatusTag(before.Kind, before.Status))
		}
		if before.Dimension != "" {
			set.add(DimensionTag(before.Kind, before.Dimension))
		}
	default:
		kind := after.Kind
		set.add(IDTag(kind, after.ID))
		set.add(ListTag(kind))
		if before.Status != after.Status {
			set.add(StatusTag(kind, before.Status))
			set.add(StatusTag(kind, after.Status))
		}
		if before.Dimension != after.Dimension {
			set.add(DimensionTag(kind, before.Dimension))
			set.add(DimensionTag(kind, after.Dimension))
		}
	}
	return set.sorted()
}

type tagSet map[Tag]struct{}

func newTagSet() tagSet { return make(tagSet) }

func (s tagSet) add(tag Tag) { s[tag] = struct{}{} }

func (s tagSet) sorted() []Tag {
	out := make([]Tag, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseTag validates a raw tag such as "list:tracked_item".
func ParseTag(raw string) (Tag, error) {
	tag := Tag(strings.TrimSpace(raw))
	_, rest, ok := strings.Cut(string(tag), ":")
	if !ok || rest == "" {
		return "", fmt.Errorf("tag %q must look like family:kind[:value]", raw)
	}
	switch tag.Prefix() {
	case tagAll, tagID, tagStatus, tagDimension, tagList:
		return tag, nil
	}
	return "", fmt.Errorf("unknown tag family %q", tag.Prefix())
}
