package query

import (
	"fmt"
	"regexp"

	"github.com/desertthunder/spotsearch/internal/models"
	"github.com/desertthunder/spotsearch/internal/shared"
)

// Kind discriminates the two descriptor variants.
type Kind int

const (
	Keywords Kind = iota + 1
	Lookup
)

func (k Kind) String() string {
	switch k {
	case Keywords:
		return "keywords"
	case Lookup:
		return "lookup"
	default:
		return "unknown"
	}
}

var idPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Filter is a field-scoped search term such as artist:Muse or year:2009.
type Filter struct {
	Name  string
	Value string
}

// Descriptor is the normalized form of a query.
//
// For [Keywords] only Text, Filters and EntityTypes are meaningful; for [Lookup] only EntityType and EntityID.
type Descriptor struct {
	Kind        Kind
	Text        string
	Filters     []Filter
	EntityTypes []models.EntityType
	EntityType  models.EntityType
	EntityID    string
}

// NewKeywords builds a keyword search descriptor. Slices are copied.
func NewKeywords(text string, filters []Filter, types []models.EntityType) Descriptor {
	d := Descriptor{Kind: Keywords, Text: text}
	if len(filters) > 0 {
		d.Filters = append([]Filter(nil), filters...)
	}
	if len(types) > 0 {
		d.EntityTypes = append([]models.EntityType(nil), types...)
	}
	return d
}

// NewLookup builds a direct lookup descriptor, rejecting identifiers that are empty or not alphanumeric.
func NewLookup(kind models.EntityType, id string) (Descriptor, error) {
	d := Descriptor{Kind: Lookup, EntityType: kind, EntityID: id}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks the invariants of the active variant.
func (d Descriptor) Validate() error {
	switch d.Kind {
	case Keywords:
		for _, t := range d.EntityTypes {
			if _, err := models.ParseEntityType(string(t)); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
			}
		}
		for _, f := range d.Filters {
			if f.Name == "" {
				return fmt.Errorf("%w: filter with empty name", shared.ErrInvalidArgument)
			}
		}
		return nil
	case Lookup:
		if _, err := models.ParseEntityType(string(d.EntityType)); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		if !idPattern.MatchString(d.EntityID) {
			return fmt.Errorf("%w: %s id %q", shared.ErrInvalidReference, d.EntityType, d.EntityID)
		}
		return nil
	default:
		return fmt.Errorf("%w: descriptor kind %d", shared.ErrInvalidArgument, d.Kind)
	}
}

func (d Descriptor) String() string {
	if d.Kind == Lookup {
		return fmt.Sprintf("%s:%s", d.EntityType, d.EntityID)
	}
	return d.Text
}
