// Package properties implements the property listing domain: the entity, the
// storage contract, the identifier cache and the service that composes them.
package properties

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates no property exists with the requested id
	ErrNotFound = errors.New("property not found")

	// ErrInvalidProperty indicates a property failed required-field checks
	ErrInvalidProperty = errors.New("invalid property")
)

const (
	maxTitleLength    = 200
	maxLocationLength = 100
)

// Property is a listed property. Only ID matters to the caches; every other
// field is passed through unchanged.
type Property struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks required fields and normalizes Price to two decimals.
func (p *Property) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)

	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProperty)
	case len(p.Title) > maxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidProperty, maxTitleLength)
	case p.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidProperty)
	case len(p.Location) > maxLocationLength:
		return fmt.Errorf("%w: location exceeds %d characters", ErrInvalidProperty, maxLocationLength)
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(p.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return fmt.Errorf("%w: price %q is not a number", ErrInvalidProperty, p.Price)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProperty)
	}
	p.Price = strconv.FormatFloat(price, 'f', 2, 64)

	return nil
}

// IDLister lists every property id in the store's natural order.
type IDLister interface {
	ListAllIDs(ctx context.Context) ([]int64, error)
}

// Repository is the storage layer contract.
type Repository interface {
	IDLister

	// FindByIDs returns the properties matching ids. Unknown ids are
	// skipped without error; result order is unspecified.
	FindByIDs(ctx context.Context, ids []int64) ([]Property, error)

	// Get returns one property or ErrNotFound.
	Get(ctx context.Context, id int64) (*Property, error)

	// Create inserts p and sets its ID and CreatedAt.
	Create(ctx context.Context, p *Property) error

	// Update replaces the mutable fields of an existing property or returns ErrNotFound.
	Update(ctx context.Context, p *Property) error

	// Delete removes a property or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error

	// Ping checks storage connectivity.
	Ping(ctx context.Context) error
}
