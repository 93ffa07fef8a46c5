package sharecode

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-ar/core"
)

// Code kinds. TTLs are fixed per kind and never renewed.
const (
	KindGeneric Kind = "generic"
	KindAR      Kind = "ar"

	genericTTL = 10 * time.Minute
	arTTL      = 30 * time.Minute
)

var (
	// errors
	ErrNotFound = errors.New("share code not found or expired")
)

type Kind string

func (k Kind) TTL() time.Duration {
	if k == KindAR {
		return arTTL
	}
	return genericTTL
}

type (
	// Payload is the small bundle of data a code hands off to a second device.
	Payload struct {
		AssetURL       string `json:"asset_url" db:"asset_url"`
		Title          string `json:"title" db:"title"`
		SecondaryTitle string `json:"secondary_title,omitempty" db:"secondary_title"`
		Kind           Kind   `json:"kind" db:"kind"`
	}

	// Code is an issued share code together with its payload and expiry.
	// A code is valid iff now < ExpiresAt; resolution after expiry behaves
	// exactly like "not found".
	Code struct {
		Code      string    `json:"code" db:"code"`
		Payload   Payload   `json:"payload" db:"payload"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
		ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	}

	NewShare struct {
		AssetURL       string `json:"asset_url" validate:"required,url"`
		Title          string `json:"title" validate:"required,max=255"`
		SecondaryTitle string `json:"secondary_title" validate:"max=255"`
		Kind           Kind   `json:"kind" validate:"omitempty,oneof=generic ar"`
		Email          string `json:"email" validate:"omitempty,email"` // optionally email the code
	}
)

func (c Code) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (ns *NewShare) Validate(validate *validator.Validate) error {
	ns.AssetURL = core.CleanString(ns.AssetURL)
	ns.Title = core.CleanString(ns.Title)
	ns.SecondaryTitle = core.CleanString(ns.SecondaryTitle)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	if ns.Kind == "" {
		ns.Kind = KindGeneric
	}
	return validate.Struct(ns)
}

func (ns NewShare) payload() Payload {
	return Payload{
		AssetURL:       ns.AssetURL,
		Title:          ns.Title,
		SecondaryTitle: ns.SecondaryTitle,
		Kind:           ns.Kind,
	}
}
