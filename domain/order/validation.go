package order

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"watchbox/domain/shared"
)

// Field names one input of the order form.
type Field string

const (
	FieldProduct  Field = "selectedWatchId"
	FieldFullName Field = "fullName"
	FieldPhone    Field = "phone"
	FieldWilaya   Field = "wilaya"
	FieldBaladiya Field = "baladiya"
	FieldDelivery Field = "deliveryOption"
)

const (
	MinNameLength  = 2
	MinPhoneDigits = 9
	MaxPhoneDigits = 13
)

// Draft is the unvalidated buyer input, shared by the form and the endpoint.
type Draft struct {
	FullName        string
	Phone           string
	Wilaya          string
	Baladiya        string
	ProductID       string
	Delivery        DeliveryOption
	Notes           string
	ClientRequestID string
}

// Normalized returns a copy with surrounding whitespace stripped from text fields.
func (d Draft) Normalized() Draft {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Wilaya = strings.TrimSpace(d.Wilaya)
	d.Baladiya = strings.TrimSpace(d.Baladiya)
	d.Notes = strings.TrimSpace(d.Notes)
	return d
}

// DigitCount counts ASCII digits; separators, spaces and '+' are ignored.
func DigitCount(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

type rule struct {
	field    Field
	sentinel error
	spec     shared.Specification[Draft]
}

func notBlank(get func(Draft) string) shared.Specification[Draft] {
	return shared.SpecFunc[Draft](func(d Draft) bool {
		return strings.TrimSpace(get(d)) != ""
	})
}

var (
	productChosen = notBlank(func(d Draft) string { return d.ProductID })

	productKnown = shared.SpecFunc[Draft](func(d Draft) bool {
		_, ok := FindProduct(d.ProductID)
		return ok
	})

	nameLongEnough = shared.SpecFunc[Draft](func(d Draft) bool {
		return utf8.RuneCountInString(strings.TrimSpace(d.FullName)) >= MinNameLength
	})

	phonePlausible = shared.SpecFunc[Draft](func(d Draft) bool {
		n := DigitCount(d.Phone)
		return n >= MinPhoneDigits && n <= MaxPhoneDigits
	})

	deliveryKnown = shared.SpecFunc[Draft](func(d Draft) bool {
		return d.Delivery.Valid()
	})
)

// rules in form order; the first failure is the one reported to the caller
var rules = []rule{
	{FieldProduct, ErrMissingProduct, productChosen},
	{FieldProduct, ErrUnknownProduct, shared.And[Draft](productChosen, productKnown)},
	{FieldFullName, ErrInvalidFullName, nameLongEnough},
	{FieldPhone, ErrInvalidPhone, phonePlausible},
	{FieldWilaya, ErrMissingWilaya, notBlank(func(d Draft) string { return d.Wilaya })},
	{FieldBaladiya, ErrMissingBaladiya, notBlank(func(d Draft) string { return d.Baladiya })},
	{FieldDelivery, ErrInvalidDelivery, deliveryKnown},
}

// Validate returns the first violated rule as a *FieldError, or nil.
func Validate(d Draft) error {
	for _, r := range rules {
		if !r.spec.IsSatisfiedBy(d) {
			return newFieldError(r.field, r.sentinel)
		}
	}
	return nil
}

// ValidateAll returns one *FieldError per failing field, in form order.
func ValidateAll(d Draft) []*FieldError {
	var errs []*FieldError
	seen := make(map[Field]bool)
	for _, r := range rules {
		if seen[r.field] {
			continue
		}
		if !r.spec.IsSatisfiedBy(d) {
			seen[r.field] = true
			errs = append(errs, newFieldError(r.field, r.sentinel))
		}
	}
	return errs
}

// MaxRequestIDLength bounds the registry key; every backend stores at most this many bytes.
const MaxRequestIDLength = 128

// ValidRequestID reports whether id can be used as a registry key as is:
// non-empty, letters, digits, '-', '_', '.' and ':'.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}

// RegistryKey maps a client token to the key the idempotency registry stores.
// Tokens that are not valid keys are hashed, so the same token always maps to
// the same key while the caller keeps its own token.
func RegistryKey(id string) string {
	if ValidRequestID(id) {
		return id
	}
	sum := sha256.Sum256([]byte(id))
	return "sha256:" + hex.EncodeToString(sum[:])
}
