package enums

import "fmt"

// ItemStatus is a denormalized convenience flag; availability itself is
// always derived from stock minus reserved quantity.
type ItemStatus string

const (
	ItemStatusVerfuegbar      ItemStatus = "verfuegbar"
	ItemStatusNichtVerfuegbar ItemStatus = "nicht_verfuegbar"
)

var validItemStatuses = []ItemStatus{
	ItemStatusVerfuegbar,
	ItemStatusNichtVerfuegbar,
}

func (s ItemStatus) String() string {
	return string(s)
}

func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
