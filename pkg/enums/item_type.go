package enums

import "fmt"

// ItemType classifies stock-keeping units.
type ItemType string

const (
	ItemTypeGeraet   ItemType = "geraet"
	ItemTypeMaterial ItemType = "material"
)

var validItemTypes = []ItemType{
	ItemTypeGeraet,
	ItemTypeMaterial,
}

func (i ItemType) String() string {
	return string(i)
}

func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
