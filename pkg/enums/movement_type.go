package enums

import "fmt"

// MovementType labels stock movement ledger entries.
type MovementType string

const (
	MovementTypeWareneingang MovementType = "wareneingang"
	MovementTypeWarenausgang MovementType = "warenausgang"
)

var validMovementTypes = []MovementType{
	MovementTypeWareneingang,
	MovementTypeWarenausgang,
}

func (m MovementType) String() string {
	return string(m)
}

func (m MovementType) IsValid() bool {
	for _, candidate := range validMovementTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementType converts raw input into a MovementType.
func ParseMovementType(value string) (MovementType, error) {
	for _, candidate := range validMovementTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement type %q", value)
}
