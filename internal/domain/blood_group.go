package domain

import "strings"

// BloodGroup is the ABO/Rh group used as an exact matching key between requests and donors.
type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

var bloodGroups = []BloodGroup{
	BloodGroupAPos, BloodGroupANeg,
	BloodGroupBPos, BloodGroupBNeg,
	BloodGroupABPos, BloodGroupABNeg,
	BloodGroupOPos, BloodGroupONeg,
}

// BloodGroups returns every supported group in display order.
func BloodGroups() []BloodGroup {
	return append([]BloodGroup(nil), bloodGroups...)
}

// Valid reports whether g is one of the eight supported groups.
func (g BloodGroup) Valid() bool {
	for _, known := range bloodGroups {
		if g == known {
			return true
		}
	}
	return false
}

// ParseBloodGroup normalizes user input such as " ab+ " into a BloodGroup.
func ParseBloodGroup(raw string) (BloodGroup, error) {
	g := BloodGroup(strings.ToUpper(strings.TrimSpace(raw)))
	if !g.Valid() {
		return "", ErrInvalidBloodGroup
	}
	return g, nil
}
