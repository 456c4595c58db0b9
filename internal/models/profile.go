package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CupSize is the volume logged by a single tap, in milliliters
type CupSize int

const (
	Cup50  CupSize = 50
	Cup100 CupSize = 100
	Cup200 CupSize = 200
)

// CupSizes lists the selectable cup sizes in ascending order
var CupSizes = []CupSize{Cup50, Cup100, Cup200}

// Outfit slots for the avatar. Items are free-form sticker names.
const (
	OutfitHat       = "hat"
	OutfitTop       = "top"
	OutfitAccessory = "accessory"
)

// OutfitSlots lists the known cosmetic slots
var OutfitSlots = []string{OutfitHat, OutfitTop, OutfitAccessory}

// Valid reports whether c is one of the selectable cup sizes
func (c CupSize) Valid() bool {
	for _, s := range CupSizes {
		if c == s {
			return true
		}
	}
	return false
}

func (c CupSize) String() string {
	return fmt.Sprintf("%dml", int(c))
}

// ParseCupSize parses "100" or "100ml" into a CupSize
func ParseCupSize(s string) (CupSize, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "ml")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid cup size %q: expected one of %s", s, cupSizeList())
	}
	c := CupSize(n)
	if !c.Valid() {
		return 0, fmt.Errorf("invalid cup size %d: expected one of %s", n, cupSizeList())
	}
	return c, nil
}

func cupSizeList() string {
	parts := make([]string, len(CupSizes))
	for i, c := range CupSizes {
		parts[i] = strconv.Itoa(int(c))
	}
	return strings.Join(parts, ", ")
}

// Profile holds per-user personalization. Only CupMl feeds the intake core;
// the demographic and outfit fields are display-only.
type Profile struct {
	CupMl  CupSize           `json:"cupMl"`
	Gender string            `json:"gender,omitempty"`
	Age    int               `json:"age,omitempty"`
	Outfit map[string]string `json:"outfit,omitempty"`
}

// DefaultProfile returns the profile used on first run
func DefaultProfile() Profile {
	return Profile{
		CupMl:  Cup50,
		Outfit: map[string]string{},
	}
}

// Validate checks the cup size, age range and outfit slot names
func (p Profile) Validate() error {
	if !p.CupMl.Valid() {
		return fmt.Errorf("invalid cup size %d: expected one of %s", int(p.CupMl), cupSizeList())
	}
	if p.Age < 0 || p.Age > 150 {
		return fmt.Errorf("invalid age %d", p.Age)
	}
	for slot := range p.Outfit {
		if !isOutfitSlot(slot) {
			return fmt.Errorf("unknown outfit slot %q (expected one of %s)", slot, strings.Join(OutfitSlots, ", "))
		}
	}
	return nil
}

// OutfitSummary renders the outfit as "slot=item" pairs in slot order
func (p Profile) OutfitSummary() string {
	if len(p.Outfit) == 0 {
		return "none"
	}
	slots := make([]string, 0, len(p.Outfit))
	for slot := range p.Outfit {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	parts := make([]string, 0, len(slots))
	for _, slot := range slots {
		parts = append(parts, slot+"="+p.Outfit[slot])
	}
	return strings.Join(parts, ", ")
}

func isOutfitSlot(slot string) bool {
	for _, s := range OutfitSlots {
		if s == slot {
			return true
		}
	}
	return false
}
