package quality

import "strings"

// Constellation is the single-letter satellite system code from the CONST column.
type Constellation string

const (
	GPS     Constellation = "G"
	GLONASS Constellation = "R"
	Galileo Constellation = "E"
	BeiDou  Constellation = "C"
	QZSS    Constellation = "J"
)

// DefaultConstellations is the initial constellation selection.
var DefaultConstellations = []Constellation{GPS}

// ConstellationDescriptor pairs a code with its display name and series colour.
type ConstellationDescriptor struct {
	Code  Constellation `json:"code"`
	Name  string        `json:"name"`
	Color string        `json:"color"`
}

var constellationOrder = []Constellation{GPS, GLONASS, Galileo, BeiDou, QZSS}

var constellationDescriptors = map[Constellation]ConstellationDescriptor{
	GPS:     {Code: GPS, Name: "GPS", Color: "#FF6347"},
	GLONASS: {Code: GLONASS, Name: "GLONASS", Color: "#F0E68C"},
	Galileo: {Code: Galileo, Name: "GALILEO", Color: "#1E90FF"},
	BeiDou:  {Code: BeiDou, Name: "BEIDOU", Color: "#9ACD32"},
	QZSS:    {Code: QZSS, Name: "QZSS", Color: "#BA55D3"},
}

// fallbackColor is used for constellation codes outside the fixed palette.
const fallbackColor = "#A9A9A9"

// Constellations returns the known constellations in selector order.
func Constellations() []ConstellationDescriptor {
	out := make([]ConstellationDescriptor, 0, len(constellationOrder))
	for _, c := range constellationOrder {
		out = append(out, constellationDescriptors[c])
	}
	return out
}

// Known reports whether c is one of the supported constellation codes.
func (c Constellation) Known() bool {
	_, ok := constellationDescriptors[c]
	return ok
}

// Name returns the display name, or the raw code for unknown constellations.
func (c Constellation) Name() string {
	if d, ok := constellationDescriptors[c]; ok {
		return d.Name
	}
	return string(c)
}

// Color returns the palette colour as a "#RRGGBB" string.
func (c Constellation) Color() string {
	if d, ok := constellationDescriptors[c]; ok {
		return d.Color
	}
	return fallbackColor
}

// ParseConstellation normalises user input into a known Constellation.
func ParseConstellation(s string) (Constellation, bool) {
	c := Constellation(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Known() {
		return "", false
	}
	return c, true
}
