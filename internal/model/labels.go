package model

// PatternLabel tags one specific triggered heuristic condition. Labels
// are data: registering a new one here is the only change an analyzer
// needs to emit it.
type PatternLabel string

const (
	GenericNaming      PatternLabel = "GenericNaming"
	TemplatedComment   PatternLabel = "TemplatedComment"
	UniformStructure   PatternLabel = "UniformStructure"
	StyleDiscontinuity PatternLabel = "StyleDiscontinuity"
)

var labelDescriptions = map[PatternLabel]string{
	GenericNaming:      "High ratio of generic identifier names",
	TemplatedComment:   "Comments follow templated, over-explanatory constructions",
	UniformStructure:   "Suspiciously uniform block lengths and nesting",
	StyleDiscontinuity: "Abrupt stylistic shift between regions of the file",
}

// Describe returns the fixed human-readable description for a label.
// Unregistered labels describe as their own name.
func (l PatternLabel) Describe() string {
	if d, ok := labelDescriptions[l]; ok {
		return d
	}
	return string(l)
}

// RegisterLabel adds a description for a new pattern label. Existing
// registrations are not overwritten.
func RegisterLabel(l PatternLabel, description string) {
	if _, ok := labelDescriptions[l]; !ok {
		labelDescriptions[l] = description
	}
}
