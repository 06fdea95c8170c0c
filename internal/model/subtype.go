package model

// DocumentSubtype is the lease expense structure detected by the
// classifier.
type DocumentSubtype string

const (
	SubtypeNNN DocumentSubtype = "NNN" // triple net
	SubtypeFSG DocumentSubtype = "FSG" // full service gross
	SubtypeMG  DocumentSubtype = "MG"  // modified gross
	SubtypeIG  DocumentSubtype = "IG"  // industrial gross
	SubtypeANN DocumentSubtype = "ANN" // absolute net
)

// DefaultSubtype is assumed when classification finds no recognizable code.
const DefaultSubtype = SubtypeFSG

// ClassificationOrder is the priority order for scanning classifier
// responses. The first code found as a substring wins.
var ClassificationOrder = []DocumentSubtype{
	SubtypeNNN,
	SubtypeFSG,
	SubtypeMG,
	SubtypeIG,
	SubtypeANN,
}

// Valid reports whether the subtype is one of the known codes.
func (s DocumentSubtype) Valid() bool {
	switch s {
	case SubtypeNNN, SubtypeFSG, SubtypeMG, SubtypeIG, SubtypeANN:
		return true
	}
	return false
}

// Label returns the human-readable expense structure name.
func (s DocumentSubtype) Label() string {
	switch s {
	case SubtypeNNN:
		return "Triple Net"
	case SubtypeFSG:
		return "Full Service Gross"
	case SubtypeMG:
		return "Modified Gross"
	case SubtypeIG:
		return "Industrial Gross"
	case SubtypeANN:
		return "Absolute Net"
	}
	return string(s)
}

// ParseSubtype returns the subtype for a code string, reporting whether
// the code was recognized.
func ParseSubtype(code string) (DocumentSubtype, bool) {
	s := DocumentSubtype(code)
	return s, s.Valid()
}
