package ephemeris

import (
	"fmt"
	"strconv"
	"strings"
)

// Body identifies a celestial body or computed point.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	MeanNode
	MeanApogee
	Earth
)

// AsteroidOffset maps minor-planet catalog numbers into the Body space:
// asteroid n is Body(AsteroidOffset + n), served from a single-body
// auxiliary file.
const AsteroidOffset Body = 10000

var bodyNames = map[Body]string{
	Sun:        "Sun",
	Moon:       "Moon",
	Mercury:    "Mercury",
	Venus:      "Venus",
	Mars:       "Mars",
	Jupiter:    "Jupiter",
	Saturn:     "Saturn",
	Uranus:     "Uranus",
	Neptune:    "Neptune",
	Pluto:      "Pluto",
	MeanNode:   "mean Node",
	MeanApogee: "mean Apogee",
	Earth:      "Earth",
}

func (b Body) String() string {
	if n, ok := bodyNames[b]; ok {
		return n
	}
	if b.IsAsteroid() {
		return fmt.Sprintf("asteroid %d", int(b-AsteroidOffset))
	}
	return fmt.Sprintf("body %d", int(b))
}

// IsAsteroid reports whether b addresses a numbered minor planet.
func (b Body) IsAsteroid() bool { return b >= AsteroidOffset }

// ParseBody resolves a body name or minor-planet catalog number. Names
// match case-insensitively; "node" and "apogee" select the mean lunar
// points.
func ParseBody(s string) (Body, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "node", "mean node":
		return MeanNode, nil
	case "apogee", "mean apogee", "lilith":
		return MeanApogee, nil
	default:
		for b, n := range bodyNames {
			if strings.ToLower(n) == name {
				return b, nil
			}
		}
		if n, err := strconv.Atoi(name); err == nil && n > 0 {
			return AsteroidOffset + Body(n), nil
		}
	}
	return 0, fmt.Errorf("unknown body %q", s)
}

// Internal body numbering used inside ephemeris files. The Earth-Moon
// barycenter and the barycentric Sun are file-level bodies that never
// appear in the public Body space.
const (
	fileEMB = iota
	fileMoon
	fileMercury
	fileVenus
	fileMars
	fileJupiter
	fileSaturn
	fileUranus
	fileNeptune
	filePluto
	fileSunBary
	fileBodies
)

// fileBody maps a public planet to its internal file number, or -1 when
// the body is not stored in multi-body files.
func fileBody(b Body) int {
	switch b {
	case Moon:
		return fileMoon
	case Mercury:
		return fileMercury
	case Venus:
		return fileVenus
	case Mars:
		return fileMars
	case Jupiter:
		return fileJupiter
	case Saturn:
		return fileSaturn
	case Uranus:
		return fileUranus
	case Neptune:
		return fileNeptune
	case Pluto:
		return filePluto
	default:
		return -1
	}
}
