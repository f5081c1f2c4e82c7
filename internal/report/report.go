// Package report renders computed positions for the headless CLI modes.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	ephemeris "github.com/litescript/ls-ephemeris"
)

// DefaultBodies is the body set printed when none is requested.
var DefaultBodies = []ephemeris.Body{
	ephemeris.Sun, ephemeris.Moon, ephemeris.Mercury, ephemeris.Venus,
	ephemeris.Mars, ephemeris.Jupiter, ephemeris.Saturn, ephemeris.Uranus,
	ephemeris.Neptune, ephemeris.Pluto, ephemeris.MeanNode, ephemeris.MeanApogee,
}

var signNames = [12]string{
	"Ari", "Tau", "Gem", "Cnc", "Leo", "Vir",
	"Lib", "Sco", "Sgr", "Cap", "Aqr", "Psc",
}

// Row is one computed body in a position table.
type Row struct {
	Body      ephemeris.Body
	Longitude float64
	Latitude  float64
	Distance  float64
	Speed     float64
	Tier      ephemeris.Tier
	Err       error
}

// GenerateRows computes positions for the given bodies at tjd (TT).
// Failures are carried per row so one missing body does not empty the
// table.
func GenerateRows(c *ephemeris.Context, tjd float64, bodies []ephemeris.Body, flags ephemeris.Flag) []Row {
	rows := make([]Row, 0, len(bodies))
	for _, b := range bodies {
		res, err := c.ComputePosition(tjd, b, flags|ephemeris.FlagSpeed)
		if err != nil {
			rows = append(rows, Row{Body: b, Err: err})
			continue
		}
		rows = append(rows, Row{
			Body:      b,
			Longitude: res.Value[0],
			Latitude:  res.Value[1],
			Distance:  res.Value[2],
			Speed:     res.Value[3],
			Tier:      res.Tier,
		})
	}
	return rows
}

// FormatZodiac renders an ecliptic longitude as degrees within a sign,
// e.g. 199.909 becomes "19°54'33\" Lib".
func FormatZodiac(lonDeg float64) string {
	lon := math.Mod(lonDeg, 360)
	if lon < 0 {
		lon += 360
	}
	sign := int(lon / 30)
	d := lon - float64(sign)*30
	deg := int(d)
	m := (d - float64(deg)) * 60
	min := int(m)
	sec := (m - float64(min)) * 60
	return fmt.Sprintf("%2d°%02d'%02.0f\" %s", deg, min, sec, signNames[sign])
}

// FormatDMS renders an angle as signed degrees, arcminutes and
// arcseconds.
func FormatDMS(deg float64) string {
	s := " "
	if deg < 0 {
		s = "-"
		deg = -deg
	}
	d := int(deg)
	m := (deg - float64(d)) * 60
	min := int(m)
	sec := (m - float64(min)) * 60
	return fmt.Sprintf("%s%d°%02d'%02.0f\"", s, d, min, sec)
}

// WriteTable writes a text position table to the given writer.
func WriteTable(w io.Writer, rows []Row, tjd float64, sidereal bool) {
	frame := "tropical"
	if sidereal {
		frame = "sidereal"
	}
	fmt.Fprintf(w, "Positions @ JD %.6f TT (%s)\n", tjd, frame)
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-14s %-16s %-12s %12s %10s %-6s\n",
		"Body", "Longitude", "Latitude", "Distance AU", "°/day", "Source")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, r := range rows {
		if r.Err != nil {
			fmt.Fprintf(w, "%-14s %s\n", r.Body, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-14s %-16s %-12s %12.8f %+10.5f %-6s\n",
			r.Body,
			FormatZodiac(r.Longitude),
			FormatDMS(r.Latitude),
			r.Distance,
			r.Speed,
			tierLabel(r.Tier),
		)
	}
}

func tierLabel(t ephemeris.Tier) string {
	switch t {
	case ephemeris.TierPrimary:
		return "file"
	case ephemeris.TierSecondary:
		return "file2"
	case ephemeris.TierAnalytic:
		return "model"
	default:
		return "-"
	}
}

// Export is the JSON-serializable form of a position table.
type Export struct {
	JulianDayTT float64      `json:"julian_day_tt"`
	Sidereal    bool         `json:"sidereal"`
	Ayanamsa    float64      `json:"ayanamsa,omitempty"`
	Bodies      []BodyExport `json:"bodies"`
}

// BodyExport is a JSON-friendly body position.
type BodyExport struct {
	Name      string  `json:"name"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Distance  float64 `json:"distance_au"`
	Speed     float64 `json:"speed_deg_per_day"`
	Source    string  `json:"source"`
	Error     string  `json:"error,omitempty"`
}

// ExportRows converts a row set to the exportable format.
func ExportRows(c *ephemeris.Context, rows []Row, tjd float64, sidereal bool) *Export {
	e := &Export{JulianDayTT: tjd, Sidereal: sidereal}
	if sidereal {
		e.Ayanamsa = c.Ayanamsa(tjd)
	}
	for _, r := range rows {
		be := BodyExport{Name: r.Body.String()}
		if r.Err != nil {
			be.Error = r.Err.Error()
		} else {
			be.Longitude = r.Longitude
			be.Latitude = r.Latitude
			be.Distance = r.Distance
			be.Speed = r.Speed
			be.Source = tierLabel(r.Tier)
		}
		e.Bodies = append(e.Bodies, be)
	}
	return e
}

// WriteJSON writes the export as indented JSON.
func (e *Export) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
