package event

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing upstream date values.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate parses v as a date, returning the zero time when v is absent
// or unparseable.
func parseDate(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dateLabels pairs each upstream date field with its French label.
var dateLabels = []struct {
	field string
	label string
}{
	{"firstdate_begin", "Première date : "},
	{"firstdate_end", "Fin première période : "},
	{"lastdate_begin", "Dernière date : "},
	{"lastdate_end", "Fin dernière période : "},
}

// datesText renders the known dates as dd/mm/yyyy plus the timings, joined by " | ".
func datesText(fields map[string]any) string {
	var parts []string
	for _, d := range dateLabels {
		if t := parseDate(fields[d.field]); !t.IsZero() {
			parts = append(parts, d.label+t.Format("02/01/2006"))
		}
	}
	if timings := toText(fields["timings"]); timings != "" {
		parts = append(parts, "Horaires : "+timings)
	}
	return strings.Join(parts, " | ")
}

// geoText renders coordinates with five decimals. Coordinates come either
// as a "lat,lon" string or as a [lat, lon] pair.
func geoText(fields map[string]any) string {
	lat, lon, ok := coordinates(fields["location_coordinates"])
	if !ok {
		lat, ok = toFloat(fields["location_lat"])
		if !ok {
			return ""
		}
		if lon, ok = toFloat(fields["location_lon"]); !ok {
			return ""
		}
	}
	return fmt.Sprintf("Coordonnées : %.5f, %.5f", lat, lon)
}

func coordinates(v any) (lat, lon float64, ok bool) {
	switch c := v.(type) {
	case string:
		parts := strings.Split(c, ",")
		if len(parts) != 2 {
			return 0, 0, false
		}
		var err error
		if lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
			return 0, 0, false
		}
		if lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
			return 0, 0, false
		}
		return lat, lon, true
	case []any:
		if len(c) != 2 {
			return 0, 0, false
		}
		lat, ok1 := toFloat(c[0])
		lon, ok2 := toFloat(c[1])
		return lat, lon, ok1 && ok2
	}
	return 0, 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ageText renders the age range: both bounds, one bound, or nothing.
func ageText(fields map[string]any) string {
	lo, hi := toText(fields["age_min"]), toText(fields["age_max"])
	switch {
	case lo != "" && hi != "":
		return "Âge : " + lo + " à " + hi
	case lo != "":
		return "Âge : " + lo
	case hi != "":
		return "Âge : " + hi
	}
	return ""
}

// toText converts a decoded JSON value to readable text: lists are joined
// with ", ", objects render as "k: v" pairs in key order, whole numbers
// drop their decimals.
func toText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := toText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+toText(val[k]))
		}
		return strings.Join(parts, " ")
	}
	return fmt.Sprint(v)
}

// firstText returns the text of the first field that is present and non-empty.
func firstText(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := toText(fields[k]); s != "" {
			return s
		}
	}
	return ""
}
