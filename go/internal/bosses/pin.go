package bosses

import (
	"strconv"
	"strings"
)

// Highlight classifies a stat value for coloring.
type Highlight string

const (
	HighlightNone           Highlight = ""
	HighlightStrongWeakness Highlight = "strong-weakness"
	HighlightWeakness       Highlight = "weakness"
	HighlightResistance     Highlight = "resistance"
	HighlightStrongResist   Highlight = "strong-resistance"
	HighlightStatusLow      Highlight = "status-low"
	HighlightStatusMedium   Highlight = "status-medium"
	HighlightStatusHigh     Highlight = "status-high"
	HighlightImmune         Highlight = "immune"
)

// maxIconColumns caps the icon grid width.
const maxIconColumns = 5

// Icon is an image reference for an element or status.
type Icon struct {
	Key string `json:"key"`
	Src string `json:"src"`
}

// IconGroup is a row of icons plus the grid width to lay them out in.
type IconGroup struct {
	Icons   []Icon `json:"icons"`
	Columns int    `json:"columns"`
}

// StatCell is one cell of the weakness grid.
type StatCell struct {
	Key       string    `json:"key"`
	Label     string    `json:"label,omitempty"` // physical types have no icon
	Icon      *Icon     `json:"icon,omitempty"`
	Value     string    `json:"value"`
	Highlight Highlight `json:"highlight"`
}

// PinnedStat is everything needed to draw a pinned boss card.
type PinnedStat struct {
	Title    string     `json:"title"`
	Weakness IconGroup  `json:"weakness"`
	Deals    IconGroup  `json:"deals"`
	Grid     []StatCell `json:"grid"`
}

var (
	physicalKeys = map[string]bool{"standard": true, "slash": true, "strike": true, "pierce": true}
	statusKeys   = map[string]bool{"bleed": true, "frostbite": true, "poison": true, "rot": true, "sleep": true, "frenzy": true}
)

// Pin validates name and builds its pinned stat view.
func (c *Catalog) Pin(name string) (PinnedStat, error) {
	b, err := c.Get(name)
	if err != nil {
		return PinnedStat{}, err
	}

	p := PinnedStat{
		Title:    b.Name,
		Weakness: iconGroup(b.Weakness),
		Deals:    iconGroup(b.DealtDamage),
		Grid:     make([]StatCell, 0, len(StatKeys)),
	}
	for _, key := range StatKeys {
		p.Grid = append(p.Grid, statCell(key, b.Stats[key]))
	}
	return p, nil
}

// ParseIcons splits an icon string such as "#fire#holy" into keys.
func ParseIcons(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, "#") {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func iconGroup(s string) IconGroup {
	keys := ParseIcons(s)
	g := IconGroup{
		Icons:   make([]Icon, len(keys)),
		Columns: min(max(len(keys), 1), maxIconColumns),
	}
	for i, k := range keys {
		g.Icons[i] = iconFor(k)
	}
	return g
}

func iconFor(key string) Icon {
	return Icon{Key: key, Src: key + ".webp"}
}

func statCell(key, value string) StatCell {
	cell := StatCell{Key: key, Value: value}
	if physicalKeys[key] {
		cell.Label = strings.ToUpper(key[:1]) + key[1:]
	} else {
		icon := iconFor(key)
		cell.Icon = &icon
	}
	if statusKeys[key] {
		cell.Highlight = StatusHighlight(value)
	} else {
		cell.Highlight = PercentHighlight(value)
	}
	return cell
}

// PercentHighlight classifies a damage negation value such as "+25%".
func PercentHighlight(val string) Highlight {
	if val == "+0%" {
		return HighlightNone
	}
	num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(val), "%"))
	if err != nil {
		return HighlightNone
	}
	positive := strings.Contains(val, "+")
	switch {
	case num >= 25 && positive:
		return HighlightStrongWeakness
	case num >= 10 && positive:
		return HighlightWeakness
	case num <= -30:
		return HighlightStrongResist
	case num <= -10:
		return HighlightResistance
	}
	return HighlightNone
}

// StatusHighlight classifies a status buildup threshold.
func StatusHighlight(val string) Highlight {
	switch val {
	case "154":
		return HighlightStatusLow
	case "252":
		return HighlightStatusMedium
	case "541":
		return HighlightStatusHigh
	case "Immune":
		return HighlightImmune
	}
	return HighlightNone
}
