package storyboard

import "strings"

// Origin is the anchor point of a sprite's texture.
type Origin int

const (
	TopLeft Origin = iota
	TopCentre
	TopRight
	CentreLeft
	Centre
	CentreRight
	BottomLeft
	BottomCentre
	BottomRight
)

var originNames = []string{
	"TopLeft", "TopCentre", "TopRight",
	"CentreLeft", "Centre", "CentreRight",
	"BottomLeft", "BottomCentre", "BottomRight",
}

func (o Origin) String() string {
	if o < 0 || int(o) >= len(originNames) {
		return "Centre"
	}
	return originNames[o]
}

// ParseOrigin accepts the script names, the American spelling and numeric
// indices.
func ParseOrigin(s string) (Origin, bool) {
	s = strings.TrimSpace(s)
	norm := strings.ReplaceAll(s, "Center", "Centre")
	for i, name := range originNames {
		if strings.EqualFold(name, norm) {
			return Origin(i), true
		}
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '8' {
		return Origin(s[0] - '0'), true
	}
	return Centre, false
}

// Anchor returns the anchor as a fraction of the texture size, (0,0) being
// the top-left corner.
func (o Origin) Anchor() (fx, fy float64) {
	if o < 0 || int(o) >= len(originNames) {
		o = Centre
	}
	return float64(o%3) / 2, float64(o/3) / 2
}
