package caption

import (
	"fmt"
	"regexp"
	"strings"

	"legenda/internal/services"
)

// Style controls burn-in subtitle rendering. Zero values mean "use default";
// every field may be overridden independently.
type Style struct {
	FontName        string
	FontSize        int
	FontColor       string
	BackgroundColor string
	BorderWidth     int
	BorderColor     string
	MarginVertical  int
}

// Burn-in defaults: white 18px Arial on a semi-transparent black box with a
// thin outline, lifted 20px off the bottom edge.
const (
	defaultFontName       = "Arial"
	defaultFontSize       = 18
	defaultFontColor      = "ffffff"
	defaultBackground     = "80000000"
	defaultBorderWidth    = 1
	defaultMarginVertical = 20
)

var hexColorPattern = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// forceStyle renders the ASS force_style clause list for the subtitle filter.
func (s Style) forceStyle() (string, error) {
	fontName := s.FontName
	if strings.TrimSpace(fontName) == "" {
		fontName = defaultFontName
	}
	fontSize := s.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	borderWidth := s.BorderWidth
	if borderWidth <= 0 {
		borderWidth = defaultBorderWidth
	}
	margin := s.MarginVertical
	if margin <= 0 {
		margin = defaultMarginVertical
	}

	primary, err := assColor(s.FontColor, defaultFontColor)
	if err != nil {
		return "", err
	}

	clauses := []string{
		fmt.Sprintf("FontName=%s", fontName),
		fmt.Sprintf("FontSize=%d", fontSize),
		fmt.Sprintf("PrimaryColour=%s", primary),
	}

	if strings.TrimSpace(s.BackgroundColor) != "" {
		back, err := assColor(s.BackgroundColor, "")
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("BackColour=%s", back))
	} else {
		clauses = append(clauses, fmt.Sprintf("BackColour=&H%s&", defaultBackground))
	}

	clauses = append(clauses, "BorderStyle=1", fmt.Sprintf("BorderWidth=%d", borderWidth))

	if strings.TrimSpace(s.BorderColor) != "" {
		outline, err := assColor(s.BorderColor, "")
		if err != nil {
			return "", err
		}
		clauses = append(clauses, fmt.Sprintf("OutlineColour=%s", outline))
	}

	clauses = append(clauses, fmt.Sprintf("MarginV=%d", margin))
	return strings.Join(clauses, ","), nil
}

// assColor converts a six-hex-digit RGB color into the &HBBGGRR& form the
// subtitle filter expects. Empty input falls back to def (already RGB).
func assColor(color, def string) (string, error) {
	value := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if value == "" {
		value = def
	}
	if !hexColorPattern.MatchString(value) {
		return "", services.Wrap(services.ErrValidation, "caption", "parse color",
			fmt.Sprintf("color %q is not a six-digit hex value", color), nil)
	}
	value = strings.ToLower(value)
	// RGB to BGR byte order.
	bgr := value[4:6] + value[2:4] + value[0:2]
	return fmt.Sprintf("&H%s&", bgr), nil
}
