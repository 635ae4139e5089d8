package markdown

import (
	"regexp"
	"strings"
)

// asteriskBullet matches a line whose leading content is a "* " list marker.
var asteriskBullet = regexp.MustCompile(`(?m)^[ \t]*\*[ \t]+`)

// emphasisMarkers are removed longest first so "**" never leaves a stray "*".
var emphasisMarkers = strings.NewReplacer("**", "", "*", "", "__", "", "_", "")

// Normalize strips markdown emphasis from model output and rewrites
// asterisk bullets as hyphen bullets.
//
// Bullets are rewritten before emphasis is stripped; otherwise "* item"
// would lose its marker and come out as " item".
func Normalize(text string) string {
	text = asteriskBullet.ReplaceAllString(text, "- ")
	text = emphasisMarkers.Replace(text)
	return strings.TrimSpace(text)
}
