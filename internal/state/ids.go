package state

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 7

var (
	validID   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	wallRoute = regexp.MustCompile(`^#?/wall/([a-zA-Z0-9_-]+)`)
)

// NewWallID returns an id of the form wall_<unix millis>_<7 random chars>.
func NewWallID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]
	return fmt.Sprintf("wall_%d_%s", now.UnixMilli(), suffix)
}

// ValidID reports whether id is safe to embed in a route or URL path.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// WallRoute is the in-app route for a wall.
func WallRoute(id string) string {
	return "#/wall/" + id
}

// ParseWallRoute extracts the wall id from a route like "#/wall/<id>".
// Anything else is the home screen and returns false.
func ParseWallRoute(route string) (string, bool) {
	m := wallRoute.FindStringSubmatch(strings.TrimSpace(route))
	if m == nil {
		return "", false
	}
	return m[1], true
}
