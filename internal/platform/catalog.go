package platform

import (
	"errors"
	"fmt"
	"strings"
)

// Platform names one of the fixed social destinations.
type Platform string

const (
	Twitter   Platform = "twitter"
	Pinterest Platform = "pinterest"
	Instagram Platform = "instagram"
	LinkedIn  Platform = "linkedin"
	Reddit    Platform = "reddit"
)

var ErrUnknownPlatform = errors.New("unknown platform")

// Spec holds the content constraints of a platform.
type Spec struct {
	Platform         Platform `json:"platform"`
	MaxChars         int      `json:"max_chars"`
	ImageAspectRatio string   `json:"image_ratio"`
	HashtagLimit     int      `json:"hashtag_limit"`
}

// order determines output ordering of every batch.
var order = []Platform{Twitter, Pinterest, Instagram, LinkedIn, Reddit}

var specs = map[Platform]Spec{
	Twitter:   {Platform: Twitter, MaxChars: 280, ImageAspectRatio: "16:9", HashtagLimit: 2},
	Pinterest: {Platform: Pinterest, MaxChars: 500, ImageAspectRatio: "2:3", HashtagLimit: 20},
	Instagram: {Platform: Instagram, MaxChars: 2200, ImageAspectRatio: "1:1", HashtagLimit: 30},
	LinkedIn:  {Platform: LinkedIn, MaxChars: 3000, ImageAspectRatio: "1.91:1", HashtagLimit: 3},
	Reddit:    {Platform: Reddit, MaxChars: 40000, ImageAspectRatio: "4:3", HashtagLimit: 0},
}

// All returns the supported platforms in catalog order.
func All() []Platform {
	out := make([]Platform, len(order))
	copy(out, order)
	return out
}

// Lookup returns the spec for p.
func Lookup(p Platform) (Spec, error) {
	spec, ok := specs[p]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, string(p))
	}
	return spec, nil
}

// MustLookup is Lookup for callers that only ever pass catalog platforms.
func MustLookup(p Platform) Spec {
	spec, err := Lookup(p)
	if err != nil {
		panic(err)
	}
	return spec
}

// Parse maps a case-insensitive name onto a Platform.
func Parse(name string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(name)))
	if _, err := Lookup(p); err != nil {
		return "", err
	}
	return p, nil
}

func (p Platform) String() string {
	return string(p)
}
