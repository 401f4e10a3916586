package led

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	Red    Channel = iota // r
	Yellow                // y
	Green                 // g
	Blue                  // b
	Violet                // v

	numChannels = 5
)

// Channel identifies one of the five LED light channels.
type Channel int

type channelInfo struct {
	tag  byte
	name string
	hue  float64 // display hue in degrees
}

var channels = [numChannels]channelInfo{
	Red:    {'r', "red", 0},
	Yellow: {'y', "yellow", 50},
	Green:  {'g', "green", 125},
	Blue:   {'b', "blue", 225},
	Violet: {'v', "violet", 275},
}

// Channels returns all channels in index order.
func Channels() []Channel {
	return []Channel{Red, Yellow, Green, Blue, Violet}
}

// ParseChannel resolves a channel from its one letter tag ("r", "y", "g",
// "b", "v") or its full name. Matching is case-insensitive.
func ParseChannel(s string) (Channel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, ch := range channels {
		if s == ch.name || (len(s) == 1 && s[0] == ch.tag) {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown LED channel '%s'", s)
}

func (c Channel) Valid() bool {
	return c >= 0 && c < numChannels
}

// Index returns the position of the channel in calibration and mixing tables.
func (c Channel) Index() int {
	return int(c)
}

// Tag returns the one letter channel tag.
func (c Channel) Tag() string {
	if !c.Valid() {
		return "?"
	}
	return string(channels[c].tag)
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channels[c].name
}

// Color returns the display colour used for the channel in plots.
func (c Channel) Color() color.Color {
	if !c.Valid() {
		return color.Black
	}
	return colorful.Hsv(channels[c].hue, 1, 0.85)
}
