package transcoder

import (
	"fmt"
	"strings"
)

// Rendition describes one rung of the adaptive bitrate ladder.
type Rendition struct {
	Name         string
	Height       int
	VideoBitrate string
	MaxRate      string
	BufSize      string
	// Bandwidth is the peak bits per second advertised in the master
	// playlist, covering video, audio, and container overhead.
	Bandwidth int
}

// ladder lists the available rungs from largest to smallest. Widths
// are derived from each source's aspect ratio at encode time.
var ladder = []Rendition{
	{Name: "v0", Height: 1080, VideoBitrate: "5000k", MaxRate: "5350k", BufSize: "7500k", Bandwidth: 5500000},
	{Name: "v1", Height: 720, VideoBitrate: "2800k", MaxRate: "2996k", BufSize: "4200k", Bandwidth: 3200000},
	{Name: "v2", Height: 480, VideoBitrate: "1400k", MaxRate: "1498k", BufSize: "2100k", Bandwidth: 1700000},
}

// RenditionsFor selects the ladder rungs that do not exceed the source
// height, so a rendition never upscales. A source smaller than the
// lowest rung still gets that rung. Unknown dimensions get the full
// ladder.
func RenditionsFor(width, height int) []Rendition {
	if height <= 0 {
		return append([]Rendition(nil), ladder...)
	}

	var selected []Rendition
	for _, r := range ladder {
		if r.Height <= height {
			selected = append(selected, r)
		}
	}
	if len(selected) == 0 {
		selected = []Rendition{ladder[len(ladder)-1]}
	}
	return selected
}

// resolutionFor computes the encoded frame size for a rendition from
// the source aspect ratio, rounded to even like ffmpeg's scale=-2.
// Unknown source dimensions fall back to 16:9.
func resolutionFor(r Rendition, srcWidth, srcHeight int) (int, int) {
	if srcWidth <= 0 || srcHeight <= 0 {
		srcWidth, srcHeight = 16, 9
	}
	w := r.Height * srcWidth / srcHeight
	if w%2 != 0 {
		w++
	}
	return w, r.Height
}

// MasterPlaylist renders the top-level playlist referencing each
// rendition's variant playlist under its subdirectory.
func MasterPlaylist(renditions []Rendition) string {
	return MasterPlaylistWithSource(renditions, 0, 0)
}

// MasterPlaylistWithSource renders the master playlist with RESOLUTION
// attributes derived from the source dimensions.
func MasterPlaylistWithSource(renditions []Rendition, srcWidth, srcHeight int) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, r := range renditions {
		w, h := resolutionFor(r, srcWidth, srcHeight)
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d\n", r.Bandwidth, w, h)
		fmt.Fprintf(&b, "%s/index.m3u8\n", r.Name)
	}
	return b.String()
}
