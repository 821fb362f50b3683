// Package player drives an embedded video player over the shared playlist.
package player

import "regexp"

var youtubeRe = regexp.MustCompile(`^.*(youtu.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// YouTubeID returns the 11-character video id in url, or "" when url is not
// a recognised YouTube link.
func YouTubeID(url string) string {
	m := youtubeRe.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return ""
	}
	return m[2]
}
