package quality

import (
	"regexp"
	"strings"
)

// Token tables driving classification. These are deliberately explicit and
// fixed so that "best codec found" and tier gating stay deterministic
// regardless of the order streams arrive in.

// Resolution tiers in descending priority. The highest tier is the only one
// that passes the resolution gate; the priority also feeds the final
// minimum-quality check.
var resolutionPriority = map[string]int{
	"2160p": 4,
	"1080p": 3,
	"720p":  2,
	"480p":  1,
}

// minAcceptablePriority is the floor for an "available" verdict.
const minAcceptablePriority = 4

// resolutionTokens maps a canonical tier to the tokens that signal it.
// Matched against the normalized name+title text.
var resolutionTokens = map[string][]string{
	"2160p": {"2160p", "4k", "uhd"},
	"1080p": {"1080p", "fhd"},
	"720p":  {"720p"},
	"480p":  {"480p", "576p", "sd"},
}

// excludedSourcePattern rejects capture-class releases outright. Word-boundary
// match over the raw name+title, case-insensitive, so "TS" never fires inside
// an unrelated token.
var excludedSourcePattern = regexp.MustCompile(`(?i)\b(CAM|CAMRIP|HDCAM|HQCAM|TS|HDTS|TELESYNC|TC|TELECINE|SCR|SCREENER|DVDSCR|WORKPRINT)\b`)

// lowQualityPatterns are substring indicators that survive separator mangling
// and therefore cannot be caught by word-boundary matching alone.
var lowQualityPatterns = []string{
	"cam-rip",
	"cam rip",
	"hd-cam",
	"hd cam",
	"hd-ts",
	"hd ts",
	"hd-tc",
	"telesync",
	"telecine",
}

// sourceTokens maps a canonical high-quality source tag to its token
// variants. Only streams carrying one of these pass the source gate.
// Variants are expressed in normalized form (separators collapsed to spaces).
var sourceTokens = []struct {
	Canonical string
	Variants  []string
}{
	{"REMUX", []string{"remux"}},
	{"BluRay", []string{"bluray", "blu ray", "bdrip", "bd rip"}},
	{"WEB-DL", []string{"web dl", "webdl"}},
	{"WEBRip", []string{"webrip", "web rip"}},
	{"WEB", []string{"web"}},
}

// audioRanks is the fixed audio codec priority table, highest first.
// Rank values are spaced so new formats can slot in without renumbering.
var audioRanks = []struct {
	Canonical string
	Rank      int
	Variants  []string
}{
	{"Atmos", 100, []string{"atmos"}},
	{"TrueHD", 90, []string{"truehd", "true hd"}},
	{"DTS-HD MA", 85, []string{"dts hd ma", "dtshd ma"}},
	{"DTS-X", 80, []string{"dts x", "dtsx"}},
	{"DTS-HD", 75, []string{"dts hd", "dtshd"}},
	{"DD+", 60, []string{"dd+", "ddp", "eac3", "e ac3"}},
	{"DTS", 50, []string{"dts"}},
	{"AC3", 40, []string{"ac3", "dd"}},
	{"AAC", 20, []string{"aac"}},
	{"MP3", 10, []string{"mp3"}},
}

// highFidelityRank is the cutoff for the lossless/high-bitrate audio
// preference stage. DD+ and up qualify.
const highFidelityRank = 60

// videoCodecTokens maps canonical video codecs to token variants,
// checked in order.
var videoCodecTokens = []struct {
	Canonical string
	Variants  []string
}{
	{"HEVC", []string{"hevc", "h265", "h 265", "x265"}},
	{"AVC", []string{"avc", "h264", "h 264", "x264"}},
	{"AV1", []string{"av1"}},
	{"VP9", []string{"vp9"}},
	{"XviD", []string{"xvid"}},
}

// hdrTokens signal HDR or Dolby Vision mastering.
var hdrTokens = []string{"dv", "dovi", "dolby vision", "hdr10+", "hdr10", "hdr"}

// normalize lowercases the text and collapses the separators release names
// use interchangeably (dot, dash, underscore) into spaces, so token variants
// only need to be written once.
func normalize(text string) string {
	lower := strings.ToLower(text)
	replaced := strings.NewReplacer(".", " ", "-", " ", "_", " ", "[", " ", "]", " ", "(", " ", ")", " ").Replace(lower)
	return " " + strings.Join(strings.Fields(replaced), " ") + " "
}

// hasToken reports whether normalized text contains the variant as a whole
// word (or whole word sequence). Both sides must already be normalized.
func hasToken(normalized, variant string) bool {
	return strings.Contains(normalized, " "+variant+" ")
}

// isExcluded reports whether the raw text matches a capture-class source
// token or a low-quality substring pattern.
func isExcluded(raw string) bool {
	if excludedSourcePattern.MatchString(raw) {
		return true
	}
	lower := strings.ToLower(raw)
	for _, p := range lowQualityPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// detectResolution returns the highest canonical tier signalled by the text,
// or "" when no resolution token is present.
func detectResolution(normalized string) string {
	best := ""
	bestPriority := 0
	for tier, variants := range resolutionTokens {
		for _, v := range variants {
			if hasToken(normalized, v) && resolutionPriority[tier] > bestPriority {
				best = tier
				bestPriority = resolutionPriority[tier]
			}
		}
	}
	return best
}

// detectSource returns the canonical source tag for the text, or "" when no
// recognized high-quality source indicator is present. Tokens are ordered
// most-specific first so REMUX wins over the bare WEB fallback.
func detectSource(normalized string) string {
	for _, src := range sourceTokens {
		for _, v := range src.Variants {
			if hasToken(normalized, v) {
				return src.Canonical
			}
		}
	}
	return ""
}

// detectAudio returns the canonical audio codec and its rank, or ("", 0)
// when nothing matches. The table is ordered so the first hit is the
// highest-priority codec present.
func detectAudio(normalized string) (string, int) {
	for _, a := range audioRanks {
		for _, v := range a.Variants {
			if hasToken(normalized, v) {
				return a.Canonical, a.Rank
			}
		}
	}
	return "", 0
}

// detectVideoCodec returns the canonical video codec, or "".
func detectVideoCodec(normalized string) string {
	for _, c := range videoCodecTokens {
		for _, v := range c.Variants {
			if hasToken(normalized, v) {
				return c.Canonical
			}
		}
	}
	return ""
}

// detectHDR reports whether the text signals any HDR variant.
func detectHDR(normalized string) bool {
	for _, t := range hdrTokens {
		if hasToken(normalized, t) {
			return true
		}
	}
	return false
}
