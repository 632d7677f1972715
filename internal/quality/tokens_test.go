package quality

import "testing"

func TestDetectResolution(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"explicit 2160p", "Movie.Name.2024.2160p.WEB-DL", "2160p"},
		{"4k token", "Movie Name 4K UHD Remux", "2160p"},
		{"1080p", "Movie.Name.1080p.BluRay.x264", "1080p"},
		{"fhd alias", "Movie Name FHD WEBRip", "1080p"},
		{"720p", "Movie.720p.HDTV", "720p"},
		{"both tiers reports higher", "Movie.2160p.Upscaled.From.1080p", "2160p"},
		{"no token", "Movie Name Directors Cut", ""},
		{"4k inside longer token does not match", "Movie.4kids.Edition", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectResolution(normalize(tt.text)); got != tt.expected {
				t.Errorf("detectResolution(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		excluded bool
	}{
		{"cam release", "Movie.2024.2160p.CAM.x264", true},
		{"hdcam", "Movie 2024 HDCAM", true},
		{"telesync word", "Movie.2024.TELESYNC", true},
		{"ts token", "Movie.2024.TS.x264", true},
		{"screener", "Movie.2024.DVDSCR", true},
		{"substring pattern", "Movie 2024 hd-ts rip", true},
		{"dts audio must not trip ts", "Movie.2024.2160p.WEB-DL.DTS.x265", false},
		{"clean web-dl", "Movie.2024.2160p.WEB-DL.Atmos", false},
		{"bluray remux", "Movie.2024.2160p.REMUX.BluRay", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isExcluded(tt.text); got != tt.excluded {
				t.Errorf("isExcluded(%q) = %v, want %v", tt.text, got, tt.excluded)
			}
		})
	}
}

func TestDetectSource(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"remux", "Movie.2160p.REMUX", "REMUX"},
		{"remux beats web", "Movie.2160p.BluRay.REMUX.WEB", "REMUX"},
		{"web-dl with dash", "Movie.2160p.WEB-DL.DDP5.1", "WEB-DL"},
		{"webdl joined", "Movie 2160p WEBDL", "WEB-DL"},
		{"webrip", "Movie.2160p.WEBRip", "WEBRip"},
		{"bare web", "Movie.2160p.WEB.H264", "WEB"},
		{"bluray dotted", "Movie.2160p.Blu-Ray.HEVC", "BluRay"},
		{"no source tag", "Movie.2160p.x265", ""},
		{"web inside longer token", "Movie.2160p.cobweb.edition", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectSource(normalize(tt.text)); got != tt.expected {
				t.Errorf("detectSource(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestDetectAudio(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		expected     string
		expectedRank int
	}{
		{"atmos wins over truehd", "Movie.TrueHD.Atmos.7.1", "Atmos", 100},
		{"truehd", "Movie.TrueHD.5.1", "TrueHD", 90},
		{"dts-hd ma with separators", "Movie.DTS-HD.MA.5.1", "DTS-HD MA", 85},
		{"ddp", "Movie.DDP.5.1", "DD+", 60},
		{"eac3", "Movie.EAC3.5.1", "DD+", 60},
		{"plain dts", "Movie.DTS.5.1", "DTS", 50},
		{"aac", "Movie.AAC.2.0", "AAC", 20},
		{"nothing", "Movie.2160p.WEB-DL", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codec, rank := detectAudio(normalize(tt.text))
			if codec != tt.expected || rank != tt.expectedRank {
				t.Errorf("detectAudio(%q) = (%q, %d), want (%q, %d)", tt.text, codec, rank, tt.expected, tt.expectedRank)
			}
		})
	}
}

func TestDetectVideoCodecWordBoundary(t *testing.T) {
	// A codec abbreviation embedded inside an unrelated longer token must
	// not match.
	if got := detectVideoCodec(normalize("Movie.x265.HEVC")); got != "HEVC" {
		t.Errorf("expected HEVC, got %q", got)
	}
	if got := detectVideoCodec(normalize("Movie.av1")); got != "AV1" {
		t.Errorf("expected AV1, got %q", got)
	}
	if got := detectVideoCodec(normalize("Movie.caravan.2024")); got != "" {
		t.Errorf("expected no codec inside longer token, got %q", got)
	}
}

func TestDetectHDR(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"dolby vision abbreviation", "Movie.2160p.DV.HDR10", true},
		{"dolby vision words", "Movie.2160p.Dolby.Vision", true},
		{"hdr10plus", "Movie.2160p.HDR10+.WEB-DL", true},
		{"plain hdr", "Movie.2160p.HDR", true},
		{"dv not matched inside dvdrip", "Movie.1080p.DVDRip", false},
		{"sdr", "Movie.2160p.WEB-DL.SDR", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectHDR(normalize(tt.text)); got != tt.expected {
				t.Errorf("detectHDR(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}
