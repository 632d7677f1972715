package quality

import (
	"github.com/samber/lo"

	"github.com/zaratek/streamscout/internal/models"
)

// Classify runs the strict five-stage filter pipeline over the candidate
// streams of a single provider and produces the availability verdict.
//
// Every stage narrows the candidate set; if any stage leaves nothing, the
// verdict is a definitive "unavailable" with no partial credit. Ambiguous
// titles that match no recognized tokens are excluded rather than guessed
// at, so the classifier is biased toward false negatives by construction.
func Classify(records []models.StreamRecord) models.AvailabilityStatus {
	if len(records) == 0 {
		return unavailable()
	}

	// Stage 1: drop capture-class and low-quality releases. This runs
	// before any resolution check so a "2160p CAM" never reaches the gate.
	candidates := lo.Filter(records, func(r models.StreamRecord, _ int) bool {
		return !isExcluded(r.Text())
	})
	if len(candidates) == 0 {
		return unavailable()
	}

	// Stage 2: keep only the top resolution tier.
	top := lo.Filter(candidates, func(r models.StreamRecord, _ int) bool {
		return detectResolution(normalize(r.Text())) == "2160p"
	})
	if len(top) == 0 {
		return unavailable()
	}

	// Stage 3: require an explicit, recognized high-quality source tag.
	confirmed := lo.Filter(top, func(r models.StreamRecord, _ int) bool {
		return detectSource(normalize(r.Text())) != ""
	})
	if len(confirmed) == 0 {
		return unavailable()
	}

	// Stage 4: prefer high-fidelity audio, but fall back to the full
	// source-confirmed set rather than rejecting.
	final := lo.Filter(confirmed, func(r models.StreamRecord, _ int) bool {
		_, rank := detectAudio(normalize(r.Text()))
		return rank >= highFidelityRank
	})
	if len(final) == 0 {
		final = confirmed
	}

	// Stage 5: aggregate over the final candidate set.
	var (
		sources      []string
		bestRes      string
		bestResPrio  int
		bestAudio    string
		bestAudioRnk int
		videoCodec   string
		hasHDR       bool
	)
	for _, r := range final {
		text := normalize(r.Text())

		if src := detectSource(text); src != "" {
			sources = append(sources, src)
		}
		if res := detectResolution(text); resolutionPriority[res] > bestResPrio {
			bestRes = res
			bestResPrio = resolutionPriority[res]
		}
		if codec, rank := detectAudio(text); rank > bestAudioRnk {
			bestAudio = codec
			bestAudioRnk = rank
		}
		if videoCodec == "" {
			videoCodec = detectVideoCodec(text)
		}
		if detectHDR(text) {
			hasHDR = true
		}
	}

	sources = lo.Uniq(sources)
	if len(sources) == 0 || bestResPrio < minAcceptablePriority {
		return unavailable()
	}

	return models.AvailabilityStatus{
		Available:   true,
		StreamCount: len(final),
		BestQuality: bestRes,
		Sources:     sources,
		AudioCodec:  bestAudio,
		VideoCodec:  videoCodec,
		HasHDR:      hasHDR,
	}
}

func unavailable() models.AvailabilityStatus {
	return models.AvailabilityStatus{Available: false}
}
