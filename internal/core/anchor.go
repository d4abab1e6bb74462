package core

import "errors"

const (
	AnchorConsequence AnchorKind = "consequence"
	AnchorPositive    AnchorKind = "positive"
)

type (
	AnchorKind string

	// AnchorTrigger is the monetary threshold a memory anchor fires on: the
	// current period's expense total for Category reaching ThresholdCents.
	AnchorTrigger struct {
		Category       string `json:"category"`
		ThresholdCents int64  `json:"threshold_cents"`
	}

	// MemoryAnchor is a persisted correlation between a past month's dominant
	// spending category and its savings outcome. Anchors are append-only and
	// unique per period; the archivist owns their read-modify-write cycle.
	MemoryAnchor struct {
		Period  Month         `json:"period"`
		Kind    AnchorKind    `json:"type"`
		Trigger AnchorTrigger `json:"trigger"`
		Insight string        `json:"insight"`
	}
)

var ErrInvalidAnchor = errors.New("invalid memory anchor")

func (k AnchorKind) IsValid() bool {
	return k == AnchorConsequence || k == AnchorPositive
}

func (a MemoryAnchor) Validate() error {
	if a.Period.IsZero() || !a.Kind.IsValid() || a.Trigger.Category == "" || a.Insight == "" {
		return ErrInvalidAnchor
	}
	return nil
}

// HasAnchorFor reports whether the list already holds an anchor for the
// period. The archival pass never re-derives an anchored period.
func HasAnchorFor(anchors []MemoryAnchor, period Month) bool {
	for _, a := range anchors {
		if a.Period == period {
			return true
		}
	}
	return false
}
