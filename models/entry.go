package models

// FeedEntry is one item from a content feed. Feed sources build it once
// and nothing downstream modifies it.
type FeedEntry struct {
	TargetURL     string `json:"url" yaml:"url"`
	Title         string `json:"title" yaml:"title"`
	IsPinned      bool   `json:"pinned,omitempty" yaml:"pinned,omitempty"`
	IsSelfContent bool   `json:"self,omitempty" yaml:"self,omitempty"`
	IsRestricted  bool   `json:"restricted,omitempty" yaml:"restricted,omitempty"`
}
