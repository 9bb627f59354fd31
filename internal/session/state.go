package session

// State holds the choices made in the interactive form, restored the next
// time it opens.
type State struct {
	DeckPath   string `json:"deck_path,omitempty"`
	Engine     string `json:"engine,omitempty"`
	Font       string `json:"font,omitempty"`
	HebrewRTL  bool   `json:"hebrew_rtl"`
	SkipCached bool   `json:"skip_cached"`
	Jobs       int    `json:"jobs,omitempty"`
}

// Default returns the state used before anything was saved.
func Default() State {
	return State{
		Engine:     "pango",
		SkipCached: true,
	}
}
