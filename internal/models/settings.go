package models

// RefreshSettings is the persisted auto-refresh preference. Zero minutes
// disables periodic refresh entirely.
type RefreshSettings struct {
	IntervalMinutes int `json:"interval_minutes"`
}

// FeedSettings points the calendar at an external iCal feed.
type FeedSettings struct {
	URL     string `json:"url"`
	Enabled bool   `json:"enabled"`
}
