package domain

// WatchedEvent is the already-validated "video duration watched" event the
// engine consumes. Transport parsing and auth live with the ingestion layer.
type WatchedEvent struct {
	UserID            string  `json:"user_id"`
	PublisherUserID   string  `json:"publisher_user_id"`
	VideoID           string  `json:"video_id"`
	IsLoggedIn        bool    `json:"is_logged_in"`
	AbsoluteWatched   float64 `json:"absolute_watched"`
	PercentageWatched float64 `json:"percentage_watched"`
}

func (e WatchedEvent) Validate() error {
	if e.UserID == "" || e.PublisherUserID == "" || e.VideoID == "" {
		return ErrInvalidInput
	}
	return nil
}

// ViewRecord is an immutable history entry for one unique view.
type ViewRecord struct {
	UserID            string  `json:"user_id"`
	VideoID           string  `json:"video_id"`
	Timestamp         int64   `json:"timestamp"`
	DurationWatched   float64 `json:"duration_watched"`
	PercentageWatched float64 `json:"percentage_watched"`
}

// RewardRecord is an immutable history entry for one milestone payout.
type RewardRecord struct {
	VideoID             string  `json:"video_id"`
	Milestone           uint64  `json:"milestone"`
	RewardAmountInToken float64 `json:"reward_amount_in_token"`
	RewardAmountInr     float64 `json:"reward_amount_inr"`
	Timestamp           int64   `json:"timestamp"`
	TxID                string  `json:"tx_id,omitempty"`
	ViewCount           uint64  `json:"view_count"`
}

// VideoStats is the read-side projection of one video's counter hash.
// Count resets on config changes; the two totals never do.
type VideoStats struct {
	Count              uint64 `json:"count"`
	TotalCountLoggedIn uint64 `json:"total_count_loggedin"`
	TotalCountAll      uint64 `json:"total_count_all"`
	LastMilestone      uint64 `json:"last_milestone"`
}

// FraudCheck is the synchronous verdict of a fraud-pattern check.
type FraudCheck string

const (
	FraudCheckClean      FraudCheck = "clean"
	FraudCheckSuspicious FraudCheck = "suspicious"
)
