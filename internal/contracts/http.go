// Package contracts holds the wire-level request and response shapes of the
// public HTTP API.
package contracts

import "github.com/viralforge/view-reward-engine/internal/domain"

type VideoWatchedRequest struct {
	UserID            string  `json:"user_id"`
	PublisherUserID   string  `json:"publisher_user_id"`
	VideoID           string  `json:"video_id"`
	IsLoggedIn        bool    `json:"is_logged_in"`
	AbsoluteWatched   float64 `json:"absolute_watched"`
	PercentageWatched float64 `json:"percentage_watched"`
}

type UpdateConfigRequest struct {
	RewardMode        domain.RewardMode  `json:"reward_mode"`
	ViewMilestone     uint64             `json:"view_milestone"`
	MinWatchDuration  float64            `json:"min_watch_duration"`
	FraudThreshold    int                `json:"fraud_threshold"`
	ShadowBanDuration uint64             `json:"shadow_ban_duration"`
	RewardToken       domain.RewardToken `json:"reward_token"`
}

type BulkStatsRequest struct {
	VideoIDs []string `json:"video_ids"`
}

type VideoStatsResponse struct {
	VideoID            string `json:"video_id"`
	ViewCount          uint64 `json:"view_count"`
	TotalCountLoggedIn uint64 `json:"total_count_loggedin"`
	TotalCountAll      uint64 `json:"total_count_all"`
	LastMilestone      uint64 `json:"last_milestone"`
	NextMilestoneAt    uint64 `json:"next_milestone_at,omitempty"`
}

type ViewCountResponse struct {
	VideoID   string `json:"video_id"`
	ViewCount uint64 `json:"view_count"`
}

type ViewHistoryResponse struct {
	Items []domain.ViewRecord `json:"items"`
	Count int                 `json:"count"`
}

type RewardHistoryResponse struct {
	Items []domain.RewardRecord `json:"items"`
	Count int                   `json:"count"`
}

type ShadowBanRequest struct {
	DurationSeconds uint64 `json:"duration_seconds,omitempty"`
}

type ShadowBanStatusResponse struct {
	CreatorID string `json:"creator_id"`
	Banned    bool   `json:"banned"`
}
