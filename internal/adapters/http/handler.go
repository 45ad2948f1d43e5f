package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/viralforge/view-reward-engine/internal/application"
	"github.com/viralforge/view-reward-engine/internal/contracts"
	"github.com/viralforge/view-reward-engine/internal/domain"
)

func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.service.GetConfig(r.Context())
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, cfg)
}

func (h *Handler) updateConfig(w http.ResponseWriter, r *http.Request) {
	var req contracts.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	updated, err := h.service.UpdateConfig(r.Context(), domain.RewardConfig{
		RewardMode:        req.RewardMode,
		ViewMilestone:     req.ViewMilestone,
		MinWatchDuration:  req.MinWatchDuration,
		FraudThreshold:    req.FraudThreshold,
		ShadowBanDuration: req.ShadowBanDuration,
		RewardToken:       req.RewardToken,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, updated)
}

func (h *Handler) videoWatched(w http.ResponseWriter, r *http.Request) {
	var req contracts.VideoWatchedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	err := h.service.ProcessVideoView(r.Context(), domain.WatchedEvent{
		UserID:            req.UserID,
		PublisherUserID:   req.PublisherUserID,
		VideoID:           req.VideoID,
		IsLoggedIn:        req.IsLoggedIn,
		AbsoluteWatched:   req.AbsoluteWatched,
		PercentageWatched: req.PercentageWatched,
	})
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeMessage(w, http.StatusAccepted, "event processed")
}

func (h *Handler) getVideoStats(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	entry, err := h.service.GetVideoStats(r.Context(), videoID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, statsResponse(entry))
}

func (h *Handler) getViewCount(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	count, err := h.service.GetViewCount(r.Context(), videoID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ViewCountResponse{VideoID: videoID, ViewCount: count})
}

func (h *Handler) bulkVideoStats(w http.ResponseWriter, r *http.Request) {
	var req contracts.BulkStatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
		return
	}
	entries, err := h.service.GetBulkVideoStats(r.Context(), req.VideoIDs)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	out := make([]contracts.VideoStatsResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, statsResponse(entry))
	}
	writeSuccess(w, http.StatusOK, out)
}

func statsResponse(entry application.VideoStatsEntry) contracts.VideoStatsResponse {
	return contracts.VideoStatsResponse{
		VideoID:            entry.VideoID,
		ViewCount:          entry.Stats.Count,
		TotalCountLoggedIn: entry.Stats.TotalCountLoggedIn,
		TotalCountAll:      entry.Stats.TotalCountAll,
		LastMilestone:      entry.Stats.LastMilestone,
		NextMilestoneAt:    entry.NextMilestoneAt,
	}
}

func (h *Handler) listVideoViews(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	items, err := h.service.GetVideoViews(r.Context(), videoID, queryLimit(r))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ViewHistoryResponse{Items: items, Count: len(items)})
}

func (h *Handler) listUserViews(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	items, err := h.service.GetUserViewHistory(r.Context(), userID, queryLimit(r))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ViewHistoryResponse{Items: items, Count: len(items)})
}

func (h *Handler) listUserRewards(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	items, err := h.service.GetUserRewardHistory(r.Context(), userID, queryLimit(r))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.RewardHistoryResponse{Items: items, Count: len(items)})
}

func (h *Handler) listCreatorRewards(w http.ResponseWriter, r *http.Request) {
	creatorID := chi.URLParam(r, "creator_id")
	items, err := h.service.GetCreatorRewardHistory(r.Context(), creatorID, queryLimit(r))
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.RewardHistoryResponse{Items: items, Count: len(items)})
}

func (h *Handler) shadowBanCreator(w http.ResponseWriter, r *http.Request) {
	creatorID := chi.URLParam(r, "creator_id")
	var req contracts.ShadowBanRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", err.Error(), requestIDFromContext(r.Context()))
			return
		}
	}
	err := h.service.ShadowBanCreator(r.Context(), creatorID, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeMessage(w, http.StatusOK, "creator shadow-banned")
}

func (h *Handler) removeShadowBan(w http.ResponseWriter, r *http.Request) {
	creatorID := chi.URLParam(r, "creator_id")
	if err := h.service.RemoveShadowBan(r.Context(), creatorID); err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeMessage(w, http.StatusOK, "shadow ban removed")
}

func (h *Handler) shadowBanStatus(w http.ResponseWriter, r *http.Request) {
	creatorID := chi.URLParam(r, "creator_id")
	banned, err := h.service.IsCreatorShadowBanned(r.Context(), creatorID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		writeError(w, status, code, msg, requestIDFromContext(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, contracts.ShadowBanStatusResponse{CreatorID: creatorID, Banned: banned})
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
