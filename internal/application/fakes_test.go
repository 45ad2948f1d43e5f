package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/viralforge/view-reward-engine/internal/domain"
)

type videoState struct {
	count         uint64
	totalLoggedIn uint64
	totalAll      uint64
	lastMilestone uint64
	version       uint64
	seen          map[string]bool
}

type fakeViewCounter struct {
	mu      sync.Mutex
	version uint64
	videos  map[string]*videoState
}

func newFakeViewCounter() *fakeViewCounter {
	return &fakeViewCounter{version: 1, videos: make(map[string]*videoState)}
}

func (f *fakeViewCounter) state(videoID string) *videoState {
	st, ok := f.videos[videoID]
	if !ok {
		st = &videoState{version: f.version, seen: make(map[string]bool)}
		f.videos[videoID] = st
	}
	return st
}

func (f *fakeViewCounter) TrackView(_ context.Context, videoID, userID string, isLoggedIn bool) (*uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := f.state(videoID)
	st.totalAll++
	if !isLoggedIn {
		return nil, nil
	}
	if st.version != f.version {
		st.count = 0
		st.version = f.version
	}
	if st.seen[userID] {
		return nil, nil
	}
	st.seen[userID] = true
	st.totalLoggedIn++
	st.count++
	c := st.count
	return &c, nil
}

func (f *fakeViewCounter) GetViewCount(_ context.Context, videoID string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(videoID).count, nil
}

func (f *fakeViewCounter) GetLastMilestone(_ context.Context, videoID string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(videoID).lastMilestone, nil
}

func (f *fakeViewCounter) SetLastMilestone(_ context.Context, videoID string, milestone uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state(videoID).lastMilestone = milestone
	return nil
}

func (f *fakeViewCounter) GetTotalCountLoggedIn(_ context.Context, videoID string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(videoID).totalLoggedIn, nil
}

func (f *fakeViewCounter) GetTotalCountAll(_ context.Context, videoID string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state(videoID).totalAll, nil
}

func (f *fakeViewCounter) GetBulkStats(_ context.Context, videoIDs []string) (map[string]domain.VideoStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]domain.VideoStats, len(videoIDs))
	for _, id := range videoIDs {
		st := f.state(id)
		out[id] = domain.VideoStats{
			Count:              st.count,
			TotalCountLoggedIn: st.totalLoggedIn,
			TotalCountAll:      st.totalAll,
			LastMilestone:      st.lastMilestone,
		}
	}
	return out, nil
}

type fakeConfigStore struct {
	mu     sync.Mutex
	cfg    domain.RewardConfig
	getErr error
	gets   int
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{cfg: domain.DefaultRewardConfig()}
}

func (f *fakeConfigStore) Get(_ context.Context) (domain.RewardConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return domain.RewardConfig{}, f.getErr
	}
	return f.cfg, nil
}

func (f *fakeConfigStore) getCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

func (f *fakeConfigStore) Update(_ context.Context, cfg domain.RewardConfig) (domain.RewardConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg.ConfigVersion = f.cfg.ConfigVersion + 1
	f.cfg = cfg
	return cfg, nil
}

type fakeHistoryStore struct {
	mu             sync.Mutex
	videoViews     map[string][]domain.ViewRecord
	userViews      map[string][]domain.ViewRecord
	userRewards    map[string][]domain.RewardRecord
	creatorRewards map[string][]domain.RewardRecord
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{
		videoViews:     make(map[string][]domain.ViewRecord),
		userViews:      make(map[string][]domain.ViewRecord),
		userRewards:    make(map[string][]domain.RewardRecord),
		creatorRewards: make(map[string][]domain.RewardRecord),
	}
}

func (f *fakeHistoryStore) RecordView(_ context.Context, rec domain.ViewRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.videoViews[rec.VideoID] = append(f.videoViews[rec.VideoID], rec)
	f.userViews[rec.UserID] = append(f.userViews[rec.UserID], rec)
}

func (f *fakeHistoryStore) RecordReward(_ context.Context, creatorID string, rec domain.RewardRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userRewards[creatorID] = append(f.userRewards[creatorID], rec)
	f.creatorRewards[creatorID] = append(f.creatorRewards[creatorID], rec)
}

func (f *fakeHistoryStore) VideoViews(_ context.Context, videoID string, limit int) ([]domain.ViewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capViews(f.videoViews[videoID], limit), nil
}

func (f *fakeHistoryStore) UserViews(_ context.Context, userID string, limit int) ([]domain.ViewRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capViews(f.userViews[userID], limit), nil
}

func (f *fakeHistoryStore) UserRewards(_ context.Context, userID string, limit int) ([]domain.RewardRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capRewards(f.userRewards[userID], limit), nil
}

func (f *fakeHistoryStore) CreatorRewards(_ context.Context, creatorID string, limit int) ([]domain.RewardRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capRewards(f.creatorRewards[creatorID], limit), nil
}

func capViews(items []domain.ViewRecord, limit int) []domain.ViewRecord {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func capRewards(items []domain.RewardRecord, limit int) []domain.RewardRecord {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

type fakeFraudGate struct {
	mu         sync.Mutex
	bans       map[string]bool
	windows    map[string]int
	checkCalls int
}

func newFakeFraudGate() *fakeFraudGate {
	return &fakeFraudGate{bans: make(map[string]bool), windows: make(map[string]int)}
}

func (f *fakeFraudGate) CheckFraudPatterns(_ context.Context, creatorID string, _ int, _ time.Duration) domain.FraudCheck {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkCalls++
	f.windows[creatorID]++
	if f.bans[creatorID] {
		return domain.FraudCheckSuspicious
	}
	return domain.FraudCheckClean
}

func (f *fakeFraudGate) IsShadowBanned(_ context.Context, creatorID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bans[creatorID], nil
}

func (f *fakeFraudGate) ShadowBan(_ context.Context, creatorID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans[creatorID] = true
	return nil
}

func (f *fakeFraudGate) RemoveShadowBan(_ context.Context, creatorID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bans, creatorID)
	return nil
}

func (f *fakeFraudGate) windowSize(creatorID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows[creatorID]
}

type fakeUserVerifier struct {
	mu           sync.Mutex
	unregistered map[string]bool
}

func newFakeUserVerifier() *fakeUserVerifier {
	return &fakeUserVerifier{unregistered: make(map[string]bool)}
}

func (f *fakeUserVerifier) IsRegisteredUser(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.unregistered[userID], nil
}

type fakeRateSource struct {
	mu    sync.Mutex
	rate  float64
	err   error
	calls int
}

func (f *fakeRateSource) GetBtcInrRate(_ context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

type transfer struct {
	creatorID string
	amountE8s uint64
	token     domain.RewardToken
	memo      string
}

type fakeLedger struct {
	mu        sync.Mutex
	transfers []transfer
	txID      string
	failErr   error
}

func (f *fakeLedger) IsRegisteredUser(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (f *fakeLedger) TransferReward(_ context.Context, creatorID string, amountE8s uint64, token domain.RewardToken, memo string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return "", f.failErr
	}
	f.transfers = append(f.transfers, transfer{creatorID: creatorID, amountE8s: amountE8s, token: token, memo: memo})
	return f.txID, nil
}

func (f *fakeLedger) transferCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transfers)
}

func (f *fakeLedger) lastTransfer() transfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transfers[len(f.transfers)-1]
}

type publishedEvent struct {
	eventType    string
	payload      []byte
	partitionKey string
}

type fakeAnalytics struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *fakeAnalytics) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{eventType: eventType, payload: payload, partitionKey: partitionKey})
	return nil
}

func (f *fakeAnalytics) countByType(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e.eventType == eventType {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent map[string][][]byte
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[string][][]byte)}
}

func (f *fakeNotifier) Send(_ context.Context, userID string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID] = append(f.sent[userID], payload)
	return nil
}

func (f *fakeNotifier) sentTo(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[userID])
}

// waitFor polls until the condition holds, for asserting detached fan-out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}
