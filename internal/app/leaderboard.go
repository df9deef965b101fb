package app

import (
	"sort"
	"sync"
	"time"

	"quiz-service/internal/domain"
)

// LeaderboardHub fans out leaderboard snapshots to per-quiz subscribers.
type LeaderboardHub struct {
	// refreshMu serializes build-and-deliver so snapshots arrive in the order
	// they were built. It is always taken before mu.
	refreshMu sync.Mutex

	mu    sync.Mutex
	feeds map[int64]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{feeds: make(map[int64]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a subscriber and delivers initial as its first snapshot.
func (h *LeaderboardHub) Subscribe(quizID int64, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	h.mu.Lock()
	subs, ok := h.feeds[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.feeds[quizID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.feeds[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.feeds, quizID)
		}
	}
	return ch, cancel
}

// SubscribeWith builds the initial snapshot and registers the subscriber
// without letting a concurrent Refresh slip in between.
func (h *LeaderboardHub) SubscribeWith(quizID int64, build func() (domain.Leaderboard, error)) (<-chan domain.Leaderboard, func(), error) {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	lb, err := build()
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := h.Subscribe(quizID, lb)
	return ch, cancel, nil
}

// Refresh builds a snapshot and publishes it when the quiz has subscribers.
// Refreshes run one at a time, so the last snapshot delivered is the last built.
func (h *LeaderboardHub) Refresh(quizID int64, build func() (domain.Leaderboard, error)) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()
	if !h.HasSubscribers(quizID) {
		return nil
	}
	lb, err := build()
	if err != nil {
		return err
	}
	h.Publish(lb)
	return nil
}

// HasSubscribers reports whether anyone is watching the quiz.
func (h *LeaderboardHub) HasSubscribers(quizID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.feeds[quizID]) > 0
}

// Publish sends lb to every subscriber of its quiz without blocking.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.feeds[lb.QuizID] {
		select {
		case ch <- lb:
		default:
			// slow subscriber: replace the oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// buildLeaderboard groups attempts by student name. Entries are ordered by
// best score, then by who reached it first, then by name.
func buildLeaderboard(quizID int64, attempts []domain.Attempt, now time.Time) domain.Leaderboard {
	byName := make(map[string]*domain.LeaderboardEntry)
	for _, attempt := range attempts {
		entry, ok := byName[attempt.StudentName]
		if !ok {
			entry = &domain.LeaderboardEntry{
				StudentName:    attempt.StudentName,
				BestScore:      attempt.Score,
				TotalQuestions: attempt.TotalQuestions,
				BestScoreAt:    attempt.CompletedAt,
			}
			byName[attempt.StudentName] = entry
		}
		entry.Attempts++
		if attempt.Score > entry.BestScore ||
			(attempt.Score == entry.BestScore && attempt.CompletedAt.Before(entry.BestScoreAt)) {
			entry.BestScore = attempt.Score
			entry.TotalQuestions = attempt.TotalQuestions
			entry.BestScoreAt = attempt.CompletedAt
		}
		if attempt.CompletedAt.After(entry.LastCompletedAt) {
			entry.LastCompletedAt = attempt.CompletedAt
		}
	}

	entries := make([]domain.LeaderboardEntry, 0, len(byName))
	for _, entry := range byName {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].BestScore != entries[j].BestScore {
			return entries[i].BestScore > entries[j].BestScore
		}
		if !entries[i].BestScoreAt.Equal(entries[j].BestScoreAt) {
			return entries[i].BestScoreAt.Before(entries[j].BestScoreAt)
		}
		return entries[i].StudentName < entries[j].StudentName
	})

	return domain.Leaderboard{
		QuizID:    quizID,
		Entries:   entries,
		UpdatedAt: now,
	}
}
