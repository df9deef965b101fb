package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-service/internal/domain"
)

func TestBuildLeaderboardOrdering(t *testing.T) {
	base := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	attempts := []domain.Attempt{
		{StudentName: "Alice", Score: 1, TotalQuestions: 3, CompletedAt: base},
		{StudentName: "Bob", Score: 2, TotalQuestions: 3, CompletedAt: base.Add(2 * time.Minute)},
		{StudentName: "Alice", Score: 2, TotalQuestions: 3, CompletedAt: base.Add(3 * time.Minute)},
		{StudentName: "Carol", Score: 3, TotalQuestions: 3, CompletedAt: base.Add(4 * time.Minute)},
		{StudentName: "Dan", Score: 2, TotalQuestions: 3, CompletedAt: base.Add(2 * time.Minute)},
	}

	lb := buildLeaderboard(7, attempts, base.Add(time.Hour))
	if lb.QuizID != 7 || !lb.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected header: %+v", lb)
	}
	want := []string{"Carol", "Bob", "Dan", "Alice"}
	if len(lb.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(lb.Entries))
	}
	for i, name := range want {
		if lb.Entries[i].StudentName != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, lb.Entries[i].StudentName)
		}
	}
	alice := lb.Entries[3]
	if alice.Attempts != 2 || alice.BestScore != 2 || !alice.LastCompletedAt.Equal(base.Add(3*time.Minute)) {
		t.Fatalf("unexpected aggregate for Alice: %+v", alice)
	}
}

func TestLeaderboardHubFanOut(t *testing.T) {
	hub := NewLeaderboardHub()
	first, cancelFirst := hub.Subscribe(1, domain.Leaderboard{QuizID: 1})
	second, cancelSecond := hub.Subscribe(1, domain.Leaderboard{QuizID: 1})
	defer cancelSecond()

	<-first
	<-second
	if !hub.HasSubscribers(1) || hub.HasSubscribers(2) {
		t.Fatalf("unexpected subscriber state")
	}

	hub.Publish(domain.Leaderboard{QuizID: 2})
	hub.Publish(domain.Leaderboard{QuizID: 1, Entries: []domain.LeaderboardEntry{{StudentName: "Alice"}}})
	for _, ch := range []<-chan domain.Leaderboard{first, second} {
		select {
		case lb := <-ch:
			if lb.QuizID != 1 || len(lb.Entries) != 1 {
				t.Fatalf("unexpected snapshot: %+v", lb)
			}
		default:
			t.Fatalf("expected a snapshot")
		}
	}

	cancelFirst()
	if _, ok := <-first; ok {
		t.Fatalf("expected channel closed after cancel")
	}
	cancelFirst()
}

func TestLeaderboardHubDropsStaleSnapshots(t *testing.T) {
	hub := NewLeaderboardHub()
	ch, cancel := hub.Subscribe(1, domain.Leaderboard{QuizID: 1})
	defer cancel()

	for i := 0; i < 20; i++ {
		hub.Publish(domain.Leaderboard{QuizID: 1, UpdatedAt: time.Unix(int64(i), 0)})
	}

	var last domain.Leaderboard
	for {
		select {
		case lb := <-ch:
			last = lb
			continue
		default:
		}
		break
	}
	if !last.UpdatedAt.Equal(time.Unix(19, 0)) {
		t.Fatalf("expected newest snapshot last, got %v", last.UpdatedAt)
	}
}

func TestLeaderboardHubRefreshDeliversLatestSnapshotLast(t *testing.T) {
	hub := NewLeaderboardHub()
	ch, cancel := hub.Subscribe(1, domain.Leaderboard{QuizID: 1})
	defer cancel()
	<-ch

	const refreshes = 50
	var (
		mu    sync.Mutex
		built int64
		wg    sync.WaitGroup
	)
	for i := 0; i < refreshes; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := hub.Refresh(1, func() (domain.Leaderboard, error) {
				mu.Lock()
				built++
				n := built
				mu.Unlock()
				time.Sleep(time.Millisecond)
				return domain.Leaderboard{QuizID: 1, UpdatedAt: time.Unix(n, 0)}, nil
			})
			if err != nil {
				t.Errorf("refresh: %v", err)
			}
		}()
	}
	wg.Wait()

	var last domain.Leaderboard
	for {
		select {
		case lb := <-ch:
			last = lb
			continue
		default:
		}
		break
	}
	if !last.UpdatedAt.Equal(time.Unix(refreshes, 0)) {
		t.Fatalf("expected snapshot %d delivered last, got %v", refreshes, last.UpdatedAt.Unix())
	}
}

func TestLeaderboardHubRefreshSkipsUnwatchedQuiz(t *testing.T) {
	hub := NewLeaderboardHub()
	called := false
	err := hub.Refresh(3, func() (domain.Leaderboard, error) {
		called = true
		return domain.Leaderboard{QuizID: 3}, nil
	})
	if err != nil || called {
		t.Fatalf("expected no build without subscribers (called=%v err=%v)", called, err)
	}

	failure := errors.New("boom")
	if _, _, err := hub.SubscribeWith(3, func() (domain.Leaderboard, error) {
		return domain.Leaderboard{}, failure
	}); !errors.Is(err, failure) {
		t.Fatalf("expected build error, got %v", err)
	}
	if hub.HasSubscribers(3) {
		t.Fatalf("failed subscribe must not register")
	}
}
