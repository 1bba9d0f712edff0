package gamification

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/studywithme/studywithme/internal/eventbus"
	"github.com/studywithme/studywithme/store"
)

const dateLayout = "2006-01-02"

// SnapshotStore is the persistence collaborator for the stats snapshot.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, upsert *store.Snapshot) (*store.Snapshot, error)
	GetSnapshot(ctx context.Context, find *store.FindSnapshot) (*store.Snapshot, error)
}

// Service owns the gamification state. AwardPoints satisfies the Awarder
// contract of the review and quiz engines: fire and forget, never failing
// the caller.
type Service struct {
	mu    sync.Mutex
	stats UserStats
	store SnapshotStore
	bus   *eventbus.Bus
	now   func() time.Time
}

// NewService creates a gamification tracker backed by the given snapshot
// store. bus may be nil.
func NewService(snapshots SnapshotStore, bus *eventbus.Bus) *Service {
	return &Service{
		stats: newUserStats(),
		store: snapshots,
		bus:   bus,
		now:   time.Now,
	}
}

func newUserStats() UserStats {
	return UserStats{
		History: []*DayXP{},
		Streak:  Streak{FreezesAvailable: 2},
		Level:   1,
	}
}

// Load restores stats from the persisted snapshot and settles the streak
// against today's date. A missing or corrupt snapshot yields fresh stats.
func (s *Service) Load(ctx context.Context) error {
	snapshot, err := s.store.GetSnapshot(ctx, &store.FindSnapshot{Key: store.SnapshotKeyUserStats})
	if err != nil {
		return errors.Wrap(err, "failed to load user stats snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = newUserStats()
	if snapshot == nil || snapshot.Value == "" {
		return nil
	}
	var stats UserStats
	if err := json.Unmarshal([]byte(snapshot.Value), &stats); err != nil {
		slog.Error("corrupt user stats snapshot, starting fresh", "error", err)
		return nil
	}
	if stats.History == nil {
		stats.History = []*DayXP{}
	}
	if stats.Level < 1 {
		stats.Level = levelForXP(stats.TotalXP)
	}
	s.stats = stats
	s.touchStreakLocked()
	s.persistLocked(ctx)
	return nil
}

// AwardPoints adds XP for an outcome, updates the level and counts the day
// as active for the streak. Persistence failures are logged, never surfaced:
// an XP award must not fail the review or quiz that earned it.
func (s *Service) AwardPoints(amount int, reason string) {
	if amount <= 0 {
		return
	}

	s.mu.Lock()
	today := s.today()
	s.stats.TotalXP += amount

	var entry *DayXP
	for _, day := range s.stats.History {
		if day.Date == today {
			entry = day
			break
		}
	}
	if entry != nil {
		entry.Amount += amount
	} else {
		s.stats.History = append(s.stats.History, &DayXP{Date: today, Amount: amount})
	}

	if level := levelForXP(s.stats.TotalXP); level > s.stats.Level {
		slog.Info("level up", "level", level, "totalXp", s.stats.TotalXP)
		s.stats.Level = level
	}
	s.touchStreakLocked()
	s.persistLocked(context.Background())
	s.mu.Unlock()

	slog.Debug("xp awarded", "amount", amount, "reason", reason)
	s.notify()
}

// touchStreakLocked settles the streak against today. A one-day gap extends
// the streak; a two-day gap consumes a freeze when one is available and
// keeps the streak alive; anything longer resets it to one.
func (s *Service) touchStreakLocked() {
	today := s.today()
	streak := &s.stats.Streak

	if streak.LastActiveDate == "" {
		streak.Current = 1
		streak.LastActiveDate = today
	} else {
		diffDays := daysBetween(streak.LastActiveDate, today)
		switch {
		case diffDays <= 0:
			// Same day, nothing to settle.
			return
		case diffDays == 1:
			streak.Current++
			streak.LastActiveDate = today
		default:
			if streak.FreezesAvailable > 0 && diffDays <= 2 {
				streak.FreezesAvailable--
				streak.FreezesUsed++
			} else {
				streak.Current = 1
			}
			streak.LastActiveDate = today
		}
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
}

// Stats returns the derived view: persisted state plus day/week XP and
// level progress computed against the clock.
func (s *Service) Stats() *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.today()
	weekStart := s.now().UTC().AddDate(0, 0, -6).Format(dateLayout)

	todayXP, weekXP := 0, 0
	history := make([]*DayXP, 0, len(s.stats.History))
	for _, day := range s.stats.History {
		if day.Date == today {
			todayXP += day.Amount
		}
		if day.Date >= weekStart {
			weekXP += day.Amount
		}
		d := *day
		history = append(history, &d)
	}

	return &Stats{
		TotalXP:     s.stats.TotalXP,
		TodayXP:     todayXP,
		WeekXP:      weekXP,
		Level:       s.stats.Level,
		LevelName:   levelName(s.stats.Level),
		Streak:      s.stats.Streak,
		History:     history,
		NextLevelXP: progressForXP(s.stats.TotalXP, s.stats.Level),
	}
}

// Level returns the current level.
func (s *Service) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Level
}

// TotalXP returns the lifetime XP total.
func (s *Service) TotalXP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.TotalXP
}

func (s *Service) today() string {
	return s.now().UTC().Format(dateLayout)
}

func daysBetween(from, to string) int {
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return 0
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return 0
	}
	return int(toDate.Sub(fromDate).Hours() / 24)
}

func (s *Service) persistLocked(ctx context.Context) {
	value, err := json.Marshal(&s.stats)
	if err != nil {
		slog.Error("failed to marshal user stats", "error", err)
		return
	}
	if _, err := s.store.UpsertSnapshot(ctx, &store.Snapshot{
		Key:   store.SnapshotKeyUserStats,
		Value: string(value),
	}); err != nil {
		slog.Error("failed to persist user stats snapshot", "error", err)
	}
}

func (s *Service) notify() {
	if s.bus != nil {
		s.bus.Notify()
	}
}
