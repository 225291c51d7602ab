package service

import (
	"context"
	"time"

	"atelier/internal/cache"
	"atelier/internal/models"
	"atelier/internal/observability"
	"atelier/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// weeklyWindow is the trailing window used by the weekly ranking scope.
const weeklyWindow = 7 * 24 * time.Hour

type RankingService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewRankingService(analyticsRepo repository.AnalyticsRepository) *RankingService {
	return &RankingService{analyticsRepo: analyticsRepo}
}

// UserRankingPage is one page of the global or weekly user leaderboard.
type UserRankingPage struct {
	Entries []models.UserStats `json:"users"`
	Skip    int                `json:"skip"`
	Limit   int                `json:"limit"`
}

// ProjectRankingPage is one page of the project leaderboard.
type ProjectRankingPage struct {
	Entries []models.ProjectStats `json:"projects"`
	Skip    int                   `json:"skip"`
	Limit   int                   `json:"limit"`
}

// TagRankingPage is one page of the tag leaderboard.
type TagRankingPage struct {
	Entries []models.TagStats `json:"tags"`
	Skip    int               `json:"skip"`
	Limit   int               `json:"limit"`
}

// Position is the authenticated user's own standing.
type Position struct {
	Rank   int  `json:"rank"`
	Ranked bool `json:"ranked"`
}

// Global returns the all-time user leaderboard. Ranks are 1-based and
// continue across pages.
func (s *RankingService) Global(ctx context.Context, skip, limit int) (*UserRankingPage, error) {
	span, ctx := s.startScope(ctx, "global", skip, limit)
	defer span.End()

	page := &UserRankingPage{Skip: skip, Limit: limit}
	err := cache.Aside(ctx, cache.RankingKey("global", skip, limit), page, cache.RankingTTL, func() error {
		entries, err := s.analyticsRepo.UserRanking(ctx, nil, limit, skip)
		if err != nil {
			return models.NewInternalError(err)
		}
		page.Entries = stampUserRanks(entries, skip)
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return page, nil
}

// Weekly restricts scoring to the trailing seven days of engagement.
func (s *RankingService) Weekly(ctx context.Context, skip, limit int) (*UserRankingPage, error) {
	span, ctx := s.startScope(ctx, "weekly", skip, limit)
	defer span.End()

	since := time.Now().Add(-weeklyWindow)
	page := &UserRankingPage{Skip: skip, Limit: limit}
	err := cache.Aside(ctx, cache.RankingKey("weekly", skip, limit), page, cache.RankingTTL, func() error {
		entries, err := s.analyticsRepo.UserRanking(ctx, &since, limit, skip)
		if err != nil {
			return models.NewInternalError(err)
		}
		page.Entries = stampUserRanks(entries, skip)
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return page, nil
}

func (s *RankingService) Projects(ctx context.Context, skip, limit int) (*ProjectRankingPage, error) {
	span, ctx := s.startScope(ctx, "projects", skip, limit)
	defer span.End()

	page := &ProjectRankingPage{Skip: skip, Limit: limit}
	err := cache.Aside(ctx, cache.RankingKey("projects", skip, limit), page, cache.RankingTTL, func() error {
		entries, err := s.analyticsRepo.ProjectRanking(ctx, nil, limit, skip)
		if err != nil {
			return models.NewInternalError(err)
		}
		for i := range entries {
			entries[i].Rank = skip + i + 1
		}
		page.Entries = entries
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return page, nil
}

func (s *RankingService) Tags(ctx context.Context, skip, limit int) (*TagRankingPage, error) {
	span, ctx := s.startScope(ctx, "tags", skip, limit)
	defer span.End()

	page := &TagRankingPage{Skip: skip, Limit: limit}
	err := cache.Aside(ctx, cache.RankingKey("tags", skip, limit), page, cache.RankingTTL, func() error {
		entries, err := s.analyticsRepo.TagRanking(ctx, limit, skip)
		if err != nil {
			return models.NewInternalError(err)
		}
		for i := range entries {
			entries[i].Rank = skip + i + 1
		}
		page.Entries = entries
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return page, nil
}

// MyPosition reports the caller's global rank. Private users still get a
// position even though they are hidden from the public leaderboard.
func (s *RankingService) MyPosition(ctx context.Context, userID uint) (*Position, error) {
	span, ctx := s.startScope(ctx, "my_position", 0, 0)
	defer span.End()

	pos := &Position{}
	err := cache.Aside(ctx, cache.MyPositionKey(userID), pos, cache.PositionTTL, func() error {
		rank, err := s.analyticsRepo.UserPosition(ctx, userID)
		if err != nil {
			return models.NewInternalError(err)
		}
		pos.Rank = rank
		pos.Ranked = rank > 0
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return pos, nil
}

// startScope opens a span for one leaderboard query and bumps the scope
// counter.
func (s *RankingService) startScope(ctx context.Context, scope string, skip, limit int) (*observability.Span, context.Context) {
	observability.RankingQueries.WithLabelValues(scope).Inc()
	span, ctx := observability.NewSpan(ctx, "ranking."+scope)
	span.AddAttributes(
		attribute.Int("ranking.skip", skip),
		attribute.Int("ranking.limit", limit),
	)
	return span, ctx
}

func stampUserRanks(entries []models.UserStats, skip int) []models.UserStats {
	for i := range entries {
		entries[i].Rank = skip + i + 1
	}
	return entries
}
