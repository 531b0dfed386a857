package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/repository"
)

// ActivityEntry is one row of the latest-activity feed.
type ActivityEntry struct {
	DisplayID string
	Type      string
	Location  string
	Priority  domain.ComplaintPriority
	TimeAgo   string
	Status    domain.ComplaintStatus
}

// ProjectionService derives read-only views over the complaint ledger. It
// never mutates state; relative times are computed at query evaluation.
type ProjectionService struct {
	complaints repository.ComplaintRepository
}

// NewProjectionService constructs the service.
func NewProjectionService(complaints repository.ComplaintRepository) *ProjectionService {
	return &ProjectionService{complaints: complaints}
}

// LatestActivity returns the most recent complaints, newest first.
func (s *ProjectionService) LatestActivity(ctx context.Context, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 5
	}
	complaints, err := s.complaints.ListLatest(ctx, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := make([]ActivityEntry, 0, len(complaints))
	for _, c := range complaints {
		entries = append(entries, ActivityEntry{
			DisplayID: c.DisplayID,
			Type:      HumanizeType(c.ComplaintType),
			Location:  c.Location,
			Priority:  c.Priority,
			TimeAgo:   RelativeTime(now, c.CreatedAt),
			Status:    c.Status,
		})
	}
	return entries, nil
}

// Stats returns the aggregate status counts.
func (s *ProjectionService) Stats(ctx context.Context) (*repository.ComplaintStats, error) {
	return s.complaints.Stats(ctx)
}

// HumanizeType turns an internal category tag like "street_light" into
// "Street Light".
func HumanizeType(raw string) string {
	raw = strings.NewReplacer("_", " ", "-", " ").Replace(raw)
	words := strings.Fields(raw)
	for i, word := range words {
		runes := []rune(word)
		words[i] = string(unicode.ToUpper(runes[0])) + strings.ToLower(string(runes[1:]))
	}
	return strings.Join(words, " ")
}

// RelativeTime buckets the elapsed time since creation: full days, else whole
// hours, else whole minutes, else "Just now".
func RelativeTime(now, created time.Time) string {
	diff := now.Sub(created)
	if diff < 0 {
		diff = 0
	}

	if days := int(diff.Hours() / 24); days > 0 {
		return pluralize(days, "day")
	}
	if hours := int(diff.Hours()); hours >= 1 {
		return pluralize(hours, "hour")
	}
	if minutes := int(diff.Minutes()); minutes >= 1 {
		return pluralize(minutes, "minute")
	}
	return "Just now"
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
