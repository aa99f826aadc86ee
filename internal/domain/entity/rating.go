package entity

import (
	"time"
	"unicode/utf8"

	domainerrors "greencycle/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MinScore is also the "not yet rated" sentinel.
	MinScore = 0
	// MaxScore is the highest score either side can give.
	MaxScore = 5
	// MaxRatingCommentLength caps each side's free-text comment.
	MaxRatingCommentLength = 300
)

// Rating holds both directions of the mutual rating of one finalized collection.
type Rating struct {
	ID           uuid.UUID
	CollectionID uuid.UUID
	ClientID     uuid.UUID
	PartnerID    uuid.UUID
	// ScoreByClient is what the client gave the partner.
	ScoreByClient   int
	CommentByClient string
	// ScoreByPartner is what the partner gave the client.
	ScoreByPartner   int
	CommentByPartner string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewRating creates the blank rating written when a collection is finalized.
func NewRating(c *Collection, now time.Time) *Rating {
	partnerID, _ := c.Partner.PartnerID()

	return &Rating{
		ID:           uuid.New(),
		CollectionID: c.ID,
		ClientID:     c.ClientID,
		PartnerID:    partnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ValidateRatingInput checks score bounds and comment length.
func ValidateRatingInput(score int, comment string) error {
	if score < MinScore || score > MaxScore {
		return domainerrors.ErrValidationFailed.WithDetailsf("nota deve estar entre %d e %d", MinScore, MaxScore)
	}
	if utf8.RuneCountInString(comment) > MaxRatingCommentLength {
		return domainerrors.ErrValidationFailed.WithDetailsf("comentário deve ter no máximo %d caracteres", MaxRatingCommentLength)
	}

	return nil
}

// SetClientSide overwrites the client's score and comment.
func (r *Rating) SetClientSide(score int, comment string, now time.Time) {
	r.ScoreByClient = score
	r.CommentByClient = comment
	r.UpdatedAt = now
}

// SetPartnerSide overwrites the partner's score and comment.
func (r *Rating) SetPartnerSide(score int, comment string, now time.Time) {
	r.ScoreByPartner = score
	r.CommentByPartner = comment
	r.UpdatedAt = now
}

// RatingStatistics aggregates the scores one party received.
type RatingStatistics struct {
	RatedCount           int
	Average              decimal.Decimal
	Histogram            map[int]int
	CompletedCollections int64
}

// NewRatingStatistics folds received scores into statistics.
// Zero scores count toward the histogram only.
func NewRatingStatistics(scores []int, completed int64) RatingStatistics {
	stats := RatingStatistics{
		Average:              decimal.Zero,
		Histogram:            make(map[int]int, MaxScore+1),
		CompletedCollections: completed,
	}
	for s := MinScore; s <= MaxScore; s++ {
		stats.Histogram[s] = 0
	}

	sum := 0
	for _, s := range scores {
		if s < MinScore || s > MaxScore {
			continue
		}
		stats.Histogram[s]++
		if s > MinScore {
			stats.RatedCount++
			sum += s
		}
	}

	if stats.RatedCount > 0 {
		stats.Average = decimal.NewFromInt(int64(sum)).
			DivRound(decimal.NewFromInt(int64(stats.RatedCount)), 2)
	}

	return stats
}
