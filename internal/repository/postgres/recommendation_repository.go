package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"futureBridge/domain"
)

// groupRow is the persisted shape of one recommendation group. The group
// document is stored as jsonb so the tier arrays round-trip exactly as
// they are served.
type groupRow struct {
	ID        uint           `gorm:"primaryKey"`
	UserEmail string         `gorm:"column:user_email"`
	RoundNo   int            `gorm:"column:round_no"`
	ExamType  string         `gorm:"column:exam_type"`
	GroupDoc  datatypes.JSON `gorm:"column:group_doc;type:jsonb"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func encodeGroup(group domain.RecommendationGroup) (datatypes.JSON, error) {
	doc, err := json.Marshal(group)
	if err != nil {
		return nil, fmt.Errorf("encode recommendation group: %w", err)
	}
	return doc, nil
}

func decodeGroup(doc datatypes.JSON) (*domain.RecommendationGroup, error) {
	var group domain.RecommendationGroup
	if err := json.Unmarshal(doc, &group); err != nil {
		return nil, fmt.Errorf("decode recommendation group: %w", err)
	}
	return &group, nil
}

// RoundRecommendationRepository stores the round-preference flow's groups,
// one per (user, round, exam type).
type RoundRecommendationRepository struct {
	DB *gorm.DB
}

func NewRoundRecommendationRepository(db *gorm.DB) *RoundRecommendationRepository {
	return &RoundRecommendationRepository{DB: db}
}

const roundRecommendationTable = "round_recommendations"

func (r *RoundRecommendationRepository) Upsert(ctx context.Context, group domain.RecommendationGroup, roundNo int, examType string) error {
	doc, err := encodeGroup(group)
	if err != nil {
		return err
	}

	row := groupRow{
		UserEmail: group.Username,
		RoundNo:   roundNo,
		ExamType:  examType,
		GroupDoc:  doc,
	}
	err = r.DB.WithContext(ctx).Table(roundRecommendationTable).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}, {Name: "round_no"}, {Name: "exam_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_doc", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert recommendation group: %w", err)
	}
	return nil
}

func (r *RoundRecommendationRepository) Find(ctx context.Context, username string, roundNo int, examType string) (*domain.RecommendationGroup, error) {
	var row groupRow
	err := r.DB.WithContext(ctx).Table(roundRecommendationTable).
		Where("user_email = ?", username).
		Where("round_no = ?", roundNo).
		Where("exam_type = ?", examType).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recommendation group: %w", err)
	}
	return decodeGroup(row.GroupDoc)
}

// ExploreRecommendationRepository stores the explore and diploma flows'
// groups. Diploma groups live in their own table and are read per round;
// the explore read ignores the round and returns the user's single group.
type ExploreRecommendationRepository struct {
	DB *gorm.DB
}

func NewExploreRecommendationRepository(db *gorm.DB) *ExploreRecommendationRepository {
	return &ExploreRecommendationRepository{DB: db}
}

const (
	exploreRecommendationTable = "explore_recommendations"
	diplomaRecommendationTable = "diploma_recommendations"
)

func exploreTable(diploma bool) string {
	if diploma {
		return diplomaRecommendationTable
	}
	return exploreRecommendationTable
}

func (r *ExploreRecommendationRepository) Upsert(ctx context.Context, group domain.RecommendationGroup, roundNo int, diploma bool) error {
	doc, err := encodeGroup(group)
	if err != nil {
		return err
	}

	row := groupRow{
		UserEmail: group.Username,
		RoundNo:   roundNo,
		GroupDoc:  doc,
	}
	err = r.DB.WithContext(ctx).Table(exploreTable(diploma)).
		Omit("exam_type").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}, {Name: "round_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"group_doc", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert explore recommendation group: %w", err)
	}
	return nil
}

func (r *ExploreRecommendationRepository) Find(ctx context.Context, username string, roundNo int, diploma bool) (*domain.RecommendationGroup, error) {
	q := r.DB.WithContext(ctx).Table(exploreTable(diploma)).
		Where("user_email = ?", username)
	if diploma {
		q = q.Where("round_no = ?", roundNo)
	} else {
		// The explore read is keyed by user alone; the latest group wins.
		q = q.Order("updated_at DESC")
	}

	var row groupRow
	err := q.First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find explore recommendation group: %w", err)
	}
	return decodeGroup(row.GroupDoc)
}
