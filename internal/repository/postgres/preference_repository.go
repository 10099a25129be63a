package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"futureBridge/domain"
)

// PreferenceRepository persists the student's saved inputs: the college
// configuration, the per-round preferences, the locked round choice, and
// the diploma config snapshot. Everything is upserted on its natural key
// so re-submitting replaces the earlier row.
type PreferenceRepository struct {
	DB *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

func (r *PreferenceRepository) SaveCollegeConfig(ctx context.Context, cfg domain.CollegeConfig) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}, {Name: "exam_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("save college config: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) FindCollegeConfigs(ctx context.Context, email string) ([]domain.CollegeConfig, error) {
	var configs []domain.CollegeConfig
	err := r.DB.WithContext(ctx).
		Where("user_email = ?", email).
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("find college configs: %w", err)
	}
	return configs, nil
}

func (r *PreferenceRepository) SaveRoundPreferences(ctx context.Context, prefs domain.RoundPreferences) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_email"}, {Name: "exam_type"}, {Name: "round_no"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"category", "gender", "district", "score", "branches", "locations",
				"last_college_round_choice_code", "updated_at",
			}),
		}).
		Create(&prefs).Error
	if err != nil {
		return fmt.Errorf("save round preferences: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) FindRoundPreferences(ctx context.Context, email, examType string, roundNo int) (*domain.RoundPreferences, error) {
	var prefs domain.RoundPreferences
	err := r.DB.WithContext(ctx).
		Where("user_email = ?", email).
		Where("exam_type = ?", examType).
		Where("round_no = ?", roundNo).
		First(&prefs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find round preferences: %w", err)
	}
	return &prefs, nil
}

func (r *PreferenceRepository) SaveRoundChoice(ctx context.Context, choice domain.CollegeRoundPreference) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}, {Name: "exam_type"}, {Name: "round_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"choice_code", "choices", "updated_at"}),
		}).
		Create(&choice).Error
	if err != nil {
		return fmt.Errorf("save round choice: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) FindRoundChoice(ctx context.Context, email, examType string, roundNo int) (*domain.CollegeRoundPreference, error) {
	var choice domain.CollegeRoundPreference
	err := r.DB.WithContext(ctx).
		Where("user_email = ?", email).
		Where("exam_type = ?", examType).
		Where("round_no = ?", roundNo).
		First(&choice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find round choice: %w", err)
	}
	return &choice, nil
}

func (r *PreferenceRepository) SaveConfig(ctx context.Context, cfg domain.DiplomaUserConfig) error {
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_email"}, {Name: "round_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"config", "updated_at"}),
		}).
		Create(&cfg).Error
	if err != nil {
		return fmt.Errorf("save diploma config: %w", err)
	}
	return nil
}

func (r *PreferenceRepository) FindConfig(ctx context.Context, email string, roundNo int) (*domain.DiplomaUserConfig, error) {
	var cfg domain.DiplomaUserConfig
	err := r.DB.WithContext(ctx).
		Where("user_email = ?", email).
		Where("round_no = ?", roundNo).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find diploma config: %w", err)
	}
	return &cfg, nil
}
