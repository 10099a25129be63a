package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"futureBridge/domain"
)

type VacancyRepository struct {
	DB *gorm.DB
}

func NewVacancyRepository(db *gorm.DB) *VacancyRepository {
	return &VacancyRepository{DB: db}
}

// VacantChoiceCodes lists the distinct choice codes still open in a round.
func (r *VacancyRepository) VacantChoiceCodes(ctx context.Context, round int) ([]int64, error) {
	var codes []int64
	err := r.DB.WithContext(ctx).
		Model(&domain.ProvisionalVacantSeat{}).
		Where("round = ?", round).
		Distinct().
		Pluck("choice_code", &codes).Error
	if err != nil {
		return nil, fmt.Errorf("vacant choice codes: %w", err)
	}
	return codes, nil
}
