package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"futureBridge/domain"
)

type UniversityMapRepository struct {
	DB *gorm.DB
}

func NewUniversityMapRepository(db *gorm.DB) *UniversityMapRepository {
	return &UniversityMapRepository{DB: db}
}

func (r *UniversityMapRepository) UniversityForDistrict(ctx context.Context, district string) (string, error) {
	var row domain.UniversityDistrict
	err := r.DB.WithContext(ctx).
		Where("district = ?", district).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("university for district: %w", err)
	}
	return row.University, nil
}

func (r *UniversityMapRepository) DistrictsForUniversity(ctx context.Context, university string) ([]string, error) {
	var districts []string
	err := r.DB.WithContext(ctx).
		Model(&domain.UniversityDistrict{}).
		Where("university = ?", university).
		Order("district").
		Pluck("district", &districts).Error
	if err != nil {
		return nil, fmt.Errorf("districts for university: %w", err)
	}
	return districts, nil
}

func (r *UniversityMapRepository) AllDistricts(ctx context.Context) ([]string, error) {
	var districts []string
	err := r.DB.WithContext(ctx).
		Model(&domain.UniversityDistrict{}).
		Distinct().
		Pluck("district", &districts).Error
	if err != nil {
		return nil, fmt.Errorf("all districts: %w", err)
	}
	return districts, nil
}
