package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"futureBridge/business/explore"
	"futureBridge/domain"
)

type InstituteRepository struct {
	DB *gorm.DB
}

func NewInstituteRepository(db *gorm.DB) *InstituteRepository {
	return &InstituteRepository{DB: db}
}

// InstituteBySJCode resolves one institute, optionally requiring its region
// to match one of the requested locations. A region miss reads the same as
// an unknown institute so callers skip the row either way.
func (r *InstituteRepository) InstituteBySJCode(ctx context.Context, sjCode int, locations []string) (domain.InstituteMeta, error) {
	q := r.DB.WithContext(ctx).Where("sj_institute_code = ?", sjCode)
	if locations := activeList(locations); locations != nil {
		cond, args := ilikeAny("region", locations)
		q = q.Where(cond, args...)
	}

	var inst domain.InstituteMeta
	err := q.First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.InstituteMeta{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.InstituteMeta{}, fmt.Errorf("institute by sj code: %w", err)
	}
	return inst, nil
}

func (r *InstituteRepository) InstitutesByName(ctx context.Context, name string) ([]domain.InstituteMeta, error) {
	var institutes []domain.InstituteMeta
	err := r.DB.WithContext(ctx).
		Where("college_name ILIKE ?", "%"+name+"%").
		Find(&institutes).Error
	if err != nil {
		return nil, fmt.Errorf("institutes by name: %w", err)
	}
	return institutes, nil
}

func (r *InstituteRepository) InstituteByCollegeCode(ctx context.Context, collegeCode int) (domain.InstituteMeta, error) {
	var inst domain.InstituteMeta
	err := r.DB.WithContext(ctx).
		Where("college_code = ?", collegeCode).
		First(&inst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.InstituteMeta{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.InstituteMeta{}, fmt.Errorf("institute by college code: %w", err)
	}
	return inst, nil
}

func (r *InstituteRepository) DepartmentsBySJCode(ctx context.Context, sjCode int) ([]domain.DepartmentMeta, error) {
	var departments []domain.DepartmentMeta
	err := r.DB.WithContext(ctx).
		Where("sj_institute_code = ?", sjCode).
		Find(&departments).Error
	if err != nil {
		return nil, fmt.Errorf("departments by sj code: %w", err)
	}
	return departments, nil
}

// scanOrder maps the scan sort keys onto their columns. The numeric keys
// live in the meta jsonb blob and sort with nulls last so sparse documents
// sink to the bottom either direction.
func scanOrder(sortBy, order string) string {
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	switch sortBy {
	case "fees":
		return "(meta ->> 'Annual_Fees_(INR)')::numeric " + dir + " NULLS LAST"
	case "rating":
		return "(meta ->> 'College_Reviews_out_of_5')::numeric " + dir + " NULLS LAST"
	case "name":
		return "college_name " + dir
	default:
		return "(meta ->> 'Overall_College_Placement_Percentage')::numeric " + dir + " NULLS LAST"
	}
}

// SearchInstitutes runs the scan listing query. The course filter matches
// institutes with at least one department offering a requested course.
func (r *InstituteRepository) SearchInstitutes(ctx context.Context, query explore.InstituteSearchQuery) ([]domain.InstituteMeta, int64, error) {
	q := r.DB.WithContext(ctx).Model(&domain.InstituteMeta{})
	if names := activeList(query.Names); names != nil {
		cond, args := ilikeAny("college_name", names)
		q = q.Where(cond, args...)
	}
	if cities := activeList(query.Cities); cities != nil {
		cond, args := ilikeAny("city", cities)
		q = q.Where(cond, args...)
	}
	if courses := activeList(query.Courses); courses != nil {
		cond, args := ilikeAny("courses_offered", courses)
		q = q.Where("sj_institute_code IN (SELECT DISTINCT sj_institute_code FROM department_meta WHERE "+cond+")", args...)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count institutes: %w", err)
	}

	q = q.Order(scanOrder(query.SortBy, query.Order))
	if query.Limit > 0 {
		q = q.Offset(query.Offset).Limit(query.Limit)
	}

	var institutes []domain.InstituteMeta
	if err := q.Find(&institutes).Error; err != nil {
		return nil, 0, fmt.Errorf("search institutes: %w", err)
	}
	return institutes, total, nil
}

func (r *InstituteRepository) AllRegions(ctx context.Context) ([]string, error) {
	var regions []string
	err := r.DB.WithContext(ctx).Model(&domain.InstituteMeta{}).
		Distinct("region").
		Order("region").
		Pluck("region", &regions).Error
	if err != nil {
		return nil, fmt.Errorf("all regions: %w", err)
	}
	return regions, nil
}

func (r *InstituteRepository) DepartmentByChoiceCode(ctx context.Context, choiceCode int64) (domain.DepartmentMeta, error) {
	var dept domain.DepartmentMeta
	err := r.DB.WithContext(ctx).
		Where("choice_code = ?", choiceCode).
		First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DepartmentMeta{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.DepartmentMeta{}, fmt.Errorf("department by choice code: %w", err)
	}
	return dept, nil
}
