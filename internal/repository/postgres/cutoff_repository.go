package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"futureBridge/business/explore"
	"futureBridge/business/recommend"
	"futureBridge/domain"
)

// Cutoff tables are split per exam family, mirroring how the source
// datasets are published. Unknown exam types fall back to the CET table.
var cutoffTables = map[string]string{
	domain.ExamCET:      "cet_college_cutoffs",
	domain.ExamBCA:      "bca_college_cutoffs",
	domain.ExamBBA:      "bba_college_cutoffs",
	domain.ExamPharmacy: "pharmacy_college_cutoffs",
}

const diplomaCutoffTable = "diploma_college_cutoffs"

func cutoffTable(examType string) string {
	if table, ok := cutoffTables[examType]; ok {
		return table
	}
	return cutoffTables[domain.ExamCET]
}

func exploreCutoffTable(diploma bool) string {
	if diploma {
		return diplomaCutoffTable
	}
	return cutoffTables[domain.ExamCET]
}

type CutoffRepository struct {
	DB *gorm.DB
}

func NewCutoffRepository(db *gorm.DB) *CutoffRepository {
	return &CutoffRepository{DB: db}
}

// activeList drops the filter when it is empty or contains the ALL
// wildcard.
func activeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	for _, v := range values {
		if v == "ALL" {
			return nil
		}
	}
	return values
}

// categoryFloorCondition builds the OR-ed jsonb predicate: any listed
// category non-null and strictly above its floor. A zero floor only checks
// presence.
func categoryFloorCondition(floors []recommend.CategoryFloor) (string, []any) {
	conds := make([]string, 0, len(floors))
	args := make([]any, 0, len(floors)*3)
	for _, fl := range floors {
		if fl.Floor > 0 {
			conds = append(conds, "(categories ->> ? IS NOT NULL AND (categories ->> ?)::numeric > ?)")
			args = append(args, fl.Code, fl.Code, fl.Floor)
		} else {
			conds = append(conds, "categories ->> ? IS NOT NULL")
			args = append(args, fl.Code)
		}
	}
	return strings.Join(conds, " OR "), args
}

func (r *CutoffRepository) FindCutoffs(ctx context.Context, examType string, filter recommend.CutoffFilter) ([]domain.CutoffRecord, error) {
	q := r.DB.WithContext(ctx).Table(cutoffTable(examType)).
		Where("year = ?", filter.Year).
		Where("round = ?", filter.Round)

	if len(filter.Districts) > 0 {
		q = q.Where("district IN ?", filter.Districts)
	}
	if locations := activeList(filter.Locations); locations != nil {
		q = q.Where("city IN ?", locations)
	}
	if branches := activeList(filter.Branches); branches != nil {
		q = q.Where("course_name IN ?", branches)
	}
	if len(filter.Floors) > 0 {
		cond, args := categoryFloorCondition(filter.Floors)
		q = q.Where(cond, args...)
	}

	var rows []domain.CutoffRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find cutoffs: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) FindByCourseCode(ctx context.Context, examType, courseCode string) (domain.CutoffRecord, error) {
	var row domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(cutoffTable(examType)).
		Where("course_code = ?", courseCode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CutoffRecord{}, fmt.Errorf("cutoff by course code: %w", err)
	}
	return row, nil
}

func (r *CutoffRepository) SearchByCollegeName(ctx context.Context, examType, collegeName string) ([]domain.CutoffRecord, error) {
	var rows []domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(cutoffTable(examType)).
		Where("college_name ILIKE ?", "%"+collegeName+"%").
		Where("round = ?", 1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search by college name: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) SearchByCollegeCode(ctx context.Context, examType string, collegeCode int) ([]domain.CutoffRecord, error) {
	var rows []domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(cutoffTable(examType)).
		Where("college_code = ?", collegeCode).
		Where("round = ?", 1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search by college code: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) SearchByChoiceCode(ctx context.Context, examType, choiceCode string) (domain.CutoffRecord, error) {
	var row domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(cutoffTable(examType)).
		Where("course_code ILIKE ?", "%"+choiceCode+"%").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CutoffRecord{}, fmt.Errorf("search by choice code: %w", err)
	}
	return row, nil
}

// ilikeAny ORs a substring match per value against one column.
func ilikeAny(column string, values []string) (string, []any) {
	conds := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for _, v := range values {
		conds = append(conds, column+" ILIKE ?")
		args = append(args, "%"+v+"%")
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

func (r *CutoffRepository) FindByCategoryCourseLocation(ctx context.Context, query explore.CategoryCourseQuery) ([]domain.CutoffRecord, error) {
	courses := activeList(query.Courses)
	locations := activeList(query.Locations)

	round := query.Round
	if courses == nil && locations == nil {
		// The unfiltered lookup always reads round 1.
		round = 1
	}

	q := r.DB.WithContext(ctx).Table(exploreCutoffTable(query.Diploma)).
		Where("year = ?", recommend.CutoffYear).
		Where("round = ?", round).
		Where("categories ->> ? IS NOT NULL", query.Category)

	if courses != nil {
		cond, args := ilikeAny("course_name", courses)
		q = q.Where(cond, args...)
	}
	if locations != nil {
		cond, args := ilikeAny("region", locations)
		q = q.Where(cond, args...)
	}

	var rows []domain.CutoffRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("explore cutoffs: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) FindCoursesAboveFloor(ctx context.Context, query explore.CourseFloorQuery) ([]domain.CutoffRecord, error) {
	q := r.DB.WithContext(ctx).Table(exploreCutoffTable(query.Diploma)).
		Where("year = ?", recommend.CutoffYear).
		Where("round = ?", query.Round).
		Where("categories ->> ? IS NOT NULL AND (categories ->> ?)::numeric >= ?", query.Category, query.Category, query.Floor)

	if courses := activeList(query.Courses); courses != nil {
		cond, args := ilikeAny("course_name", courses)
		q = q.Where(cond, args...)
	}
	if locations := activeList(query.Locations); locations != nil {
		cond, args := ilikeAny("region", locations)
		q = q.Where(cond, args...)
	}
	if len(query.VacantCodes) > 0 {
		q = q.Where("choice_code IN ?", query.VacantCodes)
	}

	var rows []domain.CutoffRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cutoffs above floor: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) FindByCourseForRound(ctx context.Context, diploma bool, sjCode int, courseName string, year, round int) (domain.CutoffRecord, error) {
	var row domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(exploreCutoffTable(diploma)).
		Where("sj_institute_code = ?", sjCode).
		Where("LOWER(course_name) = LOWER(?)", courseName).
		Where("year = ?", year).
		Where("round = ?", round).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CutoffRecord{}, fmt.Errorf("cutoff for course round: %w", err)
	}
	return row, nil
}

func (r *CutoffRepository) CutoffsBySJCode(ctx context.Context, sjCode int, courses []string) ([]domain.CutoffRecord, error) {
	q := r.DB.WithContext(ctx).Table(exploreCutoffTable(false)).
		Where("sj_institute_code = ?", sjCode)
	if courses := activeList(courses); courses != nil {
		cond, args := ilikeAny("course_name", courses)
		q = q.Where(cond, args...)
	}

	var rows []domain.CutoffRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("cutoffs by sj code: %w", err)
	}
	return rows, nil
}

// AllLatestCutoffs keeps the newest year per (institute, course) pair.
func (r *CutoffRepository) AllLatestCutoffs(ctx context.Context) ([]domain.CutoffRecord, error) {
	table := exploreCutoffTable(false)
	var rows []domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(table).
		Where("(sj_institute_code, course_name, year) IN (SELECT sj_institute_code, course_name, MAX(year) FROM " + table + " GROUP BY sj_institute_code, course_name)").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("all latest cutoffs: %w", err)
	}
	return rows, nil
}

func (r *CutoffRepository) LatestBySJCodeAndCourse(ctx context.Context, sjCode int, courseName string) (domain.CutoffRecord, error) {
	var row domain.CutoffRecord
	err := r.DB.WithContext(ctx).Table(exploreCutoffTable(false)).
		Where("sj_institute_code = ?", sjCode).
		Where("LOWER(course_name) = LOWER(?)", courseName).
		Order("year DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.CutoffRecord{}, fmt.Errorf("latest cutoff: %w", err)
	}
	return row, nil
}
