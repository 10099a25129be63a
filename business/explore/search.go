package explore

import (
	"context"
	"fmt"

	"futureBridge/domain"
)

// SearchCollegeByName finds institutes by partial name and attaches each
// institute's seat offerings.
func (s *Service) SearchCollegeByName(ctx context.Context, name string) ([]domain.CollegeSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	institutes, err := s.instituteRepo.InstitutesByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("institutes by name: %w", err)
	}

	out := make([]domain.CollegeSearchResult, 0, len(institutes))
	for _, inst := range institutes {
		departments, err := s.instituteRepo.DepartmentsBySJCode(ctx, inst.SJInstituteCode)
		if err != nil {
			return nil, fmt.Errorf("departments of %d: %w", inst.SJInstituteCode, err)
		}
		out = append(out, domain.CollegeSearchResult{
			CollegeName:    inst.CollegeName,
			SJCode:         inst.SJInstituteCode,
			CollegeWebsite: inst.CollegeWebsite,
			City:           inst.City,
			CollegeCode:    inst.SJInstituteCode,
			Departments:    departmentChoices(departments),
		})
	}
	return out, nil
}

// SearchCollegeByCode finds one institute by its college code.
func (s *Service) SearchCollegeByCode(ctx context.Context, collegeCode int) (*domain.CollegeSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst, err := s.instituteRepo.InstituteByCollegeCode(ctx, collegeCode)
	if err != nil {
		return nil, err
	}

	departments, err := s.instituteRepo.DepartmentsBySJCode(ctx, inst.SJInstituteCode)
	if err != nil {
		return nil, fmt.Errorf("departments of %d: %w", inst.SJInstituteCode, err)
	}

	return &domain.CollegeSearchResult{
		CollegeName:    inst.CollegeName,
		SJCode:         inst.SJInstituteCode,
		CollegeWebsite: inst.CollegeWebsite,
		City:           inst.City,
		CollegeCode:    inst.SJInstituteCode,
		Departments:    departmentChoices(departments),
	}, nil
}

// SearchByChoiceCode resolves a seat offering and its institute from a
// choice code.
func (s *Service) SearchByChoiceCode(ctx context.Context, choiceCode int64) (*domain.ChoiceCodeSearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dept, err := s.instituteRepo.DepartmentByChoiceCode(ctx, choiceCode)
	if err != nil {
		return nil, err
	}

	inst, err := s.instituteRepo.InstituteBySJCode(ctx, dept.SJInstituteCode, nil)
	if err != nil {
		return nil, err
	}

	return &domain.ChoiceCodeSearchResult{
		CollegeName:    inst.CollegeName,
		SJCode:         inst.SJInstituteCode,
		CollegeWebsite: inst.CollegeWebsite,
		City:           inst.City,
		CollegeCode:    inst.CollegeCode,
		Department: domain.DepartmentChoice{
			CourseName: dept.CoursesOffered,
			ChoiceCode: dept.ChoiceCode,
			CourseCode: dept.CourseCode,
		},
	}, nil
}

func departmentChoices(departments []domain.DepartmentMeta) []domain.DepartmentChoice {
	out := make([]domain.DepartmentChoice, 0, len(departments))
	for _, d := range departments {
		out = append(out, domain.DepartmentChoice{
			CourseName: d.CoursesOffered,
			ChoiceCode: d.ChoiceCode,
			CourseCode: d.CourseCode,
		})
	}
	return out
}
