package recommend

import (
	"context"
	"fmt"

	"futureBridge/domain"
)

// CollegeCourses is the grouped search result shape: one college with the
// courses it offered in the round-1 cutoff list.
type CollegeCourses struct {
	CollegeName string      `json:"College Name"`
	CollegeCode int         `json:"College Code"`
	Courses     []CourseRef `json:"Courses"`
}

type CourseRef struct {
	CourseName string `json:"Course Name"`
	CourseCode string `json:"Course Code"`
}

// ChoiceCodeMatch is the single-row answer of a choice-code search.
type ChoiceCodeMatch struct {
	CollegeName string `json:"College Name"`
	CollegeCode int    `json:"College Code"`
	CourseName  string `json:"Course Name"`
	CourseCode  string `json:"Course Code"`
	City        string `json:"City"`
	District    string `json:"District"`
}

// SearchCollegeByName looks up colleges in the exam's cutoff list by partial
// name and groups the matching rows per college.
func (s *Service) SearchCollegeByName(ctx context.Context, collegeName, examType string) ([]CollegeCourses, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.cutoffRepo.SearchByCollegeName(ctx, examType, collegeName)
	if err != nil {
		return nil, fmt.Errorf("search college by name: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return groupByCollege(rows), nil
}

// SearchCollegeByCode looks up a college in the exam's cutoff list by its
// college code.
func (s *Service) SearchCollegeByCode(ctx context.Context, collegeCode int, examType string) ([]CollegeCourses, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.cutoffRepo.SearchByCollegeCode(ctx, examType, collegeCode)
	if err != nil {
		return nil, fmt.Errorf("search college by code: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return groupByCollege(rows), nil
}

// SearchCollegeByChoiceCode resolves a single cutoff row whose course code
// matches the quoted choice code.
func (s *Service) SearchCollegeByChoiceCode(ctx context.Context, choiceCode, examType string) (ChoiceCodeMatch, error) {
	if err := ctx.Err(); err != nil {
		return ChoiceCodeMatch{}, err
	}

	row, err := s.cutoffRepo.SearchByChoiceCode(ctx, examType, choiceCode)
	if err != nil {
		return ChoiceCodeMatch{}, err
	}
	return ChoiceCodeMatch{
		CollegeName: row.CollegeName,
		CollegeCode: row.CollegeCode,
		CourseName:  row.CourseName,
		CourseCode:  row.CourseCode,
		City:        row.City,
		District:    row.District,
	}, nil
}

func groupByCollege(rows []domain.CutoffRecord) []CollegeCourses {
	index := make(map[int]int)
	var out []CollegeCourses
	for _, row := range rows {
		i, ok := index[row.CollegeCode]
		if !ok {
			i = len(out)
			index[row.CollegeCode] = i
			out = append(out, CollegeCourses{
				CollegeName: row.CollegeName,
				CollegeCode: row.CollegeCode,
			})
		}
		out[i].Courses = append(out[i].Courses, CourseRef{
			CourseName: row.CourseName,
			CourseCode: row.CourseCode,
		})
	}
	return out
}
