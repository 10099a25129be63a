package domain

import (
	"strconv"

	"gorm.io/datatypes"
)

// Exam families. Each family has its own cutoff table because the source
// datasets are published per entrance exam.
const (
	ExamCET      = "MHT_CET"
	ExamBCA      = "BCA_MCA_Int"
	ExamBBA      = "BBA_BMS_BBM_MBA_Int"
	ExamPharmacy = "B_and_D_Pharmacy"
)

// CutoffRecord is one (institute, course, year, round) row of reference
// data. Category cutoffs live in a jsonb map keyed by category code
// ("GOPENS", "LSCS", ...); a missing or null value means the seat type was
// not offered. Rows are loaded by an external importer and never written by
// this service.
type CutoffRecord struct {
	ID              uint              `gorm:"primaryKey" json:"-"`
	CollegeName     string            `gorm:"column:college_name" json:"College_Name"`
	CollegeCode     int               `gorm:"column:college_code" json:"College_Code"`
	SJInstituteCode int               `gorm:"column:sj_institute_code" json:"SJ_Institute_Code"`
	CourseName      string            `gorm:"column:course_name" json:"Course_Name"`
	CourseCode      string            `gorm:"column:course_code" json:"Course_Code"`
	ChoiceCode      int64             `gorm:"column:choice_code" json:"Choice_Code"`
	City            string            `gorm:"column:city" json:"City"`
	Region          string            `gorm:"column:region" json:"Region"`
	District        string            `gorm:"column:district" json:"District"`
	Year            int               `gorm:"column:year" json:"Year"`
	Round           int               `gorm:"column:round" json:"Round"`
	Categories      datatypes.JSONMap `gorm:"column:categories;type:jsonb" json:"categories"`
}

// CategoryCutoff returns the numeric cutoff for a category code. ok is
// false when the category is absent, null, or not numeric; callers skip the
// row for that category instead of treating it as zero.
func (r CutoffRecord) CategoryCutoff(code string) (float64, bool) {
	raw, exists := r.Categories[code]
	if !exists || raw == nil {
		return 0, false
	}

	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ProvisionalVacantSeat lists choice codes still open in a given round,
// published after the previous round's allotments are finalized.
type ProvisionalVacantSeat struct {
	ID         uint  `gorm:"primaryKey"`
	Round      int   `gorm:"column:round;not null"`
	ChoiceCode int64 `gorm:"column:choice_code;not null"`
}

func (ProvisionalVacantSeat) TableName() string {
	return "provisional_vacant_seats"
}

// UniversityDistrict maps a district to its home university.
type UniversityDistrict struct {
	District   string `gorm:"column:district;primaryKey"`
	University string `gorm:"column:university;not null"`
}

func (UniversityDistrict) TableName() string {
	return "university_districts"
}
