package domain

import (
	"gorm.io/datatypes"
)

// InstituteMeta is the college master record for the explore flow. The
// frequently queried columns are materialized; the long tail of report
// fields (facilities, placement, rankings) stays in the meta jsonb blob.
type InstituteMeta struct {
	ID              uint              `gorm:"primaryKey" json:"-"`
	SJInstituteCode int               `gorm:"column:sj_institute_code;uniqueIndex" json:"SJ_Institute_Code"`
	CollegeCode     int               `gorm:"column:college_code" json:"College_Code"`
	CollegeName     string            `gorm:"column:college_name" json:"College_Name"`
	CollegeWebsite  string            `gorm:"column:college_website" json:"College_Website"`
	CollegeType     string            `gorm:"column:college_type" json:"College_Type"`
	City            string            `gorm:"column:city" json:"City"`
	Region          string            `gorm:"column:region" json:"Region"`
	Meta            datatypes.JSONMap `gorm:"column:meta;type:jsonb" json:"meta,omitempty"`
}

func (InstituteMeta) TableName() string {
	return "institute_meta"
}

// AsMap flattens the record into the full institute document shape used in
// explore responses: typed columns merged over the jsonb tail.
func (m InstituteMeta) AsMap() map[string]any {
	out := make(map[string]any, len(m.Meta)+7)
	for k, v := range m.Meta {
		out[k] = v
	}
	out["SJ_Institute_Code"] = m.SJInstituteCode
	out["College_Code"] = m.CollegeCode
	out["College_Name"] = m.CollegeName
	out["College_Website"] = m.CollegeWebsite
	out["College_Type"] = m.CollegeType
	out["City"] = m.City
	out["Region"] = m.Region
	return out
}

// DepartmentMeta is one (institute, course) seat offering. ChoiceCode is
// the carry-forward key students quote across admission rounds. CommonName
// is the display name shown in browse results, possibly a comma-joined
// list.
type DepartmentMeta struct {
	ID                  uint     `gorm:"primaryKey" json:"-"`
	SJInstituteCode     int      `gorm:"column:sj_institute_code;index" json:"SJ_Institute_Code"`
	CoursesOffered      string   `gorm:"column:courses_offered" json:"Courses_Offered"`
	CommonName          string   `gorm:"column:common_name" json:"Common_Name"`
	CourseCode          string   `gorm:"column:course_code" json:"Course_Code"`
	ChoiceCode          int64    `gorm:"column:choice_code;index" json:"Choice_Code"`
	NBAAccredited       string   `gorm:"column:nba_accredited" json:"NBA_Accredited"`
	PlacementPercentage *float64 `gorm:"column:placement_percentage" json:"Placement_Percentage"`
	StudentIntake       *int     `gorm:"column:student_intake" json:"Student_Intake"`
}

func (DepartmentMeta) TableName() string {
	return "department_meta"
}

// CollegeSearchResult is the joined institute+departments shape returned by
// the search endpoints.
type CollegeSearchResult struct {
	CollegeName    string             `json:"College_Name"`
	SJCode         int                `json:"sj_code"`
	CollegeWebsite string             `json:"College_Website"`
	City           string             `json:"City"`
	CollegeCode    int                `json:"College_code"`
	Departments    []DepartmentChoice `json:"department"`
}

type DepartmentChoice struct {
	CourseName string `json:"course_name"`
	ChoiceCode int64  `json:"choice_code"`
	CourseCode string `json:"course_code"`
}

// ChoiceCodeSearchResult carries a single seat offering instead of the
// department list.
type ChoiceCodeSearchResult struct {
	CollegeName    string           `json:"College_Name"`
	SJCode         int              `json:"sj_code"`
	CollegeWebsite string           `json:"College_Website"`
	City           string           `json:"City"`
	CollegeCode    int              `json:"College_code"`
	Department     DepartmentChoice `json:"department"`
}

// FloatRange is a min/max spread, used for placement percentages and
// cutoff percentiles.
type FloatRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CollegeSummary is one card in the college scan listing. Loosely typed
// fields pass through whatever the institute's meta document holds.
type CollegeSummary struct {
	CollegeName    string     `json:"college_name"`
	CollegeType    string     `json:"college_type"`
	InstituteID    int        `json:"institute_id"`
	SJInstituteID  int        `json:"sj_institute_id"`
	City           string     `json:"city"`
	Region         string     `json:"Region"`
	Logo           any        `json:"logo"`
	Rating         float64    `json:"rating"`
	Courses        []string   `json:"courses"`
	CoursesCount   int        `json:"courses_count"`
	TotalIntake    any        `json:"total_intake"`
	Fees           any        `json:"fees"`
	PlacementRange FloatRange `json:"placement_range"`
	CETCutoffRange FloatRange `json:"cet_cutoff_range"`
}

// CollegeScan is one page of the scan listing. TotalRecords counts every
// match, not just the page.
type CollegeScan struct {
	Colleges     []CollegeSummary `json:"colleges"`
	Cities       []string         `json:"cities"`
	TotalRecords int64            `json:"total_records"`
}

// AdmissionChance is the single college+course probability answer.
type AdmissionChance struct {
	CollegeName          string  `json:"college_name"`
	CourseName           string  `json:"course_name"`
	Category             string  `json:"category"`
	StudentCETPercentile float64 `json:"student_cet_percentile"`
	LastYearCutoff       float64 `json:"last_year_cutoff"`
	CutoffYear           int     `json:"cutoff_year"`
	AdmissionProbability int     `json:"admission_probability"`
	ProbabilityMessage   string  `json:"probability_message"`
}
