package explore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"futureBridge/domain"
)

// ScanQuery filters and pages the college browse listing. List filters are
// OR-ed within a field and AND-ed across fields.
type ScanQuery struct {
	CollegeNames []string `json:"college_name"`
	Cities       []string `json:"city"`
	Courses      []string `json:"courses"`
	SortBy       string   `json:"sort_by"`
	Order        string   `json:"order"`
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
}

// InstituteSearchQuery is the database-side shape of a scan page.
type InstituteSearchQuery struct {
	Names   []string
	Cities  []string
	Courses []string
	SortBy  string
	Order   string
	Offset  int
	Limit   int
}

const (
	defaultScanPage  = 1
	defaultScanLimit = 10
)

// ScanColleges pages through matching institutes and decorates each with
// its course list, placement spread, and latest-year cutoff spread. Cities
// carries every distinct region so the client can render filter choices.
// No matching institute at all returns domain.ErrNotFound.
func (s *Service) ScanColleges(ctx context.Context, q ScanQuery) (domain.CollegeScan, error) {
	if err := ctx.Err(); err != nil {
		return domain.CollegeScan{}, err
	}

	page := q.Page
	if page < 1 {
		page = defaultScanPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultScanLimit
	}

	institutes, total, err := s.instituteRepo.SearchInstitutes(ctx, InstituteSearchQuery{
		Names:   q.CollegeNames,
		Cities:  q.Cities,
		Courses: q.Courses,
		SortBy:  q.SortBy,
		Order:   q.Order,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})
	if err != nil {
		return domain.CollegeScan{}, fmt.Errorf("search institutes: %w", err)
	}
	if len(institutes) == 0 {
		return domain.CollegeScan{}, domain.ErrNotFound
	}

	regions, err := s.instituteRepo.AllRegions(ctx)
	if err != nil {
		return domain.CollegeScan{}, fmt.Errorf("list regions: %w", err)
	}

	colleges := make([]domain.CollegeSummary, 0, len(institutes))
	for _, inst := range institutes {
		departments, err := s.instituteRepo.DepartmentsBySJCode(ctx, inst.SJInstituteCode)
		if err != nil {
			return domain.CollegeScan{}, fmt.Errorf("departments for %d: %w", inst.SJInstituteCode, err)
		}
		departments = filterDepartments(departments, q.Courses)

		cutoffs, err := s.cutoffRepo.CutoffsBySJCode(ctx, inst.SJInstituteCode, q.Courses)
		if err != nil {
			return domain.CollegeScan{}, fmt.Errorf("cutoffs for %d: %w", inst.SJInstituteCode, err)
		}

		courses := uniqueCourses(departments)
		rating, _ := metaNumber(inst.Meta, "College_Reviews_out_of_5")

		colleges = append(colleges, domain.CollegeSummary{
			CollegeName:   inst.CollegeName,
			CollegeType:   inst.CollegeType,
			InstituteID:   inst.CollegeCode,
			SJInstituteID: inst.SJInstituteCode,
			// The city/Region swap is part of the response contract.
			City:           inst.Region,
			Region:         inst.City,
			Logo:           firstMeta(inst.Meta, "College_Logo"),
			Rating:         rating,
			Courses:        courses,
			CoursesCount:   len(courses),
			TotalIntake:    firstMeta(inst.Meta, "Student_Intake", "Total_Intake"),
			Fees:           firstMeta(inst.Meta, "Annual_Fees_INR", "Annual_Fees_(INR)"),
			PlacementRange: placementRange(departments, inst.Meta),
			CETCutoffRange: cutoffRange(cutoffs),
		})
	}

	return domain.CollegeScan{
		Colleges:     colleges,
		Cities:       regions,
		TotalRecords: total,
	}, nil
}

// CollegeReport assembles the full single-college document: institute
// metadata, per-department intake and latest CET cutoff, facilities,
// placement details, and location.
func (s *Service) CollegeReport(ctx context.Context, sjCode int) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inst, err := s.instituteRepo.InstituteBySJCode(ctx, sjCode, nil)
	if err != nil {
		return nil, err
	}
	departments, err := s.instituteRepo.DepartmentsBySJCode(ctx, sjCode)
	if err != nil {
		return nil, fmt.Errorf("departments for %d: %w", sjCode, err)
	}

	deptDocs := make([]map[string]any, 0, len(departments))
	for _, dept := range departments {
		var cet any
		rec, err := s.cutoffRepo.LatestBySJCodeAndCourse(ctx, sjCode, dept.CoursesOffered)
		if err == nil {
			if v, ok := rec.CategoryCutoff("GOPENS"); ok {
				cet = round2(v)
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("latest cutoff for %q: %w", dept.CoursesOffered, err)
		}

		nba := dept.NBAAccredited
		if nba == "" {
			nba = "No"
		}
		deptDocs = append(deptDocs, map[string]any{
			"Department_Name":      dept.CoursesOffered,
			"NBA_Accredited":       nba,
			"Placement_Percentage": dept.PlacementPercentage,
			"Student_Intake":       dept.StudentIntake,
			"CET":                  cet,
			"JEE":                  nil,
			"Other Entrance":       nil,
		})
	}

	meta := inst.Meta
	labFacilities := firstMeta(meta, "Lab_Facilities")
	internet := "No"
	if labFacilities != nil && labFacilities != "" {
		internet = "Yes"
	}

	return map[string]any{
		"College_Name":           inst.CollegeName,
		"College_Website":        inst.CollegeWebsite,
		"College_Address":        firstMeta(meta, "College_Address"),
		"City":                   inst.City,
		"College_Type":           inst.CollegeType,
		"NAAC_Acrredition":       firstMeta(meta, "NAAC_Acrredition"),
		"University_Affiliation": firstMeta(meta, "University_Affiliation"),
		"Annual_Fees_(INR)":      firstMeta(meta, "Annual_Fees_(INR)", "Annual_Fees_INR"),
		"Previous_Year_Highest_Package_Offered_(LPA)": firstMeta(meta, "Previous_Year_Highest_Package_Offered_(LPA)", "Previous_Year_Highest_Package_Offered_LPA"),
		"Student_Intake":               firstMeta(meta, "Student_Intake"),
		"College_Reviews_out_of_5":     firstMeta(meta, "College_Reviews_out_of_5"),
		"Faculty_Student_Ratio":        firstMeta(meta, "Faculty_Student_Ratio"),
		"NIRF_Rank_Min":                firstMeta(meta, "NIRF_Rank_Min"),
		"NIRF_Rank_Max":                firstMeta(meta, "NIRF_Rank_Max"),
		"College_Code":                 inst.CollegeCode,
		"Average_Placement_Percentage": nil,
		"SJ_Institute_Code":            inst.SJInstituteCode,
		"College_Logo":                 firstMeta(meta, "College_Logo"),
		"Established_Year":             firstMeta(meta, "Established_Year"),
		"Engineering_Streams":          len(departments),
		"Admission_Process":            "Merit based on MHT-CET, JEE Main",
		"Departments":                  deptDocs,
		"Facilities": map[string]any{
			"Hostel":   metaOrDefault(meta, "College_Hostel_Available", "No"),
			"Lab":      labFacilities,
			"Sports":   firstMeta(meta, "Sports_Facilities"),
			"Bus":      metaOrDefault(meta, "College_Bus_Facility_Available", "No"),
			"Internet": internet,
		},
		"Placement_Details": map[string]any{
			"Overall_College_Placement_Percentage": firstMeta(meta, "Overall_College_Placement_Percentage"),
			"Highest_Package_LPA":                  firstMeta(meta, "Previous_Year_Highest_Package_Offered_(LPA)", "Previous_Year_Highest_Package_Offered_LPA"),
			"Average_Package_LPA":                  nil,
			"Top_Recruiters":                       firstMeta(meta, "Top_Recruiters"),
		},
		"Location": map[string]any{
			"Address":                          firstMeta(meta, "College_Address"),
			"City":                             inst.City,
			"Nearest_Railway_Station":          firstMeta(meta, "Nearest_Railway_Station"),
			"Distance_from_Railway_Station_km": firstMeta(meta, "Distance_from_Railway_Station_km"),
			"Nearest_Airport":                  firstMeta(meta, "Nearest_Airport"),
			"Distance_from_Airport_km":         firstMeta(meta, "Distance_from_Airport_km"),
		},
	}, nil
}

// AllCutoffs exports every institute+course cutoff at its newest published
// year, category values flattened to the top level. The export drops
// College_Name since consumers join on SJ_Institute_Code.
func (s *Service) AllCutoffs(ctx context.Context) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.cutoffRepo.AllLatestCutoffs(ctx)
	if err != nil {
		return nil, fmt.Errorf("all latest cutoffs: %w", err)
	}

	docs := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		doc := make(map[string]any, len(row.Categories)+9)
		for code, value := range row.Categories {
			doc[code] = value
		}
		doc["SJ_Institute_Code"] = row.SJInstituteCode
		doc["College_Code"] = row.CollegeCode
		doc["Course_Name"] = row.CourseName
		doc["Course_Code"] = row.CourseCode
		doc["Choice_Code"] = row.ChoiceCode
		doc["City"] = row.City
		doc["Region"] = row.Region
		doc["Year"] = row.Year
		doc["Round"] = row.Round
		docs = append(docs, doc)
	}
	return docs, nil
}

// filterDepartments keeps departments whose offered course matches any of
// the requested names, case-insensitively.
func filterDepartments(departments []domain.DepartmentMeta, courses []string) []domain.DepartmentMeta {
	if len(courses) == 0 {
		return departments
	}
	var out []domain.DepartmentMeta
	for _, dept := range departments {
		offered := strings.ToLower(dept.CoursesOffered)
		for _, course := range courses {
			if strings.Contains(offered, strings.ToLower(course)) {
				out = append(out, dept)
				break
			}
		}
	}
	return out
}

// uniqueCourses flattens the departments' comma-joined display names into a
// deduplicated list, first occurrence order.
func uniqueCourses(departments []domain.DepartmentMeta) []string {
	seen := make(map[string]bool)
	courses := make([]string, 0, len(departments))
	for _, dept := range departments {
		for _, name := range strings.Split(dept.CommonName, ",") {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			courses = append(courses, name)
		}
	}
	return courses
}

// placementRange spreads the departments' placement percentages. A single
// value reads as 0..value; no department data falls back to the overall
// college percentage.
func placementRange(departments []domain.DepartmentMeta, meta datatypes.JSONMap) domain.FloatRange {
	var values []float64
	for _, dept := range departments {
		if dept.PlacementPercentage == nil {
			continue
		}
		v := *dept.PlacementPercentage
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		values = append(values, v)
	}

	switch len(values) {
	case 0:
		if overall, ok := metaNumber(meta, "Overall_College_Placement_Percentage"); ok {
			return domain.FloatRange{Min: 0, Max: round2(overall)}
		}
		return domain.FloatRange{}
	case 1:
		return domain.FloatRange{Min: 0, Max: round2(values[0])}
	default:
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		return domain.FloatRange{Min: round2(lo), Max: round2(hi)}
	}
}

// cutoffRange spreads every category value across the newest year present
// in the rows.
func cutoffRange(rows []domain.CutoffRecord) domain.FloatRange {
	if len(rows) == 0 {
		return domain.FloatRange{}
	}

	latest := rows[0].Year
	for _, row := range rows[1:] {
		if row.Year > latest {
			latest = row.Year
		}
	}

	var lo, hi float64
	found := false
	for _, row := range rows {
		if row.Year != latest {
			continue
		}
		for code := range row.Categories {
			v, ok := row.CategoryCutoff(code)
			if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if !found {
				lo, hi = v, v
				found = true
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return domain.FloatRange{Min: round2(lo), Max: round2(hi)}
}

func metaNumber(meta datatypes.JSONMap, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := meta[key].(type) {
		case float64:
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				return v, true
			}
		case int:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func firstMeta(meta datatypes.JSONMap, keys ...string) any {
	for _, key := range keys {
		if v, ok := meta[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func metaOrDefault(meta datatypes.JSONMap, key string, fallback any) any {
	if v, ok := meta[key]; ok && v != nil {
		return v
	}
	return fallback
}
