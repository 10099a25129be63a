package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"futureBridge/domain"
)

func ptrInt(v int) *int { return &v }

func TestScanCollegesNoMatches(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ScanColleges(context.Background(), ScanQuery{CollegeNames: []string{"Nowhere"}})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScanCollegesBuildsSummaries(t *testing.T) {
	f := newFixture()
	f.institutes.searchResults = []domain.InstituteMeta{{
		SJInstituteCode: 11,
		CollegeCode:     6006,
		CollegeName:     "COEP",
		CollegeType:     "Government",
		City:            "Pune",
		Region:          "Pune City",
		Meta: datatypes.JSONMap{
			"College_Reviews_out_of_5": 4.5,
			"College_Logo":             "coep.png",
			"Student_Intake":           600,
			"Annual_Fees_(INR)":        90000,
		},
	}}
	f.institutes.searchTotal = 25
	f.institutes.regions = []string{"Mumbai", "Pune City"}
	f.institutes.departmentsBySJ = map[int][]domain.DepartmentMeta{11: {
		{CoursesOffered: "Computer Engineering", CommonName: "Computer Engineering", PlacementPercentage: ptrFloat(90)},
		{CoursesOffered: "Information Technology", CommonName: "Information Technology, Computer Engineering", PlacementPercentage: ptrFloat(70)},
	}}
	old := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 99.0})
	old.Year = 2023
	f.cutoffs.bySJ = map[int][]domain.CutoffRecord{11: {
		old,
		exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 95.0, "LOPENS": 91.5}),
	}}

	scan, err := f.svc.ScanColleges(context.Background(), ScanQuery{})
	require.NoError(t, err)

	// Unset paging falls back to the first page of ten.
	require.Len(t, f.institutes.searchQueries, 1)
	require.Equal(t, 0, f.institutes.searchQueries[0].Offset)
	require.Equal(t, 10, f.institutes.searchQueries[0].Limit)

	require.Equal(t, int64(25), scan.TotalRecords)
	require.Equal(t, []string{"Mumbai", "Pune City"}, scan.Cities)
	require.Len(t, scan.Colleges, 1)

	college := scan.Colleges[0]
	require.Equal(t, "COEP", college.CollegeName)
	require.Equal(t, 6006, college.InstituteID)
	require.Equal(t, 11, college.SJInstituteID)
	require.Equal(t, "Pune City", college.City, "city carries the region value")
	require.Equal(t, "Pune", college.Region, "Region carries the city value")
	require.Equal(t, "coep.png", college.Logo)
	require.Equal(t, 4.5, college.Rating)
	require.Equal(t, 600, college.TotalIntake)
	require.Equal(t, 90000, college.Fees)
	require.Equal(t, []string{"Computer Engineering", "Information Technology"}, college.Courses)
	require.Equal(t, 2, college.CoursesCount)
	require.Equal(t, domain.FloatRange{Min: 70, Max: 90}, college.PlacementRange)
	// The cutoff spread only reads the newest year's rows.
	require.Equal(t, domain.FloatRange{Min: 91.5, Max: 95}, college.CETCutoffRange)
}

func TestScanCollegesCourseFilterNarrowsDepartments(t *testing.T) {
	f := newFixture()
	f.institutes.searchResults = []domain.InstituteMeta{{SJInstituteCode: 11, CollegeName: "COEP"}}
	f.institutes.searchTotal = 1
	f.institutes.departmentsBySJ = map[int][]domain.DepartmentMeta{11: {
		{CoursesOffered: "Computer Engineering", CommonName: "Computer Engineering", PlacementPercentage: ptrFloat(90)},
		{CoursesOffered: "Civil Engineering", CommonName: "Civil Engineering", PlacementPercentage: ptrFloat(40)},
	}}

	scan, err := f.svc.ScanColleges(context.Background(), ScanQuery{Courses: []string{"computer"}})
	require.NoError(t, err)

	college := scan.Colleges[0]
	require.Equal(t, []string{"Computer Engineering"}, college.Courses)
	// One surviving placement value reads as a 0..value spread.
	require.Equal(t, domain.FloatRange{Min: 0, Max: 90}, college.PlacementRange)
}

func TestScanCollegesPlacementFallsBackToOverall(t *testing.T) {
	f := newFixture()
	f.institutes.searchResults = []domain.InstituteMeta{{
		SJInstituteCode: 11,
		Meta:            datatypes.JSONMap{"Overall_College_Placement_Percentage": 77.125},
	}}
	f.institutes.searchTotal = 1

	scan, err := f.svc.ScanColleges(context.Background(), ScanQuery{})
	require.NoError(t, err)
	require.Equal(t, domain.FloatRange{Min: 0, Max: 77.13}, scan.Colleges[0].PlacementRange)
}

func TestScanCollegesPagination(t *testing.T) {
	f := newFixture()
	f.institutes.searchResults = []domain.InstituteMeta{{SJInstituteCode: 11}}
	f.institutes.searchTotal = 60

	_, err := f.svc.ScanColleges(context.Background(), ScanQuery{Page: 3, Limit: 20})
	require.NoError(t, err)

	require.Equal(t, 40, f.institutes.searchQueries[0].Offset)
	require.Equal(t, 20, f.institutes.searchQueries[0].Limit)
}

func TestCollegeReportUnknownCollege(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CollegeReport(context.Background(), 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollegeReportAssemblesDocument(t *testing.T) {
	f := newFixture()
	f.institutes.institutes[11] = domain.InstituteMeta{
		SJInstituteCode: 11,
		CollegeCode:     6006,
		CollegeName:     "COEP",
		CollegeWebsite:  "https://coep.example",
		CollegeType:     "Government",
		City:            "Pune",
		Meta: datatypes.JSONMap{
			"College_Address":                      "Shivajinagar",
			"Lab_Facilities":                       "Well equipped",
			"Overall_College_Placement_Percentage": 88.0,
			"Top_Recruiters":                       "TCS, Infosys",
		},
	}
	f.institutes.departmentsBySJ = map[int][]domain.DepartmentMeta{11: {
		{CoursesOffered: "Computer Engineering", PlacementPercentage: ptrFloat(90), StudentIntake: ptrInt(60)},
	}}
	latest := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 94.567})
	f.cutoffs.latest = &latest

	report, err := f.svc.CollegeReport(context.Background(), 11)
	require.NoError(t, err)

	require.Equal(t, "COEP", report["College_Name"])
	require.Equal(t, 6006, report["College_Code"])
	require.Equal(t, 1, report["Engineering_Streams"])
	require.Equal(t, "Merit based on MHT-CET, JEE Main", report["Admission_Process"])
	require.Nil(t, report["Average_Placement_Percentage"])

	depts := report["Departments"].([]map[string]any)
	require.Len(t, depts, 1)
	require.Equal(t, "Computer Engineering", depts[0]["Department_Name"])
	require.Equal(t, "No", depts[0]["NBA_Accredited"])
	require.Equal(t, 94.57, depts[0]["CET"])
	require.Nil(t, depts[0]["JEE"])

	facilities := report["Facilities"].(map[string]any)
	require.Equal(t, "Well equipped", facilities["Lab"])
	require.Equal(t, "Yes", facilities["Internet"])
	require.Equal(t, "No", facilities["Hostel"])

	placement := report["Placement_Details"].(map[string]any)
	require.Equal(t, 88.0, placement["Overall_College_Placement_Percentage"])
	require.Nil(t, placement["Average_Package_LPA"])

	location := report["Location"].(map[string]any)
	require.Equal(t, "Shivajinagar", location["Address"])
	require.Equal(t, "Pune", location["City"])
}

func TestCollegeReportWithoutCutoffLeavesCETNull(t *testing.T) {
	f := newFixture()
	f.institutes.institutes[11] = domain.InstituteMeta{SJInstituteCode: 11, CollegeName: "COEP"}
	f.institutes.departmentsBySJ = map[int][]domain.DepartmentMeta{11: {
		{CoursesOffered: "Computer Engineering"},
	}}

	report, err := f.svc.CollegeReport(context.Background(), 11)
	require.NoError(t, err)

	depts := report["Departments"].([]map[string]any)
	require.Nil(t, depts[0]["CET"])

	facilities := report["Facilities"].(map[string]any)
	require.Equal(t, "No", facilities["Internet"])
}

func TestAllCutoffsFlattensCategoriesAndDropsCollegeName(t *testing.T) {
	f := newFixture()
	row := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 95.0, "LOPENS": 91.5})
	row.CollegeName = "COEP"
	row.CourseCode = "611524210"
	f.cutoffs.allLatest = []domain.CutoffRecord{row}

	docs, err := f.svc.AllCutoffs(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	require.Equal(t, 95.0, doc["GOPENS"])
	require.Equal(t, 91.5, doc["LOPENS"])
	require.Equal(t, 11, doc["SJ_Institute_Code"])
	require.Equal(t, "Computer Engineering", doc["Course_Name"])
	require.Equal(t, 2024, doc["Year"])
	require.NotContains(t, doc, "College_Name")
}
