package explore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"futureBridge/domain"
)

type fakeCutoffRepo struct {
	flatRows     []domain.CutoffRecord
	flatQueries  []CategoryCourseQuery
	floorRows    []domain.CutoffRecord
	floorQueries []CourseFloorQuery
	carrySeat    *domain.CutoffRecord
	latest       *domain.CutoffRecord
	bySJ         map[int][]domain.CutoffRecord
	allLatest    []domain.CutoffRecord
}

func (f *fakeCutoffRepo) FindByCategoryCourseLocation(_ context.Context, q CategoryCourseQuery) ([]domain.CutoffRecord, error) {
	f.flatQueries = append(f.flatQueries, q)
	return f.flatRows, nil
}

func (f *fakeCutoffRepo) FindCoursesAboveFloor(_ context.Context, q CourseFloorQuery) ([]domain.CutoffRecord, error) {
	f.floorQueries = append(f.floorQueries, q)
	return f.floorRows, nil
}

func (f *fakeCutoffRepo) FindByCourseForRound(context.Context, bool, int, string, int, int) (domain.CutoffRecord, error) {
	if f.carrySeat == nil {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	return *f.carrySeat, nil
}

func (f *fakeCutoffRepo) LatestBySJCodeAndCourse(context.Context, int, string) (domain.CutoffRecord, error) {
	if f.latest == nil {
		return domain.CutoffRecord{}, domain.ErrNotFound
	}
	return *f.latest, nil
}

func (f *fakeCutoffRepo) CutoffsBySJCode(_ context.Context, sjCode int, _ []string) ([]domain.CutoffRecord, error) {
	return f.bySJ[sjCode], nil
}

func (f *fakeCutoffRepo) AllLatestCutoffs(context.Context) ([]domain.CutoffRecord, error) {
	return f.allLatest, nil
}

type fakeInstituteRepo struct {
	institutes      map[int]domain.InstituteMeta
	departments     map[int64]domain.DepartmentMeta
	departmentsBySJ map[int][]domain.DepartmentMeta
	searchResults   []domain.InstituteMeta
	searchTotal     int64
	searchQueries   []InstituteSearchQuery
	regions         []string
}

func (f *fakeInstituteRepo) InstituteBySJCode(_ context.Context, sjCode int, _ []string) (domain.InstituteMeta, error) {
	inst, ok := f.institutes[sjCode]
	if !ok {
		return domain.InstituteMeta{}, domain.ErrNotFound
	}
	return inst, nil
}

func (f *fakeInstituteRepo) InstitutesByName(context.Context, string) ([]domain.InstituteMeta, error) {
	var out []domain.InstituteMeta
	for _, inst := range f.institutes {
		out = append(out, inst)
	}
	return out, nil
}

func (f *fakeInstituteRepo) InstituteByCollegeCode(context.Context, int) (domain.InstituteMeta, error) {
	return domain.InstituteMeta{}, domain.ErrNotFound
}

func (f *fakeInstituteRepo) DepartmentsBySJCode(_ context.Context, sjCode int) ([]domain.DepartmentMeta, error) {
	return f.departmentsBySJ[sjCode], nil
}

func (f *fakeInstituteRepo) SearchInstitutes(_ context.Context, q InstituteSearchQuery) ([]domain.InstituteMeta, int64, error) {
	f.searchQueries = append(f.searchQueries, q)
	return f.searchResults, f.searchTotal, nil
}

func (f *fakeInstituteRepo) AllRegions(context.Context) ([]string, error) {
	return f.regions, nil
}

func (f *fakeInstituteRepo) DepartmentByChoiceCode(_ context.Context, code int64) (domain.DepartmentMeta, error) {
	dept, ok := f.departments[code]
	if !ok {
		return domain.DepartmentMeta{}, domain.ErrNotFound
	}
	return dept, nil
}

type fakeVacancyRepo struct {
	codes []int64
	calls int
}

func (f *fakeVacancyRepo) VacantChoiceCodes(context.Context, int) ([]int64, error) {
	f.calls++
	return f.codes, nil
}

type fakeStore struct {
	upserts []domain.RecommendationGroup
	rounds  []int
	diploma []bool
	stored  *domain.RecommendationGroup
}

func (f *fakeStore) Upsert(_ context.Context, group domain.RecommendationGroup, roundNo int, diploma bool) error {
	f.upserts = append(f.upserts, group)
	f.rounds = append(f.rounds, roundNo)
	f.diploma = append(f.diploma, diploma)
	return nil
}

func (f *fakeStore) Find(context.Context, string, int, bool) (*domain.RecommendationGroup, error) {
	return f.stored, nil
}

type fakeDiplomaRepo struct {
	saved []domain.DiplomaUserConfig
}

func (f *fakeDiplomaRepo) SaveConfig(_ context.Context, cfg domain.DiplomaUserConfig) error {
	f.saved = append(f.saved, cfg)
	return nil
}

func (f *fakeDiplomaRepo) FindConfig(context.Context, string, int) (*domain.DiplomaUserConfig, error) {
	return nil, nil
}

type fakePayments struct {
	paid        bool
	paidDiploma bool
	accept      bool
}

func (f *fakePayments) IsPaid(context.Context, string) (bool, error)        { return f.paid, nil }
func (f *fakePayments) IsPaidDiploma(context.Context, string) (bool, error) { return f.paidDiploma, nil }
func (f *fakePayments) AcceptPaymentEnabled(context.Context) (bool, error)  { return f.accept, nil }

type fixture struct {
	cutoffs    *fakeCutoffRepo
	institutes *fakeInstituteRepo
	vacancy    *fakeVacancyRepo
	store      *fakeStore
	diploma    *fakeDiplomaRepo
	payments   *fakePayments
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		cutoffs: &fakeCutoffRepo{},
		institutes: &fakeInstituteRepo{
			institutes:  make(map[int]domain.InstituteMeta),
			departments: make(map[int64]domain.DepartmentMeta),
		},
		vacancy:  &fakeVacancyRepo{},
		store:    &fakeStore{},
		diploma:  &fakeDiplomaRepo{},
		payments: &fakePayments{},
	}
	f.svc = NewService(f.cutoffs, f.institutes, f.vacancy, f.store, f.diploma, f.payments)
	return f
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt64(v int64) *int64     { return &v }

func exploreRow(sjCode int, course string, categories map[string]any) domain.CutoffRecord {
	return domain.CutoffRecord{
		SJInstituteCode: sjCode,
		CourseName:      course,
		Year:            2024,
		Categories:      datatypes.JSONMap(categories),
	}
}

func validRequest() RecommendationRequest {
	return RecommendationRequest{
		Category:      "GOPENS",
		CETPercentile: ptrFloat(90),
		CETCourses:    []string{"Computer"},
		Locations:     []string{"Pune"},
		Round:         1,
	}
}

func TestGenerateRecommendationsIncompleteRequest(t *testing.T) {
	f := newFixture()
	f.payments.paid = true

	req := validRequest()
	req.Category = ""

	group, err := f.svc.GenerateRecommendations(context.Background(), req, "s@example.com")
	require.NoError(t, err)
	require.Equal(t, 0, group.Total())
	require.False(t, group.IsPayment)
	require.Empty(t, f.store.upserts, "incomplete requests are not persisted")
}

func TestGenerateRecommendationsScoresAndPersists(t *testing.T) {
	f := newFixture()
	f.payments.paid = true
	f.payments.accept = true
	f.cutoffs.flatRows = []domain.CutoffRecord{
		exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 88.124}),
		exploreRow(99, "Computer Engineering", map[string]any{"GOPENS": 85.0}), // unknown institute
	}
	f.institutes.institutes[11] = domain.InstituteMeta{SJInstituteCode: 11, CollegeName: "COEP", City: "Pune"}

	group, err := f.svc.GenerateRecommendations(context.Background(), validRequest(), "s@example.com")
	require.NoError(t, err)

	// Flat lookup always targets round 1.
	require.Len(t, f.cutoffs.flatQueries, 1)
	require.Equal(t, 1, f.cutoffs.flatQueries[0].Round)

	// The unknown institute's row is skipped.
	require.Equal(t, 1, group.Total())
	require.True(t, group.IsPayment)
	require.True(t, group.AcceptPayment)
	require.Len(t, f.store.upserts, 1)

	// diff 1.876 lands in the 85 bracket; cutoff is rounded to 2 decimals.
	candidate := group.Match[0]
	require.Equal(t, 85, candidate.AdmissionProbability)
	require.Equal(t, 88.12, candidate.Cutoff)
	require.Equal(t, "COEP", candidate.College["College_Name"])
}

func TestGenerateRecommendationsExactCutoffFallsToFloor(t *testing.T) {
	f := newFixture()
	f.cutoffs.flatRows = []domain.CutoffRecord{
		exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 90.0}),
	}
	f.institutes.institutes[11] = domain.InstituteMeta{SJInstituteCode: 11}

	req := validRequest() // percentile 90 == cutoff 90
	group, err := f.svc.GenerateRecommendations(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	// Probability 10 is below the explore Dream bound of 20, so the
	// candidate is dropped from every tier.
	require.Equal(t, 0, group.Total())
	require.Len(t, f.store.upserts, 1, "the empty-scored group is still persisted")
}

func TestGenerateRoundZeroChoiceUsesFlatLookup(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.Round = 2
	req.LastRoundCollegeChoiceCode = ptrInt64(0)

	_, err := f.svc.GenerateRecommendationsRound(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Len(t, f.cutoffs.flatQueries, 1)
	require.Equal(t, 2, f.cutoffs.flatQueries[0].Round)
	require.Empty(t, f.cutoffs.floorQueries)
	require.Zero(t, f.vacancy.calls)
}

func TestGenerateRoundCarryAppliesFloorAndVacancy(t *testing.T) {
	f := newFixture()
	f.institutes.departments[7007] = domain.DepartmentMeta{
		SJInstituteCode: 11,
		CoursesOffered:  "Computer Engineering",
		ChoiceCode:      7007,
	}
	seat := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 87.2})
	f.cutoffs.carrySeat = &seat
	f.vacancy.codes = []int64{7007, 8008}

	req := validRequest()
	req.Round = 2
	req.LastRoundCollegeChoiceCode = ptrInt64(7007)

	_, err := f.svc.GenerateRecommendationsRound(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Len(t, f.cutoffs.floorQueries, 1)
	q := f.cutoffs.floorQueries[0]
	require.Equal(t, 87.2, q.Floor)
	require.Equal(t, []int64{7007, 8008}, q.VacantCodes)
	require.Equal(t, 1, f.vacancy.calls)
}

func TestGenerateRoundThreeSkipsVacancyGate(t *testing.T) {
	f := newFixture()
	f.institutes.departments[7007] = domain.DepartmentMeta{SJInstituteCode: 11, CoursesOffered: "Computer Engineering"}
	seat := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 87.2})
	f.cutoffs.carrySeat = &seat

	req := validRequest()
	req.Round = 3
	req.LastRoundCollegeChoiceCode = ptrInt64(7007)

	_, err := f.svc.GenerateRecommendationsRound(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Zero(t, f.vacancy.calls, "vacancy gating applies to round 2 only")
	require.Len(t, f.cutoffs.floorQueries, 1)
	require.Empty(t, f.cutoffs.floorQueries[0].VacantCodes)
}

func TestGenerateRoundUnknownChoiceDegradesToEmpty(t *testing.T) {
	f := newFixture()
	f.payments.paid = true
	f.payments.accept = true

	req := validRequest()
	req.Round = 2
	req.LastRoundCollegeChoiceCode = ptrInt64(424242)

	group, err := f.svc.GenerateRecommendationsRound(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Equal(t, 0, group.Total())
	// The group still persists with the real payment flags.
	require.True(t, group.IsPayment)
	require.Len(t, f.store.upserts, 1)
}

func TestGenerateDiplomaStoresConfigBeforeValidation(t *testing.T) {
	f := newFixture()

	req := RecommendationRequest{Round: 2} // incomplete on purpose

	group, err := f.svc.GenerateRecommendationsDiploma(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Len(t, f.diploma.saved, 1)
	require.Equal(t, "s@example.com", f.diploma.saved[0].UserEmail)
	require.Equal(t, 2, f.diploma.saved[0].RoundNo)
	require.Equal(t, 0, group.Total())
	require.Empty(t, f.store.upserts)
}

func TestGenerateDiplomaCarryNeverGatesOnVacancy(t *testing.T) {
	f := newFixture()
	f.institutes.departments[5005] = domain.DepartmentMeta{SJInstituteCode: 11, CoursesOffered: "Computer Engineering"}
	seat := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 82.0})
	f.cutoffs.carrySeat = &seat

	req := validRequest()
	req.Round = 2
	req.LastRoundCollegeChoiceCode = ptrInt64(5005)

	_, err := f.svc.GenerateRecommendationsDiploma(context.Background(), req, "s@example.com")
	require.NoError(t, err)

	require.Zero(t, f.vacancy.calls)
	require.Len(t, f.cutoffs.floorQueries, 1)
	require.True(t, f.cutoffs.floorQueries[0].Diploma)
	require.Len(t, f.store.diploma, 1)
	require.True(t, f.store.diploma[0])
}

func TestAdmissionChances(t *testing.T) {
	f := newFixture()
	latest := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 92.5})
	latest.CollegeName = "COEP"
	f.cutoffs.latest = &latest

	chance, err := f.svc.AdmissionChances(context.Background(), 11, "Computer Engineering", 95.5, "")
	require.NoError(t, err)

	require.Equal(t, "GOPENS", chance.Category, "category defaults to GOPENS")
	require.Equal(t, 95, chance.AdmissionProbability)
	require.Equal(t, 92.5, chance.LastYearCutoff)
	require.Equal(t, "COEP", chance.CollegeName)
}

func TestAdmissionChancesMissingCategory(t *testing.T) {
	f := newFixture()
	latest := exploreRow(11, "Computer Engineering", map[string]any{"GOPENS": 92.5})
	f.cutoffs.latest = &latest

	_, err := f.svc.AdmissionChances(context.Background(), 11, "Computer Engineering", 95.5, "GSTS")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetRecommendationListRefreshesPayment(t *testing.T) {
	f := newFixture()
	stored := domain.EmptyRecommendationGroup("s@example.com", 1)
	f.store.stored = &stored
	f.payments.paid = true

	group, err := f.svc.GetRecommendationList(context.Background(), "s@example.com")
	require.NoError(t, err)
	require.True(t, group.IsPayment)
}

func TestGetRecommendationListNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetRecommendationList(context.Background(), "s@example.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
