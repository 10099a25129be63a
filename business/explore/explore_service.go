package explore

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/datatypes"

	"futureBridge/business/recommend"
	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

// RecommendationRequest is the explore-side generation input. Pointer fields
// distinguish "not sent" from zero values: a nil choice code means the
// student never locked a seat, while 0 means they explicitly opted into the
// flat lookup.
type RecommendationRequest struct {
	Category                   string   `json:"category"`
	CETPercentile              *float64 `json:"cet_percentile" validate:"omitempty,gte=0,lte=100"`
	CETCourses                 []string `json:"cet_course"`
	Locations                  []string `json:"location"`
	Round                      int      `json:"round"`
	LastRoundCollegeChoiceCode *int64   `json:"last_round_college_choice_code"`
}

// CategoryCourseQuery is the flat cutoff lookup: rows of the target year and
// round whose category value is non-null, narrowed by course and region
// substrings.
type CategoryCourseQuery struct {
	Category  string
	Courses   []string
	Locations []string
	Round     int
	Diploma   bool
}

// CourseFloorQuery is the round-carry lookup: rows whose category value is
// at or above the carried floor, optionally restricted to vacant seats.
type CourseFloorQuery struct {
	Category    string
	Floor       float64
	Courses     []string
	Locations   []string
	Round       int
	VacantCodes []int64
	Diploma     bool
}

type CutoffRepository interface {
	FindByCategoryCourseLocation(ctx context.Context, q CategoryCourseQuery) ([]domain.CutoffRecord, error)
	FindCoursesAboveFloor(ctx context.Context, q CourseFloorQuery) ([]domain.CutoffRecord, error)
	// FindByCourseForRound resolves the carried seat's cutoff row for the
	// target round. Returns domain.ErrNotFound when the course has no row.
	FindByCourseForRound(ctx context.Context, diploma bool, sjCode int, courseName string, year, round int) (domain.CutoffRecord, error)
	// LatestBySJCodeAndCourse returns the newest-year row for one course.
	LatestBySJCodeAndCourse(ctx context.Context, sjCode int, courseName string) (domain.CutoffRecord, error)
	// CutoffsBySJCode returns every cutoff row of one institute, optionally
	// narrowed by course name substrings.
	CutoffsBySJCode(ctx context.Context, sjCode int, courses []string) ([]domain.CutoffRecord, error)
	// AllLatestCutoffs returns the newest-year rows per (institute, course)
	// across the whole table.
	AllLatestCutoffs(ctx context.Context) ([]domain.CutoffRecord, error)
}

type InstituteRepository interface {
	// InstituteBySJCode returns domain.ErrNotFound when the institute is
	// unknown or filtered out by the region list.
	InstituteBySJCode(ctx context.Context, sjCode int, locations []string) (domain.InstituteMeta, error)
	InstitutesByName(ctx context.Context, name string) ([]domain.InstituteMeta, error)
	InstituteByCollegeCode(ctx context.Context, collegeCode int) (domain.InstituteMeta, error)
	DepartmentsBySJCode(ctx context.Context, sjCode int) ([]domain.DepartmentMeta, error)
	DepartmentByChoiceCode(ctx context.Context, choiceCode int64) (domain.DepartmentMeta, error)
	// SearchInstitutes pages through institutes matching the scan filters
	// and reports the unpaged match count.
	SearchInstitutes(ctx context.Context, q InstituteSearchQuery) ([]domain.InstituteMeta, int64, error)
	// AllRegions lists the distinct institute regions in ascending order.
	AllRegions(ctx context.Context) ([]string, error)
}

type VacancyRepository interface {
	VacantChoiceCodes(ctx context.Context, round int) ([]int64, error)
}

type RecommendationStore interface {
	Upsert(ctx context.Context, group domain.RecommendationGroup, roundNo int, diploma bool) error
	Find(ctx context.Context, username string, roundNo int, diploma bool) (*domain.RecommendationGroup, error)
}

type DiplomaConfigRepository interface {
	SaveConfig(ctx context.Context, cfg domain.DiplomaUserConfig) error
	FindConfig(ctx context.Context, email string, roundNo int) (*domain.DiplomaUserConfig, error)
}

type PaymentChecker interface {
	IsPaid(ctx context.Context, username string) (bool, error)
	IsPaidDiploma(ctx context.Context, username string) (bool, error)
	AcceptPaymentEnabled(ctx context.Context) (bool, error)
}

// Service implements the explore recommendation flows: the flat category
// lookup, the round-carry flow, and the diploma (DSY) flow, plus the
// institute searches and the single-seat admission chance answer.
type Service struct {
	cutoffRepo    CutoffRepository
	instituteRepo InstituteRepository
	vacancyRepo   VacancyRepository
	store         RecommendationStore
	diplomaRepo   DiplomaConfigRepository
	payments      PaymentChecker
}

func NewService(
	cutoffRepo CutoffRepository,
	instituteRepo InstituteRepository,
	vacancyRepo VacancyRepository,
	store RecommendationStore,
	diplomaRepo DiplomaConfigRepository,
	payments PaymentChecker,
) *Service {
	return &Service{
		cutoffRepo:    cutoffRepo,
		instituteRepo: instituteRepo,
		vacancyRepo:   vacancyRepo,
		store:         store,
		diplomaRepo:   diplomaRepo,
		payments:      payments,
	}
}

// GenerateRecommendations runs the flat explore flow: every round-1 row of
// the requested category, narrowed by courses and locations. An incomplete
// request returns an empty group without persisting anything.
func (s *Service) GenerateRecommendations(ctx context.Context, req RecommendationRequest, email string) (domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationGroup{}, err
	}

	if req.Category == "" || req.CETPercentile == nil || len(req.CETCourses) == 0 {
		recommend.EmptyGroupsTotal.WithLabelValues(recommend.ExploreFlow.Name).Inc()
		return domain.EmptyRecommendationGroup(email, 1), nil
	}

	rows, err := s.cutoffRepo.FindByCategoryCourseLocation(ctx, CategoryCourseQuery{
		Category:  req.Category,
		Courses:   req.CETCourses,
		Locations: req.Locations,
		Round:     1,
	})
	if err != nil {
		return domain.RecommendationGroup{}, fmt.Errorf("explore cutoffs: %w", err)
	}

	isPaid, acceptPayment, err := s.paymentFlags(ctx, email, false)
	if err != nil {
		return domain.RecommendationGroup{}, err
	}

	results := s.scoreRows(ctx, rows, req.Category, *req.CETPercentile, req.Locations, recommend.ExploreFlow)
	group := recommend.NewGroup(email, 1, results, recommend.ExploreFlow, isPaid, acceptPayment)
	if err := s.store.Upsert(ctx, group, 1, false); err != nil {
		return group, fmt.Errorf("store explore recommendations: %w", err)
	}

	recommend.GroupsGeneratedTotal.WithLabelValues(recommend.ExploreFlow.Name, domain.ExamCET).Inc()
	return group, nil
}

// GenerateRecommendationsRound runs the carry-forward flow for round two
// onward. A zero choice code falls back to the flat lookup for the target
// round; a real choice code derives the eligibility floor from that seat's
// cutoff in the target round. Round two additionally restricts candidates
// to seats on the provisional vacancy list.
func (s *Service) GenerateRecommendationsRound(ctx context.Context, req RecommendationRequest, email string) (domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationGroup{}, err
	}

	isPaid, acceptPayment, err := s.paymentFlags(ctx, email, false)
	if err != nil {
		return domain.RecommendationGroup{}, err
	}

	if req.Category == "" || req.CETPercentile == nil || len(req.CETCourses) == 0 || req.LastRoundCollegeChoiceCode == nil {
		recommend.EmptyGroupsTotal.WithLabelValues(recommend.ExploreRoundFlow.Name).Inc()
		return domain.EmptyRecommendationGroup(email, req.Round), nil
	}

	var rows []domain.CutoffRecord
	if *req.LastRoundCollegeChoiceCode == 0 {
		rows, err = s.cutoffRepo.FindByCategoryCourseLocation(ctx, CategoryCourseQuery{
			Category:  req.Category,
			Courses:   req.CETCourses,
			Locations: req.Locations,
			Round:     req.Round,
		})
		if err != nil {
			return domain.RecommendationGroup{}, fmt.Errorf("round cutoffs: %w", err)
		}
	} else {
		rows, err = s.carryRows(ctx, req, false)
		if err != nil {
			return domain.RecommendationGroup{}, err
		}
	}

	results := s.scoreRows(ctx, rows, req.Category, *req.CETPercentile, req.Locations, recommend.ExploreRoundFlow)
	group := recommend.NewGroup(email, req.Round, results, recommend.ExploreRoundFlow, isPaid, acceptPayment)
	if err := s.store.Upsert(ctx, group, req.Round, false); err != nil {
		return group, fmt.Errorf("store round recommendations: %w", err)
	}

	recommend.GroupsGeneratedTotal.WithLabelValues(recommend.ExploreRoundFlow.Name, domain.ExamCET).Inc()
	return group, nil
}

// GenerateRecommendationsDiploma runs the diploma (DSY) flow. The request
// snapshot is stored before any validation so an incomplete attempt is
// still visible for support. Diploma carries never apply vacancy gating.
func (s *Service) GenerateRecommendationsDiploma(ctx context.Context, req RecommendationRequest, email string) (domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationGroup{}, err
	}

	if err := s.diplomaRepo.SaveConfig(ctx, domain.DiplomaUserConfig{
		UserEmail: email,
		RoundNo:   req.Round,
		Config:    diplomaConfigSnapshot(req),
	}); err != nil {
		return domain.RecommendationGroup{}, fmt.Errorf("store diploma config: %w", err)
	}

	isPaid, acceptPayment, err := s.paymentFlags(ctx, email, true)
	if err != nil {
		return domain.RecommendationGroup{}, err
	}

	if req.LastRoundCollegeChoiceCode == nil && req.Round != 1 {
		recommend.EmptyGroupsTotal.WithLabelValues(recommend.DiplomaFlow.Name).Inc()
		return domain.EmptyRecommendationGroup(email, req.Round), nil
	}
	if req.Category == "" || req.CETPercentile == nil || len(req.CETCourses) == 0 {
		recommend.EmptyGroupsTotal.WithLabelValues(recommend.DiplomaFlow.Name).Inc()
		return domain.EmptyRecommendationGroup(email, req.Round), nil
	}

	var rows []domain.CutoffRecord
	choice := int64(0)
	if req.LastRoundCollegeChoiceCode != nil {
		choice = *req.LastRoundCollegeChoiceCode
	}
	if req.Round > 1 && choice != 0 {
		rows, err = s.carryRows(ctx, req, true)
		if err != nil {
			return domain.RecommendationGroup{}, err
		}
	} else {
		rows, err = s.cutoffRepo.FindByCategoryCourseLocation(ctx, CategoryCourseQuery{
			Category:  req.Category,
			Courses:   req.CETCourses,
			Locations: req.Locations,
			Round:     req.Round,
			Diploma:   true,
		})
		if err != nil {
			return domain.RecommendationGroup{}, fmt.Errorf("diploma cutoffs: %w", err)
		}
	}

	results := s.scoreRows(ctx, rows, req.Category, *req.CETPercentile, req.Locations, recommend.DiplomaFlow)
	group := recommend.NewGroup(email, req.Round, results, recommend.DiplomaFlow, isPaid, acceptPayment)
	if err := s.store.Upsert(ctx, group, req.Round, true); err != nil {
		return group, fmt.Errorf("store diploma recommendations: %w", err)
	}

	recommend.GroupsGeneratedTotal.WithLabelValues(recommend.DiplomaFlow.Name, "diploma").Inc()
	return group, nil
}

// carryRows resolves the carried seat's floor and fetches the candidate rows
// above it. A missing department or cutoff row degrades to no candidates
// instead of failing the request.
func (s *Service) carryRows(ctx context.Context, req RecommendationRequest, diploma bool) ([]domain.CutoffRecord, error) {
	choice := *req.LastRoundCollegeChoiceCode

	dept, err := s.instituteRepo.DepartmentByChoiceCode(ctx, choice)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("carry choice code has no department", "choice_code", choice)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("department for choice code %d: %w", choice, err)
	}

	rec, err := s.cutoffRepo.FindByCourseForRound(ctx, diploma, dept.SJInstituteCode, dept.CoursesOffered, recommend.CutoffYear, req.Round)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("carried seat has no cutoff row for round", "choice_code", choice, "round", req.Round)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("carried seat cutoff: %w", err)
	}

	floor, ok := rec.CategoryCutoff(req.Category)
	if !ok {
		// The carried seat never published a cutoff for this category, so
		// there is no baseline to compare against.
		return nil, nil
	}

	var vacant []int64
	if req.Round == 2 && !diploma {
		vacant, err = s.vacancyRepo.VacantChoiceCodes(ctx, req.Round)
		if err != nil {
			return nil, fmt.Errorf("vacant choice codes: %w", err)
		}
	}

	rows, err := s.cutoffRepo.FindCoursesAboveFloor(ctx, CourseFloorQuery{
		Category:    req.Category,
		Floor:       floor,
		Courses:     req.CETCourses,
		Locations:   req.Locations,
		Round:       req.Round,
		VacantCodes: vacant,
		Diploma:     diploma,
	})
	if err != nil {
		return nil, fmt.Errorf("courses above floor: %w", err)
	}
	return rows, nil
}

// scoreRows scores cutoff rows against the full institute document. Rows
// whose institute is unknown or filtered out by region are skipped.
func (s *Service) scoreRows(ctx context.Context, rows []domain.CutoffRecord, category string, percentile float64, locations []string, cfg recommend.FlowConfig) []domain.CandidateScore {
	results := make([]domain.CandidateScore, 0, len(rows))
	for _, row := range rows {
		cutoff, ok := row.CategoryCutoff(category)
		if !ok || row.SJInstituteCode == 0 {
			continue
		}

		meta, err := s.instituteRepo.InstituteBySJCode(ctx, row.SJInstituteCode, locations)
		if err != nil {
			continue
		}

		prob, msg := recommend.Probability(percentile, cutoff, cfg.Boundary)
		results = append(results, domain.CandidateScore{
			College:              meta.AsMap(),
			Course:               row.CourseName,
			AdmissionProbability: prob,
			ProbabilityMessage:   msg,
			CETPercentile:        percentile,
			Category:             category,
			Cutoff:               round2(cutoff),
		})
	}
	return results
}

// AdmissionChances answers the single college+course question against the
// latest published cutoff year.
func (s *Service) AdmissionChances(ctx context.Context, sjCode int, courseName string, percentile float64, category string) (domain.AdmissionChance, error) {
	if err := ctx.Err(); err != nil {
		return domain.AdmissionChance{}, err
	}
	if category == "" {
		category = "GOPENS"
	}

	rec, err := s.cutoffRepo.LatestBySJCodeAndCourse(ctx, sjCode, courseName)
	if err != nil {
		return domain.AdmissionChance{}, err
	}

	cutoff, ok := rec.CategoryCutoff(category)
	if !ok {
		return domain.AdmissionChance{}, fmt.Errorf("category %q has no cutoff for this course: %w", category, domain.ErrInvalidInput)
	}

	prob, msg := recommend.Probability(percentile, cutoff, recommend.ZeroExclusive)
	return domain.AdmissionChance{
		CollegeName:          rec.CollegeName,
		CourseName:           rec.CourseName,
		Category:             category,
		StudentCETPercentile: percentile,
		LastYearCutoff:       round2(cutoff),
		CutoffYear:           rec.Year,
		AdmissionProbability: prob,
		ProbabilityMessage:   msg,
	}, nil
}

// GetRecommendationList returns the stored explore group with the payment
// flag re-resolved.
func (s *Service) GetRecommendationList(ctx context.Context, email string) (*domain.RecommendationGroup, error) {
	return s.readGroup(ctx, email, 1, false)
}

// GetRecommendationListDiploma returns the stored diploma group for a round.
func (s *Service) GetRecommendationListDiploma(ctx context.Context, email string, roundNo int) (*domain.RecommendationGroup, error) {
	return s.readGroup(ctx, email, roundNo, true)
}

func (s *Service) readGroup(ctx context.Context, email string, roundNo int, diploma bool) (*domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	group, err := s.store.Find(ctx, email, roundNo, diploma)
	if err != nil {
		return nil, fmt.Errorf("find recommendations: %w", err)
	}
	if group == nil {
		return nil, domain.ErrNotFound
	}

	isPaid, err := s.payments.IsPaid(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	group.IsPayment = isPaid
	return group, nil
}

func (s *Service) GetDiplomaConfig(ctx context.Context, email string, roundNo int) (*domain.DiplomaUserConfig, error) {
	cfg, err := s.diplomaRepo.FindConfig(ctx, email, roundNo)
	if err != nil {
		return nil, fmt.Errorf("find diploma config: %w", err)
	}
	if cfg == nil {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

func (s *Service) paymentFlags(ctx context.Context, email string, diploma bool) (isPaid, acceptPayment bool, err error) {
	if diploma {
		isPaid, err = s.payments.IsPaidDiploma(ctx, email)
	} else {
		isPaid, err = s.payments.IsPaid(ctx, email)
	}
	if err != nil {
		return false, false, fmt.Errorf("payment status: %w", err)
	}

	acceptPayment, err = s.payments.AcceptPaymentEnabled(ctx)
	if err != nil {
		return false, false, fmt.Errorf("accept payment flag: %w", err)
	}
	return isPaid, acceptPayment, nil
}

func diplomaConfigSnapshot(req RecommendationRequest) datatypes.JSONMap {
	cfg := datatypes.JSONMap{
		"category":       req.Category,
		"cet_percentile": req.CETPercentile,
		"cet_course":     req.CETCourses,
		"location":       req.Locations,
		"round":          req.Round,
	}
	if req.LastRoundCollegeChoiceCode != nil {
		cfg["last_round_college_choice_code"] = *req.LastRoundCollegeChoiceCode
	}
	return cfg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
