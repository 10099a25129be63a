package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"futureBridge/domain"
	"futureBridge/pkg/logger"
)

// CutoffYear is the admission year of the currently loaded cutoff lists.
const CutoffYear = 2024

// CategoryFloor pairs a category code with the minimum cutoff a row must
// exceed to be eligible. A zero floor means no lower bound.
type CategoryFloor struct {
	Code  string
	Floor float64
}

// CutoffFilter is the row filter of one tier query. Category floors are
// OR-ed: a row qualifies when any listed category is non-null and strictly
// above its floor.
type CutoffFilter struct {
	Year      int
	Round     int
	Districts []string // nil = no district restriction
	Locations []string // nil or containing "ALL" = all cities
	Branches  []string // nil or containing "ALL" = all courses
	Floors    []CategoryFloor
}

type CutoffRepository interface {
	FindCutoffs(ctx context.Context, examType string, filter CutoffFilter) ([]domain.CutoffRecord, error)
	// FindByCourseCode returns the prior-choice row whose course code matches
	// the carry-forward key. Returns domain.ErrNotFound when absent.
	FindByCourseCode(ctx context.Context, examType, courseCode string) (domain.CutoffRecord, error)
	SearchByCollegeName(ctx context.Context, examType, collegeName string) ([]domain.CutoffRecord, error)
	SearchByCollegeCode(ctx context.Context, examType string, collegeCode int) ([]domain.CutoffRecord, error)
	SearchByChoiceCode(ctx context.Context, examType, choiceCode string) (domain.CutoffRecord, error)
}

type UniversityMapRepository interface {
	// UniversityForDistrict returns domain.ErrNotFound for unmapped districts.
	UniversityForDistrict(ctx context.Context, district string) (string, error)
	DistrictsForUniversity(ctx context.Context, university string) ([]string, error)
	AllDistricts(ctx context.Context) ([]string, error)
}

type PaymentChecker interface {
	IsPaidForExam(ctx context.Context, username, examType string) (bool, error)
	AcceptPaymentEnabled(ctx context.Context) (bool, error)
}

type RecommendationStore interface {
	Upsert(ctx context.Context, group domain.RecommendationGroup, roundNo int, examType string) error
	// Find returns nil without error when no group has been generated yet.
	Find(ctx context.Context, username string, roundNo int, examType string) (*domain.RecommendationGroup, error)
}

type PreferenceRepository interface {
	SaveCollegeConfig(ctx context.Context, cfg domain.CollegeConfig) error
	FindCollegeConfigs(ctx context.Context, email string) ([]domain.CollegeConfig, error)
	SaveRoundPreferences(ctx context.Context, prefs domain.RoundPreferences) error
	FindRoundPreferences(ctx context.Context, email, examType string, roundNo int) (*domain.RoundPreferences, error)
	SaveRoundChoice(ctx context.Context, choice domain.CollegeRoundPreference) error
	FindRoundChoice(ctx context.Context, email, examType string, roundNo int) (*domain.CollegeRoundPreference, error)
}

// Service implements the round-preference recommendation flow: resolve the
// prior-choice floor, fetch the home/other/state cutoff tiers, score them,
// allocate tiers, and persist the group.
type Service struct {
	cutoffRepo CutoffRepository
	univRepo   UniversityMapRepository
	prefRepo   PreferenceRepository
	store      RecommendationStore
	payments   PaymentChecker
}

func NewService(
	cutoffRepo CutoffRepository,
	univRepo UniversityMapRepository,
	prefRepo PreferenceRepository,
	store RecommendationStore,
	payments PaymentChecker,
) *Service {
	return &Service{
		cutoffRepo: cutoffRepo,
		univRepo:   univRepo,
		prefRepo:   prefRepo,
		store:      store,
		payments:   payments,
	}
}

// Generate runs one recommendation pass for the given round preferences and
// persists the resulting group. An ineligible request (no matching cutoff
// rows or a non-positive score) persists a valid empty group instead of
// failing.
func (s *Service) Generate(ctx context.Context, prefs domain.RoundPreferences) (domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationGroup{}, err
	}

	var prevFloors map[string]float64
	if prefs.LastCollegeRoundChoiceCode != 0 {
		code := strconv.FormatInt(prefs.LastCollegeRoundChoiceCode, 10)
		rec, err := s.cutoffRepo.FindByCourseCode(ctx, prefs.ExamType, code)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// No prior-year row for the locked seat; continue without floors.
		case err != nil:
			return domain.RecommendationGroup{}, fmt.Errorf("previous choice cutoff: %w", err)
		default:
			prevFloors = numericCategories(rec)
		}
	}

	tiers, err := s.collectTiers(ctx, prefs, prevFloors)
	if err != nil {
		return domain.RecommendationGroup{}, err
	}

	total := 0
	for _, t := range tiers {
		total += len(t.rows)
	}
	if total == 0 || prefs.Score <= 0 {
		group := domain.EmptyRecommendationGroup(prefs.UserEmail, prefs.RoundNo)
		if err := s.store.Upsert(ctx, group, prefs.RoundNo, prefs.ExamType); err != nil {
			return group, fmt.Errorf("store empty recommendation group: %w", err)
		}
		EmptyGroupsTotal.WithLabelValues(RoundPreferenceFlow.Name).Inc()
		return group, nil
	}

	isPaid, err := s.payments.IsPaidForExam(ctx, prefs.UserEmail, prefs.ExamType)
	if err != nil {
		return domain.RecommendationGroup{}, fmt.Errorf("payment status: %w", err)
	}
	acceptPayment, err := s.payments.AcceptPaymentEnabled(ctx)
	if err != nil {
		return domain.RecommendationGroup{}, fmt.Errorf("accept payment flag: %w", err)
	}

	female := prefs.Gender == "female"
	var results []domain.CandidateScore
	for _, t := range tiers {
		results = append(results, scoreTier(t, prefs.Score, female, RoundPreferenceFlow)...)
	}

	group := NewGroup(prefs.UserEmail, prefs.RoundNo, results, RoundPreferenceFlow, isPaid, acceptPayment)
	if err := s.store.Upsert(ctx, group, prefs.RoundNo, prefs.ExamType); err != nil {
		return group, fmt.Errorf("store recommendation group: %w", err)
	}

	GroupsGeneratedTotal.WithLabelValues(RoundPreferenceFlow.Name, prefs.ExamType).Inc()
	logger.Info("recommendation group generated",
		"user", prefs.UserEmail,
		"round", prefs.RoundNo,
		"exam_type", prefs.ExamType,
		"total", group.Total(),
	)
	return group, nil
}

// collectTiers fetches the cutoff rows of every applicable university tier.
// Home and other tiers run only for home-quota categories with a mapped
// district; the state tier always runs. The prior-choice floor is refined
// tier by tier, each tier falling back to the previous tier's floor for
// codes the prior-choice row does not carry.
func (s *Service) collectTiers(ctx context.Context, prefs domain.RoundPreferences, prevFloors map[string]float64) ([]tierRows, error) {
	female := prefs.Gender == "female"
	fam := FamilyFor(prefs.Category)
	homeQuota := IsHomeQuota(prefs.Category)

	var homeDistricts, otherDistricts []string
	if homeQuota && prefs.District != "" {
		university, err := s.univRepo.UniversityForDistrict(ctx, prefs.District)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			// Unmapped district: home and other tiers are skipped.
		case err != nil:
			return nil, fmt.Errorf("university for district %q: %w", prefs.District, err)
		default:
			homeDistricts, err = s.univRepo.DistrictsForUniversity(ctx, university)
			if err != nil {
				return nil, fmt.Errorf("districts of university %q: %w", university, err)
			}
			sort.Strings(homeDistricts)

			all, err := s.univRepo.AllDistricts(ctx)
			if err != nil {
				return nil, fmt.Errorf("all districts: %w", err)
			}
			otherDistricts = complement(all, homeDistricts)
		}
	}

	base := CutoffFilter{
		Year:      CutoffYear,
		Round:     prefs.RoundNo,
		Locations: prefs.Locations,
		Branches:  prefs.Branches,
	}

	floor := 0.0
	refineFloor := func(primary, sibling string) {
		next := floor
		if v, ok := prevFloors[primary]; ok {
			next = v
		}
		if sibling != "" {
			sib := next
			if v, ok := prevFloors[sibling]; ok {
				sib = v
			}
			if sib < next {
				next = sib
			}
		}
		floor = next
	}

	var tiers []tierRows

	if homeQuota && len(homeDistricts) > 0 {
		primary := fam.ForTier(domain.OriginHomeUniversity)
		if primary == "" {
			// Unknown H-suffixed codes have no family entry; the literal
			// code still drives the home tier.
			primary = prefs.Category
		}
		sibling := fam.FemaleForTier(domain.OriginHomeUniversity)

		codes := []string{primary}
		if female {
			codes = append(codes, sibling)
			refineFloor(primary, sibling)
		} else {
			refineFloor(primary, "")
		}

		filter := base
		filter.Districts = homeDistricts
		filter.Floors = floorsFor(codes, floor)
		rows, err := s.cutoffRepo.FindCutoffs(ctx, prefs.ExamType, filter)
		if err != nil {
			return nil, fmt.Errorf("home university cutoffs: %w", err)
		}
		tiers = append(tiers, tierRows{
			origin:     domain.OriginHomeUniversity,
			categories: []string{primary, sibling},
			rows:       rows,
		})
	}

	if homeQuota && len(otherDistricts) > 0 {
		primary := fam.ForTier(domain.OriginOtherUniversity)
		sibling := fam.FemaleForTier(domain.OriginOtherUniversity)

		codes := []string{primary}
		if female {
			codes = append(codes, sibling)
			refineFloor(primary, sibling)
		} else {
			refineFloor(primary, "")
		}

		filter := base
		filter.Districts = otherDistricts
		filter.Floors = floorsFor(codes, floor)
		rows, err := s.cutoffRepo.FindCutoffs(ctx, prefs.ExamType, filter)
		if err != nil {
			return nil, fmt.Errorf("other university cutoffs: %w", err)
		}
		tiers = append(tiers, tierRows{
			origin:     domain.OriginOtherUniversity,
			categories: []string{primary, sibling},
			rows:       rows,
		})
	}

	// State level always runs. For non-home-quota categories the literal
	// requested code joins the query alongside the state code.
	statePrimary := fam.ForTier(domain.OriginStateLevel)
	stateSibling := fam.FemaleForTier(domain.OriginStateLevel)

	codes := []string{statePrimary}
	if female {
		codes = append(codes, stateSibling)
		refineFloor(statePrimary, stateSibling)
	} else {
		refineFloor(statePrimary, "")
	}
	stateScoring := []string{statePrimary, stateSibling}
	if !homeQuota {
		codes = appendUnique(codes, prefs.Category)
		if v, ok := prevFloors[prefs.Category]; ok {
			floor = v
		}
		stateScoring = []string{prefs.Category}
	}

	filter := base
	filter.Floors = floorsFor(codes, floor)
	rows, err := s.cutoffRepo.FindCutoffs(ctx, prefs.ExamType, filter)
	if err != nil {
		return nil, fmt.Errorf("state level cutoffs: %w", err)
	}
	tiers = append(tiers, tierRows{
		origin:     domain.OriginStateLevel,
		categories: stateScoring,
		rows:       rows,
	})

	return tiers, nil
}

// GetRecommendations returns the stored group for the round with the payment
// flag re-resolved, since entitlement can change after generation.
func (s *Service) GetRecommendations(ctx context.Context, email string, roundNo int, examType string) (*domain.RecommendationGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	group, err := s.store.Find(ctx, email, roundNo, examType)
	if err != nil {
		return nil, fmt.Errorf("find recommendation group: %w", err)
	}
	if group == nil {
		return nil, nil
	}

	isPaid, err := s.payments.IsPaidForExam(ctx, email, examType)
	if err != nil {
		return nil, fmt.Errorf("payment status: %w", err)
	}
	group.IsPayment = isPaid
	return group, nil
}

func (s *Service) StoreCollegeConfig(ctx context.Context, cfg domain.CollegeConfig) error {
	return s.prefRepo.SaveCollegeConfig(ctx, cfg)
}

func (s *Service) GetCollegeConfigs(ctx context.Context, email string) ([]domain.CollegeConfig, error) {
	return s.prefRepo.FindCollegeConfigs(ctx, email)
}

func (s *Service) StoreRoundPreferences(ctx context.Context, prefs domain.RoundPreferences) error {
	return s.prefRepo.SaveRoundPreferences(ctx, prefs)
}

func (s *Service) GetRoundPreferences(ctx context.Context, email, examType string, roundNo int) (*domain.RoundPreferences, error) {
	return s.prefRepo.FindRoundPreferences(ctx, email, examType, roundNo)
}

func (s *Service) StoreRoundChoice(ctx context.Context, choice domain.CollegeRoundPreference) error {
	return s.prefRepo.SaveRoundChoice(ctx, choice)
}

func (s *Service) GetRoundChoice(ctx context.Context, email, examType string, roundNo int) (*domain.CollegeRoundPreference, error) {
	return s.prefRepo.FindRoundChoice(ctx, email, examType, roundNo)
}

// numericCategories extracts the usable category floors from a prior-choice
// row, dropping null and non-numeric values.
func numericCategories(rec domain.CutoffRecord) map[string]float64 {
	out := make(map[string]float64, len(rec.Categories))
	for code := range rec.Categories {
		if v, ok := rec.CategoryCutoff(code); ok {
			out[code] = v
		}
	}
	return out
}

func floorsFor(codes []string, floor float64) []CategoryFloor {
	out := make([]CategoryFloor, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, CategoryFloor{Code: code, Floor: floor})
	}
	return out
}

func appendUnique(codes []string, code string) []string {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}

func complement(all, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, d := range exclude {
		excluded[d] = true
	}
	out := make([]string, 0, len(all))
	for _, d := range all {
		if !excluded[d] {
			out = append(out, d)
		}
	}
	return out
}
