package recommend

import (
	"futureBridge/domain"
)

// tierRows is one university tier's query result together with the category
// codes its rows are scored against, preferred code first.
type tierRows struct {
	origin     domain.TierOrigin
	categories []string
	rows       []domain.CutoffRecord
}

// consideredCutoff picks which category's cutoff a row is scored against.
// The first code is the default; for female students the "L" sibling wins
// when it is nonzero and lower (a reserved seat with a softer cutoff), or
// when the default seat type is not offered at all. A zero final value means
// neither seat type applies, so the row is skipped.
func consideredCutoff(row domain.CutoffRecord, codes []string, female bool) (float64, string, bool) {
	if len(codes) == 0 {
		return 0, "", false
	}

	value, _ := row.CategoryCutoff(codes[0])
	considered := codes[0]

	if female && len(codes) > 1 && codes[1] != "" {
		sibling, ok := row.CategoryCutoff(codes[1])
		if ok && sibling != 0 && (sibling < value || value == 0) {
			value = sibling
			considered = codes[1]
		}
	}

	if value == 0 {
		return 0, "", false
	}
	return value, considered, true
}

// scoreTier scores every row of a tier against the student's percentile.
// The output category carries the tier label so the client can show which
// quota the candidate came from.
func scoreTier(t tierRows, score float64, female bool, cfg FlowConfig) []domain.CandidateScore {
	out := make([]domain.CandidateScore, 0, len(t.rows))
	label := t.origin.Label()

	for _, row := range t.rows {
		cutoff, considered, ok := consideredCutoff(row, t.categories, female)
		if !ok {
			continue
		}

		prob, msg := Probability(score, cutoff, cfg.Boundary)
		out = append(out, domain.CandidateScore{
			College: map[string]any{
				"College_Name": row.CollegeName,
				"College_Code": row.CollegeCode,
				"Course_Name":  row.CourseName,
				"Course_Code":  row.CourseCode,
				"Location":     row.City,
			},
			AdmissionProbability: prob,
			ProbabilityMessage:   msg,
			CETPercentile:        score,
			Category:             considered + " - " + label,
			Cutoff:               cutoff,
		})
	}

	return out
}
