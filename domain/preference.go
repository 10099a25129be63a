package domain

import (
	"time"

	"gorm.io/datatypes"
)

// CollegeConfig stores a student's saved exploration setup per exam type.
type CollegeConfig struct {
	ID        uint                        `gorm:"primaryKey" json:"-"`
	UserEmail string                      `gorm:"column:user_email;index:idx_college_config_key,unique" json:"useremail"`
	ExamType  string                      `gorm:"column:exam_type;index:idx_college_config_key,unique" json:"exam_type"`
	Config    datatypes.JSONMap           `gorm:"column:config;type:jsonb" json:"config"`
	UpdatedAt time.Time                   `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (CollegeConfig) TableName() string {
	return "college_configs"
}

// RoundPreferences is the input of the round-preference (common) flow,
// persisted per (user, round, exam type) so a run can be replayed.
type RoundPreferences struct {
	ID                         uint                         `gorm:"primaryKey" json:"-"`
	UserEmail                  string                       `gorm:"column:user_email;index:idx_round_prefs_key,unique" json:"useremail"`
	ExamType                   string                       `gorm:"column:exam_type;index:idx_round_prefs_key,unique" json:"exam_type"`
	RoundNo                    int                          `gorm:"column:round_no;index:idx_round_prefs_key,unique" json:"round_no"`
	Category                   string                       `gorm:"column:category" json:"category"`
	Gender                     string                       `gorm:"column:gender" json:"gender"`
	District                   string                       `gorm:"column:district" json:"district"`
	Score                      float64                      `gorm:"column:score" json:"score"`
	Branches                   datatypes.JSONSlice[string]  `gorm:"column:branches;type:jsonb" json:"branches"`
	Locations                  datatypes.JSONSlice[string]  `gorm:"column:locations;type:jsonb" json:"locations"`
	LastCollegeRoundChoiceCode int64                        `gorm:"column:last_college_round_choice_code" json:"last_college_round_choice_code"`
	UpdatedAt                  time.Time                    `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (RoundPreferences) TableName() string {
	return "round_preferences"
}

// CollegeRoundPreference records which seat the student locked for a round;
// its choice code becomes the carry-forward key of the next round.
type CollegeRoundPreference struct {
	ID         uint           `gorm:"primaryKey" json:"-"`
	UserEmail  string         `gorm:"column:user_email;index:idx_round_choice_key,unique" json:"email"`
	ExamType   string         `gorm:"column:exam_type;index:idx_round_choice_key,unique" json:"exam_type"`
	RoundNo    int            `gorm:"column:round_no;index:idx_round_choice_key,unique" json:"round_no"`
	ChoiceCode int64          `gorm:"column:choice_code" json:"choice_code"`
	Choices    datatypes.JSON `gorm:"column:choices;type:jsonb" json:"choices,omitempty"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (CollegeRoundPreference) TableName() string {
	return "college_round_preferences"
}

// DiplomaUserConfig is the diploma flow's per-round request snapshot.
type DiplomaUserConfig struct {
	ID        uint              `gorm:"primaryKey" json:"-"`
	UserEmail string            `gorm:"column:user_email;index:idx_diploma_config_key,unique" json:"email"`
	RoundNo   int               `gorm:"column:round_no;index:idx_diploma_config_key,unique" json:"round_no"`
	Config    datatypes.JSONMap `gorm:"column:config;type:jsonb" json:"config"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (DiplomaUserConfig) TableName() string {
	return "diploma_user_configs"
}
