package models

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AlertSetting is the authoritative per-patient alerting config - the
// threshold pair here is the one the notifier evaluates against.
type AlertSetting struct {
	BaseModel
	UserID           uint    `json:"user_id" gorm:"not null;unique"`
	ContactName      string  `json:"contact_name"`
	ContactEmail     string  `json:"contact_email"`
	ContactPhone     string  `json:"contact_phone"`
	ContactAccountID uint    `json:"contact_account_id"`
	LowThreshold     float64 `json:"low_threshold" gorm:"not null;default:70"`
	HighThreshold    float64 `json:"high_threshold" gorm:"not null;default:180"`
}

// UpsertAlertSetting creates or replaces the patient's alert settings.
// Keyed by user_id, so concurrent saves converge to last-write-wins.
func UpsertAlertSetting(setting *AlertSetting) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"contact_name",
			"contact_email",
			"contact_phone",
			"contact_account_id",
			"low_threshold",
			"high_threshold",
			"updated_at",
		}),
	}).Create(setting).Error
}

func FindAlertSetting(userID interface{}) (*AlertSetting, error) {
	setting := AlertSetting{}
	err := db.First(&setting, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}

	return &setting, nil
}

// AlertSettingExists reports whether the patient has saved settings,
// without treating 'no record' as an error.
func AlertSettingExists(userID interface{}) (bool, error) {
	err := db.First(&AlertSetting{}, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
