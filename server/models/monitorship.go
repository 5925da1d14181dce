package models

import "gorm.io/gorm/clause"

// Monitorship links an emergency contact account to a patient it watches.
// The composite unique index keeps the monitoring set duplicate free.
type Monitorship struct {
	BaseModel
	ContactID uint `json:"contact_id" gorm:"not null;uniqueIndex:idx_monitorships_contact_patient"`
	PatientID uint `json:"patient_id" gorm:"not null;uniqueIndex:idx_monitorships_contact_patient"`
}

// AddMonitorship adds 'patientID' to the contact's monitoring set.
// Safe under concurrent writers - a duplicate insert is a no-op at the
// db layer rather than a check-then-push race.
func AddMonitorship(contactID, patientID uint) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Monitorship{ContactID: contactID, PatientID: patientID}).Error
}

func MonitorshipCount(contactID uint) (int64, error) {
	var count int64
	err := db.Model(&Monitorship{}).Where("contact_id = ?", contactID).Count(&count).Error
	return count, err
}
