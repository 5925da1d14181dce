package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
)

type DaysOfWeek []string

func (days DaysOfWeek) Value() (driver.Value, error) {
	bytes, err := json.Marshal(days)
	return string(bytes), err
}

func (days *DaysOfWeek) Scan(value interface{}) error {
	stringValue, ok := value.(string)
	if !ok {
		return fmt.Errorf("unable to scan DaysOfWeek value: %v", value)
	}

	return json.Unmarshal([]byte(stringValue), days)
}

type MedicationSchedule struct {
	BaseModel
	MedicationID uint       `json:"medication_id" gorm:"not null"`
	Time         string     `json:"time" validate:"required,time_stamp"`
	Dosage       string     `json:"dosage" validate:"required"`
	DaysOfWeek   DaysOfWeek `json:"days_of_week"`
}

type Medication struct {
	BaseModel
	UserID    uint                 `json:"user_id" gorm:"not null;index"`
	Name      string               `json:"name" validate:"required"`
	Type      string               `json:"type" validate:"required"`
	Notes     string               `json:"notes"`
	Active    bool                 `json:"active" gorm:"default:true"`
	Schedules []MedicationSchedule `json:"schedules" validate:"dive" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func CreateMedication(medication *Medication) error {
	return db.Create(medication).Error
}

func MedicationsByUser(userID interface{}) ([]Medication, error) {
	medications := []Medication{}

	err := db.Preload("Schedules").Where("user_id = ?", userID).
		Order("name asc").Find(&medications).Error
	if err != nil {
		return nil, err
	}

	return medications, nil
}

// UpdateMedication updates a medication owned by 'userID', replacing
// its schedules when new ones are provided.
func UpdateMedication(id, userID interface{}, data map[string]interface{}, schedules []MedicationSchedule) (*Medication, error) {
	res := db.Model(&Medication{}).Where("id = ? AND user_id = ?", id, userID).
		Select("name", "type", "notes", "active").Updates(data)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	medication := Medication{}
	if err := db.First(&medication, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if schedules != nil {
		if err := db.Where("medication_id = ?", medication.ID).Delete(&MedicationSchedule{}).Error; err != nil {
			return nil, err
		}

		for i := range schedules {
			schedules[i].MedicationID = medication.ID
		}
		if len(schedules) > 0 {
			if err := db.Create(&schedules).Error; err != nil {
				return nil, err
			}
		}
	}

	if err := db.Preload("Schedules").First(&medication, "id = ?", medication.ID).Error; err != nil {
		return nil, err
	}

	return &medication, nil
}

func DeleteMedication(id, userID interface{}) error {
	res := db.Where("user_id = ?", userID).Delete(&Medication{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func FindMedication(id interface{}) (*Medication, error) {
	medication := Medication{}
	err := db.Preload("Schedules").First(&medication, "id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return &medication, nil
}

// ActiveMedications returns every active medication with its
// schedules, for the reminder scheduler.
func ActiveMedications() ([]Medication, error) {
	medications := []Medication{}

	err := db.Preload("Schedules").Where("active = ?", true).Find(&medications).Error
	if err != nil {
		return nil, err
	}

	return medications, nil
}
