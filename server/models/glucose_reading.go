package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BEFORE_MEAL_STATUS = "before_meal"
	AFTER_MEAL_STATUS  = "after_meal"
	FASTING_STATUS     = "fasting"
	OTHER_MEAL_STATUS  = "other"
)

var MealStatusNameMap = map[string]bool{
	BEFORE_MEAL_STATUS: true,
	AFTER_MEAL_STATUS:  true,
	FASTING_STATUS:     true,
	OTHER_MEAL_STATUS:  true,
}

var updatableReadingFields = []string{"level", "meal_status", "notes"}

// GlucoseReading is an immutable fact with a mutable annotation - the
// capture timestamp never changes after creation, while level/meal
// status/notes stay editable by the owner.
type GlucoseReading struct {
	BaseModel
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Level      float64   `json:"level" validate:"required,gt=0"`
	Timestamp  time.Time `json:"timestamp"`
	MealStatus string    `json:"meal_status" validate:"required,meal_status" gorm:"not null"`
	Notes      string    `json:"notes"`
}

func CreateGlucoseReading(reading *GlucoseReading) error {
	if reading.Timestamp.IsZero() {
		reading.Timestamp = time.Now()
	}

	return db.Create(reading).Error
}

func ReadingsByUser(userID interface{}, page int) ([]GlucoseReading, *Paging, error) {
	var total int64
	readings := []GlucoseReading{}

	err := db.Model(&GlucoseReading{}).Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, nil, err
	}

	err = db.Scopes(paginate(page, DEFAULT_PAGE_SIZE)).
		Where("user_id = ?", userID).Order("timestamp desc").Find(&readings).Error
	if err != nil {
		return nil, nil, err
	}

	return readings, newPaging(int64(page), DEFAULT_PAGE_SIZE, total), nil
}

func LastReadingForUser(userID interface{}) (*GlucoseReading, error) {
	reading := GlucoseReading{}
	err := db.Where("user_id = ?", userID).Order("timestamp desc").First(&reading).Error
	if err != nil {
		return nil, err
	}

	return &reading, nil
}

// UpdateGlucoseReading updates a reading owned by 'userID'. Only the
// annotation fields are touched - the timestamp stays as captured.
func UpdateGlucoseReading(id, userID interface{}, data map[string]interface{}) (*GlucoseReading, error) {
	res := db.Model(&GlucoseReading{}).Where("id = ? AND user_id = ?", id, userID).
		Select(updatableReadingFields).Updates(data)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	reading := GlucoseReading{}
	if err := db.First(&reading, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &reading, nil
}

func DeleteGlucoseReading(id, userID interface{}) error {
	res := db.Where("user_id = ?", userID).Delete(&GlucoseReading{}, id)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
