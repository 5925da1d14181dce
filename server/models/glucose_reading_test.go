package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGlucoseReadings(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "natasha romanoff", Email: "widow@avengers.com", Password: "redledger"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	oldReading := GlucoseReading{
		UserID:     patient.ID,
		Level:      60,
		MealStatus: FASTING_STATUS,
		Timestamp:  time.Now().Add(-2 * time.Hour),
	}
	err = CreateGlucoseReading(&oldReading)
	assert.Nil(t, err)

	newReading := GlucoseReading{
		UserID:     patient.ID,
		Level:      200,
		MealStatus: AFTER_MEAL_STATUS,
		Notes:      "after dinner",
	}
	err = CreateGlucoseReading(&newReading)
	assert.Nil(t, err)
	assert.False(t, newReading.Timestamp.IsZero(), "Capture time should default to now")

	readings, paging, err := ReadingsByUser(patient.ID, 1)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(readings))
	assert.Equal(t, float64(200), readings[0].Level, "Most recent reading should come first")
	assert.Equal(t, int64(2), paging.Total)
	assert.Equal(t, int64(1), paging.Pages)

	lastReading, err := LastReadingForUser(patient.ID)
	assert.Nil(t, err)
	assert.Equal(t, newReading.ID, lastReading.ID)
}

func TestUpdateGlucoseReading(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "clint barton", Email: "hawkeye@avengers.com", Password: "bullseye"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	otherPatient := &User{Name: "wanda maximoff", Email: "wanda@avengers.com", Password: "hex"}
	err = CreateUser(otherPatient, PATIENT_ROLE)
	assert.Nil(t, err)

	reading := GlucoseReading{UserID: patient.ID, Level: 120, MealStatus: BEFORE_MEAL_STATUS}
	err = CreateGlucoseReading(&reading)
	assert.Nil(t, err)

	updated, err := UpdateGlucoseReading(reading.ID, patient.ID,
		map[string]interface{}{"level": 125, "notes": "corrected meter value"})
	assert.Nil(t, err)
	assert.Equal(t, float64(125), updated.Level)
	assert.Equal(t, "corrected meter value", updated.Notes)
	assert.Equal(t, reading.Timestamp.Unix(), updated.Timestamp.Unix(), "Capture time should never change")

	// Another patient can neither update nor delete the reading
	_, err = UpdateGlucoseReading(reading.ID, otherPatient.ID, map[string]interface{}{"level": 1})
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = DeleteGlucoseReading(reading.ID, otherPatient.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	err = DeleteGlucoseReading(reading.ID, patient.ID)
	assert.Nil(t, err)

	_, err = LastReadingForUser(patient.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
