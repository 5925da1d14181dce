package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpsertAlertSetting(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "peter parker", Email: "web@avengers.com", Password: "secure???"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	setting := &AlertSetting{
		UserID:        patient.ID,
		ContactName:   "may parker",
		ContactEmail:  "may@avengers.com",
		ContactPhone:  "+12345678900",
		LowThreshold:  70,
		HighThreshold: 180,
	}
	err = UpsertAlertSetting(setting)
	assert.Nil(t, err)

	// A second save for the same patient replaces the record in place
	err = UpsertAlertSetting(&AlertSetting{
		UserID:        patient.ID,
		ContactName:   "happy hogan",
		ContactEmail:  "happy@avengers.com",
		ContactPhone:  "+22345678900",
		LowThreshold:  60,
		HighThreshold: 200,
	})
	assert.Nil(t, err)

	savedSetting, err := FindAlertSetting(patient.ID)
	assert.Nil(t, err)
	assert.Equal(t, "happy hogan", savedSetting.ContactName)
	assert.Equal(t, float64(60), savedSetting.LowThreshold)
	assert.Equal(t, float64(200), savedSetting.HighThreshold)

	var count int64
	err = db.Model(&AlertSetting{}).Where("user_id = ?", patient.ID).Count(&count).Error
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count, "Patient should only ever have one settings record")
}

func TestAlertSettingExists(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "bruce banner", Email: "hulk@avengers.com", Password: "smash"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	exists, err := AlertSettingExists(patient.ID)
	assert.Nil(t, err)
	assert.False(t, exists)

	err = UpsertAlertSetting(&AlertSetting{UserID: patient.ID, LowThreshold: 70, HighThreshold: 180})
	assert.Nil(t, err)

	exists, err = AlertSettingExists(patient.ID)
	assert.Nil(t, err)
	assert.True(t, exists)
}
