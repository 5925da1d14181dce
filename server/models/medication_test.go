package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMedications(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "scott lang", Email: "antman@avengers.com", Password: "pym"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	medication := Medication{
		UserID: patient.ID,
		Name:   "metformin",
		Type:   "oral",
		Active: true,
		Schedules: []MedicationSchedule{
			{Time: "08:00", Dosage: "500mg", DaysOfWeek: DaysOfWeek{"Monday", "Thursday"}},
			{Time: "20:00", Dosage: "500mg"},
		},
	}
	err = CreateMedication(&medication)
	assert.Nil(t, err)

	medications, err := MedicationsByUser(patient.ID)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(medications))
	assert.Equal(t, 2, len(medications[0].Schedules), "Schedules should be saved with the medication")
	assert.Equal(t, DaysOfWeek{"Monday", "Thursday"}, medications[0].Schedules[0].DaysOfWeek)

	// Updating with a new schedule list replaces the old one wholesale
	updated, err := UpdateMedication(medication.ID, patient.ID,
		map[string]interface{}{"active": false},
		[]MedicationSchedule{{Time: "12:00", Dosage: "250mg"}},
	)
	assert.Nil(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, 1, len(updated.Schedules))
	assert.Equal(t, "12:00", updated.Schedules[0].Time)

	// A nil schedule list leaves the existing schedules alone
	updated, err = UpdateMedication(medication.ID, patient.ID, map[string]interface{}{"notes": "with food"}, nil)
	assert.Nil(t, err)
	assert.Equal(t, "with food", updated.Notes)
	assert.Equal(t, 1, len(updated.Schedules))

	err = DeleteMedication(medication.ID, patient.ID)
	assert.Nil(t, err)

	_, err = FindMedication(medication.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestActiveMedications(t *testing.T) {
	InitializeTestDb()

	patient := &User{Name: "sam wilson", Email: "falcon@avengers.com", Password: "redwing"}
	err := CreateUser(patient, PATIENT_ROLE)
	assert.Nil(t, err)

	err = CreateMedication(&Medication{UserID: patient.ID, Name: "insulin", Type: "injection", Active: true})
	assert.Nil(t, err)

	inactive := Medication{UserID: patient.ID, Name: "aspirin", Type: "oral", Active: true}
	err = CreateMedication(&inactive)
	assert.Nil(t, err)

	_, err = UpdateMedication(inactive.ID, patient.ID, map[string]interface{}{"active": false}, nil)
	assert.Nil(t, err)

	medications, err := ActiveMedications()
	assert.Nil(t, err)

	for _, medication := range medications {
		assert.True(t, medication.Active, "Only active medications should be returned")
		assert.NotEqual(t, inactive.ID, medication.ID)
	}
}
