package alert

import (
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/glucowatch/server/gluco"
	"github.com/Daskott/glucowatch/server/models"
	"gorm.io/gorm"
)

var ErrNotEmergencyContact = errors.New("not authorized as emergency contact")

type ReadingSummary struct {
	Level     float64   `json:"level"`
	Timestamp time.Time `json:"timestamp"`
}

type PatientStatus struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Status        gluco.Severity  `json:"status"`
	LastReading   *ReadingSummary `json:"last_reading"`
	LowThreshold  float64         `json:"low_threshold"`
	HighThreshold float64         `json:"high_threshold"`
}

// Alert is a transient classification result - regenerated on every
// dashboard poll, never persisted.
type Alert struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type MonitoredPatientsView struct {
	Patients []PatientStatus `json:"patients"`
	Alerts   []Alert         `json:"alerts"`
}

// MonitoredPatients recomputes each monitored patient's status from
// their latest reading - there is no stored alert state, every poll
// starts from scratch.
func (s *Service) MonitoredPatients(contactUserID uint) (*MonitoredPatientsView, error) {
	contact, err := models.FindUserBy("id", contactUserID)
	if err != nil {
		return nil, err
	}

	isContact, err := contact.HasRole(models.EMERGENCY_CONTACT_ROLE)
	if err != nil {
		return nil, err
	}
	if !isContact {
		return nil, ErrNotEmergencyContact
	}

	patients, err := contact.MonitoredPatients()
	if err != nil {
		return nil, err
	}

	view := MonitoredPatientsView{Patients: []PatientStatus{}, Alerts: []Alert{}}
	for _, patient := range patients {
		status, err := patientStatus(&patient)
		if err != nil {
			return nil, err
		}

		view.Patients = append(view.Patients, *status)

		if alert := alertFor(status, patient.LowThreshold, patient.HighThreshold); alert != nil {
			view.Alerts = append(view.Alerts, *alert)
		}
	}

	return &view, nil
}

func patientStatus(patient *models.User) (*PatientStatus, error) {
	status := PatientStatus{
		ID:            patient.ID,
		Name:          patient.Name,
		Status:        gluco.NORMAL,
		LowThreshold:  patient.LowThreshold,
		HighThreshold: patient.HighThreshold,
	}

	lastReading, err := models.LastReadingForUser(patient.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// A patient with no readings shows up with a null last reading
		// & contributes no alert.
		return &status, nil
	}
	if err != nil {
		return nil, err
	}

	severity, _ := gluco.Classify(lastReading.Level, patient.LowThreshold, patient.HighThreshold)
	status.Status = severity
	status.LastReading = &ReadingSummary{Level: lastReading.Level, Timestamp: lastReading.Timestamp}

	return &status, nil
}

func alertFor(status *PatientStatus, low, high float64) *Alert {
	if status.Status != gluco.DANGER || status.LastReading == nil {
		return nil
	}

	alertType := "HIGH_GLUCOSE"
	if status.LastReading.Level <= low {
		alertType = "LOW_GLUCOSE"
	}

	return &Alert{
		ID:          fmt.Sprintf("%v-%v", status.ID, time.Now().UnixMilli()),
		PatientName: status.Name,
		Type:        alertType,
		Message:     fmt.Sprintf("Glucose level (%v mg/dL) is outside target range", status.LastReading.Level),
		Timestamp:   status.LastReading.Timestamp,
	}
}
