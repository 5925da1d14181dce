package alert

import (
	"fmt"
	"testing"

	"github.com/Daskott/glucowatch/server/models"
	"github.com/stretchr/testify/assert"
)

func TestNotifyIfNeeded(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient := &models.User{Name: "thor odinson", Email: "thor@avengers.com", Password: "mjolnir"}
	assert.Nil(t, models.CreateUser(patient, models.PATIENT_ROLE))

	assert.Nil(t, models.UpsertAlertSetting(&models.AlertSetting{
		UserID:        patient.ID,
		ContactName:   "loki",
		ContactEmail:  "loki@avengers.com",
		ContactPhone:  "+12345678900",
		LowThreshold:  70,
		HighThreshold: 180,
	}))

	testCases := []struct {
		level           float64
		expectedOutcome Outcome
	}{
		{70, SENT},
		{65, SENT},
		{75, SKIPPED_IN_RANGE},
		{172, SKIPPED_IN_RANGE},
		{180, SENT},
		{185, SENT},
	}

	sentSoFar := 0
	for _, tcase := range testCases {
		desc := fmt.Sprintf("Reading of %v should be %v", tcase.level, tcase.expectedOutcome)

		t.Run(desc, func(t *testing.T) {
			outcome := service.NotifyIfNeeded(patient.ID, tcase.level)
			assert.Equal(t, tcase.expectedOutcome, outcome)

			if outcome == SENT {
				sentSoFar++
				lastEmail := mailer.sent[len(mailer.sent)-1]
				assert.Equal(t, "loki@avengers.com", lastEmail.to)
				assert.Contains(t, lastEmail.subject, "URGENT:")
				assert.Contains(t, lastEmail.body, "loki")
			}
			assert.Equal(t, sentSoFar, mailer.sentCount())
		})
	}
}

func TestNotifyIfNeededDirection(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient := &models.User{Name: "carol danvers", Email: "marvel@avengers.com", Password: "higher"}
	assert.Nil(t, models.CreateUser(patient, models.PATIENT_ROLE))
	assert.Nil(t, models.UpsertAlertSetting(&models.AlertSetting{
		UserID:        patient.ID,
		ContactEmail:  "fury@avengers.com",
		LowThreshold:  70,
		HighThreshold: 180,
	}))

	assert.Equal(t, SENT, service.NotifyIfNeeded(patient.ID, 60))
	assert.Contains(t, mailer.sent[0].subject, "LOW Glucose Level Alert")

	assert.Equal(t, SENT, service.NotifyIfNeeded(patient.ID, 200))
	assert.Contains(t, mailer.sent[1].subject, "HIGH Glucose Level Alert")
}

func TestNotifyIfNeededWithoutSettings(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient := &models.User{Name: "nick fury", Email: "fury-p@avengers.com", Password: "eyepatch"}
	assert.Nil(t, models.CreateUser(patient, models.PATIENT_ROLE))

	outcome := service.NotifyIfNeeded(patient.ID, 40)
	assert.Equal(t, SKIPPED_NO_SETTINGS, outcome)
	assert.Equal(t, 0, mailer.sentCount())
}

func TestNotifyIfNeededDeliveryFailure(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{failSends: true}
	enqueuer := &fakeEnqueuer{}
	service := NewService(mailer, nil, enqueuer, "http://localhost:3000")

	patient := &models.User{Name: "stephen strange", Email: "strange@avengers.com", Password: "dormammu"}
	assert.Nil(t, models.CreateUser(patient, models.PATIENT_ROLE))
	assert.Nil(t, models.UpsertAlertSetting(&models.AlertSetting{
		UserID:        patient.ID,
		ContactEmail:  "wong@avengers.com",
		LowThreshold:  70,
		HighThreshold: 180,
	}))

	// The failure is contained - no error escapes, and the email is
	// handed to the job queue for redelivery
	outcome := service.NotifyIfNeeded(patient.ID, 40)
	assert.Equal(t, FAILED_DELIVERY, outcome)
	assert.Equal(t, 1, len(enqueuer.jobs))
	assert.Equal(t, RedeliverAlertEmailHandler, enqueuer.jobs[0].Handler)
	assert.Equal(t, "wong@avengers.com", enqueuer.jobs[0].Args["to"])
}
