package alert

import (
	"strings"
	"testing"

	"github.com/Daskott/glucowatch/server/models"
	"github.com/stretchr/testify/assert"
)

func TestProvision(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient := &models.User{Name: "tony stark", Email: "stark@avengers.com", Password: "very-secure"}
	err := models.CreateUser(patient, models.PATIENT_ROLE)
	assert.Nil(t, err)

	contact := ContactParams{Name: "pepper potts", Email: "pepper@avengers.com", Phone: "+12345678900"}

	setting, err := service.Provision(patient.ID, contact, Thresholds{LowThreshold: 70, HighThreshold: 180})
	assert.Nil(t, err)
	assert.Equal(t, "pepper@avengers.com", setting.ContactEmail)
	assert.Equal(t, float64(70), setting.LowThreshold)

	// A contact account is created with the emergency_contact role &
	// welcomed by email
	contactUser, err := models.FindUserWithRole("email", contact.Email)
	assert.Nil(t, err)
	assert.Equal(t, models.EMERGENCY_CONTACT_ROLE, contactUser.Role.Name)
	assert.Equal(t, 1, mailer.sentCount())
	assert.Contains(t, mailer.sent[0].subject, "Emergency Contact Account Created")
	assert.Contains(t, mailer.sent[0].body, "http://localhost:3000/login")

	// The patient's record points back at the contact & carries the new
	// threshold pair
	savedPatient, err := models.FindUserBy("id", patient.ID)
	assert.Nil(t, err)
	assert.Equal(t, contactUser.ID, *savedPatient.EmergencyContactID)
	assert.Equal(t, float64(70), savedPatient.LowThreshold)
	assert.Equal(t, float64(180), savedPatient.HighThreshold)

	// Saving again with the same contact email reuses the account - no
	// second welcome email, no duplicate monitoring entry
	setting, err = service.Provision(patient.ID, contact, Thresholds{LowThreshold: 80, HighThreshold: 160})
	assert.Nil(t, err)
	assert.Equal(t, float64(80), setting.LowThreshold)
	assert.Equal(t, 1, mailer.sentCount())

	count, err := models.MonitorshipCount(contactUser.ID)
	assert.Nil(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProvisionSharedContact(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient1 := &models.User{Name: "wanda maximoff", Email: "wanda-p@avengers.com", Password: "hex"}
	patient2 := &models.User{Name: "pietro maximoff", Email: "pietro-p@avengers.com", Password: "quick"}
	assert.Nil(t, models.CreateUser(patient1, models.PATIENT_ROLE))
	assert.Nil(t, models.CreateUser(patient2, models.PATIENT_ROLE))

	contact := ContactParams{Name: "vision", Email: "vision@avengers.com", Phone: "+32345678900"}

	_, err := service.Provision(patient1.ID, contact, Thresholds{LowThreshold: 70, HighThreshold: 180})
	assert.Nil(t, err)

	_, err = service.Provision(patient2.ID, contact, Thresholds{LowThreshold: 65, HighThreshold: 190})
	assert.Nil(t, err)

	// One shared account watching both patients, in the order they
	// designated the contact
	contactUser, err := models.FindUserBy("email", contact.Email)
	assert.Nil(t, err)

	monitored, err := contactUser.MonitoredPatients()
	assert.Nil(t, err)
	assert.Equal(t, 2, len(monitored))
	assert.Equal(t, patient1.ID, monitored[0].ID)
	assert.Equal(t, patient2.ID, monitored[1].ID)
	assert.Equal(t, 1, mailer.sentCount(), "Only the first designation should send a welcome email")
}

func TestProvisionSurvivesWelcomeEmailFailure(t *testing.T) {
	models.InitializeTestDb()

	mailer := &fakeMailer{failSends: true}
	service := NewService(mailer, nil, nil, "http://localhost:3000")

	patient := &models.User{Name: "bruce banner", Email: "banner-p@avengers.com", Password: "smash"}
	assert.Nil(t, models.CreateUser(patient, models.PATIENT_ROLE))

	contact := ContactParams{Name: "betty ross", Email: "betty@avengers.com", Phone: "+42345678900"}

	// A mail relay outage must not abort provisioning
	setting, err := service.Provision(patient.ID, contact, Thresholds{LowThreshold: 70, HighThreshold: 180})
	assert.Nil(t, err)
	assert.NotNil(t, setting)

	contactUser, err := models.FindUserBy("email", contact.Email)
	assert.Nil(t, err)
	assert.True(t, strings.EqualFold(contact.Email, contactUser.Email))
}
