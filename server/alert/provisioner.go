package alert

import (
	"errors"
	"fmt"

	"github.com/Daskott/glucowatch/server/models"
	"github.com/Daskott/glucowatch/utils"
	"gorm.io/gorm"
)

const TEMPORARY_PASSWORD_LENGTH = 8

// Provision finds-or-creates the emergency contact's account, links it
// to the patient & upserts the patient's alert settings.
//
// The steps are sequential writes without a wrapping transaction - a
// failure aborts the rest but already-committed steps stay committed,
// so each one is logged. Calling twice with the same patient+email is
// idempotent: no second account, no duplicate monitoring entry.
func (s *Service) Provision(patientID uint, contact ContactParams, thresholds Thresholds) (*models.AlertSetting, error) {
	contactUser, err := models.FindUserBy("email", contact.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("Provision: lookup contact account: %v", err)
	}

	if contactUser == nil {
		contactUser, err = s.createContactAccount(patientID, contact)
		if err != nil {
			return nil, err
		}
	} else {
		if err = models.AddMonitorship(contactUser.ID, patientID); err != nil {
			return nil, fmt.Errorf("Provision: link patient to contact: %v", err)
		}
		logg.Infof("patient %v added to monitoring set of contact %v", patientID, contactUser.ID)
	}

	patient := models.User{BaseModel: models.BaseModel{ID: patientID}}
	if err = patient.SetEmergencyContactRef(contactUser.ID); err != nil {
		return nil, fmt.Errorf("Provision: update patient contact reference: %v", err)
	}

	// Keep the dashboard's user-level threshold copy in step with the
	// authoritative pair stored on the settings record.
	if err = patient.UpdateThresholds(thresholds.LowThreshold, thresholds.HighThreshold); err != nil {
		return nil, fmt.Errorf("Provision: refresh patient thresholds: %v", err)
	}

	setting := models.AlertSetting{
		UserID:           patientID,
		ContactName:      contact.Name,
		ContactEmail:     contact.Email,
		ContactPhone:     contact.Phone,
		ContactAccountID: contactUser.ID,
		LowThreshold:     thresholds.LowThreshold,
		HighThreshold:    thresholds.HighThreshold,
	}
	if err = models.UpsertAlertSetting(&setting); err != nil {
		return nil, fmt.Errorf("Provision: save alert settings: %v", err)
	}

	return &setting, nil
}

func (s *Service) createContactAccount(patientID uint, contact ContactParams) (*models.User, error) {
	temporaryPassword, err := utils.GenerateRandomString(TEMPORARY_PASSWORD_LENGTH)
	if err != nil {
		return nil, fmt.Errorf("Provision: generate temporary password: %v", err)
	}

	contactUser := models.User{
		Name:     contact.Name,
		Email:    contact.Email,
		Password: temporaryPassword,
	}
	if err = models.CreateUser(&contactUser, models.EMERGENCY_CONTACT_ROLE); err != nil {
		return nil, fmt.Errorf("Provision: create contact account: %v", err)
	}

	if err = models.AddMonitorship(contactUser.ID, patientID); err != nil {
		return nil, fmt.Errorf("Provision: link patient to contact: %v", err)
	}
	logg.Infof("contact account %v created for patient %v", contactUser.ID, patientID)

	// The welcome email is best-effort - a relay failure must not roll
	// back the account that was just created.
	err = s.mailer.SendEmail(
		contact.Email,
		"Emergency Contact Account Created",
		welcomeEmailBody(contact, temporaryPassword, s.appUrl),
	)
	if err != nil {
		logg.Errorf("unable to send welcome email to %v: %v", contact.Email, err)
	}

	return &contactUser, nil
}

func welcomeEmailBody(contact ContactParams, temporaryPassword, appUrl string) string {
	loginUrl := appUrl + "/login"

	return fmt.Sprintf(
		"<h2>Emergency Contact Access Created</h2>"+
			"<p>Hello %v,</p>"+
			"<p>You have been designated as an emergency contact for glucose monitoring.</p>"+
			"<p>An account has been created for you with the following credentials:</p>"+
			"<p>Email: %v</p>"+
			"<p>Temporary Password: %v</p>"+
			"<p>Please log in at <a href=\"%v\">%v</a> and change your password.</p>"+
			"<p>You will receive alerts when glucose levels require attention.</p>",
		contact.Name, contact.Email, temporaryPassword, loginUrl, loginUrl)
}
