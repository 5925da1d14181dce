package alert

import (
	"errors"
	"fmt"

	"github.com/Daskott/glucowatch/server/gluco"
	"github.com/Daskott/glucowatch/server/models"
	"github.com/Daskott/glucowatch/server/work"
	"gorm.io/gorm"
)

// RedeliverAlertEmailHandler is the job handler name for retrying a
// failed alert email through the worker pool.
const RedeliverAlertEmailHandler = "redeliver_alert_email"

type Outcome string

const (
	SENT                Outcome = "sent"
	SKIPPED_NO_SETTINGS Outcome = "skipped_no_settings"
	SKIPPED_IN_RANGE    Outcome = "skipped_in_range"
	FAILED_DELIVERY     Outcome = "failed_delivery"
)

// NotifyIfNeeded evaluates a fresh reading against the patient's alert
// settings & fires an email to the emergency contact when a threshold
// is breached.
//
// Delivery failure is never surfaced to the write path that recorded
// the reading - the outcome tells the caller what happened, a retry is
// handed to the job queue, and that's the end of it.
func (s *Service) NotifyIfNeeded(patientID uint, level float64) Outcome {
	setting, err := models.FindAlertSetting(patientID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Infof("no alert settings for patient %v, nothing to do", patientID)
		return SKIPPED_NO_SETTINGS
	}
	if err != nil {
		logg.Errorf("unable to load alert settings for patient %v: %v", patientID, err)
		return SKIPPED_NO_SETTINGS
	}
	if setting.ContactEmail == "" {
		return SKIPPED_NO_SETTINGS
	}

	fire, direction := gluco.ShouldNotify(level, setting.LowThreshold, setting.HighThreshold)
	if !fire {
		return SKIPPED_IN_RANGE
	}

	subject := fmt.Sprintf("URGENT: %v Glucose Level Alert", direction)
	body := alertEmailBody(setting, level, direction)

	if s.texter != nil && setting.ContactPhone != "" {
		if err := s.texter.SendMessage(setting.ContactPhone, alertSms(setting, level, direction)); err != nil {
			logg.Errorf("unable to send alert sms to %v: %v", setting.ContactPhone, err)
		}
	}

	if err := s.mailer.SendEmail(setting.ContactEmail, subject, body); err != nil {
		logg.Errorf("unable to send alert email to %v: %v", setting.ContactEmail, err)
		s.enqueueRedelivery(setting.ContactEmail, subject, body)
		return FAILED_DELIVERY
	}

	logg.Infof("alert email sent to %v for patient %v", setting.ContactEmail, patientID)
	return SENT
}

func (s *Service) enqueueRedelivery(to, subject, body string) {
	if s.pool == nil {
		return
	}

	err := s.pool.Perform(work.JobParams{
		Name:    fmt.Sprintf("%v_%v", RedeliverAlertEmailHandler, to),
		Handler: RedeliverAlertEmailHandler,
		Args: map[string]interface{}{
			"to":      to,
			"subject": subject,
			"body":    body,
		},
	})
	if err != nil {
		logg.Errorf("unable to enqueue alert email redelivery: %v", err)
	}
}

func alertEmailBody(setting *models.AlertSetting, level float64, direction gluco.Direction) string {
	return fmt.Sprintf(
		"<h2>Glucose Level Alert</h2>"+
			"<p>This is an automated alert regarding your contact's glucose levels.</p>"+
			"<p><strong>Current Reading:</strong> %v mg/dL</p>"+
			"<p><strong>Status:</strong> %v (Outside normal range of %v-%v mg/dL)</p>"+
			"<p><strong>Contact Information:</strong></p>"+
			"<ul>"+
			"<li>Name: %v</li>"+
			"<li>Phone: %v</li>"+
			"</ul>"+
			"<p>Please check on them as soon as possible.</p>",
		level, direction, setting.LowThreshold, setting.HighThreshold,
		setting.ContactName, setting.ContactPhone)
}

func alertSms(setting *models.AlertSetting, level float64, direction gluco.Direction) string {
	return fmt.Sprintf(
		"Glucose alert: reading of %v mg/dL is %v (normal range %v-%v mg/dL). Please check on your contact.",
		level, direction, setting.LowThreshold, setting.HighThreshold)
}
