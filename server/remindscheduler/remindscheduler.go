// Package remindscheduler sends patients their medication dose
// reminders through the worker pool.
package remindscheduler

import (
	"fmt"
	"time"

	"github.com/Daskott/glucowatch/server/logger"
	"github.com/Daskott/glucowatch/server/models"
	"github.com/Daskott/glucowatch/server/work"
)

const (
	PROCESS_DUE_REMINDERS_HANDLER = "process_due_medication_reminders"
	SEND_REMINDER_HANDLER         = "send_medication_reminder"
	REMINDER_PREFIX               = "medication_reminder"
)

var logg = logger.NewLogger()

type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
}

type ReminderScheduler struct {
	workerPool *work.WorkerPoolAdapter
	mailer     Mailer
	location   *time.Location
}

// NewReminderScheduler registers the reminder job handlers & the
// periodic sweep that enqueues per-dose reminders as they come due.
// Schedule times are wall-clock values in 'timeZoneArg', falling back
// to UTC when the zone can't be loaded.
func NewReminderScheduler(workerPool *work.WorkerPoolAdapter, mailer Mailer, timeZoneArg, checkCronExpression string) (*ReminderScheduler, error) {
	location, err := time.LoadLocation(timeZoneArg)
	if err != nil {
		location = time.UTC
	}

	scheduler := ReminderScheduler{workerPool: workerPool, mailer: mailer, location: location}

	if err := workerPool.Register(PROCESS_DUE_REMINDERS_HANDLER, scheduler.processDueReminders); err != nil {
		return nil, err
	}
	if err := workerPool.Register(SEND_REMINDER_HANDLER, scheduler.sendReminder); err != nil {
		return nil, err
	}

	err = workerPool.PeriodicallyPerform(checkCronExpression, work.JobParams{
		Name:    PROCESS_DUE_REMINDERS_HANDLER,
		Handler: PROCESS_DUE_REMINDERS_HANDLER,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
	if err != nil {
		return nil, err
	}

	return &scheduler, nil
}

// processDueReminders walks every active medication & enqueues a
// reminder for each schedule that is due this minute. The unique job
// name keeps a dose from being announced twice.
func (scheduler *ReminderScheduler) processDueReminders(map[string]interface{}) error {
	now := time.Now().In(scheduler.location)

	medications, err := models.ActiveMedications()
	if err != nil {
		return fmt.Errorf("processDueReminders: %v", err)
	}

	enqueued := 0
	for _, medication := range medications {
		for _, schedule := range medication.Schedules {
			if !scheduleDue(schedule, now) {
				continue
			}

			err := scheduler.workerPool.Perform(work.JobParams{
				Name:    reminderJobName(schedule.ID, now),
				Handler: SEND_REMINDER_HANDLER,
				Unique:  true,
				Args: map[string]interface{}{
					"medication_id": fmt.Sprint(medication.ID),
					"schedule_id":   fmt.Sprint(schedule.ID),
				},
			})
			if err != nil {
				logg.Error(err)
				continue
			}
			enqueued++
		}
	}

	logg.Infof("%v medication reminder(s) enqueued", enqueued)
	return nil
}

func (scheduler *ReminderScheduler) sendReminder(args map[string]interface{}) error {
	medication, err := models.FindMedication(args["medication_id"])
	if err != nil {
		return fmt.Errorf("sendReminder: %v", err)
	}

	patient, err := models.FindUserBy("id", medication.UserID)
	if err != nil {
		return fmt.Errorf("sendReminder: %v", err)
	}

	dosage := ""
	scheduleID := fmt.Sprint(args["schedule_id"])
	for _, schedule := range medication.Schedules {
		if fmt.Sprint(schedule.ID) == scheduleID {
			dosage = schedule.Dosage
			break
		}
	}

	body := fmt.Sprintf(
		"<h2>Medication Reminder</h2>"+
			"<p>Hello %v,</p>"+
			"<p>It's time to take your medication:</p>"+
			"<ul><li>%v (%v) - %v</li></ul>",
		patient.Name, medication.Name, medication.Type, dosage)

	err = scheduler.mailer.SendEmail(patient.Email, fmt.Sprintf("Reminder: %v", medication.Name), body)
	if err != nil {
		return fmt.Errorf("sendReminder: %v", err)
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func scheduleDue(schedule models.MedicationSchedule, now time.Time) bool {
	if schedule.Time != now.Format("15:04") {
		return false
	}

	// No days configured means the dose is daily
	if len(schedule.DaysOfWeek) == 0 {
		return true
	}

	today := now.Weekday().String()
	for _, day := range schedule.DaysOfWeek {
		if day == today {
			return true
		}
	}

	return false
}

func reminderJobName(scheduleID uint, now time.Time) string {
	return fmt.Sprintf("%v_%v_%v", REMINDER_PREFIX, scheduleID, now.Format("2006-01-02_15:04"))
}
