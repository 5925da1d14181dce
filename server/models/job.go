package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status"`
}

func (job *Job) Update(data map[string]interface{}) error {
	return db.Model(job).Updates(data).Error
}

// CreateUniqueJobByName enqueues a job, unless one with the same name
// is already waiting in the queue or being worked on.
func CreateUniqueJobByName(name string, handler string, args string) error {
	queuedJobStatuses := []JobStatus{}
	err := db.Where("name IN ('enqueued', 'in-progress')").Find(&queuedJobStatuses).Error
	if err != nil {
		return err
	}

	statusIDs := []uint{queuedJobStatuses[0].ID, queuedJobStatuses[1].ID}
	results := db.Where("name = ? AND job_status_id IN ?", name, statusIDs).First(&Job{})

	if results.Error != nil && !errors.Is(results.Error, gorm.ErrRecordNotFound) {
		return results.Error
	}

	if results.RowsAffected > 0 {
		return ErrDuplicateJob
	}

	return CreateJob(name, handler, args, ENQUEUED_JOB, time.Now())
}

func CreateJob(name, handler, args, status string, enqueuedAt time.Time) error {
	jobStatus, err := FindJobStatus(status)
	if err != nil {
		return err
	}

	return db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		EnqueuedAt:  enqueuedAt,
		JobStatusID: jobStatus.ID,
	}).Error
}

func CountJobsWithPrefix(prefix string) (int64, error) {
	var count int64
	err := db.Model(&Job{}).Where("name LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}

func LastJob(status string, claimed bool) (*Job, error) {
	job := Job{}
	err := db.Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ? AND claimed = ? ",
		status, claimed).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// LastJobLastUpdated returns the most recent job in the given queue
// that hasn't been touched in 'sinceMinutes' - i.e. a stuck job.
func LastJobLastUpdated(sinceMinutes int, status string) (*Job, error) {
	job := Job{}
	cutOff := time.Now().Add(-time.Duration(sinceMinutes) * time.Minute)

	err := db.Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?", status).
		Where("jobs.updated_at < ?", cutOff).Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// FirstScheduledJobToBeQueued returns the oldest 'scheduled' job whose
// time to run has arrived.
func FirstScheduledJobToBeQueued() (*Job, error) {
	job := Job{}

	err := db.Preload("JobStatus").
		Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?", SCHEDULED_JOB).
		Where("jobs.enqueued_at <= ?", time.Now()).First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// ClaimJob marks a job as claimed, so no other worker picks it up.
// Reports false when another worker got to it first.
func ClaimJob(jobID uint) (bool, error) {
	inProgressStatus, err := FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := db.Model(&Job{}).Where("id = ? AND claimed = ?", jobID, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func UpdateJob(id interface{}, data map[string]interface{}) error {
	return db.Model(&Job{}).Where("id = ?", id).Updates(data).Error
}
