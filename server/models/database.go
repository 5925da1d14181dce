package models

import (
	"errors"
	"fmt"

	sqlite "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/Daskott/glucowatch/server/logger"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	logg = logger.NewLogger()
)

// InitializeDb opens the encrypted sqlite db in 'dbFilePath',
// migrates the schema & inserts seed data.
func InitializeDb(dbFilePath, passPhrase string) error {
	dsn := fmt.Sprintf(
		"%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_busy_timeout=5000",
		dbFilePath, passPhrase,
	)

	return initialize(dsn)
}

// InitializeTestDb swaps the db handle for a shared in-memory one,
// so model & server tests never touch data on disk.
func InitializeTestDb() {
	if err := initialize("file::memory:?cache=shared"); err != nil {
		logg.Panic(err)
	}
}

func initialize(dsn string) error {
	var err error

	db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("unable to open database: %v", err)
	}

	return autoMigrate()
}

func autoMigrate() error {
	err := db.AutoMigrate(&Role{}, &JobStatus{}, &User{}, &Job{},
		&Monitorship{}, &AlertSetting{}, &GlucoseReading{}, &Medication{}, &MedicationSchedule{})
	if err != nil {
		return err
	}

	// Insert seed data for Role
	if err := db.First(&Role{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'roles'")
		err = db.Create(&[]Role{{Name: PATIENT_ROLE}, {Name: EMERGENCY_CONTACT_ROLE}}).Error
		if err != nil {
			return err
		}
	}

	// Insert seed data for JobStatus
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'job_statuses'")
		err = db.Create(&[]JobStatus{
			{Name: ENQUEUED_JOB},
			{Name: IN_PROGRESS_JOB},
			{Name: SUCCESSFUL_JOB},
			{Name: DEAD_JOB},
			{Name: SCHEDULED_JOB},
		}).Error
		if err != nil {
			return err
		}
	}

	return nil
}
