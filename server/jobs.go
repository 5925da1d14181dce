package server

import (
	"fmt"
	"os"

	"github.com/Daskott/glucowatch/server/alert"
	"github.com/Daskott/glucowatch/server/gstorage"
	"github.com/Daskott/glucowatch/server/mailer"
	"github.com/Daskott/glucowatch/server/work"
)

const SQLITE_BACKUP_HANDLER = "backup_sqlite_db"

// backupSqliteDb pushes the encrypted db file to the configured GCS bucket.
func backupSqliteDb(map[string]interface{}) error {
	gStorage, err := newGStorageClient()
	if err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}

	err = gStorage.UploadFile(serverCfg.Google.Storage.Bucket, sqliteDbPath)
	if err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}

	logg.Infof("sqlite db backed up to gs://%v", serverCfg.Google.Storage.Bucket)
	return nil
}

// restoreSqliteDb pulls the last backed up db file from GCS on a fresh
// boot i.e. when no local db file exists yet. A missing backup object
// is not an error - the server simply starts with an empty db.
func restoreSqliteDb() error {
	if _, err := os.Stat(sqliteDbPath); err == nil {
		return nil
	}

	gStorage, err := newGStorageClient()
	if err != nil {
		return fmt.Errorf("restoreSqliteDb: %v", err)
	}

	err = gStorage.DownloadFile(serverCfg.Google.Storage.Bucket, SQLITE_DB_FILE_NAME, sqliteDbPath)
	if err == gstorage.ErrObjectNotExist {
		logg.Infof("no sqlite backup found in gs://%v, starting fresh", serverCfg.Google.Storage.Bucket)
		os.Remove(sqliteDbPath)
		return nil
	}

	return err
}

func newGStorageClient() (*gstorage.GStorage, error) {
	return gstorage.NewGStorage(
		serverCfg.Google.ApplicationCredentials,
		serverCfg.Google.Storage.Prefix,
	)
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter, mailClient *mailer.ClientWrapper) {
	fatalOnError(wpa.Register(SQLITE_BACKUP_HANDLER, backupSqliteDb))
	fatalOnError(wpa.Register(alert.RedeliverAlertEmailHandler, func(args map[string]interface{}) error {
		return mailClient.SendEmail(
			fmt.Sprint(args["to"]),
			fmt.Sprint(args["subject"]),
			fmt.Sprint(args["body"]),
		)
	}))
}

func enqueueJobs(wpa *work.WorkerPoolAdapter) {
	if !sqliteBackupEnabled() {
		return
	}

	fatalOnError(wpa.PeriodicallyPerform(serverCfg.Google.Storage.SqliteBackupSchedule, work.JobParams{
		Name:    SQLITE_BACKUP_HANDLER,
		Handler: SQLITE_BACKUP_HANDLER,
		Unique:  true,
		Args:    map[string]interface{}{},
	}))
}
