package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Daskott/glucowatch/server/alert"
	"github.com/Daskott/glucowatch/server/auth"
	"github.com/Daskott/glucowatch/server/auth/key"
	"github.com/Daskott/glucowatch/server/logger"
	"github.com/Daskott/glucowatch/server/mailer"
	"github.com/Daskott/glucowatch/server/models"
	"github.com/Daskott/glucowatch/server/remindscheduler"
	"github.com/Daskott/glucowatch/server/twilio"
	"github.com/Daskott/glucowatch/server/work"
	"github.com/Daskott/glucowatch/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

const (
	SQLITE_DB_FILE_NAME            = "glucowatch.db"
	REMINDER_SWEEP_CRON_EXPRESSION = "* * * * *"
)

var (
	logg = logger.NewLogger()

	validate     *validator.Validate
	authKeyPair  *key.KeyPair
	alertService *alert.Service

	serverCfg    *shared.ServerConfig
	sqliteDbPath string
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.GlucowatchTokenClaims
	ErrorMsg string
}

func init() {
	validate = validator.New()
	fatalOnError(RegisterValidators(validate))
}

// Start wires up the db, delivery clients, job workers & http routes,
// then serves until interrupted.
func Start(config *viper.Viper, devMode bool) {
	serverCfg = parseServerConfig(config)

	configDir := configDirectory(devMode)
	sqliteDbPath = filepath.Join(configDir, SQLITE_DB_FILE_NAME)

	if sqliteBackupEnabled() {
		fatalOnError(restoreSqliteDb())
	}

	fatalOnError(models.InitializeDb(sqliteDbPath, serverCfg.Sqlite.PassPhrase))

	var err error
	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(serverCfg.Glucowatch.PrivateKeyPem)
	fatalOnError(err)

	mailClient := mailer.NewClient(serverCfg.Smtp, false)

	var smsClient alert.Texter
	if serverCfg.Twilio.AccountSid != "" {
		smsClient = twilio.NewClient(serverCfg.Twilio, false)
	}

	workerPool := work.NewWorkerAdapter(serverCfg.Glucowatch.Cron.TimeZone, false)
	alertService = alert.NewService(mailClient, smsClient, workerPool, serverCfg.Glucowatch.AppUrl)

	_, err = remindscheduler.NewReminderScheduler(workerPool, mailClient, serverCfg.Glucowatch.Cron.TimeZone, REMINDER_SWEEP_CRON_EXPRESSION)
	fatalOnError(err)

	registerJobHandlers(workerPool, mailClient)
	enqueueJobs(workerPool)
	workerPool.Start()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", serverCfg.Glucowatch.Listener.Port),
		Handler: router(),
	}
	go serve(httpServer)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerPool, httpServer, sqliteBackupEnabled())
}

func router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware, initialContextMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/.well-known/jwks.json", jwksHandler).Methods("GET")

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/users/register", registerUser).Methods("POST")
	apiRouter.HandleFunc("/users/login", logIn).Methods("POST")

	protectedRouter := apiRouter.NewRoute().Subrouter()
	protectedRouter.Use(protectedRouteMiddleware)

	protectedRouter.HandleFunc("/glucose", findGlucoseReadings).Methods("GET")
	protectedRouter.HandleFunc("/glucose", createGlucoseReading).Methods("POST")
	protectedRouter.HandleFunc("/glucose/{id:[0-9]+}", updateGlucoseReading).Methods("PUT")
	protectedRouter.HandleFunc("/glucose/{id:[0-9]+}", deleteGlucoseReading).Methods("DELETE")

	protectedRouter.HandleFunc("/medications", findMedications).Methods("GET")
	protectedRouter.HandleFunc("/medications", createMedication).Methods("POST")
	protectedRouter.HandleFunc("/medications/{id:[0-9]+}", updateMedication).Methods("PUT")
	protectedRouter.HandleFunc("/medications/{id:[0-9]+}", deleteMedication).Methods("DELETE")

	protectedRouter.HandleFunc("/alerts/settings", saveAlertSettings).Methods("POST")
	protectedRouter.HandleFunc("/alerts/settings", getAlertSettings).Methods("GET")

	protectedRouter.HandleFunc("/emergency-contact/patients", findMonitoredPatients).Methods("GET")

	return router
}

func parseServerConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := shared.ServerConfig{}

	fatalOnError(config.Unmarshal(&serverConfig))
	fatalOnError(validate.Struct(&serverConfig))

	return &serverConfig
}

func sqliteBackupEnabled() bool {
	enabled, ok := serverCfg.Google.Storage.EnableSqliteBackupAndSync.(bool)
	return ok && enabled
}

func serve(server *http.Server) {
	logg.Infof("Glucowatch server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backupDb bool) {
	// Stop reminder sweeps & queued work before shutting down the listener
	workerPool.Stop()

	if backupDb {
		if err := backupSqliteDb(nil); err != nil {
			logg.Error(err)
		}
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Glucowatch server shutdown failed:%+s", err)
	}

	logg.Infof("Glucowatch server stopped properly")
}
