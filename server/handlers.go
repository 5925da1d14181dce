package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Daskott/glucowatch/server/alert"
	"github.com/Daskott/glucowatch/server/auth"
	"github.com/Daskott/glucowatch/server/auth/key"
	"github.com/Daskott/glucowatch/server/models"
	"github.com/golang-jwt/jwt"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const AUTH_TOKEN_TTL_MINS = 60

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type scheduleParams struct {
	Time       string   `json:"time" validate:"required,time_stamp"`
	Dosage     string   `json:"dosage" validate:"required"`
	DaysOfWeek []string `json:"daysOfWeek" validate:"dive,day_of_week"`
}

// ---------------------------------------------------------------------------------//
// Account handlers
// --------------------------------------------------------------------------------//

func healthCheck(rw http.ResponseWriter, r *http.Request) {
	writeResponse(rw, ResponsePayload{Success: true, Data: "ok"}, http.StatusOK)
}

func jwksHandler(rw http.ResponseWriter, r *http.Request) {
	jwk, err := authKeyPair.JWK()
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(jwk))
}

func registerUser(rw http.ResponseWriter, r *http.Request) {
	params := struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,password"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(params)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	exists, err := models.UserExistsWithEmail(params.Email)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if exists {
		writeResponse(rw, ResponsePayload{Errors: []string{"User already exists"}}, http.StatusBadRequest)
		return
	}

	user := models.User{Name: params.Name, Email: params.Email, Password: params.Password}
	err = models.CreateUser(&user, models.PATIENT_ROLE)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	token, err := signedAuthToken(&user, models.PATIENT_ROLE)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"token": token}}, http.StatusCreated)
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	json.NewDecoder(r.Body).Decode(&data)

	passwordHash, err := models.FindUserPassword(data["email"])
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	user, err := models.FindUserWithRole("email", data["email"])
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	token, err := signedAuthToken(user, user.Role.Name)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw,
		ResponsePayload{Success: true, Data: map[string]string{"token": token, "role": user.Role.Name}},
		http.StatusOK,
	)
}

// ---------------------------------------------------------------------------------//
// Glucose reading handlers
// --------------------------------------------------------------------------------//

func findGlucoseReadings(rw http.ResponseWriter, r *http.Request) {
	readings, paging, err := models.ReadingsByUser(requestUserID(r), pageQueryParam(r))
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"readings": readings, "paging": paging},
	})
}

func createGlucoseReading(rw http.ResponseWriter, r *http.Request) {
	isPatient, err := userHasRole(r, models.PATIENT_ROLE)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !isPatient {
		writeResponse(rw, ResponsePayload{Errors: []string{"Only patients can add readings"}}, http.StatusForbidden)
		return
	}

	params := struct {
		Level      float64   `json:"level" validate:"required,gt=0"`
		MealStatus string    `json:"mealStatus" validate:"required,meal_status"`
		Notes      string    `json:"notes"`
		Timestamp  time.Time `json:"timestamp"`
	}{}

	err = json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(params)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	reading := models.GlucoseReading{
		UserID:     requestUserID(r),
		Level:      params.Level,
		MealStatus: params.MealStatus,
		Notes:      params.Notes,
		Timestamp:  params.Timestamp,
	}
	err = models.CreateGlucoseReading(&reading)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	// Delivery problems never fail the write - the reading is already saved
	outcome := alertService.NotifyIfNeeded(reading.UserID, reading.Level)
	logg.Infof("glucose reading %v saved, alert outcome: %v", reading.ID, outcome)

	writeResponse(rw, ResponsePayload{Success: true, Data: reading}, http.StatusCreated)
}

func updateGlucoseReading(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data := make(map[string]interface{})

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if mealStatus, ok := data["mealStatus"]; ok {
		data["meal_status"] = mealStatus
	}

	removeUnknownFields(data, map[string]bool{"level": true, "meal_status": true, "notes": true})
	if len(data) <= 0 {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	if data["meal_status"] != nil && !models.MealStatusNameMap[fmt.Sprintf("%v", data["meal_status"])] {
		writeResponse(rw, ResponsePayload{Errors: []string{"mealStatus is invalid"}}, http.StatusBadRequest)
		return
	}

	reading, err := models.UpdateGlucoseReading(vars["id"], requestUserID(r), data)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"reading not found"}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: reading})
}

func deleteGlucoseReading(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	err := models.DeleteGlucoseReading(vars["id"], requestUserID(r))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"reading not found"}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Medication handlers
// --------------------------------------------------------------------------------//

func findMedications(rw http.ResponseWriter, r *http.Request) {
	medications, err := models.MedicationsByUser(requestUserID(r))
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: medications})
}

func createMedication(rw http.ResponseWriter, r *http.Request) {
	params := struct {
		Name      string           `json:"name" validate:"required"`
		Type      string           `json:"type" validate:"required"`
		Notes     string           `json:"notes"`
		Schedules []scheduleParams `json:"schedules" validate:"dive"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(params)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	medication := models.Medication{
		UserID:    requestUserID(r),
		Name:      params.Name,
		Type:      params.Type,
		Notes:     params.Notes,
		Active:    true,
		Schedules: asModelSchedules(params.Schedules),
	}
	err = models.CreateMedication(&medication)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: medication}, http.StatusCreated)
}

func updateMedication(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	params := struct {
		Name      *string          `json:"name"`
		Type      *string          `json:"type"`
		Notes     *string          `json:"notes"`
		Active    *bool            `json:"active"`
		Schedules []scheduleParams `json:"schedules" validate:"omitempty,dive"`
	}{}

	err := json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(params)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	data := make(map[string]interface{})
	if params.Name != nil {
		data["name"] = *params.Name
	}
	if params.Type != nil {
		data["type"] = *params.Type
	}
	if params.Notes != nil {
		data["notes"] = *params.Notes
	}
	if params.Active != nil {
		data["active"] = *params.Active
	}

	if len(data) <= 0 && params.Schedules == nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"valid fields required"}}, http.StatusBadRequest)
		return
	}

	var schedules []models.MedicationSchedule
	if params.Schedules != nil {
		schedules = asModelSchedules(params.Schedules)
	}

	medication, err := models.UpdateMedication(vars["id"], requestUserID(r), data, schedules)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"medication not found"}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: medication})
}

func deleteMedication(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	err := models.DeleteMedication(vars["id"], requestUserID(r))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeResponse(rw, ResponsePayload{Errors: []string{"medication not found"}}, http.StatusNotFound)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

// ---------------------------------------------------------------------------------//
// Alert settings & dashboard handlers
// --------------------------------------------------------------------------------//

func saveAlertSettings(rw http.ResponseWriter, r *http.Request) {
	isPatient, err := userHasRole(r, models.PATIENT_ROLE)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	if !isPatient {
		writeResponse(rw, ResponsePayload{Errors: []string{"Only patients can configure alerts"}}, http.StatusForbidden)
		return
	}

	params := struct {
		EmergencyContact alert.ContactParams `json:"emergencyContact"`
		Thresholds       alert.Thresholds    `json:"thresholds"`
	}{}

	err = json.NewDecoder(r.Body).Decode(&params)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(params)
	if errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return
	}

	setting, err := alertService.Provision(requestUserID(r), params.EmergencyContact, params.Thresholds)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: setting})
}

func getAlertSettings(rw http.ResponseWriter, r *http.Request) {
	setting, err := models.FindAlertSetting(requestUserID(r))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: map[string]interface{}{}})
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: setting})
}

func findMonitoredPatients(rw http.ResponseWriter, r *http.Request) {
	view, err := alertService.MonitoredPatients(requestUserID(r))
	if errors.Is(err, alert.ErrNotEmergencyContact) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusForbidden)
		return
	}

	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: view})
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func signedAuthToken(user *models.User, roleName string) (string, error) {
	return auth.EncodeJWT(auth.GlucowatchTokenClaims{
		Name: user.Name,
		Role: roleName,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			ExpiresAt: time.Now().Add(AUTH_TOKEN_TTL_MINS * time.Minute).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}, authKeyPair)
}

func asModelSchedules(params []scheduleParams) []models.MedicationSchedule {
	schedules := make([]models.MedicationSchedule, 0, len(params))
	for _, param := range params {
		schedules = append(schedules, models.MedicationSchedule{
			Time:       param.Time,
			Dosage:     param.Dosage,
			DaysOfWeek: param.DaysOfWeek,
		})
	}
	return schedules
}

func userHasRole(r *http.Request, roleName string) (bool, error) {
	user, err := models.FindUserWithRole("id", requestUserClaims(r).Subject)
	if err != nil {
		return false, err
	}

	return user.Role.Name == roleName, nil
}
