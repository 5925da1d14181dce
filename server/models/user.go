package models

import (
	"errors"
	"fmt"

	"github.com/Daskott/glucowatch/server/auth"
	"gorm.io/gorm"
)

const (
	DEFAULT_LOW_THRESHOLD  = 70
	DEFAULT_HIGH_THRESHOLD = 180
)

var (
	allFieldsExceptPassword = []string{"id",
		"name",
		"email",
		"role_id",
		"low_threshold",
		"high_threshold",
		"emergency_contact_id",
		"created_at",
		"updated_at",
	}

	updatableFields = []string{"name", "password"}
)

type User struct {
	BaseModel
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email" gorm:"not null;unique"`
	Password string `json:"password,omitempty" validate:"required,password" gorm:"not null"`
	RoleID   uint   `json:"role_id" gorm:"null"`
	Role     *Role  `json:"role,omitempty"`

	// Threshold pair used by the contact dashboard - refreshed from
	// AlertSetting on every settings save, so both stay in step.
	LowThreshold  float64 `json:"low_threshold" gorm:"not null;default:70"`
	HighThreshold float64 `json:"high_threshold" gorm:"not null;default:180"`

	// Weak back-reference to the user's emergency contact account.
	// Not a db-enforced foreign key, so deleting either side is never blocked.
	EmergencyContactID *uint `json:"emergency_contact_id,omitempty"`

	AlertSetting    *AlertSetting    `json:"alert_setting,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	GlucoseReadings []GlucoseReading `json:"glucose_readings,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Medications     []Medication     `json:"medications,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (user *User) Update(data map[string]interface{}) error {
	if data["password"] != nil {
		passwordHash, err := auth.HashPassword(data["password"].(string))
		if err != nil {
			return err
		}
		data["password"] = passwordHash
	}

	return db.Model(&User{}).Where("id = ?", user.ID).Select(updatableFields).Updates(data).Error
}

func (user *User) HasRole(roleName string) (bool, error) {
	if user.RoleID == 0 {
		return false, nil
	}

	role, err := FindRole(roleName)
	if err != nil {
		return false, err
	}

	return role.ID == user.RoleID, nil
}

// MonitoredPatients resolves the user's monitoring set to patient
// records, in the order each monitorship was added.
func (user *User) MonitoredPatients() ([]User, error) {
	patients := []User{}

	err := db.Select(prefixedUserColumns()).Joins(
		"INNER JOIN monitorships ON monitorships.patient_id = users.id AND monitorships.contact_id = ?", user.ID).
		Order("monitorships.id asc").Find(&patients).Error

	if err != nil {
		return nil, err
	}

	return patients, nil
}

// UpdateThresholds refreshes the user-level threshold copy.
func (user *User) UpdateThresholds(low, high float64) error {
	return db.Model(&User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{"low_threshold": low, "high_threshold": high}).Error
}

func (user *User) SetEmergencyContactRef(contactID uint) error {
	return db.Model(&User{}).Where("id = ?", user.ID).
		Update("emergency_contact_id", contactID).Error
}

func FindUserBy(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Select(allFieldsExceptPassword).First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserWithRole(field string, value interface{}) (*User, error) {
	user := User{}
	err := db.Preload("Role").Select(allFieldsExceptPassword).
		First(&user, fmt.Sprintf("%v = ?", field), value).Error
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func FindUserPassword(email string) (string, error) {
	user := &User{}
	err := db.Select("Password").First(user, "email = ?", email).Error

	if err != nil {
		return "", err
	}
	return user.Password, nil
}

// CreateUser creates a user with the given role & a hashed password.
// New accounts start with the default 70/180 threshold pair.
func CreateUser(user *User, roleName string) error {
	role, err := FindRole(roleName)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = passwordHash
	user.RoleID = role.ID

	if user.LowThreshold == 0 {
		user.LowThreshold = DEFAULT_LOW_THRESHOLD
	}
	if user.HighThreshold == 0 {
		user.HighThreshold = DEFAULT_HIGH_THRESHOLD
	}

	return db.Create(user).Error
}

func DeleteUser(id interface{}) error {
	return db.Delete(&User{}, id).Error
}

func UserExistsWithEmail(email string) (bool, error) {
	err := db.First(&User{}, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func prefixedUserColumns() []string {
	columns := []string{}
	for _, column := range allFieldsExceptPassword {
		columns = append(columns, "users."+column)
	}

	return columns
}
