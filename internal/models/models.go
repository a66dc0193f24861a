package models

import "time"

// User is the identity record behind the admissions form. Applications are
// only accepted from users whose email has been confirmed.
type User struct {
	ID        string `gorm:"primaryKey"` // uuid
	CreatedAt time.Time
	UpdatedAt time.Time

	Email        string `gorm:"uniqueIndex;not null"` // stored lowercase
	PasswordHash string
	FullName     string
	Role         string // "parent" for self-signup

	EmailConfirmedAt *time.Time // nil until verified
	VerifyToken      string     `gorm:"index"`
	VerifyTokenExp   *time.Time
}

// Verified reports whether the user's email has been confirmed.
func (u *User) Verified() bool { return u.EmailConfirmedAt != nil }

// EmergencyContact is stored inside Application as a JSON list, not as
// normalized rows; it is only ever read back whole.
type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	PhoneAlt     string `json:"phone_alt,omitempty"`
}

// Status: "pending", "under_review", "approved", "rejected", "waitlisted", "withdrawn"
type Application struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ReferenceNumber string `gorm:"uniqueIndex"` // e.g., LGS-123456
	UserID          string `gorm:"index;not null"`

	ParentFullName   string
	ParentEmail      string
	ParentPhone      string
	ParentPhoneAlt   *string
	ParentAddress    string
	ParentCity       string
	ParentRegion     string
	ParentOccupation string
	ParentEmployer   *string

	SecondParentFullName     *string
	SecondParentEmail        *string
	SecondParentPhone        *string
	SecondParentRelationship *string
	SecondParentOccupation   *string

	EmergencyContacts []EmergencyContact `gorm:"serializer:json"`

	Status      string // pending | under_review | approved | rejected | waitlisted | withdrawn
	SubmittedAt time.Time

	// Review workflow (admin-only writes)
	ReviewedBy *string
	ReviewedAt *time.Time
	AdminNotes *string

	Children []ApplicationChild
}

// ApplicationChild is a denormalized copy of one child entry, written in the
// same logical transaction as its Application. Education fields stay nil for
// creche/nursery placements regardless of what the form collected.
type ApplicationChild struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ApplicationID uint `gorm:"index;not null"`

	FirstName          string
	LastName           string
	DateOfBirth        time.Time
	Gender             string
	GradeLevel         string
	AcademicYear       string // YYYY/YYYY
	PreferredStartDate time.Time

	// Medical
	Allergies           *string
	MedicalConditions   *string
	Medications         *string
	SpecialNeeds        *string
	DietaryRestrictions *string
	BloodType           *string
	DoctorName          *string
	DoctorPhone         *string

	// Educational background (nil for creche/nursery)
	PreviousSchoolName    *string
	PreviousSchoolAddress *string
	PreviousSchoolPhone   *string
	PreviousGradeLevel    *string
	ReasonForLeaving      *string
}
