package validation

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date carried as "2006-01-02" on the wire.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	// Accept plain dates and full timestamps (the form sends either).
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// MedicalForm is the optional per-child medical section.
type MedicalForm struct {
	Allergies           string `json:"allergies"`
	MedicalConditions   string `json:"medical_conditions"`
	Medications         string `json:"medications"`
	SpecialNeeds        string `json:"special_needs"`
	DietaryRestrictions string `json:"dietary_restrictions"`
	BloodType           string `json:"blood_type"`
	DoctorName          string `json:"doctor_name"`
	DoctorPhone         string `json:"doctor_phone"`
}

// EducationForm is the optional per-child educational background section.
// It is inapplicable (persisted as NULL) for creche and nursery placements.
type EducationForm struct {
	PreviousSchoolName    string `json:"previous_school_name"`
	PreviousSchoolAddress string `json:"previous_school_address"`
	PreviousSchoolPhone   string `json:"previous_school_phone"`
	PreviousGradeLevel    string `json:"previous_grade_level"`
	ReasonForLeaving      string `json:"reason_for_leaving"`
}

// ChildForm is one child entry of the draft.
type ChildForm struct {
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	DateOfBirth        Date           `json:"date_of_birth"`
	Gender             string         `json:"gender"`
	GradeLevel         string         `json:"grade_level"`
	AcademicYear       string         `json:"academic_year"`
	PreferredStartDate Date           `json:"preferred_start_date"`
	MedicalInfo        *MedicalForm   `json:"medical_info,omitempty"`
	EducationInfo      *EducationForm `json:"education_info,omitempty"`
}

// ContactForm is one emergency contact entry.
type ContactForm struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	PhoneAlt     string `json:"phone_alt"`
}

// ApplicationForm is the complete draft the wizard collects and the submit
// endpoint accepts. Field names match the persisted column names.
type ApplicationForm struct {
	ParentFullName   string `json:"parent_full_name"`
	ParentEmail      string `json:"parent_email"`
	ParentPhone      string `json:"parent_phone"`
	ParentPhoneAlt   string `json:"parent_phone_alt"`
	ParentAddress    string `json:"parent_address"`
	ParentCity       string `json:"parent_city"`
	ParentRegion     string `json:"parent_region"`
	ParentOccupation string `json:"parent_occupation"`
	ParentEmployer   string `json:"parent_employer"`

	HasSecondParent          bool   `json:"has_second_parent"`
	SecondParentFullName     string `json:"second_parent_full_name"`
	SecondParentEmail        string `json:"second_parent_email"`
	SecondParentPhone        string `json:"second_parent_phone"`
	SecondParentRelationship string `json:"second_parent_relationship"`
	SecondParentOccupation   string `json:"second_parent_occupation"`

	Children          []ChildForm   `json:"children"`
	EmergencyContacts []ContactForm `json:"emergency_contacts"`

	TermsAccepted bool `json:"termsAccepted"`
}
