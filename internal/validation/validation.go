// Package validation holds the pure form validators for the admissions
// application. Validators never touch the database or mutate their input;
// they return an ordered list of field-path → message failures.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/littlegems/admissions/internal/models"
)

// FieldError is one validation failure, addressed by the JSON field path
// (e.g. "children[1].date_of_birth").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered set of failures; empty means valid.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "valid"
	}
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

var (
	// Ghana phone format: +233 followed by exactly 9 digits.
	rePhone = regexp.MustCompile(`^\+233\d{9}$`)
	// Name-safe characters: letters, spaces, hyphens, apostrophes.
	reName = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	reYear = regexp.MustCompile(`^\d{4}/\d{4}$`)
)

const phoneMsg = "Phone must be in format +233XXXXXXXXX"

// NormEmail lowercases and trims an email address, reporting whether it is
// RFC-shaped. Empty input is treated as ok/optional.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", true
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

// Age is the whole number of 365.25-day years elapsed from dob to now.
// This matches how the form advertises grade eligibility, so the same
// approximation is kept on the server.
func Age(dob, now time.Time) int {
	const year = 365.25 * 24 * float64(time.Hour)
	return int(float64(now.Sub(dob)) / year)
}

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

func checkName(errs *FieldErrors, field, v string, min, max int, what string) {
	n := len(strings.TrimSpace(v))
	switch {
	case n < min:
		*errs = append(*errs, FieldError{field, fmt.Sprintf("%s must be at least %d characters", what, min)})
	case n > max:
		*errs = append(*errs, FieldError{field, fmt.Sprintf("%s must not exceed %d characters", what, max)})
	case !reName.MatchString(v):
		*errs = append(*errs, FieldError{field, "Name can only contain letters, spaces, hyphens, and apostrophes"})
	}
}

func checkLen(errs *FieldErrors, field, v string, min, max int, what string) {
	n := len(strings.TrimSpace(v))
	if n < min {
		*errs = append(*errs, FieldError{field, fmt.Sprintf("%s must be at least %d characters", what, min)})
	} else if n > max {
		*errs = append(*errs, FieldError{field, fmt.Sprintf("%s must not exceed %d characters", what, max)})
	}
}

func checkOptMax(errs *FieldErrors, field, v string, max int, what string) {
	if v != "" && len(v) > max {
		*errs = append(*errs, FieldError{field, fmt.Sprintf("%s must not exceed %d characters", what, max)})
	}
}

func checkPhone(errs *FieldErrors, field, v string, optional bool) {
	if v == "" {
		if !optional {
			*errs = append(*errs, FieldError{field, phoneMsg})
		}
		return
	}
	if !rePhone.MatchString(v) {
		*errs = append(*errs, FieldError{field, phoneMsg})
	}
}

// ParentInfo validates the step-1 parent/guardian fields, including the
// optional second parent when that section is enabled.
func ParentInfo(f *ApplicationForm) FieldErrors {
	var errs FieldErrors

	checkName(&errs, "parent_full_name", f.ParentFullName, 3, 100, "Full name")
	if _, ok := NormEmail(f.ParentEmail); !ok || strings.TrimSpace(f.ParentEmail) == "" {
		errs = append(errs, FieldError{"parent_email", "Invalid email address"})
	}
	checkPhone(&errs, "parent_phone", f.ParentPhone, false)
	checkPhone(&errs, "parent_phone_alt", f.ParentPhoneAlt, true)
	checkLen(&errs, "parent_address", f.ParentAddress, 10, 200, "Address")
	checkLen(&errs, "parent_city", f.ParentCity, 2, 50, "City")
	if !oneOf(f.ParentRegion, models.GhanaRegions) {
		errs = append(errs, FieldError{"parent_region", "Please select a valid region"})
	}
	checkOptMax(&errs, "parent_occupation", f.ParentOccupation, 100, "Occupation")
	checkOptMax(&errs, "parent_employer", f.ParentEmployer, 100, "Employer")

	if f.HasSecondParent {
		checkOptMax(&errs, "second_parent_full_name", f.SecondParentFullName, 100, "Full name")
		if _, ok := NormEmail(f.SecondParentEmail); !ok {
			errs = append(errs, FieldError{"second_parent_email", "Invalid email address"})
		}
		checkPhone(&errs, "second_parent_phone", f.SecondParentPhone, true)
		if f.SecondParentRelationship != "" && !oneOf(f.SecondParentRelationship, models.SecondParentRelationships) {
			errs = append(errs, FieldError{"second_parent_relationship", "Please select a valid relationship"})
		}
		checkOptMax(&errs, "second_parent_occupation", f.SecondParentOccupation, 100, "Occupation")
	}

	return errs
}

// Medical validates an optional medical section. prefix addresses the owning
// child, e.g. "children[0].medical_info".
func Medical(prefix string, m *MedicalForm) FieldErrors {
	var errs FieldErrors
	if m == nil {
		return errs
	}
	checkOptMax(&errs, prefix+".allergies", m.Allergies, 500, "Allergies")
	checkOptMax(&errs, prefix+".medical_conditions", m.MedicalConditions, 500, "Medical conditions")
	checkOptMax(&errs, prefix+".medications", m.Medications, 500, "Medications")
	checkOptMax(&errs, prefix+".special_needs", m.SpecialNeeds, 500, "Special needs")
	checkOptMax(&errs, prefix+".dietary_restrictions", m.DietaryRestrictions, 500, "Dietary restrictions")
	if m.BloodType != "" && !oneOf(m.BloodType, models.BloodTypes) {
		errs = append(errs, FieldError{prefix + ".blood_type", "Please select a valid blood type"})
	}
	checkOptMax(&errs, prefix+".doctor_name", m.DoctorName, 100, "Doctor name")
	checkPhone(&errs, prefix+".doctor_phone", m.DoctorPhone, true)
	return errs
}

// Education validates an optional educational-background section.
func Education(prefix string, e *EducationForm) FieldErrors {
	var errs FieldErrors
	if e == nil {
		return errs
	}
	checkOptMax(&errs, prefix+".previous_school_name", e.PreviousSchoolName, 200, "School name")
	checkOptMax(&errs, prefix+".previous_school_address", e.PreviousSchoolAddress, 300, "School address")
	checkPhone(&errs, prefix+".previous_school_phone", e.PreviousSchoolPhone, true)
	checkOptMax(&errs, prefix+".previous_grade_level", e.PreviousGradeLevel, 50, "Previous grade")
	checkOptMax(&errs, prefix+".reason_for_leaving", e.ReasonForLeaving, 500, "Reason for leaving")
	return errs
}

// Child validates one child entry, including the age/grade cross-check.
// The cross-check failure is reported against date_of_birth, naming the
// grade label and its maximum age.
func Child(prefix string, c *ChildForm, now time.Time) FieldErrors {
	var errs FieldErrors

	checkName(&errs, prefix+".first_name", c.FirstName, 2, 50, "First name")
	checkName(&errs, prefix+".last_name", c.LastName, 2, 50, "Last name")

	dobField := prefix + ".date_of_birth"
	switch {
	case c.DateOfBirth.IsZero():
		errs = append(errs, FieldError{dobField, "Date of birth is required"})
	case c.DateOfBirth.After(now):
		errs = append(errs, FieldError{dobField, "Date of birth cannot be in the future"})
	default:
		if age := Age(c.DateOfBirth.Time, now); age < 0 || age > 18 {
			errs = append(errs, FieldError{dobField, "Child must be between 0 and 18 years old"})
		}
	}

	if !oneOf(c.Gender, models.Genders) {
		errs = append(errs, FieldError{prefix + ".gender", "Please select a gender"})
	}

	grade, gradeOK := models.GradeLevelByValue(c.GradeLevel)
	if !gradeOK {
		errs = append(errs, FieldError{prefix + ".grade_level", "Please select a grade level"})
	}

	if !reYear.MatchString(c.AcademicYear) {
		errs = append(errs, FieldError{prefix + ".academic_year", "Academic year must be in format YYYY/YYYY"})
	}

	// Cross-field refinement: age vs grade maximum. Only meaningful when the
	// date of birth itself passed.
	if gradeOK && !c.DateOfBirth.IsZero() && !c.DateOfBirth.After(now) {
		if age := Age(c.DateOfBirth.Time, now); age > grade.MaxAge {
			errs = append(errs, FieldError{
				dobField,
				fmt.Sprintf("Child is too old for %s (maximum age: %d years). Please verify the date of birth or select a different grade level.",
					grade.Label, grade.MaxAge),
			})
		}
	}

	errs = append(errs, Medical(prefix+".medical_info", c.MedicalInfo)...)
	errs = append(errs, Education(prefix+".education_info", c.EducationInfo)...)
	return errs
}

// Children validates the children list: 1..5 entries, each valid.
func Children(children []ChildForm, now time.Time) FieldErrors {
	var errs FieldErrors
	if len(children) < 1 {
		return append(errs, FieldError{"children", "At least one child is required"})
	}
	if len(children) > 5 {
		errs = append(errs, FieldError{"children", "Maximum 5 children per application"})
	}
	for i := range children {
		errs = append(errs, Child(fmt.Sprintf("children[%d]", i), &children[i], now)...)
	}
	return errs
}

// Contact validates one emergency contact entry.
func Contact(prefix string, c *ContactForm) FieldErrors {
	var errs FieldErrors
	checkLen(&errs, prefix+".name", c.Name, 3, 100, "Name")
	if n := len(strings.TrimSpace(c.Relationship)); n < 2 {
		errs = append(errs, FieldError{prefix + ".relationship", "Relationship must be specified"})
	} else if n > 50 {
		errs = append(errs, FieldError{prefix + ".relationship", "Relationship must not exceed 50 characters"})
	}
	checkPhone(&errs, prefix+".phone", c.Phone, false)
	checkPhone(&errs, prefix+".phone_alt", c.PhoneAlt, true)
	return errs
}

// Contacts validates the emergency contact list: 2..5 entries, each valid.
func Contacts(contacts []ContactForm) FieldErrors {
	var errs FieldErrors
	if len(contacts) < 2 {
		return append(errs, FieldError{"emergency_contacts", "At least 2 emergency contacts are required"})
	}
	if len(contacts) > 5 {
		errs = append(errs, FieldError{"emergency_contacts", "Maximum 5 emergency contacts allowed"})
	}
	for i := range contacts {
		errs = append(errs, Contact(fmt.Sprintf("emergency_contacts[%d]", i), &contacts[i])...)
	}
	return errs
}

// Terms checks the accuracy confirmation checkbox.
func Terms(accepted bool) FieldErrors {
	if !accepted {
		return FieldErrors{{"termsAccepted", "You must confirm that all information is accurate"}}
	}
	return nil
}

// Application validates the whole form, in step order.
func Application(f *ApplicationForm, now time.Time) FieldErrors {
	var errs FieldErrors
	errs = append(errs, ParentInfo(f)...)
	errs = append(errs, Children(f.Children, now)...)
	errs = append(errs, Contacts(f.EmergencyContacts)...)
	errs = append(errs, Terms(f.TermsAccepted)...)
	return errs
}
