package validation

import (
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// dob returns a date of birth producing roughly the given age at testNow.
func dob(years int) Date {
	return Date{Time: testNow.AddDate(-years, -1, 0)}
}

func validChild() ChildForm {
	return ChildForm{
		FirstName:    "Ama",
		LastName:     "Mensah",
		DateOfBirth:  dob(2),
		Gender:       "female",
		GradeLevel:   "creche",
		AcademicYear: "2025/2026",
	}
}

func validContact() ContactForm {
	return ContactForm{
		Name:         "Kojo Mensah",
		Relationship: "Uncle",
		Phone:        "+233201234567",
	}
}

func validForm() *ApplicationForm {
	return &ApplicationForm{
		ParentFullName: "Akosua Mensah",
		ParentEmail:    "akosua@example.com",
		ParentPhone:    "+233241234567",
		ParentAddress:  "12 Independence Avenue, Accra",
		ParentCity:     "Accra",
		ParentRegion:   "Greater Accra",
		Children:       []ChildForm{validChild()},
		EmergencyContacts: []ContactForm{
			validContact(),
			{Name: "Efua Asante", Relationship: "Aunt", Phone: "+233209876543"},
		},
		TermsAccepted: true,
	}
}

func hasFieldError(errs FieldErrors, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func TestApplication_ValidFormPasses(t *testing.T) {
	if errs := Application(validForm(), testNow); len(errs) > 0 {
		t.Fatalf("expected valid form, got: %v", errs)
	}
}

// TestChild_AgeVsGradeLevel covers the cross-field refinement: a child whose
// computed age exceeds the grade's maximum fails on date_of_birth with a
// message naming the grade label and max age.
func TestChild_AgeVsGradeLevel(t *testing.T) {
	f := validForm()
	f.Children[0].DateOfBirth = dob(10) // age 10 vs creche max 3
	f.Children[0].GradeLevel = "creche"

	errs := Children(f.Children, testNow)
	if !hasFieldError(errs, "children[0].date_of_birth") {
		t.Fatalf("expected error on children[0].date_of_birth, got: %v", errs)
	}
	msg := errs.Error()
	if !strings.Contains(msg, "Creche (0-2 years)") || !strings.Contains(msg, "maximum age: 3") {
		t.Errorf("message should name grade label and max age, got: %q", msg)
	}

	// Same child is fine for an age-appropriate grade.
	f.Children[0].GradeLevel = "primary3" // max age 10
	if errs := Children(f.Children, testNow); len(errs) > 0 {
		t.Errorf("age 10 should be allowed in primary3, got: %v", errs)
	}
}

func TestChild_DateOfBirthBounds(t *testing.T) {
	f := validForm()

	f.Children[0].DateOfBirth = Date{Time: testNow.AddDate(0, 0, 1)}
	if errs := Children(f.Children, testNow); !hasFieldError(errs, "children[0].date_of_birth") {
		t.Errorf("future DOB must fail, got: %v", errs)
	}

	f.Children[0].DateOfBirth = dob(19)
	f.Children[0].GradeLevel = "jhs3"
	if errs := Children(f.Children, testNow); !hasFieldError(errs, "children[0].date_of_birth") {
		t.Errorf("age 19 must fail the [0,18] bound, got: %v", errs)
	}
}

func TestApplication_ChildrenCountBounds(t *testing.T) {
	cases := []struct {
		n    int
		want bool // valid?
	}{
		{0, false}, {1, true}, {5, true}, {6, false},
	}
	for _, tc := range cases {
		f := validForm()
		f.Children = nil
		for i := 0; i < tc.n; i++ {
			f.Children = append(f.Children, validChild())
		}
		errs := Application(f, testNow)
		ok := !hasFieldError(errs, "children")
		if ok != tc.want {
			t.Errorf("children=%d: valid=%v, want %v (errs: %v)", tc.n, ok, tc.want, errs)
		}
	}
}

func TestApplication_ContactCountBounds(t *testing.T) {
	cases := []struct {
		n    int
		want bool
	}{
		{1, false}, {2, true}, {5, true}, {6, false},
	}
	for _, tc := range cases {
		f := validForm()
		f.EmergencyContacts = nil
		for i := 0; i < tc.n; i++ {
			f.EmergencyContacts = append(f.EmergencyContacts, validContact())
		}
		errs := Application(f, testNow)
		ok := !hasFieldError(errs, "emergency_contacts")
		if ok != tc.want {
			t.Errorf("contacts=%d: valid=%v, want %v", tc.n, ok, tc.want)
		}
	}
}

func TestApplication_TermsMustBeTrue(t *testing.T) {
	f := validForm()
	f.TermsAccepted = false
	if errs := Application(f, testNow); !hasFieldError(errs, "termsAccepted") {
		t.Fatalf("termsAccepted=false must fail, got: %v", errs)
	}
}

func TestParentInfo_PhoneFormat(t *testing.T) {
	for _, bad := range []string{"0241234567", "+23324123456", "+2332412345678", "+234241234567", "241234567"} {
		f := validForm()
		f.ParentPhone = bad
		if errs := ParentInfo(f); !hasFieldError(errs, "parent_phone") {
			t.Errorf("phone %q should fail", bad)
		}
	}
	// optional alt phone: empty ok, malformed not
	f := validForm()
	f.ParentPhoneAlt = ""
	if errs := ParentInfo(f); hasFieldError(errs, "parent_phone_alt") {
		t.Errorf("empty alt phone should pass, got: %v", errs)
	}
	f.ParentPhoneAlt = "055123"
	if errs := ParentInfo(f); !hasFieldError(errs, "parent_phone_alt") {
		t.Error("malformed alt phone should fail")
	}
}

func TestParentInfo_NameCharset(t *testing.T) {
	f := validForm()
	f.ParentFullName = "Kwame123"
	if errs := ParentInfo(f); !hasFieldError(errs, "parent_full_name") {
		t.Error("digits in name should fail")
	}
	f.ParentFullName = "O'Brien-Asante Jr"
	if errs := ParentInfo(f); hasFieldError(errs, "parent_full_name") {
		t.Errorf("apostrophes and hyphens are allowed, got: %v", errs)
	}
}

func TestParentInfo_RegionEnum(t *testing.T) {
	f := validForm()
	f.ParentRegion = "Atlantis"
	if errs := ParentInfo(f); !hasFieldError(errs, "parent_region") {
		t.Error("unknown region should fail")
	}
}

func TestParentInfo_SecondParentOnlyWhenEnabled(t *testing.T) {
	f := validForm()
	f.HasSecondParent = false
	f.SecondParentPhone = "garbage" // ignored while section is off
	if errs := ParentInfo(f); len(errs) > 0 {
		t.Fatalf("second-parent fields must not validate when disabled: %v", errs)
	}

	f.HasSecondParent = true
	if errs := ParentInfo(f); !hasFieldError(errs, "second_parent_phone") {
		t.Error("enabled second-parent phone should validate")
	}
}

func TestMedical_BloodTypeEnum(t *testing.T) {
	f := validForm()
	f.Children[0].MedicalInfo = &MedicalForm{BloodType: "C+"}
	errs := Children(f.Children, testNow)
	if !hasFieldError(errs, "children[0].medical_info.blood_type") {
		t.Errorf("unknown blood type should fail, got: %v", errs)
	}
}

func TestNormEmail(t *testing.T) {
	got, ok := NormEmail("  Parent@Example.COM ")
	if !ok || got != "parent@example.com" {
		t.Errorf("NormEmail: got %q ok=%v", got, ok)
	}
	if _, ok := NormEmail("not-an-email"); ok {
		t.Error("bad email should not normalize")
	}
	if got, ok := NormEmail(""); !ok || got != "" {
		t.Error("empty email is ok/optional")
	}
}

func TestAge_Approximation(t *testing.T) {
	// 365.25-day years; pin the convention with fixed dates. 2020-01-15 to
	// 2026-01-15 spans 2192 days = 6.001 approximate years.
	born := time.Date(2020, 1, 15, 12, 0, 0, 0, time.UTC)
	if got := Age(born, testNow); got != 6 {
		t.Errorf("Age = %d, want 6", got)
	}
	if got := Age(testNow.Add(-time.Hour), testNow); got != 0 {
		t.Errorf("newborn Age = %d, want 0", got)
	}
}
