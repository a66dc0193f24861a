package models

// GradeLevelInfo describes one placement option: the human label shown in
// error messages, the advertised age range, the maximum eligible age, and
// the prospectus document for that stage.
type GradeLevelInfo struct {
	Value    string
	Label    string
	AgeRange string
	MaxAge   int
	PDF      string
}

// GradeLevels is the closed set of placement values, in school order.
var GradeLevels = []GradeLevelInfo{
	{Value: "creche", Label: "Creche (0-2 years)", AgeRange: "0-2", MaxAge: 3, PDF: "/prospectus/creche-nursery.pdf"},
	{Value: "nursery", Label: "Nursery (2-3 years)", AgeRange: "2-3", MaxAge: 4, PDF: "/prospectus/creche-nursery.pdf"},
	{Value: "kg1", Label: "KG 1 (4 years)", AgeRange: "4", MaxAge: 6, PDF: "/prospectus/kindergarten.pdf"},
	{Value: "kg2", Label: "KG 2 (5 years)", AgeRange: "5", MaxAge: 7, PDF: "/prospectus/kindergarten.pdf"},
	{Value: "primary1", Label: "Primary 1 (6 years)", AgeRange: "6", MaxAge: 8, PDF: "/prospectus/primary.pdf"},
	{Value: "primary2", Label: "Primary 2 (7 years)", AgeRange: "7", MaxAge: 9, PDF: "/prospectus/primary.pdf"},
	{Value: "primary3", Label: "Primary 3 (8 years)", AgeRange: "8", MaxAge: 10, PDF: "/prospectus/primary.pdf"},
	{Value: "primary4", Label: "Primary 4 (9 years)", AgeRange: "9", MaxAge: 11, PDF: "/prospectus/primary.pdf"},
	{Value: "primary5", Label: "Primary 5 (10 years)", AgeRange: "10", MaxAge: 12, PDF: "/prospectus/primary.pdf"},
	{Value: "primary6", Label: "Primary 6 (11 years)", AgeRange: "11", MaxAge: 13, PDF: "/prospectus/primary.pdf"},
	{Value: "jhs1", Label: "JHS 1 (12 years)", AgeRange: "12", MaxAge: 14, PDF: "/prospectus/jhs.pdf"},
	{Value: "jhs2", Label: "JHS 2 (13 years)", AgeRange: "13", MaxAge: 15, PDF: "/prospectus/jhs.pdf"},
	{Value: "jhs3", Label: "JHS 3 (14 years)", AgeRange: "14", MaxAge: 16, PDF: "/prospectus/jhs.pdf"},
}

var gradeByValue = func() map[string]GradeLevelInfo {
	m := make(map[string]GradeLevelInfo, len(GradeLevels))
	for _, g := range GradeLevels {
		m[g.Value] = g
	}
	return m
}()

// GradeLevelByValue looks up a grade by its enum value.
func GradeLevelByValue(v string) (GradeLevelInfo, bool) {
	g, ok := gradeByValue[v]
	return g, ok
}

// EducationNotApplicable reports whether the educational-background section
// is semantically inapplicable for the grade. For these grades the fields
// must be persisted as NULL, not merely empty.
func EducationNotApplicable(grade string) bool {
	return grade == "creche" || grade == "nursery"
}

// GhanaRegions is the closed set accepted for parent_region.
var GhanaRegions = []string{
	"Greater Accra", "Ashanti", "Western", "Central", "Eastern", "Northern",
	"Upper East", "Upper West", "Volta", "Brong-Ahafo", "Savannah",
	"Bono East", "Ahafo", "Oti", "North East", "Western North",
}

// BloodTypes accepted in the medical section.
var BloodTypes = []string{"A+", "A-", "B+", "B-", "O+", "O-", "AB+", "AB-", "Unknown"}

// Genders accepted for a child.
var Genders = []string{"male", "female", "other", "prefer_not_to_say"}

// SecondParentRelationships accepted for the optional second parent.
var SecondParentRelationships = []string{"mother", "father", "guardian", "other"}

// AcademicYears currently open for applications.
var AcademicYears = []string{"2025/2026", "2026/2027"}
