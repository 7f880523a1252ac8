package enums

import "fmt"

// AcademicYear is the year-of-study selection on the registration forms.
type AcademicYear string

const (
	AcademicYearFirst  AcademicYear = "1st Year"
	AcademicYearSecond AcademicYear = "2nd Year"
	AcademicYearThird  AcademicYear = "3rd Year"
	AcademicYearFourth AcademicYear = "4th Year"
)

var validAcademicYears = []AcademicYear{
	AcademicYearFirst,
	AcademicYearSecond,
	AcademicYearThird,
	AcademicYearFourth,
}

// String implements fmt.Stringer.
func (a AcademicYear) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AcademicYear.
func (a AcademicYear) IsValid() bool {
	for _, candidate := range validAcademicYears {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAcademicYear converts raw input into an AcademicYear.
func ParseAcademicYear(value string) (AcademicYear, error) {
	for _, candidate := range validAcademicYears {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid academic year %q", value)
}
