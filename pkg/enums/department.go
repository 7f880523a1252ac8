package enums

import "fmt"

// Department is the fixed list of departments offered on the registration forms.
type Department string

const (
	DepartmentComputerScience Department = "Computer Science"
	DepartmentMathematics     Department = "Mathematics"
	DepartmentPhysics         Department = "Physics"
	DepartmentChemistry       Department = "Chemistry"
	DepartmentBiology         Department = "Biology"
	DepartmentOthers          Department = "Others"
)

var validDepartments = []Department{
	DepartmentComputerScience,
	DepartmentMathematics,
	DepartmentPhysics,
	DepartmentChemistry,
	DepartmentBiology,
	DepartmentOthers,
}

// String implements fmt.Stringer.
func (d Department) String() string {
	return string(d)
}

// IsValid reports whether the value is a known Department.
func (d Department) IsValid() bool {
	for _, candidate := range validDepartments {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDepartment converts raw input into a Department.
func ParseDepartment(value string) (Department, error) {
	for _, candidate := range validDepartments {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid department %q", value)
}
