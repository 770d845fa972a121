package client

// EmployeeInput is the body sent to create an employee.
type EmployeeInput struct {
	Code          string `json:"empCode"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Department    string `json:"department"`
	DateOfJoining string `json:"dateOfJoining"` // 2006-01-02
	Attendance    *int   `json:"attendance,omitempty"`
	Password      string `json:"password,omitempty"` // optional employee login
}

// PayrollInput is the body sent to save payroll parameters. Values are sent
// as typed by the user; the server treats non-numeric input as zero.
type PayrollInput struct {
	Basic     string `json:"basic"`
	HRA       string `json:"hra"`
	Allowance string `json:"allowance"`
	PF        string `json:"pf"`
	Tax       string `json:"tax"`
}

// Session describes the logged-in user.
type Session struct {
	Msg   string `json:"msg,omitempty"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
