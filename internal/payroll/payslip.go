package payroll

import (
	"bytes"
	"fmt"

	"github.com/atinyakov/GophPayroll/internal/models"
)

const (
	payslipRule = "-----------------------------"
	dateLayout  = "2006-01-02"
)

// PayslipFilename returns the attachment name used when exporting the payslip of e.
func PayslipFilename(e models.Employee) string {
	return e.FullName + "_payslip.txt"
}

// RenderPayslip produces the fixed-layout payslip document for an employee.
// The output depends only on its arguments.
func RenderPayslip(e models.Employee, p models.Payroll, b Breakdown) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Payslip for %s\n", e.FullName)
	fmt.Fprintf(&buf, "Employee Code: %s\n", e.Code)
	fmt.Fprintf(&buf, "Department: %s\n", e.Department)
	fmt.Fprintf(&buf, "Date of Joining: %s\n", e.DateOfJoining.Format(dateLayout))
	buf.WriteString(payslipRule + "\n")

	fmt.Fprintf(&buf, "Basic: %s\n", p.Basic.StringFixed(2))
	fmt.Fprintf(&buf, "HRA: %s%%\n", p.HRA.String())
	fmt.Fprintf(&buf, "Allowance: %s%%\n", p.Allowance.String())
	fmt.Fprintf(&buf, "PF: %s%%\n", p.PF.String())
	fmt.Fprintf(&buf, "Tax: %s%%\n", p.Tax.String())
	if b.Prorated() {
		fmt.Fprintf(&buf, "Attendance: %d of %d days\n", *b.AttendanceDays, WorkingDaysPerMonth)
		fmt.Fprintf(&buf, "Effective Basic: %s\n", b.Basic.StringFixed(2))
	}
	buf.WriteString(payslipRule + "\n")

	fmt.Fprintf(&buf, "HRA Amount: %s\n", b.HRA.StringFixed(2))
	fmt.Fprintf(&buf, "Allowance Amount: %s\n", b.Allowance.StringFixed(2))
	fmt.Fprintf(&buf, "Gross Salary: %s\n", b.Gross.StringFixed(2))
	fmt.Fprintf(&buf, "PF Amount: %s\n", b.PF.StringFixed(2))
	fmt.Fprintf(&buf, "Tax Amount: %s\n", b.Tax.StringFixed(2))
	fmt.Fprintf(&buf, "Deductions: %s\n", b.Deductions.StringFixed(2))
	fmt.Fprintf(&buf, "Net Salary: %s\n", b.Net.StringFixed(2))

	return buf.Bytes()
}
