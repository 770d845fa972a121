package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Prompter reads answers line by line from in and writes labels to out.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a Prompter.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer. ok is false once input is exhausted.
func (p *Prompter) Ask(label string) (answer string, ok bool) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

// PromptCredentials asks for email and password.
func (p *Prompter) PromptCredentials() (email, password string, ok bool) {
	if email, ok = p.Ask("Email: "); !ok {
		return "", "", false
	}
	if password, ok = p.Ask("Password: "); !ok {
		return "", "", false
	}
	return email, password, true
}

// PromptEmployee asks for the fields of a new employee. Attendance and
// password may be left empty.
func (p *Prompter) PromptEmployee() (EmployeeInput, bool) {
	var in EmployeeInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"Employee code: ", &in.Code},
		{"Full name: ", &in.FullName},
		{"Email: ", &in.Email},
		{"Phone: ", &in.Phone},
		{"Department: ", &in.Department},
		{"Date of joining (YYYY-MM-DD): ", &in.DateOfJoining},
	}
	for _, f := range fields {
		v, ok := p.Ask(f.label)
		if !ok {
			return in, false
		}
		*f.dst = v
	}

	days, ok := p.Ask("Attendance days (optional): ")
	if !ok {
		return in, false
	}
	if n, err := strconv.Atoi(days); err == nil {
		in.Attendance = &n
	}

	if in.Password, ok = p.Ask("Login password (optional): "); !ok {
		return in, false
	}
	return in, true
}

// PromptPayroll asks for basic salary and the four percentages.
func (p *Prompter) PromptPayroll() (PayrollInput, bool) {
	var in PayrollInput
	fields := []struct {
		label string
		dst   *string
	}{
		{"Basic: ", &in.Basic},
		{"HRA %: ", &in.HRA},
		{"Allowance %: ", &in.Allowance},
		{"PF %: ", &in.PF},
		{"Tax %: ", &in.Tax},
	}
	for _, f := range fields {
		v, ok := p.Ask(f.label)
		if !ok {
			return in, false
		}
		*f.dst = v
	}
	return in, true
}
