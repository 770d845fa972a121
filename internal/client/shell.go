package client

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const helpText = "Available commands: help, me, count, employees, add, delete <code>, payroll <code>, salary <code> [days], payslip <code> [days], logout, exit"

// Shell is the interactive payroll console.
type Shell struct {
	api      *API
	prompt   *Prompter
	out      io.Writer
	payslips PayslipStore
}

// NewShell creates a shell reading commands from in.
func NewShell(api *API, in io.Reader, out io.Writer, payslips PayslipStore) *Shell {
	return &Shell{api: api, prompt: NewPrompter(in, out), out: out, payslips: payslips}
}

// Login asks for credentials and opens a session.
func (s *Shell) Login(ctx context.Context) error {
	email, password, ok := s.prompt.PromptCredentials()
	if !ok {
		return io.EOF
	}
	sess, err := s.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Logged in as %s (%s)\n", sess.Email, sess.Role)
	return nil
}

// Run reads and executes commands until exit, logout or end of input.
func (s *Shell) Run(ctx context.Context) {
	for {
		line, ok := s.prompt.Ask("payroll> ")
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if done := s.exec(ctx, args); done {
			return
		}
	}
}

func (s *Shell) exec(ctx context.Context, args []string) bool {
	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "me":
		sess, err := s.api.Me(ctx)
		if s.report(err) {
			fmt.Fprintf(s.out, "%s (%s)\n", sess.Email, sess.Role)
		}
	case "count":
		n, err := s.api.CountUsers(ctx)
		if s.report(err) {
			fmt.Fprintf(s.out, "Registered users: %d\n", n)
		}
	case "employees":
		list, err := s.api.Employees(ctx)
		if !s.report(err) {
			break
		}
		if len(list) == 0 {
			fmt.Fprintln(s.out, "No employees")
		}
		for _, e := range list {
			fmt.Fprintf(s.out, "%s\t%s\t%s\t%s\t%s\n", e.Code, e.FullName, e.Email, e.Department, e.DateOfJoining.Format("2006-01-02"))
		}
	case "add":
		in, ok := s.prompt.PromptEmployee()
		if !ok {
			return true
		}
		e, err := s.api.CreateEmployee(ctx, in)
		if s.report(err) {
			fmt.Fprintf(s.out, "Employee %s added\n", e.Code)
		}
	case "delete":
		code, ok := s.codeArg(args)
		if ok && s.report(s.api.DeleteEmployee(ctx, code)) {
			fmt.Fprintf(s.out, "Employee %s deleted\n", code)
		}
	case "payroll":
		code, ok := s.codeArg(args)
		if !ok {
			break
		}
		in, ok := s.prompt.PromptPayroll()
		if !ok {
			return true
		}
		st, err := s.api.SavePayroll(ctx, code, in)
		if s.report(err) {
			fmt.Fprintf(s.out, "Payroll saved. Net salary: %s\n", st.Salary.Net.StringFixed(2))
		}
	case "salary":
		code, days, ok := s.salaryArgs(args)
		if !ok {
			break
		}
		b, err := s.api.Salary(ctx, code, days)
		if s.report(err) {
			fmt.Fprintf(s.out, "Gross: %s\nDeductions: %s\nNet: %s\n",
				b.Gross.StringFixed(2), b.Deductions.StringFixed(2), b.Net.StringFixed(2))
		}
	case "payslip":
		code, days, ok := s.salaryArgs(args)
		if !ok {
			break
		}
		name, body, err := s.api.Payslip(ctx, code, days)
		if !s.report(err) {
			break
		}
		path, err := s.payslips.Save(name, body)
		if s.report(err) {
			fmt.Fprintf(s.out, "Payslip saved to %s\n", path)
		}
	case "logout":
		if s.report(s.api.Logout(ctx)) {
			fmt.Fprintln(s.out, "Logged out")
		}
		return true
	case "exit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) report(err error) bool {
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return false
	}
	return true
}

func (s *Shell) codeArg(args []string) (string, bool) {
	if len(args) < 2 {
		fmt.Fprintf(s.out, "Usage: %s <code>\n", args[0])
		return "", false
	}
	return args[1], true
}

func (s *Shell) salaryArgs(args []string) (string, *int, bool) {
	code, ok := s.codeArg(args)
	if !ok {
		return "", nil, false
	}
	if len(args) < 3 {
		return code, nil, true
	}
	days, err := strconv.Atoi(args[2])
	if err != nil || days < 0 {
		fmt.Fprintf(s.out, "Usage: %s <code> [days]\n", args[0])
		return "", nil, false
	}
	return code, &days, true
}
