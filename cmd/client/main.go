package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/GophPayroll/internal/client"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags and dispatches to the register or shell commands.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		payslipsDir string
		showVer     bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: register | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for https servers with a private CA")
	flag.StringVar(&payslipsDir, "payslips", "payslips", "directory downloaded payslips are saved to")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("GophPayroll Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	api := client.NewAPI(httpClient, baseURL)

	switch cmd {
	case "register":
		email, password, ok := client.NewPrompter(os.Stdin, os.Stdout).PromptCredentials()
		if !ok {
			log.Fatal("no credentials entered")
		}
		if err := api.Register(ctx, email, password); err != nil {
			log.Fatal(err)
		}
		fmt.Println("User registered")
	case "shell":
		sh := client.NewShell(api, os.Stdin, os.Stdout, client.PayslipStore{Dir: payslipsDir})
		if err := sh.Login(ctx); err != nil {
			log.Fatal(err)
		}
		sh.Run(ctx)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
