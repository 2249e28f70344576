package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/talhabinjaved/HireMatch/internal/bootstrap"
	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/metrics"
	"github.com/talhabinjaved/HireMatch/internal/services"
	"github.com/talhabinjaved/HireMatch/internal/store"
	"github.com/talhabinjaved/HireMatch/internal/token"
	"github.com/talhabinjaved/HireMatch/internal/version"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		runServer()
	case "create-admin":
		runCreateAdmin(args[1:])
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("OAuth 2.0 authorization server for the HireMatch matching API")
	fmt.Println("\nCommands:")
	fmt.Println("  server          Start the authorization server")
	fmt.Println("  create-admin    Create a super admin account")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}

func runServer() {
	cfg := config.Load()
	if err := bootstrap.Run(cfg); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// runCreateAdmin creates a super admin account against the configured
// database. Used for the first account when ADMIN_BOOTSTRAP_PASSWORD is not
// set, and for additional accounts later.
func runCreateAdmin(args []string) {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	username := fs.String("username", "", "Admin username (required)")
	email := fs.String("email", "", "Admin email (required)")
	password := fs.String("password", "", "Admin password (required)")
	_ = fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		fmt.Println("create-admin requires -username, -email and -password")
		fs.Usage()
		os.Exit(1)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DBInitTimeout)
	defer cancel()

	db, err := store.New(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	adminService := services.NewAdminService(db, cfg, token.NewProvider(cfg), metrics.NewNoopMetrics())

	admin, err := adminService.CreateSuperAdmin(*username, *email, *password)
	if err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}
	fmt.Printf("Created super admin %q (%s)\n", admin.Username, admin.Email)
}
