package bootstrap

import (
	"log"

	"github.com/talhabinjaved/HireMatch/internal/config"
	"github.com/talhabinjaved/HireMatch/internal/services"
)

// ensureBootstrapAdmin seeds the first super admin account on an empty
// database. Subsequent admins are created with the create-admin command.
func ensureBootstrapAdmin(cfg *config.Config, adminService *services.AdminService) {
	count, err := adminService.Count()
	if err != nil {
		log.Fatalf("Failed to count super admins: %v", err)
	}
	if count > 0 {
		return
	}

	if cfg.AdminBootstrapPassword == "" {
		log.Println("No super admins exist and ADMIN_BOOTSTRAP_PASSWORD is not set; " +
			"management API will be unreachable until one is created")
		return
	}

	admin, err := adminService.CreateSuperAdmin("admin", cfg.AdminBootstrapEmail, cfg.AdminBootstrapPassword)
	if err != nil {
		log.Fatalf("Failed to create bootstrap super admin: %v", err)
	}
	log.Printf("Created bootstrap super admin %q (%s)", admin.Username, admin.Email)
}
