package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/frahmantamala/lms-backend/internal/auth"
	"github.com/frahmantamala/lms-backend/internal/core/database"
	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/frahmantamala/lms-backend/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const demoPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the default roles, permissions and role-permission matrix plus demo users and courses.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		logger.Init(cfg.Env, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		db, err := database.OpenPostgres(sqlxDB.DB)
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		s := &seeder{db: db, bcryptCost: cfg.Security.BCryptCost, logger: logger.L()}
		if err := s.run(cmd.Context(), clearData); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

type seedPermission struct {
	Name     string
	Desc     string
	Category string
}

var defaultPermissions = []seedPermission{
	{"manage_users", "Manage all users", "users"},
	{"view_users", "View users", "users"},
	{"edit_own_profile", "Edit own profile", "users"},

	{"create_courses", "Create new courses", "courses"},
	{"edit_all_courses", "Edit any course", "courses"},
	{"edit_own_courses", "Edit own courses", "courses"},
	{"delete_courses", "Delete courses", "courses"},
	{"view_all_courses", "View all courses", "courses"},
	{"enroll_students", "Enroll students into courses", "courses"},

	{"create_content", "Create learning content", "content"},
	{"edit_content", "Edit content", "content"},
	{"delete_content", "Delete content", "content"},
	{"upload_files", "Upload files", "content"},

	{"create_assessments", "Create quizzes and assessments", "assessments"},
	{"grade_students", "Grade students", "assessments"},
	{"view_own_grades", "View own grades", "assessments"},
	{"view_all_grades", "View all grades", "assessments"},

	{"view_reports", "View reports and statistics", "reports"},
	{"export_data", "Export data", "reports"},

	{"manage_roles", "Manage roles and permissions", "system"},
	{"manage_settings", "Manage system settings", "system"},
	{"view_logs", "View system logs", "system"},
}

type seedRole struct {
	Name        string
	Desc        string
	Level       int
	Permissions []string // nil grants every permission
}

var defaultRoles = []seedRole{
	{"admin", "System administrator with full access", 1, nil},
	{"manager", "Supervises courses and teachers", 2, []string{
		"view_users", "view_all_courses", "enroll_students",
		"view_all_grades", "view_reports", "export_data",
	}},
	{"teacher", "Creates and runs courses", 3, []string{
		"edit_own_profile", "create_courses", "edit_own_courses",
		"view_all_courses", "enroll_students", "create_content",
		"edit_content", "upload_files", "create_assessments",
		"grade_students", "view_reports",
	}},
	{"content_creator", "Produces learning content", 4, []string{
		"edit_own_profile", "view_all_courses", "create_content",
		"edit_content", "upload_files",
	}},
	{"tutor", "Assists students", 5, []string{
		"edit_own_profile", "view_all_courses", "view_users", "view_all_grades",
	}},
	{"student", "Attends courses", 6, []string{
		"edit_own_profile", "view_own_grades",
	}},
	{"guest", "Read-only access", 7, []string{
		"view_all_courses",
	}},
}

type seedUser struct {
	Email    string
	Username string
	Role     string
}

var demoUsers = []seedUser{
	{"admin@lms.local", "admin", "admin"},
	{"manager@lms.local", "manager", "manager"},
	{"teacher@lms.local", "teacher", "teacher"},
	{"student@lms.local", "student", "student"},
}

var demoCourses = []courseDatamodel.Course{
	{Name: "Introduction to Go", Description: "Types, functions and the standard library", Code: "GO-101", Credits: 3, MaxCapacity: 30, IsActive: true},
	{Name: "Relational Databases", Description: "Modelling, SQL and transactions", Code: "DB-201", Credits: 4, MaxCapacity: 25, IsActive: true},
	{Name: "Distributed Systems", Description: "Consensus, replication and failure", Code: "DS-301", Credits: 5, MaxCapacity: 2, IsActive: true},
}

type seeder struct {
	db         *gorm.DB
	bcryptCost int
	logger     *slog.Logger
}

// run is idempotent: existing rows are looked up by their unique name, email or code.
func (s *seeder) run(ctx context.Context, clear bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := clearSeedData(tx); err != nil {
				return err
			}
			s.logger.Info("cleared existing data")
		}

		permissionIDs := make(map[string]int64, len(defaultPermissions))
		for _, p := range defaultPermissions {
			row := rbacDatamodel.Permission{Name: p.Name, Description: p.Desc, Category: p.Category}
			if err := tx.Where(rbacDatamodel.Permission{Name: p.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
			}
			permissionIDs[p.Name] = row.ID
		}
		s.logger.Info("seeded permissions", "count", len(permissionIDs))

		roleIDs := make(map[string]int64, len(defaultRoles))
		for _, r := range defaultRoles {
			row := rbacDatamodel.Role{Name: r.Name, Description: r.Desc, Level: r.Level}
			if err := tx.Omit(clause.Associations).Where(rbacDatamodel.Role{Name: r.Name}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.Name, err)
			}
			roleIDs[r.Name] = row.ID

			names := r.Permissions
			if names == nil {
				names = make([]string, 0, len(defaultPermissions))
				for _, p := range defaultPermissions {
					names = append(names, p.Name)
				}
			}
			links := make([]rbacDatamodel.RolePermission, 0, len(names))
			for _, name := range names {
				pid, ok := permissionIDs[name]
				if !ok {
					return fmt.Errorf("role %s references unknown permission %s", r.Name, name)
				}
				links = append(links, rbacDatamodel.RolePermission{RoleID: row.ID, PermissionID: pid})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
				return fmt.Errorf("failed to link permissions to role %s: %w", r.Name, err)
			}
		}
		s.logger.Info("seeded roles", "count", len(roleIDs))

		hash, err := auth.HashPassword(demoPassword, s.bcryptCost)
		if err != nil {
			return err
		}
		for _, u := range demoUsers {
			row := userDatamodel.User{Email: u.Email, Username: u.Username, PasswordHash: hash, IsActive: true}
			if err := tx.Where(userDatamodel.User{Email: u.Email}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
			}
			grant := rbacDatamodel.UserRole{UserID: row.ID, RoleID: roleIDs[u.Role]}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error; err != nil {
				return fmt.Errorf("failed to grant %s to %s: %w", u.Role, u.Email, err)
			}
		}
		s.logger.Info("seeded demo users", "count", len(demoUsers), "password", demoPassword)

		for _, c := range demoCourses {
			row := c
			if err := tx.Where(courseDatamodel.Course{Code: c.Code}).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("failed to seed course %s: %w", c.Code, err)
			}
		}
		s.logger.Info("seeded demo courses", "count", len(demoCourses))

		return nil
	})
}

// clearSeedData empties every table in foreign key order.
func clearSeedData(tx *gorm.DB) error {
	tables := []string{
		"enrollments",
		"course_user_roles",
		"course_lessons",
		"user_roles",
		"user_profiles",
		"role_permissions",
		"courses",
		"roles",
		"permissions",
		"users",
	}
	for _, table := range tables {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
