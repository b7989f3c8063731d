package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	courseDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/course"
	enrollmentDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/enrollment"
	rbacDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/rbac"
	userDatamodel "github.com/frahmantamala/lms-backend/internal/core/datamodel/user"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pgUniqueViolation = "23505"

// OpenPostgres wraps an already opened pool so gorm and sqlx share connections.
func OpenPostgres(conn *sql.DB) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return db, nil
}

// OpenSQLite is used by tests. In-memory databases are pinned to one connection
// since every new sqlite connection would see an empty database.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate creates every table from the datamodels. Production schemas come
// from the goose migrations under db/migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userDatamodel.User{},
		&userDatamodel.Profile{},
		&rbacDatamodel.Permission{},
		&rbacDatamodel.Role{},
		&rbacDatamodel.RolePermission{},
		&rbacDatamodel.UserRole{},
		&courseDatamodel.Course{},
		&rbacDatamodel.CourseUserRole{},
		&courseDatamodel.Lesson{},
		&enrollmentDatamodel.Enrollment{},
	)
}

func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
