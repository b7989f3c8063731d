package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/frahmantamala/lms-backend/internal/core/database"
	"github.com/frahmantamala/lms-backend/internal/user"
	"github.com/jmoiron/sqlx"
)

const userColumns = "id, email, username, password_hash, is_active, created_at, updated_at"

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO users (email, username, password_hash, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, u.Email, u.Username, u.PasswordHash, u.IsActive, now, now).Scan(&u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u user.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE email = ?")
	if err := r.db.GetContext(ctx, &u, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context, activeOnly bool) ([]*user.User, error) {
	query := "SELECT " + userColumns + " FROM users"
	var args []interface{}
	if activeOnly {
		query += " WHERE is_active = ?"
		args = append(args, true)
	}
	query += " ORDER BY id ASC"

	users := []*user.User{}
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE users SET email = ?, username = ?, password_hash = ?, is_active = ?, updated_at = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, query, u.Email, u.Username, u.PasswordHash, u.IsActive, u.UpdatedAt, u.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Deactivate(ctx context.Context, id int64) error {
	query := r.db.Rebind("UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, false, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return nil
}

type userCourseRow struct {
	UserID   int64  `db:"user_id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	user.CourseSummary
}

// enrollmentCancelled mirrors enrollment.StatusCancelled without importing the enrollment domain.
const enrollmentCancelled = "cancelled"

const usersWithCoursesQuery = `SELECT u.id AS user_id, u.username, u.email,
	c.id AS course_id, c.name AS course_name, COALESCE(c.description, '') AS course_description,
	c.code AS course_code, c.max_capacity AS course_max_capacity, c.is_active AS course_is_active
	FROM users u
	JOIN enrollments e ON e.user_id = u.id
	JOIN courses c ON c.id = e.course_id
	WHERE e.status <> ?
	ORDER BY u.id ASC, c.name ASC`

func (r *UserRepository) ListWithCourses(ctx context.Context) ([]*user.WithCourses, error) {
	var rows []userCourseRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(usersWithCoursesQuery), enrollmentCancelled); err != nil {
		return nil, fmt.Errorf("list users with courses: %w", err)
	}

	result := []*user.WithCourses{}
	var current *user.WithCourses
	for _, row := range rows {
		if current == nil || current.ID != row.UserID {
			current = &user.WithCourses{ID: row.UserID, Username: row.Username, Email: row.Email}
			result = append(result, current)
		}
		current.Courses = append(current.Courses, row.CourseSummary)
	}
	return result, nil
}
