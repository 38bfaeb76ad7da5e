package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/internship-portal/internal/domain"
)

// ApplicationFilter narrows application listings. Zero value lists everything.
type ApplicationFilter struct {
	StudentID *string
	Statuses  []domain.ApplicationStatus
	Position  string
}

// ApplicationRepository encapsulates application persistence.
// Read methods populate Application.Student from the owning user.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	GetByResume(ctx context.Context, filename string) (*domain.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error
	Delete(ctx context.Context, id string) error
}

type applicationRepository struct {
	pool *pgxpool.Pool
	sb   squirrel.StatementBuilderType
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{
		pool: pool,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query, args, err := r.sb.Insert("applications").
		Columns("student_id", "position", "cover_letter", "expected_start_date", "resume", "status").
		Values(app.StudentID, app.Position, app.CoverLetter, app.ExpectedStartDate, app.Resume, app.Status).
		Suffix("RETURNING id, submitted_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create application query: %w", err)
	}
	return r.pool.QueryRow(ctx, query, args...).Scan(&app.ID, &app.SubmittedAt, &app.UpdatedAt)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	return r.fetchSingle(ctx, squirrel.Eq{"a.id": id})
}

func (r *applicationRepository) GetByResume(ctx context.Context, filename string) (*domain.Application, error) {
	return r.fetchSingle(ctx, squirrel.Eq{"a.resume": filename})
}

func (r *applicationRepository) fetchSingle(ctx context.Context, where squirrel.Sqlizer) (*domain.Application, error) {
	query, args, err := r.selectBase().Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build application query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	apps, err := scanApplications(rows)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &apps[0], nil
}

func (r *applicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error) {
	query, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list applications query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanApplications(rows)
}

func (r *applicationRepository) listQuery(filter ApplicationFilter) squirrel.SelectBuilder {
	builder := r.selectBase()
	if filter.StudentID != nil {
		builder = builder.Where(squirrel.Eq{"a.student_id": *filter.StudentID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		builder = builder.Where(squirrel.Eq{"a.status": statuses})
	}
	if position := strings.TrimSpace(filter.Position); position != "" {
		builder = builder.Where(squirrel.ILike{"a.position": containsPattern(position)})
	}
	return builder.OrderBy("a.submitted_at DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching value literally as a substring.
// Postgres treats backslash as the default LIKE escape character.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, status domain.ApplicationStatus) error {
	query, args, err := r.sb.Update("applications").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query: %w", err)
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *applicationRepository) selectBase() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.student_id", "a.position", "a.cover_letter", "a.expected_start_date",
		"a.resume", "a.status", "a.submitted_at", "a.updated_at",
		"u.name", "u.email", "u.branch",
	).
		From("applications a").
		LeftJoin("users u ON u.id = a.student_id")
}

func scanApplications(rows pgx.Rows) ([]domain.Application, error) {
	result := []domain.Application{}
	for rows.Next() {
		var (
			app                 domain.Application
			name, email, branch *string
		)
		if err := rows.Scan(
			&app.ID,
			&app.StudentID,
			&app.Position,
			&app.CoverLetter,
			&app.ExpectedStartDate,
			&app.Resume,
			&app.Status,
			&app.SubmittedAt,
			&app.UpdatedAt,
			&name,
			&email,
			&branch,
		); err != nil {
			return nil, err
		}
		if name != nil || email != nil || branch != nil {
			app.Student = &domain.StudentSummary{
				ID:     app.StudentID,
				Name:   deref(name),
				Email:  deref(email),
				Branch: deref(branch),
			}
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
