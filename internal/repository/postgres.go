package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS households (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS members (
	id           UUID PRIMARY KEY,
	household_id UUID NOT NULL REFERENCES households(id),
	display_name TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (household_id, display_name)
);

CREATE TABLE IF NOT EXISTS messages (
	id           UUID PRIMARY KEY,
	household_id UUID NOT NULL REFERENCES households(id),
	member_id    UUID NOT NULL REFERENCES members(id),
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS expenses (
	id           UUID PRIMARY KEY,
	household_id UUID NOT NULL REFERENCES households(id),
	member_id    UUID NOT NULL REFERENCES members(id),
	amount       NUMERIC(12,2) NOT NULL CHECK (amount > 0),
	currency     TEXT NOT NULL,
	category     TEXT NOT NULL,
	expense_date DATE NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	raw_text     TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_expenses_household_date
	ON expenses (household_id, expense_date);
`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) EnsureHousehold(ctx context.Context, name string) (entity.Household, error) {
	var h entity.Household
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM households WHERE name = $1`, name).
		Scan(&h.ID, &h.Name, &h.CreatedAt)
	if err == nil {
		return h, nil
	}
	if err != pgx.ErrNoRows {
		return entity.Household{}, fmt.Errorf("looking up household: %w", err)
	}

	h = entity.Household{ID: uuid.New(), Name: name}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO households (id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name, created_at`, h.ID, h.Name).
		Scan(&h.ID, &h.Name, &h.CreatedAt)
	if err != nil {
		return entity.Household{}, fmt.Errorf("creating household: %w", err)
	}
	s.logger.Info("db.household.created", "household_id", h.ID, "name", h.Name)
	return h, nil
}

func (s *PostgresStore) EnsureMember(ctx context.Context, householdID uuid.UUID, displayName string) (entity.Member, error) {
	var m entity.Member
	err := s.pool.QueryRow(ctx,
		`SELECT id, household_id, display_name, created_at FROM members
		 WHERE household_id = $1 AND display_name = $2`, householdID, displayName).
		Scan(&m.ID, &m.HouseholdID, &m.DisplayName, &m.CreatedAt)
	if err == nil {
		return m, nil
	}
	if err != pgx.ErrNoRows {
		return entity.Member{}, fmt.Errorf("looking up member: %w", err)
	}

	m = entity.Member{ID: uuid.New(), HouseholdID: householdID, DisplayName: displayName}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO members (id, household_id, display_name) VALUES ($1, $2, $3)
		 ON CONFLICT (household_id, display_name) DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING id, household_id, display_name, created_at`,
		m.ID, m.HouseholdID, m.DisplayName).
		Scan(&m.ID, &m.HouseholdID, &m.DisplayName, &m.CreatedAt)
	if err != nil {
		return entity.Member{}, fmt.Errorf("creating member: %w", err)
	}
	s.logger.Info("db.member.created", "member_id", m.ID, "display_name", m.DisplayName)
	return m, nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg entity.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, household_id, member_id, role, content)
		 VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.HouseholdID, msg.MemberID, msg.Role, msg.Content)
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertExpense(ctx context.Context, exp entity.Expense) error {
	return s.InsertExpenses(ctx, []entity.Expense{exp})
}

func (s *PostgresStore) InsertExpenses(ctx context.Context, exps []entity.Expense) error {
	if len(exps) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, exp := range exps {
		_, err := tx.Exec(ctx,
			`INSERT INTO expenses
			 (id, household_id, member_id, amount, currency, category, expense_date, description, source, raw_text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			exp.ID, exp.HouseholdID, exp.MemberID, exp.Amount, exp.Currency,
			string(exp.Category), exp.ExpenseDate, exp.Description, string(exp.Source), exp.RawText)
		if err != nil {
			return fmt.Errorf("inserting expense: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing expenses: %w", err)
	}
	return nil
}

// filterSQL renders the shared WHERE clause for sums and listings. The
// prefix qualifies expense columns when the query joins another table.
func filterSQL(prefix string, f ExpenseFilter) (string, []any) {
	var sb strings.Builder
	args := []any{f.HouseholdID, f.Start, f.End}
	fmt.Fprintf(&sb, `%[1]shousehold_id = $1 AND %[1]sexpense_date >= $2 AND %[1]sexpense_date < $3`, prefix)
	if f.MemberID != nil {
		args = append(args, *f.MemberID)
		fmt.Fprintf(&sb, ` AND %smember_id = $%d`, prefix, len(args))
	}
	if f.Category != nil {
		args = append(args, string(*f.Category))
		fmt.Fprintf(&sb, ` AND %scategory = $%d`, prefix, len(args))
	}
	return sb.String(), args
}

func (s *PostgresStore) SumExpenses(ctx context.Context, f ExpenseFilter) (float64, error) {
	where, args := filterSQL("", f)
	var total float64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE `+where, args...).
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing expenses: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) SumByCategory(ctx context.Context, f ExpenseFilter) (map[constants.Category]float64, error) {
	where, args := filterSQL("", f)
	rows, err := s.pool.Query(ctx,
		`SELECT category, COALESCE(SUM(amount), 0) FROM expenses WHERE `+where+` GROUP BY category`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("summing by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[constants.Category]float64)
	for rows.Next() {
		var cat string
		var sum float64
		if err := rows.Scan(&cat, &sum); err != nil {
			return nil, fmt.Errorf("scanning category sum: %w", err)
		}
		totals[constants.Category(cat)] = sum
	}
	return totals, rows.Err()
}

func (s *PostgresStore) SumByMember(ctx context.Context, f ExpenseFilter) (map[string]float64, error) {
	where, args := filterSQL("e.", f)
	rows, err := s.pool.Query(ctx,
		`SELECT m.display_name, COALESCE(SUM(e.amount), 0)
		 FROM expenses e JOIN members m ON m.id = e.member_id
		 WHERE `+where+` GROUP BY m.display_name`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("summing by member: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var name string
		var sum float64
		if err := rows.Scan(&name, &sum); err != nil {
			return nil, fmt.Errorf("scanning member sum: %w", err)
		}
		totals[name] = sum
	}
	return totals, rows.Err()
}

func (s *PostgresStore) ListExpenses(ctx context.Context, f ExpenseFilter) ([]entity.Expense, error) {
	where, args := filterSQL("", f)
	rows, err := s.pool.Query(ctx,
		`SELECT id, household_id, member_id, amount, currency, category,
		        to_char(expense_date, 'YYYY-MM-DD'), description, source, raw_text, created_at
		 FROM expenses WHERE `+where+` ORDER BY expense_date ASC, created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var out []entity.Expense
	for rows.Next() {
		var exp entity.Expense
		var cat, src string
		err := rows.Scan(&exp.ID, &exp.HouseholdID, &exp.MemberID, &exp.Amount, &exp.Currency,
			&cat, &exp.ExpenseDate, &exp.Description, &src, &exp.RawText, &exp.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		exp.Category = constants.Category(cat)
		exp.Source = constants.Source(src)
		out = append(out, exp)
	}
	return out, rows.Err()
}
