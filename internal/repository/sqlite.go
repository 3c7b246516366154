package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS households (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	id           TEXT PRIMARY KEY,
	household_id TEXT NOT NULL REFERENCES households(id),
	display_name TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	UNIQUE (household_id, display_name)
);

CREATE TABLE IF NOT EXISTS messages (
	id           TEXT PRIMARY KEY,
	household_id TEXT NOT NULL REFERENCES households(id),
	member_id    TEXT NOT NULL REFERENCES members(id),
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
	id           TEXT PRIMARY KEY,
	household_id TEXT NOT NULL REFERENCES households(id),
	member_id    TEXT NOT NULL REFERENCES members(id),
	amount       REAL NOT NULL CHECK (amount > 0),
	currency     TEXT NOT NULL,
	category     TEXT NOT NULL,
	expense_date TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	source       TEXT NOT NULL,
	raw_text     TEXT NOT NULL DEFAULT '',
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_expenses_household_date
	ON expenses (household_id, expense_date);
`

// SQLiteStore implements Store on a file or in-memory SQLite database.
// Timestamps are stored as RFC 3339 text so rows stay portable.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func openSQLite(ctx context.Context, dsn string, logger *slog.Logger) (Store, error) {
	logger.Info("db.connect", "driver", "sqlite")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// SQLite writes are serialized; more than one writer just contends.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	logger.Info("db.connect.ok", "driver", "sqlite")
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("db.close.failed", "error", err)
	}
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) EnsureHousehold(ctx context.Context, name string) (entity.Household, error) {
	var h entity.Household
	var id, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM households WHERE name = ?`, name).
		Scan(&id, &h.Name, &created)
	if err == nil {
		h.ID, _ = uuid.Parse(id)
		h.CreatedAt = parseStamp(created)
		return h, nil
	}
	if err != sql.ErrNoRows {
		return entity.Household{}, fmt.Errorf("looking up household: %w", err)
	}

	h = entity.Household{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)`,
		h.ID.String(), h.Name, h.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return entity.Household{}, fmt.Errorf("creating household: %w", err)
	}
	s.logger.Info("db.household.created", "household_id", h.ID, "name", h.Name)
	return h, nil
}

func (s *SQLiteStore) EnsureMember(ctx context.Context, householdID uuid.UUID, displayName string) (entity.Member, error) {
	var m entity.Member
	var id, hid, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, household_id, display_name, created_at FROM members
		 WHERE household_id = ? AND display_name = ?`,
		householdID.String(), displayName).
		Scan(&id, &hid, &m.DisplayName, &created)
	if err == nil {
		m.ID, _ = uuid.Parse(id)
		m.HouseholdID, _ = uuid.Parse(hid)
		m.CreatedAt = parseStamp(created)
		return m, nil
	}
	if err != sql.ErrNoRows {
		return entity.Member{}, fmt.Errorf("looking up member: %w", err)
	}

	m = entity.Member{ID: uuid.New(), HouseholdID: householdID, DisplayName: displayName, CreatedAt: time.Now().UTC()}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO members (id, household_id, display_name, created_at) VALUES (?, ?, ?, ?)`,
		m.ID.String(), m.HouseholdID.String(), m.DisplayName, m.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return entity.Member{}, fmt.Errorf("creating member: %w", err)
	}
	s.logger.Info("db.member.created", "member_id", m.ID, "display_name", m.DisplayName)
	return m, nil
}

func (s *SQLiteStore) InsertMessage(ctx context.Context, msg entity.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, household_id, member_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), msg.HouseholdID.String(), msg.MemberID.String(),
		msg.Role, msg.Content, nowStamp())
	if err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertExpense(ctx context.Context, exp entity.Expense) error {
	return s.InsertExpenses(ctx, []entity.Expense{exp})
}

func (s *SQLiteStore) InsertExpenses(ctx context.Context, exps []entity.Expense) error {
	if len(exps) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, exp := range exps {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses
			 (id, household_id, member_id, amount, currency, category, expense_date, description, source, raw_text, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			exp.ID.String(), exp.HouseholdID.String(), exp.MemberID.String(),
			exp.Amount, exp.Currency, string(exp.Category), exp.ExpenseDate,
			exp.Description, string(exp.Source), exp.RawText, nowStamp())
		if err != nil {
			return fmt.Errorf("inserting expense: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing expenses: %w", err)
	}
	return nil
}

func sqliteFilterSQL(prefix string, f ExpenseFilter) (string, []any) {
	var sb strings.Builder
	args := []any{f.HouseholdID.String(), f.Start, f.End}
	fmt.Fprintf(&sb, `%[1]shousehold_id = ? AND %[1]sexpense_date >= ? AND %[1]sexpense_date < ?`, prefix)
	if f.MemberID != nil {
		args = append(args, f.MemberID.String())
		fmt.Fprintf(&sb, ` AND %smember_id = ?`, prefix)
	}
	if f.Category != nil {
		args = append(args, string(*f.Category))
		fmt.Fprintf(&sb, ` AND %scategory = ?`, prefix)
	}
	return sb.String(), args
}

func (s *SQLiteStore) SumExpenses(ctx context.Context, f ExpenseFilter) (float64, error) {
	where, args := sqliteFilterSQL("", f)
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE `+where, args...).
		Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing expenses: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) SumByCategory(ctx context.Context, f ExpenseFilter) (map[constants.Category]float64, error) {
	where, args := sqliteFilterSQL("", f)
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLiteStore) SumByMember(ctx context.Context, f ExpenseFilter) (map[string]float64, error) {
	where, args := sqliteFilterSQL("e.", f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.display_name, COALESCE(SUM(e.amount), 0)
		 FROM expenses e JOIN members m ON m.id = e.member_id
		 WHERE `+where+` GROUP BY m.display_name`, args...)
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

func (s *SQLiteStore) ListExpenses(ctx context.Context, f ExpenseFilter) ([]entity.Expense, error) {
	where, args := sqliteFilterSQL("", f)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, member_id, amount, currency, category,
		        expense_date, description, source, raw_text, created_at
		 FROM expenses WHERE `+where+` ORDER BY expense_date ASC, created_at ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var out []entity.Expense
	for rows.Next() {
		var exp entity.Expense
		var id, hid, mid, cat, src, created string
		err := rows.Scan(&id, &hid, &mid, &exp.Amount, &exp.Currency,
			&cat, &exp.ExpenseDate, &exp.Description, &src, &exp.RawText, &created)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		exp.ID, _ = uuid.Parse(id)
		exp.HouseholdID, _ = uuid.Parse(hid)
		exp.MemberID, _ = uuid.Parse(mid)
		exp.Category = constants.Category(cat)
		exp.Source = constants.Source(src)
		exp.CreatedAt = parseStamp(created)
		out = append(out, exp)
	}
	return out, rows.Err()
}
