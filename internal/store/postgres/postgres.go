package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and
// verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New opens a connection, ensures the schema, and returns the store.
func New(dsn string) (store.Store, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB constructs a Postgres store backed by an existing connection.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Items() store.Items       { return &items{db: s.db} }
func (s *pgStore) Projects() store.Projects { return &projects{db: s.db} }

func (s *pgStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }
func (s *pgStore) Close() error                         { return s.db.Close() }

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS items (
            item_id TEXT PRIMARY KEY,
            raw_input TEXT NOT NULL,
            category TEXT NOT NULL,
            subcategory TEXT,
            title TEXT NOT NULL,
            tags JSONB NOT NULL,
            entities JSONB NOT NULL,
            urgency TEXT NOT NULL,
            status TEXT NOT NULL,
            pending_ai_processing BOOLEAN NOT NULL DEFAULT FALSE,
            synced BOOLEAN NOT NULL DEFAULT FALSE,
            scheduled_notification JSONB,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS items_status_idx ON items(status)`,
		`CREATE INDEX IF NOT EXISTS items_pending_idx ON items(pending_ai_processing, status)`,
		`CREATE TABLE IF NOT EXISTS projects (
            project_id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            description TEXT,
            color TEXT NOT NULL,
            item_ids JSONB NOT NULL,
            suggested_by_ai BOOLEAN NOT NULL DEFAULT FALSE,
            user_approved BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// --- Items ---

type items struct{ db *sql.DB }

const itemCols = `item_id, raw_input, category, subcategory, title, tags, entities, urgency, status, pending_ai_processing, synced, scheduled_notification, created_at, updated_at`

func (i *items) Create(ctx context.Context, it *model.Item) (*model.Item, error) {
	out := *it
	now := time.Now().UTC()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	out.UpdatedAt = now

	tagsJSON, entJSON, notifJSON, err := encodeItem(&out)
	if err != nil {
		return nil, err
	}
	_, err = i.db.ExecContext(ctx, `INSERT INTO items (`+itemCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		out.ID, out.RawInput, string(out.Category), out.Subcategory, out.Title,
		tagsJSON, entJSON, string(out.Urgency), string(out.Status),
		out.PendingAIProcessing, out.Synced, notifJSON, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *items) Get(ctx context.Context, id string) (*model.Item, error) {
	row := i.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM items WHERE item_id = $1`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	return it, err
}

func (i *items) List(ctx context.Context) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM items ORDER BY created_at DESC`)
}

func (i *items) ListByStatus(ctx context.Context, status model.Status) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM items WHERE status = $1 ORDER BY created_at DESC`, string(status))
}

func (i *items) ListPending(ctx context.Context) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM items WHERE pending_ai_processing AND status = $1 ORDER BY created_at ASC`, string(model.StatusInbox))
}

func (i *items) Update(ctx context.Context, id string, upd model.ItemUpdate) (*model.Item, error) {
	cur, err := i.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.ApplyTo(cur)
	cur.UpdatedAt = time.Now().UTC()

	tagsJSON, entJSON, notifJSON, err := encodeItem(cur)
	if err != nil {
		return nil, err
	}
	res, err := i.db.ExecContext(ctx, `UPDATE items SET raw_input=$1, category=$2, subcategory=$3, title=$4, tags=$5, entities=$6, urgency=$7, status=$8, pending_ai_processing=$9, synced=$10, scheduled_notification=$11, updated_at=$12 WHERE item_id=$13`,
		cur.RawInput, string(cur.Category), cur.Subcategory, cur.Title, tagsJSON, entJSON,
		string(cur.Urgency), string(cur.Status), cur.PendingAIProcessing, cur.Synced, notifJSON, cur.UpdatedAt, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return cur, nil
}

func (i *items) Delete(ctx context.Context, id string) error {
	_, err := i.db.ExecContext(ctx, `DELETE FROM items WHERE item_id = $1`, id)
	return err
}

func (i *items) query(ctx context.Context, q string, args ...interface{}) ([]*model.Item, error) {
	rows, err := i.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func encodeItem(it *model.Item) (tags, entities string, notif sql.NullString, err error) {
	if it.Tags == nil {
		it.Tags = []string{}
	}
	tagsB, err := json.Marshal(it.Tags)
	if err != nil {
		return "", "", notif, err
	}
	entB, err := json.Marshal(it.Entities)
	if err != nil {
		return "", "", notif, err
	}
	if it.ScheduledNotification != nil {
		nb, err := json.Marshal(it.ScheduledNotification)
		if err != nil {
			return "", "", notif, err
		}
		notif = sql.NullString{String: string(nb), Valid: true}
	}
	return string(tagsB), string(entB), notif, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanItem(row rowScanner) (*model.Item, error) {
	var it model.Item
	var cat, urg, status string
	var tagsStr, entStr string
	var notifStr sql.NullString
	if err := row.Scan(&it.ID, &it.RawInput, &cat, &it.Subcategory, &it.Title,
		&tagsStr, &entStr, &urg, &status, &it.PendingAIProcessing, &it.Synced,
		&notifStr, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.Category = model.Category(cat)
	it.Urgency = model.Urgency(urg)
	it.Status = model.Status(status)
	if err := json.Unmarshal([]byte(tagsStr), &it.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(entStr), &it.Entities); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	if notifStr.Valid {
		var ns model.NotificationSchedule
		if err := json.Unmarshal([]byte(notifStr.String), &ns); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		it.ScheduledNotification = &ns
	}
	return &it, nil
}

// --- Projects ---

type projects struct{ db *sql.DB }

const projectCols = `project_id, name, description, color, item_ids, suggested_by_ai, user_approved, created_at, updated_at`

func (p *projects) Create(ctx context.Context, pr *model.Project) (*model.Project, error) {
	out := *pr
	now := time.Now().UTC()
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	out.CreatedAt = now
	out.UpdatedAt = now
	if out.ItemIDs == nil {
		out.ItemIDs = []string{}
	}
	idsB, err := json.Marshal(out.ItemIDs)
	if err != nil {
		return nil, err
	}
	_, err = p.db.ExecContext(ctx, `INSERT INTO projects (`+projectCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		out.ID, out.Name, out.Description, out.Color, string(idsB), out.SuggestedByAI, out.UserApproved, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *projects) Get(ctx context.Context, id string) (*model.Project, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+projectCols+` FROM projects WHERE project_id = $1`, id)
	pr, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	return pr, err
}

func (p *projects) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Project
	for rows.Next() {
		pr, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}

func (p *projects) Update(ctx context.Context, pr *model.Project) (*model.Project, error) {
	out := *pr
	out.UpdatedAt = time.Now().UTC()
	idsB, err := json.Marshal(out.ItemIDs)
	if err != nil {
		return nil, err
	}
	res, err := p.db.ExecContext(ctx, `UPDATE projects SET name=$1, description=$2, color=$3, item_ids=$4, suggested_by_ai=$5, user_approved=$6, updated_at=$7 WHERE project_id=$8`,
		out.Name, out.Description, out.Color, string(idsB), out.SuggestedByAI, out.UserApproved, out.UpdatedAt, out.ID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return &out, nil
}

func (p *projects) Delete(ctx context.Context, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM projects WHERE project_id = $1`, id)
	return err
}

func scanProject(row rowScanner) (*model.Project, error) {
	var pr model.Project
	var idsStr string
	if err := row.Scan(&pr.ID, &pr.Name, &pr.Description, &pr.Color, &idsStr,
		&pr.SuggestedByAI, &pr.UserApproved, &pr.CreatedAt, &pr.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(idsStr), &pr.ItemIDs); err != nil {
		return nil, fmt.Errorf("decode item ids: %w", err)
	}
	return &pr, nil
}
