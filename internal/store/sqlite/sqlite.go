package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mindstash/mindstash/internal/model"
	"github.com/mindstash/mindstash/internal/store"
)

// Open opens (or creates) a SQLite database file and ensures the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a SQLite-backed store at the given path.
func New(path string) (store.Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	return NewWithDB(db), nil
}

// NewWithDB allows wiring with an existing connection (used by tests).
func NewWithDB(db *sql.DB) store.Store { return &sqliteStore{db: db} }

type sqliteStore struct{ db *sql.DB }

func (s *sqliteStore) Items() store.Items       { return &items{db: s.db} }
func (s *sqliteStore) Projects() store.Projects { return &projects{db: s.db} }

func (s *sqliteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error { return s.db.Close() }

// --- Items ---

type items struct{ db *sql.DB }

const itemCols = `ItemId, RawInput, Category, Subcategory, Title, Tags, Entities, Urgency, Status, PendingAIProcessing, Synced, ScheduledNotification, CreatedAt, UpdatedAt`

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
	_, err = i.db.ExecContext(ctx, `INSERT INTO Items (`+itemCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		out.ID, out.RawInput, string(out.Category), out.Subcategory, out.Title,
		tagsJSON, entJSON, string(out.Urgency), string(out.Status),
		out.PendingAIProcessing, out.Synced, notifJSON, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (i *items) Get(ctx context.Context, id string) (*model.Item, error) {
	row := i.db.QueryRowContext(ctx, `SELECT `+itemCols+` FROM Items WHERE ItemId = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	return it, err
}

func (i *items) List(ctx context.Context) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM Items ORDER BY CreatedAt DESC`)
}

func (i *items) ListByStatus(ctx context.Context, status model.Status) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM Items WHERE Status = ? ORDER BY CreatedAt DESC`, string(status))
}

func (i *items) ListPending(ctx context.Context) ([]*model.Item, error) {
	return i.query(ctx, `SELECT `+itemCols+` FROM Items WHERE PendingAIProcessing = 1 AND Status = ? ORDER BY CreatedAt ASC`, string(model.StatusInbox))
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
	res, err := i.db.ExecContext(ctx, `UPDATE Items SET RawInput=?, Category=?, Subcategory=?, Title=?, Tags=?, Entities=?, Urgency=?, Status=?, PendingAIProcessing=?, Synced=?, ScheduledNotification=?, UpdatedAt=? WHERE ItemId=?`,
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
	_, err := i.db.ExecContext(ctx, `DELETE FROM Items WHERE ItemId = ?`, id)
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

const projectCols = `ProjectId, Name, Description, Color, ItemIds, SuggestedByAI, UserApproved, CreatedAt, UpdatedAt`

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
	_, err = p.db.ExecContext(ctx, `INSERT INTO Projects (`+projectCols+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		out.ID, out.Name, out.Description, out.Color, string(idsB), out.SuggestedByAI, out.UserApproved, out.CreatedAt, out.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *projects) Get(ctx context.Context, id string) (*model.Project, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+projectCols+` FROM Projects WHERE ProjectId = ?`, id)
	pr, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	return pr, err
}

func (p *projects) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+projectCols+` FROM Projects ORDER BY CreatedAt DESC`)
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
	res, err := p.db.ExecContext(ctx, `UPDATE Projects SET Name=?, Description=?, Color=?, ItemIds=?, SuggestedByAI=?, UserApproved=?, UpdatedAt=? WHERE ProjectId=?`,
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
	_, err := p.db.ExecContext(ctx, `DELETE FROM Projects WHERE ProjectId = ?`, id)
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
