package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"tripwindow/config"
	"tripwindow/planner"
)

var DB *sql.DB

// driver is "postgres" or "sqlite" once InitDB has run.
var driver string

var ErrNotFound = errors.New("not found")

// ─── Models ──────────────────────────────────────────────────────────────────

type Search struct {
	ID          string         `json:"id"`
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Place       string         `json:"place"`
	StartDate   string         `json:"start_date"`
	EndDate     string         `json:"end_date"`
	Policy      planner.Policy `json:"policy"`
	TopN        int            `json:"top_n"`
	Dedupe      bool           `json:"dedupe"`
	Watch       bool           `json:"watch"`
	CreatedAt   time.Time      `json:"created_at"`
}

type Plan struct {
	ID         string    `json:"id"`
	SearchID   string    `json:"search_id"`
	Source     string    `json:"source"`
	ResultJSON string    `json:"-"`
	PDFData    []byte    `json:"-"` // stored in DB, no filesystem needed
	CreatedAt  time.Time `json:"created_at"`
}

// ─── Init ─────────────────────────────────────────────────────────────────────

// InitDB opens the configured database, checks the connection and migrates.
func InitDB(cfg *config.Config) error {
	db, err := Open(cfg.Database.Driver, dataSource(cfg))
	if err != nil {
		return err
	}
	DB = db
	driver = cfg.Database.Driver
	if err := migrate(); err != nil {
		return err
	}
	log.Printf("✅ Database connected and migrated (%s)", driver)
	return nil
}

func dataSource(cfg *config.Config) string {
	if cfg.Database.Driver == "postgres" {
		return cfg.PostgresDSN()
	}
	return cfg.Database.SQLitePath
}

// Open connects to a postgres DSN or a SQLite file path. ":memory:" gives a
// private in-memory database.
func Open(driverName, dsn string) (*sql.DB, error) {
	switch driverName {
	case "postgres":
		return openPostgres(dsn)
	case "sqlite":
		return openSQLite(dsn)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driverName)
}

func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Hosted databases may take a moment to accept connections.
	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		log.Printf("⏳ Waiting for database... attempt %d/10: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	db.Close()
	return nil, fmt.Errorf("connect postgres after retries: %w", err)
}

func openSQLite(path string) (*sql.DB, error) {
	memory := path == ":memory:"
	dsn := path
	if !memory {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	return db, nil
}

// ─── Migrations ───────────────────────────────────────────────────────────────

func migrate() error {
	blob, boolean := "BLOB", "INTEGER"
	if driver == "postgres" {
		blob, boolean = "BYTEA", "BOOLEAN"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS searches (
			id          TEXT PRIMARY KEY,
			origin      TEXT NOT NULL,
			destination TEXT NOT NULL,
			place       TEXT NOT NULL,
			start_date  TEXT NOT NULL,
			end_date    TEXT NOT NULL,
			policy      TEXT NOT NULL,
			top_n       INTEGER NOT NULL DEFAULT 3,
			dedupe      %[1]s NOT NULL,
			watch       %[1]s NOT NULL,
			created_at  BIGINT NOT NULL
		)`, boolean),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS plans (
			id          TEXT PRIMARY KEY,
			search_id   TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			source      TEXT NOT NULL,
			result_json TEXT NOT NULL,
			pdf_data    %s,
			created_at  BIGINT NOT NULL
		)`, blob),

		`CREATE INDEX IF NOT EXISTS idx_plans_search_id
			ON plans(search_id)`,

		`CREATE INDEX IF NOT EXISTS idx_searches_created_at
			ON searches(created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_searches_watch
			ON searches(watch)`,
	}

	for _, m := range migrations {
		if _, err := DB.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// rebind turns ? placeholders into $1, $2, ... for postgres.
func rebind(query string) string {
	if driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ─── Searches ─────────────────────────────────────────────────────────────────

const searchColumns = `id, origin, destination, place, start_date, end_date, policy, top_n, dedupe, watch, created_at`

func SaveSearch(s *Search) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	policy, err := json.Marshal(s.Policy)
	if err != nil {
		return fmt.Errorf("encode policy: %w", err)
	}
	_, err = DB.Exec(rebind(`
		INSERT INTO searches (`+searchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		s.ID, s.Origin, s.Destination, s.Place, s.StartDate, s.EndDate, string(policy),
		s.TopN, s.Dedupe, s.Watch, s.CreatedAt.Unix())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(row scanner) (*Search, error) {
	s := &Search{}
	var policy string
	var created int64
	err := row.Scan(&s.ID, &s.Origin, &s.Destination, &s.Place, &s.StartDate, &s.EndDate,
		&policy, &s.TopN, &s.Dedupe, &s.Watch, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(policy), &s.Policy); err != nil {
		return nil, fmt.Errorf("decode policy of search %s: %w", s.ID, err)
	}
	s.CreatedAt = time.Unix(created, 0).UTC()
	return s, nil
}

func GetSearch(id string) (*Search, error) {
	return scanSearch(DB.QueryRow(rebind(`
		SELECT `+searchColumns+`
		FROM searches WHERE id = ?`), id))
}

func querySearches(query string, args ...any) ([]Search, error) {
	rows, err := DB.Query(rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Search{}
	for rows.Next() {
		s, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListSearches returns up to limit searches, newest first.
func ListSearches(limit int) ([]Search, error) {
	if limit < 1 {
		limit = 20
	}
	return querySearches(`
		SELECT `+searchColumns+`
		FROM searches
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
}

func ListWatchedSearches() ([]Search, error) {
	return querySearches(`
		SELECT `+searchColumns+`
		FROM searches WHERE watch = ?
		ORDER BY created_at`, true)
}

func SetWatch(id string, watch bool) error {
	res, err := DB.Exec(rebind(`UPDATE searches SET watch = ? WHERE id = ?`), watch, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// PruneSearches deletes searches created before cutoff, and their plans.
// It returns how many searches were removed.
func PruneSearches(before time.Time) (int64, error) {
	tx, err := DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	cutoff := before.Unix()
	if _, err := tx.Exec(rebind(`
		DELETE FROM plans WHERE search_id IN (
			SELECT id FROM searches WHERE created_at < ?)`), cutoff); err != nil {
		return 0, fmt.Errorf("prune plans: %w", err)
	}
	res, err := tx.Exec(rebind(`DELETE FROM searches WHERE created_at < ?`), cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune searches: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// ─── Plans ────────────────────────────────────────────────────────────────────

const planColumns = `id, search_id, source, result_json, pdf_data, created_at`

func SavePlan(p *Plan) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := DB.Exec(rebind(`
		INSERT INTO plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		p.ID, p.SearchID, p.Source, p.ResultJSON, p.PDFData, p.CreatedAt.Unix())
	return err
}

func scanPlan(row scanner) (*Plan, error) {
	p := &Plan{}
	var created int64
	err := row.Scan(&p.ID, &p.SearchID, &p.Source, &p.ResultJSON, &p.PDFData, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	return p, nil
}

func GetPlan(id string) (*Plan, error) {
	return scanPlan(DB.QueryRow(rebind(`
		SELECT `+planColumns+`
		FROM plans WHERE id = ?`), id))
}

func GetLatestPlanBySearchID(searchID string) (*Plan, error) {
	return scanPlan(DB.QueryRow(rebind(`
		SELECT `+planColumns+`
		FROM plans WHERE search_id = ?
		ORDER BY created_at DESC LIMIT 1`), searchID))
}

func UpdatePlanPDF(id string, pdfData []byte) error {
	res, err := DB.Exec(rebind(`UPDATE plans SET pdf_data = ? WHERE id = ?`), pdfData, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
