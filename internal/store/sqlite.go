package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/constadinisio/huntly/internal/model"
)

// Ensure SQLiteStore implements model.JobStore.
var _ model.JobStore = (*SQLiteStore)(nil)

// SQLiteStore keeps the durable record of every tracked job in a SQLite
// database. One row per job id; rows are never deleted by the core.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, ensures the
// jobs table exists, and adds any columns missing from an older schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the jobs table and ALTERs in any column an older version of
// the schema lacks. Existing rows are preserved; new columns default to NULL,
// which reads back as the zero value.
func (s *SQLiteStore) migrate() error {
	createTable := `CREATE TABLE IF NOT EXISTS jobs (
		job_id      TEXT PRIMARY KEY,
		url         TEXT,
		title       TEXT,
		description TEXT,
		budget      TEXT,
		posted_at   TEXT,
		proposal    TEXT,
		status      TEXT,
		created_at  TEXT
	)`
	if _, err := s.db.Exec(createTable); err != nil {
		return fmt.Errorf("creating jobs table: %w", err)
	}

	existing := make(map[string]bool)
	rows, err := s.db.Query("PRAGMA table_info(jobs)")
	if err != nil {
		return fmt.Errorf("reading jobs schema: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("scanning jobs schema: %w", err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading jobs schema: %w", err)
	}

	for _, col := range []string{"description", "budget", "posted_at", "proposal", "status", "created_at"} {
		if existing[col] {
			continue
		}
		if _, err := s.db.Exec("ALTER TABLE jobs ADD COLUMN " + col + " TEXT"); err != nil {
			return fmt.Errorf("adding column %s: %w", col, err)
		}
	}
	return nil
}

// Upsert inserts the job if its id is unknown and reports whether a row was
// created. An existing row keeps its status and proposal untouched, so
// re-ingesting a known URL never resets operator-advanced state.
func (s *SQLiteStore) Upsert(job model.Job) (bool, error) {
	createdAt := job.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := job.Status
	if status == "" {
		status = model.StatusPendingInterest
	}

	res, err := s.db.Exec(`INSERT INTO jobs
		(job_id, url, title, description, budget, posted_at, proposal, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(job_id) DO NOTHING`,
		job.ID, job.URL, job.Title, job.Description, job.Budget, job.PostedAt,
		job.Proposal, string(status), createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upserting job %s: %w", job.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upserting job %s: %w", job.ID, err)
	}
	return n > 0, nil
}

// Get returns the job with the given id, or model.ErrJobNotFound.
func (s *SQLiteStore) Get(id string) (model.Job, error) {
	row := s.db.QueryRow(`SELECT job_id, url, title, description, budget,
		posted_at, proposal, status, created_at
		FROM jobs WHERE job_id = ?`, id)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return model.Job{}, fmt.Errorf("job %s: %w", id, model.ErrJobNotFound)
	}
	if err != nil {
		return model.Job{}, fmt.Errorf("getting job %s: %w", id, err)
	}
	return job, nil
}

// SetStatus updates only the status field. Last write wins.
func (s *SQLiteStore) SetStatus(id string, status model.Status) error {
	_, err := s.db.Exec("UPDATE jobs SET status = ? WHERE job_id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("setting status of job %s: %w", id, err)
	}
	return nil
}

// SetProposal stores the drafted proposal and moves the job to status in one
// statement, so a reader never observes the proposal without its status.
func (s *SQLiteStore) SetProposal(id, proposal string, status model.Status) error {
	_, err := s.db.Exec("UPDATE jobs SET proposal = ?, status = ? WHERE job_id = ?",
		proposal, string(status), id)
	if err != nil {
		return fmt.Errorf("setting proposal of job %s: %w", id, err)
	}
	return nil
}

// List returns all tracked jobs, newest first. Used by the browse TUI and
// the jobs command, not by the core pipeline.
func (s *SQLiteStore) List() ([]model.Job, error) {
	rows, err := s.db.Query(`SELECT job_id, url, title, description, budget,
		posted_at, proposal, status, created_at
		FROM jobs ORDER BY created_at DESC, job_id`)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("listing jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (model.Job, error) {
	var (
		job       model.Job
		status    sql.NullString
		desc      sql.NullString
		budget    sql.NullString
		postedAt  sql.NullString
		proposal  sql.NullString
		createdAt sql.NullString
	)
	err := r.Scan(&job.ID, &job.URL, &job.Title, &desc, &budget, &postedAt,
		&proposal, &status, &createdAt)
	if err != nil {
		return model.Job{}, err
	}
	job.Description = desc.String
	job.Budget = budget.String
	job.PostedAt = postedAt.String
	job.Proposal = proposal.String
	job.Status = model.Status(status.String)
	if createdAt.String != "" {
		if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
			job.CreatedAt = t
		}
	}
	return job, nil
}
