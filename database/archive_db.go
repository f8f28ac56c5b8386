package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/utils"
)

type SiteID uint
type ForumID uint
type AuthorID uint
type ThreadID uint

// ArchiveDB keeps every scraped listing row for later inspection. Report
// generation never reads from it.
type ArchiveDB struct {
	Filename         string
	DB               *sql.DB
	mu               sync.Mutex
	insertSiteStmt   string
	insertForumStmt  string
	insertAuthorStmt string
	insertThreadStmt string
	insertRunStmt    string
}

type ArchivedThread struct {
	ID         ThreadID
	ForumURL   string
	URL        string
	Title      string
	Starter    string
	LastAuthor string
	Prefix     string
	Locked     bool
	Sticky     bool
	CreatedAt  time.Time
	LastPostAt time.Time
}

type ForumSummary struct {
	ID          ForumID
	URL         string
	Threads     int
	LastScraped time.Time
}

type ScrapeRun struct {
	RunID     string
	PeriodKey string
	Started   time.Time
	Finished  time.Time
	Status    string
	Error     string
}

const driverName = "sqlite3_regex"

var registerDriver sync.Once

func regex(re, s string) (bool, error) {
	return regexp.MatchString(re, s)
}

func OpenArchiveDB(path string) (adb *ArchiveDB, err error) {
	registerDriver.Do(func() {
		sql.Register(driverName,
			&sqlite3.SQLiteDriver{
				ConnectHook: func(conn *sqlite3.SQLiteConn) error {
					return conn.RegisterFunc("regexp", regex, true)
				},
			})
	})

	var existing bool
	if existing, err = utils.PathExists(path); err != nil {
		return
	}
	var db *sql.DB
	if db, err = sql.Open(driverName, path); err != nil {
		return
	}
	adb = &ArchiveDB{Filename: path, DB: db}
	if !existing {
		if err = adb.initTables(); err != nil {
			db.Close()
			os.Remove(path)
			return nil, err
		}
	}
	adb.initSQLStatements()
	return
}

func (adb *ArchiveDB) Close() {
	adb.DB.Close()
}

type RowsReceiver func(*sql.Rows) error

func (adb *ArchiveDB) ForEachRow(receiver RowsReceiver, stmt string, params ...any) error {
	rows, err := adb.DB.Query(stmt, params...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := receiver(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (adb *ArchiveDB) ForSingleRow(receiver RowsReceiver, stmt string, params ...any) error {
	var received bool
	err := adb.ForEachRow(func(rows *sql.Rows) error {
		if received {
			return fmt.Errorf("received second row for %q", stmt)
		}
		received = true
		return receiver(rows)
	}, stmt, params...)
	if err == nil && !received {
		err = sql.ErrNoRows
	}
	return err
}

func (adb *ArchiveDB) scanID(stmt string, params ...any) (id uint, err error) {
	err = adb.ForSingleRow(func(rows *sql.Rows) error {
		return rows.Scan(&id)
	}, stmt, params...)
	return
}

func (adb *ArchiveDB) InsertOrUpdateForum(forumURL *url.URL) (siteId SiteID, forumId ForumID, err error) {
	var id uint
	if id, err = adb.scanID(adb.insertSiteStmt, forumURL.Hostname()); err != nil {
		return
	}
	siteId = SiteID(id)
	if id, err = adb.scanID(adb.insertForumStmt, siteId, utils.TrimmedURL(forumURL).String()); err != nil {
		return
	}
	forumId = ForumID(id)
	return
}

func (adb *ArchiveDB) getOrInsertAuthor(username string, siteId SiteID) (AuthorID, error) {
	if username == "" {
		return 0, nil
	}
	id, err := adb.scanID(adb.insertAuthorStmt, siteId, username)
	return AuthorID(id), err
}

// RecordThreads upserts the threads of one listing page under forumURL.
func (adb *ArchiveDB) RecordThreads(forumURL string, threads []model.Thread) error {
	adb.mu.Lock()
	defer adb.mu.Unlock()

	fu, err := url.Parse(forumURL)
	if err != nil {
		return err
	}
	siteId, forumId, err := adb.InsertOrUpdateForum(fu)
	if err != nil {
		return err
	}

	for _, t := range threads {
		if t.URL == "" {
			continue
		}
		tu, err := url.Parse(t.URL)
		if err != nil {
			return err
		}
		starterId, err := adb.getOrInsertAuthor(t.Starter, siteId)
		if err != nil {
			return err
		}
		lastId, err := adb.getOrInsertAuthor(t.LastAuthor, siteId)
		if err != nil {
			return err
		}
		if _, err := adb.DB.Exec(adb.insertThreadStmt,
			forumId, nullableID(starterId), nullableID(lastId), t.Title,
			utils.TrimmedURL(tu).String(), t.Prefix, t.Locked, t.Sticky,
			unixOrNull(t.CreatedAt), unixOrNull(t.LastPostAt)); err != nil {
			return err
		}
	}

	_, err = adb.DB.Exec("UPDATE forum SET last_scraped = ? WHERE id = ?", time.Now().Unix(), forumId)
	return err
}

func (adb *ArchiveDB) RecordRun(run ScrapeRun) error {
	adb.mu.Lock()
	defer adb.mu.Unlock()
	_, err := adb.DB.Exec(adb.insertRunStmt,
		run.RunID, run.PeriodKey, run.Started.Unix(), unixOrNull(run.Finished), run.Status, run.Error)
	return err
}

func (adb *ArchiveDB) Runs(limit int) (runs []ScrapeRun, err error) {
	stmt := `
		SELECT
			run_id, period_key, started, COALESCE(finished, 0), status, COALESCE(error, '')
		FROM scrape_run
		ORDER BY started DESC, rowid DESC
		LIMIT ?`

	err = adb.ForEachRow(func(rows *sql.Rows) error {
		var r ScrapeRun
		var started, finished int64
		if err := rows.Scan(&r.RunID, &r.PeriodKey, &started, &finished, &r.Status, &r.Error); err != nil {
			return err
		}
		r.Started = time.Unix(started, 0)
		if finished > 0 {
			r.Finished = time.Unix(finished, 0)
		}
		runs = append(runs, r)
		return nil
	}, stmt, limit)
	return
}

func (adb *ArchiveDB) Forums() (forums []ForumSummary, err error) {
	stmt := `
		SELECT
			f.id, f.url, COUNT(t.id), COALESCE(f.last_scraped, 0)
		FROM forum f
		LEFT JOIN thread t ON t.forum_id = f.id
		GROUP BY f.id, f.url
		ORDER BY f.url`

	err = adb.ForEachRow(func(rows *sql.Rows) error {
		var f ForumSummary
		var last int64
		if err := rows.Scan(&f.ID, &f.URL, &f.Threads, &last); err != nil {
			return err
		}
		if last > 0 {
			f.LastScraped = time.Unix(last, 0)
		}
		forums = append(forums, f)
		return nil
	}, stmt)
	return
}

// ThreadFilter narrows ListThreads; empty fields match everything.
type ThreadFilter struct {
	ID          ThreadID
	URL         string
	ForumURL    string
	TitleRegex  string
	LastAuthor  string
	LockedOnly  bool
	ActiveSince time.Time
}

func (adb *ArchiveDB) ListThreads(filter ThreadFilter) (threads []ArchivedThread, err error) {
	stmt := `
		SELECT
			t.id, f.url, t.url, t.title,
			COALESCE(s.username, ''), COALESCE(l.username, ''),
			COALESCE(t.prefix, ''), t.locked, t.sticky,
			COALESCE(t.created_at, 0), COALESCE(t.last_post_at, 0)
		FROM thread t
		JOIN forum f ON f.id = t.forum_id
		LEFT JOIN author s ON s.id = t.starter_id
		LEFT JOIN author l ON l.id = t.last_author_id
		WHERE 1 = 1`

	var params []any
	if filter.ID != 0 {
		stmt += " AND t.id = ?"
		params = append(params, filter.ID)
	}
	if filter.URL != "" {
		if tu, perr := url.Parse(filter.URL); perr == nil {
			stmt += " AND t.url = ?"
			params = append(params, utils.TrimmedURL(tu).String())
		}
	}
	if filter.ForumURL != "" {
		if fu, perr := url.Parse(filter.ForumURL); perr == nil {
			stmt += " AND f.url = ?"
			params = append(params, utils.TrimmedURL(fu).String())
		}
	}
	if filter.TitleRegex != "" {
		stmt += " AND t.title REGEXP ?"
		params = append(params, filter.TitleRegex)
	}
	if filter.LastAuthor != "" {
		stmt += " AND LOWER(l.username) = LOWER(?)"
		params = append(params, filter.LastAuthor)
	}
	if filter.LockedOnly {
		stmt += " AND t.locked = 1"
	}
	if !filter.ActiveSince.IsZero() {
		stmt += " AND t.last_post_at >= ?"
		params = append(params, filter.ActiveSince.Unix())
	}
	stmt += " ORDER BY t.last_post_at DESC, t.id"

	err = adb.ForEachRow(func(rows *sql.Rows) error {
		var t ArchivedThread
		var created, last int64
		if err := rows.Scan(&t.ID, &t.ForumURL, &t.URL, &t.Title, &t.Starter, &t.LastAuthor,
			&t.Prefix, &t.Locked, &t.Sticky, &created, &last); err != nil {
			return err
		}
		if created > 0 {
			t.CreatedAt = time.Unix(created, 0)
		}
		if last > 0 {
			t.LastPostAt = time.Unix(last, 0)
		}
		threads = append(threads, t)
		return nil
	}, stmt, params...)
	return
}

// FindThread looks a thread up by its archive id or by its URL.
func (adb *ArchiveDB) FindThread(idOrURL string) (ArchivedThread, error) {
	filter := ThreadFilter{URL: idOrURL}
	if id, err := strconv.ParseUint(idOrURL, 10, 64); err == nil {
		filter = ThreadFilter{ID: ThreadID(id)}
	}
	threads, err := adb.ListThreads(filter)
	if err != nil {
		return ArchivedThread{}, err
	}
	if len(threads) == 0 {
		return ArchivedThread{}, fmt.Errorf("thread %q: %w", idOrURL, sql.ErrNoRows)
	}
	return threads[0], nil
}

func nullableID(id AuthorID) any {
	if id == 0 {
		return nil
	}
	return id
}

func unixOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}

func (adb *ArchiveDB) initTables() error {
	schema := `
CREATE TABLE site (
	id INTEGER NOT NULL PRIMARY KEY,
	hostname STRING UNIQUE
);

CREATE TABLE forum (
	id INTEGER NOT NULL PRIMARY KEY,
	site_id INTEGER NOT NULL,
	url TEXT UNIQUE,
	last_scraped INTEGER
);

CREATE TABLE author (
	id INTEGER NOT NULL PRIMARY KEY,
	site_id INTEGER NOT NULL,
	username TEXT,

	UNIQUE(site_id, username)
);

CREATE TABLE thread (
	id INTEGER NOT NULL PRIMARY KEY,
	forum_id INTEGER NOT NULL,
	starter_id INTEGER,
	last_author_id INTEGER,
	title TEXT,
	url TEXT UNIQUE,
	prefix TEXT,
	locked BOOLEAN NOT NULL DEFAULT 0,
	sticky BOOLEAN NOT NULL DEFAULT 0,
	created_at INTEGER,
	last_post_at INTEGER
);

CREATE TABLE scrape_run (
	run_id TEXT NOT NULL,
	period_key TEXT NOT NULL,
	started INTEGER NOT NULL,
	finished INTEGER,
	status TEXT NOT NULL,
	error TEXT
);
`
	if _, err := adb.DB.Exec(schema); err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}
	return nil
}

func (adb *ArchiveDB) initSQLStatements() {
	adb.insertSiteStmt = `
		INSERT INTO site
			(hostname)
		VALUES
			(?)
		ON CONFLICT DO UPDATE SET
			hostname = hostname
		RETURNING id`

	adb.insertForumStmt = `
		INSERT INTO forum
			(site_id, url)
		VALUES
			(?, ?)
		ON CONFLICT
			DO UPDATE SET url = url
		RETURNING id`

	adb.insertAuthorStmt = `
		INSERT INTO author
			(site_id, username)
		VALUES
			(?, ?)
		ON CONFLICT DO UPDATE SET
			username = username
		RETURNING id`

	adb.insertThreadStmt = `
		INSERT INTO thread
			(forum_id, starter_id, last_author_id, title, url, prefix, locked, sticky, created_at, last_post_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO UPDATE SET
			last_author_id = excluded.last_author_id,
			title = excluded.title,
			prefix = excluded.prefix,
			locked = excluded.locked,
			sticky = excluded.sticky,
			last_post_at = excluded.last_post_at`

	adb.insertRunStmt = `
		INSERT INTO scrape_run
			(run_id, period_key, started, finished, status, error)
		VALUES
			(?, ?, ?, ?, ?, ?)`
}
