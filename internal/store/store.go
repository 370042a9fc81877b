// Package store resolves galley file metadata from SQLite and file
// content from a files directory, the two places a journal installation
// keeps its published artifacts.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// ErrNotFound is returned by Lookup when no file row matches.
var ErrNotFound = errors.New("store: file not found")

// File is one stored file. Galley files have AssocFileID zero;
// dependent files carry the id of the galley file they belong to.
type File struct {
	ID           int64
	SubmissionID int64
	GalleyID     int64
	AssocFileID  int64
	Name         string
	Path         string
	MIMEType     string
}

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id INTEGER PRIMARY KEY,
	submission_id INTEGER NOT NULL,
	galley_id INTEGER NOT NULL,
	assoc_file_id INTEGER,
	path TEXT NOT NULL,
	mime_type TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS files_assoc ON files(assoc_file_id);
CREATE TABLE IF NOT EXISTS file_names (
	file_id INTEGER NOT NULL,
	locale TEXT NOT NULL,
	name TEXT NOT NULL,
	PRIMARY KEY (file_id, locale)
);
`

// nameSelect resolves the display name of row f for a requested locale,
// falling back to any locale and then to the empty string.
const nameSelect = `COALESCE(
	(SELECT n.name FROM file_names AS n WHERE n.file_id = f.id AND n.locale = ?),
	(SELECT n.name FROM file_names AS n WHERE n.file_id = f.id ORDER BY n.locale LIMIT 1),
	'')`

// Store provides read and write access to file metadata and read access
// to stored file content.
type Store struct {
	pool     *sqlitex.Pool
	filesDir string
}

// Open opens the metadata database, creating it and its schema when
// missing, and binds the directory that file paths resolve against.
func Open(dbPath, filesDir string) (*Store, error) {
	pool, err := sqlitex.NewPool(dbPath, sqlitex.PoolOptions{PoolSize: 4})
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata database: %w", err)
	}

	s := &Store{pool: pool, filesDir: filesDir}
	if err := s.migrate(context.Background()); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Lookup returns the file with the given id, provided it belongs to the
// given submission and galley. The display name is resolved for locale
// with fallback to any locale the file has a name in.
func (s *Store) Lookup(ctx context.Context, submissionID, galleyID, fileID int64, locale string) (*File, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var f *File
	err = sqlitex.Execute(conn, `
		SELECT f.id, f.submission_id, f.galley_id, COALESCE(f.assoc_file_id, 0), f.path, f.mime_type, `+nameSelect+`
		FROM files AS f
		WHERE f.id = ? AND f.submission_id = ? AND f.galley_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{locale, fileID, submissionID, galleyID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				row := fileFromRow(stmt)
				f = &row
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query file %d: %w", fileID, err)
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

// DependentFiles returns the files attached to the given galley file,
// ordered by id. Display names are resolved for locale the same way
// Lookup resolves them.
func (s *Store) DependentFiles(ctx context.Context, fileID int64, locale string) ([]File, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var files []File
	err = sqlitex.Execute(conn, `
		SELECT f.id, f.submission_id, f.galley_id, COALESCE(f.assoc_file_id, 0), f.path, f.mime_type, `+nameSelect+`
		FROM files AS f
		WHERE f.assoc_file_id = ?
		ORDER BY f.id`,
		&sqlitex.ExecOptions{
			Args: []any{locale, fileID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				files = append(files, fileFromRow(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to query dependent files of %d: %w", fileID, err)
	}
	return files, nil
}

func fileFromRow(stmt *sqlite.Stmt) File {
	return File{
		ID:           stmt.ColumnInt64(0),
		SubmissionID: stmt.ColumnInt64(1),
		GalleyID:     stmt.ColumnInt64(2),
		AssocFileID:  stmt.ColumnInt64(3),
		Path:         stmt.ColumnText(4),
		MIMEType:     stmt.ColumnText(5),
		Name:         stmt.ColumnText(6),
	}
}

// ReadFileBytes returns the stored content of f. Paths are kept inside
// the files directory; anything that would escape it is rejected.
func (s *Store) ReadFileBytes(f *File) ([]byte, error) {
	if !filepath.IsLocal(f.Path) {
		return nil, fmt.Errorf("file path %q escapes the files directory", f.Path)
	}
	data, err := os.ReadFile(filepath.Join(s.filesDir, filepath.FromSlash(f.Path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", f.Path, err)
	}
	return data, nil
}

// AddFile registers a file and returns its id. f.ID is ignored; an
// AssocFileID of zero records the file as a galley file.
func (s *Store) AddFile(ctx context.Context, f File) (int64, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to take connection: %w", err)
	}
	defer s.pool.Put(conn)

	var assoc any
	if f.AssocFileID != 0 {
		assoc = f.AssocFileID
	}
	err = sqlitex.Execute(conn, `
		INSERT INTO files (submission_id, galley_id, assoc_file_id, path, mime_type)
		VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{f.SubmissionID, f.GalleyID, assoc, f.Path, f.MIMEType},
		})
	if err != nil {
		return 0, fmt.Errorf("failed to insert file: %w", err)
	}
	return conn.LastInsertRowID(), nil
}

// SetFileName sets the display name of a file for one locale, replacing
// any previous name in that locale.
func (s *Store) SetFileName(ctx context.Context, fileID int64, locale, name string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to take connection: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO file_names (file_id, locale, name) VALUES (?, ?, ?)
		ON CONFLICT (file_id, locale) DO UPDATE SET name = excluded.name`,
		&sqlitex.ExecOptions{
			Args: []any{fileID, locale, name},
		})
	if err != nil {
		return fmt.Errorf("failed to set file name: %w", err)
	}
	return nil
}
