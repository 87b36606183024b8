package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runger/cmdbox/internal/sanitize"
)

// Add persists a new command. The command text is run through the secret
// sanitizer first so credentials never reach disk. The generated id is
// returned and also written back to cmd.
func (s *SQLiteStore) Add(ctx context.Context, cmd *Command) (string, error) {
	if cmd == nil {
		return "", errors.New("command cannot be nil")
	}
	if strings.TrimSpace(cmd.Command) == "" {
		return "", errors.New("command text is required")
	}

	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	cmd.Command = sanitize.Sanitize(cmd.Command)
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin add: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO commands (
			id, command, description, os, project_type, category, context,
			created_at_unix_ms, last_used_unix_ms, use_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, 0)
	`,
		cmd.ID,
		cmd.Command,
		cmd.Description,
		cmd.OS,
		cmd.ProjectType,
		cmd.Category,
		cmd.Context,
		cmd.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: insert command: %v", ErrUnavailable, err)
	}

	if err := s.attachTagsTx(ctx, tx, cmd.ID, cmd.Tags); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit add: %v", ErrUnavailable, err)
	}
	return cmd.ID, nil
}

// attachTagsTx ensures each tag exists and associates it with the command.
func (s *SQLiteStore) attachTagsTx(ctx context.Context, tx *sql.Tx, commandID string, tags []string) error {
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO tags (name) VALUES (?)", tag); err != nil {
			return fmt.Errorf("%w: insert tag: %v", ErrUnavailable, err)
		}
		var tagID int64
		if err := tx.QueryRowContext(ctx, "SELECT id FROM tags WHERE name = ?", tag).Scan(&tagID); err != nil {
			return fmt.Errorf("%w: lookup tag: %v", ErrUnavailable, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO command_tags (command_id, tag_id) VALUES (?, ?)", commandID, tagID); err != nil {
			return fmt.Errorf("%w: link tag: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Get fetches a command by id and records the access (use_count + 1,
// last_used = now) in the same transaction. This is the only read path
// that mutates; search never touches counters.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Command, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin get: %v", ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE commands SET use_count = use_count + 1, last_used_unix_ms = ?
		WHERE id = ?
	`, time.Now().UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("%w: touch command: %v", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: touch command: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	cmd, err := scanCommandTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit get: %v", ErrUnavailable, err)
	}
	return cmd, nil
}

func scanCommandTx(ctx context.Context, tx *sql.Tx, id string) (*Command, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, command, description, os, project_type, category, context,
		       created_at_unix_ms, last_used_unix_ms, use_count
		FROM commands WHERE id = ?
	`, id)

	cmd, err := scanCommandRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: read command: %v", ErrUnavailable, err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT t.name FROM tags t
		JOIN command_tags ct ON t.id = ct.tag_id
		WHERE ct.command_id = ?
		ORDER BY t.name
	`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: read tags: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: read tags: %v", ErrUnavailable, err)
		}
		cmd.Tags = append(cmd.Tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read tags: %v", ErrUnavailable, err)
	}
	return cmd, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCommandRow(row rowScanner) (*Command, error) {
	var (
		cmd        Command
		osName     sql.NullString
		project    sql.NullString
		category   sql.NullString
		commandCtx sql.NullString
		createdAt  int64
		lastUsed   sql.NullInt64
	)
	if err := row.Scan(
		&cmd.ID, &cmd.Command, &cmd.Description,
		&osName, &project, &category, &commandCtx,
		&createdAt, &lastUsed, &cmd.UseCount,
	); err != nil {
		return nil, err
	}
	cmd.OS = nullableString(osName)
	cmd.ProjectType = nullableString(project)
	cmd.Category = nullableString(category)
	cmd.Context = nullableString(commandCtx)
	cmd.CreatedAt = time.UnixMilli(createdAt)
	if lastUsed.Valid {
		t := time.UnixMilli(lastUsed.Int64)
		cmd.LastUsed = &t
	}
	return &cmd, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// Delete removes a command and its tag links.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM commands WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("%w: delete command: %v", ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: delete command: %v", ErrUnavailable, err)
	}
	return affected > 0, nil
}

// Candidates materializes the commands matching f. The query is built
// dynamically from the supplied filters, mirroring how the metadata
// columns are indexed. When more rows match than the cap allows, the most
// used and most recent ones win.
func (s *SQLiteStore) Candidates(ctx context.Context, f Filter) ([]Command, error) {
	var (
		where []string
		args  []any
	)

	if f.OS != "" {
		where = append(where, "c.os = ?")
		args = append(args, f.OS)
	}
	if f.ProjectType != "" {
		where = append(where, "c.project_type = ?")
		args = append(args, f.ProjectType)
	}
	if f.Category != "" {
		where = append(where, "c.category = ?")
		args = append(args, f.Category)
	}
	if tags := uniqueTags(f.Tags); len(tags) > 0 {
		placeholders := strings.Repeat("?,", len(tags)-1) + "?"
		where = append(where, fmt.Sprintf(`c.id IN (
			SELECT ct.command_id FROM command_tags ct
			JOIN tags t ON t.id = ct.tag_id
			WHERE t.name IN (%s)
			GROUP BY ct.command_id
			HAVING COUNT(DISTINCT t.name) = ?
		)`, placeholders))
		for _, tag := range tags {
			args = append(args, tag)
		}
		args = append(args, len(tags))
	}

	// SQLite's lower() only folds ASCII, so substring matching happens in
	// Go after Unicode-aware lowercasing instead of in the query.
	sub := strings.ToLower(f.Substring)

	maxCandidates := f.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	query := `
		SELECT c.id, c.command, c.description, c.os, c.project_type, c.category, c.context,
		       c.created_at_unix_ms, c.last_used_unix_ms, c.use_count
		FROM commands c
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.use_count DESC, c.created_at_unix_ms DESC"
	if sub == "" {
		query += " LIMIT ?"
		args = append(args, maxCandidates)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query candidates: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []Command
	var ids []string
	for rows.Next() {
		cmd, err := scanCommandRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan candidate: %v", ErrUnavailable, err)
		}
		if sub != "" && !containsFold(cmd, sub) {
			continue
		}
		out = append(out, *cmd)
		ids = append(ids, cmd.ID)
		if sub != "" && len(out) >= maxCandidates {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: query candidates: %v", ErrUnavailable, err)
	}

	if err := s.attachAllTags(ctx, ids, out); err != nil {
		return nil, err
	}
	return out, nil
}

// uniqueTags drops repeated filter tags so the DISTINCT tag count in the
// query stays satisfiable.
func uniqueTags(tags []string) []string {
	if len(tags) < 2 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0:0]
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// containsFold matches sub against the command and description text.
// sub must already be lowercased.
func containsFold(c *Command, sub string) bool {
	return strings.Contains(strings.ToLower(c.Command), sub) ||
		strings.Contains(strings.ToLower(c.Description), sub)
}

// attachAllTags loads tags for the given commands in a single query.
func (s *SQLiteStore) attachAllTags(ctx context.Context, ids []string, cmds []Command) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT ct.command_id, t.name FROM command_tags ct
		JOIN tags t ON t.id = ct.tag_id
		WHERE ct.command_id IN (%s)
		ORDER BY t.name
	`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("%w: query tags: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	byID := make(map[string][]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("%w: scan tag: %v", ErrUnavailable, err)
		}
		byID[id] = append(byID[id], name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: query tags: %v", ErrUnavailable, err)
	}

	for i := range cmds {
		cmds[i].Tags = byID[cmds[i].ID]
	}
	return nil
}

// ListTags returns every distinct tag name in use, sorted. Tag rows
// whose commands were all deleted do not appear.
func (s *SQLiteStore) ListTags(ctx context.Context) ([]string, error) {
	return s.listStrings(ctx, `
		SELECT DISTINCT t.name FROM tags t
		JOIN command_tags ct ON ct.tag_id = t.id
		ORDER BY t.name
	`)
}

// ListCategories returns every distinct non-null category, sorted.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]string, error) {
	return s.listStrings(ctx, `
		SELECT DISTINCT category FROM commands
		WHERE category IS NOT NULL AND category != ''
		ORDER BY category
	`)
}

func (s *SQLiteStore) listStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}
