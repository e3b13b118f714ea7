package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/warrantdesk/internal/apperr"
	"github.com/starford/warrantdesk/internal/models"
)

// Info describes the currently loaded workbook.
type Info struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	SheetName   string    `json:"sheet_name"`
	Header      []string  `json:"header"`
	NotesColumn int       `json:"notes_column"`
	LoadedAt    time.Time `json:"loaded_at"`
	Rows        int       `json:"rows"`
	Records     int       `json:"records"`
}

const recordColumns = `
	r.row_idx, r.id, r.case_id, r.name, r.mother, r.birth_date, r.national_id,
	r.street, r.house_number, r.district, r.regime, r.offense, r.classification,
	r.cells, COALESCE(a.notes, ''), p.id IS NOT NULL
FROM records r
LEFT JOIN annotations a ON a.id = r.id
LEFT JOIN photos p ON p.id = r.id`

// Replace discards the current session and loads records in a single
// transaction. Notes are seeded from each record's Notes; when several rows
// share an ID the row that comes last in the source wins.
func (s *Store) Replace(ctx context.Context, info Info, records []models.Record) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"photos", "annotations", "records", "session"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("session: clear %s: %w", table, err)
		}
	}

	headerJSON, _ := json.Marshal(info.Header)
	if info.LoadedAt.IsZero() {
		info.LoadedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO session (id, source, sheet_name, header, notes_column, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, info.ID, info.Source, info.SheetName, string(headerJSON), info.NotesColumn, info.LoadedAt)
	if err != nil {
		return fmt.Errorf("session: insert session: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (row_idx, id, case_id, name, mother, birth_date, national_id,
			street, house_number, district, regime, offense, classification, cells, search)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("session: prepare record insert: %w", err)
	}
	defer stmt.Close()

	type seed struct {
		row   int
		notes string
	}
	seeds := make(map[string]seed, len(records))
	for _, r := range records {
		cellsJSON, _ := json.Marshal(r.Cells)
		if _, err := stmt.ExecContext(ctx, r.Row, r.ID, r.CaseID, r.Name, r.Mother, r.BirthDate,
			r.NationalID, r.Street, r.HouseNumber, r.District, r.Regime, r.Offense,
			r.Classification, string(cellsJSON), searchText(r)); err != nil {
			return fmt.Errorf("session: insert record row %d: %w", r.Row, err)
		}
		if prev, ok := seeds[r.ID]; !ok || r.Row > prev.row {
			seeds[r.ID] = seed{row: r.Row, notes: r.Notes}
		}
	}

	now := time.Now().UTC()
	for id, sd := range seeds {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO annotations (id, notes, updated_at) VALUES (?, ?, ?)`,
			id, sd.notes, now); err != nil {
			return fmt.Errorf("session: seed notes: %w", err)
		}
	}

	return tx.Commit()
}

// Info returns the current session metadata or apperr.ErrNoSession.
func (s *Store) Info(ctx context.Context) (*Info, error) {
	var (
		info   Info
		header string
	)
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, source, sheet_name, header, notes_column, loaded_at FROM session LIMIT 1
	`).Scan(&info.ID, &info.Source, &info.SheetName, &header, &info.NotesColumn, &info.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("session: info: %w", err)
	}
	if err := json.Unmarshal([]byte(header), &info.Header); err != nil {
		return nil, fmt.Errorf("session: decode header: %w", err)
	}
	err = s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT id) FROM records`).Scan(&info.Rows, &info.Records)
	if err != nil {
		return nil, fmt.Errorf("session: count records: %w", err)
	}
	return &info, nil
}

// List returns one record per distinct ID (its first source row) sorted by
// name. A non-empty query filters on name, case number, CPF or mother,
// ignoring case (accented letters included) and matching % and _ literally.
func (s *Store) List(ctx context.Context, query string) ([]models.Record, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	like := "%" + likeEscaper.Replace(query) + "%"
	return s.queryRecords(ctx, `
		SELECT `+recordColumns+`
		WHERE r.row_idx = (SELECT MIN(r2.row_idx) FROM records r2 WHERE r2.id = r.id)
		  AND (? = '' OR r.search LIKE ? ESCAPE '\')
		ORDER BY r.name, r.row_idx
	`, query, like)
}

// SQLite only folds ASCII in LIKE, so the searchable fields are lowercased
// here and matched against a lowercased query.
func searchText(r models.Record) string {
	return strings.ToLower(strings.Join([]string{r.Name, r.CaseID, r.NationalID, r.Mother}, "\n"))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// All returns every loaded row sorted by name with its current notes.
func (s *Store) All(ctx context.Context) ([]models.Record, error) {
	return s.queryRecords(ctx, `SELECT `+recordColumns+` ORDER BY r.name, r.row_idx`)
}

// Get returns the first row with the given ID or apperr.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Record, error) {
	recs, err := s.queryRecords(ctx, `
		SELECT `+recordColumns+`
		WHERE r.id = ?
		ORDER BY r.row_idx
		LIMIT 1
	`, id)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, apperr.ErrNotFound
	}
	return &recs[0], nil
}

// SetNotes replaces the notes of the record with the given ID.
func (s *Store) SetNotes(ctx context.Context, id, notes string) error {
	if err := s.ensureRecord(ctx, id); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO annotations (id, notes, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			notes      = excluded.notes,
			updated_at = excluded.updated_at
	`, id, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("session: set notes: %w", err)
	}
	return nil
}

// SavePhoto attaches (or replaces) the photo of a record.
func (s *Store) SavePhoto(ctx context.Context, p models.Photo) error {
	if err := s.ensureRecord(ctx, p.RecordID); err != nil {
		return err
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO photos (id, content_type, width, height, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_type = excluded.content_type,
			width        = excluded.width,
			height       = excluded.height,
			data         = excluded.data,
			updated_at   = excluded.updated_at
	`, p.RecordID, p.ContentType, p.Width, p.Height, p.Data, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("session: save photo: %w", err)
	}
	return nil
}

// Photo returns the photo attached to a record or apperr.ErrNotFound.
func (s *Store) Photo(ctx context.Context, id string) (*models.Photo, error) {
	p := models.Photo{RecordID: id}
	err := s.conn.QueryRowContext(ctx, `
		SELECT content_type, width, height, data, updated_at FROM photos WHERE id = ?
	`, id).Scan(&p.ContentType, &p.Width, &p.Height, &p.Data, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: photo: %w", err)
	}
	return &p, nil
}

// DeletePhoto removes the photo of a record.
func (s *Store) DeletePhoto(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("session: delete photo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Store) ensureRecord(ctx context.Context, id string) error {
	var one int
	err := s.conn.QueryRowContext(ctx, `SELECT 1 FROM records WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("session: lookup record: %w", err)
	}
	return nil
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("session: query records: %w", err)
	}
	defer rows.Close()

	out := []models.Record{}
	for rows.Next() {
		var (
			r     models.Record
			cells string
		)
		if err := rows.Scan(&r.Row, &r.ID, &r.CaseID, &r.Name, &r.Mother, &r.BirthDate,
			&r.NationalID, &r.Street, &r.HouseNumber, &r.District, &r.Regime, &r.Offense,
			&r.Classification, &cells, &r.Notes, &r.HasPhoto); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cells), &r.Cells); err != nil {
			return nil, fmt.Errorf("session: decode cells: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
