package roster

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PostgresStore persists the roster in Postgres across two tables:
// people holds identity, presence holds the latest status per person
// (row present iff status has ever been written).
type PostgresStore struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPostgresStore(db *sql.DB, log *zap.Logger) *PostgresStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresStore{db: db, log: log}
}

func (r *PostgresStore) List(ctx context.Context) ([]Person, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.department, p.grade, p.role, p.room,
		       s.status, s.updated_at
		FROM people p
		LEFT JOIN presence s ON s.person_id = p.id
		ORDER BY p.department, p.room, p.name, p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Person
	for rows.Next() {
		var (
			p       Person
			rawStat sql.NullInt64
			rawAt   sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Department, &p.Grade, &p.Role, &p.Room, &rawStat, &rawAt); err != nil {
			return nil, err
		}
		if rawStat.Valid {
			v := int(rawStat.Int64)
			p.Status = StatusFromWire(&v)
		}
		if rawAt.Valid {
			t := rawAt.Time
			p.StatusAt = &t
		}
		res = append(res, p)
	}
	return res, rows.Err()
}

func (r *PostgresStore) Create(ctx context.Context, f Fields) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO people (name, department, grade, role, room)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, f.Name, f.Department, f.Grade, f.Role, f.Room).Scan(&id)
	return id, err
}

func (r *PostgresStore) Update(ctx context.Context, id int64, f Fields) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE people
		SET name = $2, department = $3, grade = $4, role = $5, room = $6
		WHERE id = $1
	`, id, f.Name, f.Department, f.Grade, f.Role, f.Room)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	// presence rows go with the person via ON DELETE CASCADE.
	res, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PostgresStore) SetStatus(ctx context.Context, id int64, s Status, at time.Time) (Status, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return StatusUnset, false, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM people WHERE id = $1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StatusUnset, false, nil
		}
		return StatusUnset, false, err
	}

	old := StatusUnset
	var rawOld int
	err = tx.QueryRowContext(ctx, `SELECT status FROM presence WHERE person_id = $1 FOR UPDATE`, id).Scan(&rawOld)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO presence (person_id, status, updated_at)
			VALUES ($1, $2, $3)
		`, id, *s.Wire(), at)
	case err == nil:
		old = StatusFromWire(&rawOld)
		_, err = tx.ExecContext(ctx, `
			UPDATE presence SET status = $2, updated_at = $3 WHERE person_id = $1
		`, id, *s.Wire(), at)
	}
	if err != nil {
		return StatusUnset, false, err
	}
	if err := tx.Commit(); err != nil {
		return StatusUnset, false, err
	}
	return old, true, nil
}
