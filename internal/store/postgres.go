package store

import (
	"context"
	"database/sql"
	"errors"
)

// Schema da tabela chave/valor usada pelo backend Postgres
const Schema = `
CREATE TABLE IF NOT EXISTS kv_snapshots (
  key        TEXT PRIMARY KEY,
  value      JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// upsert mantém uma linha por chave
const upsertSQL = `
		INSERT INTO kv_snapshots (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET
		  value      = EXCLUDED.value,
		  updated_at = EXCLUDED.updated_at`

// Postgres persiste os snapshots na tabela kv_snapshots
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria a tabela se ainda não existir
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, Schema)
	return err
}

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return loadRow(p.db.QueryRowContext(ctx, `SELECT value FROM kv_snapshots WHERE key=$1`, key))
}

func (p *Postgres) Save(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, upsertSQL, key, string(value)) // lib/pq envia []byte como bytea
	return err
}

// Update roda numa transação com lock por chave. O advisory lock cobre também
// a chave que ainda não existe, onde SELECT ... FOR UPDATE não trava nada.
func (p *Postgres) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}
	cur, found, err := loadRow(tx.QueryRowContext(ctx, `SELECT value FROM kv_snapshots WHERE key=$1 FOR UPDATE`, key))
	if err != nil {
		return err
	}
	next, err := fn(cur, found)
	if err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, upsertSQL, key, string(next)); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func loadRow(row *sql.Row) ([]byte, bool, error) {
	var b []byte
	err := row.Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
