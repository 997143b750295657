package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	model "github.com/glkeru/skn/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS pairs (
	id              uuid PRIMARY KEY,
	member_id       text        NOT NULL,
	pair_number     bigint      NOT NULL,
	left_member_id  text,
	right_member_id text,
	amount          bigint      NOT NULL,
	completed_at    timestamptz NOT NULL,
	UNIQUE (member_id, pair_number)
);
CREATE TABLE IF NOT EXISTS earnings (
	id          uuid PRIMARY KEY,
	member_id   text        NOT NULL,
	source_type text        NOT NULL,
	source_id   text        NOT NULL,
	amount      bigint      NOT NULL,
	currency    text        NOT NULL,
	note        text,
	created_at  timestamptz NOT NULL,
	UNIQUE (member_id, source_type, source_id)
);`

type LedgerDB struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewLedgerDB(logger *zap.Logger) (db *LedgerDB, err error) {
	// config
	purl := os.Getenv("SKN_DB")
	if purl == "" {
		return nil, fmt.Errorf("env SKN_DB is not set")
	}
	port := os.Getenv("SKN_DB_PORT")
	if port == "" {
		return nil, fmt.Errorf("env SKN_DB_PORT is not set")
	}
	user := os.Getenv("SKN_DB_USER")
	if user == "" {
		return nil, fmt.Errorf("env SKN_DB_USER is not set")
	}
	password := os.Getenv("SKN_DB_PASSWORD")
	if password == "" {
		return nil, fmt.Errorf("env SKN_DB_PASSWORD is not set")
	}
	database := os.Getenv("SKN_DB_BASE")
	if database == "" {
		return nil, fmt.Errorf("env SKN_DB_BASE is not set")
	}
	dsn := "postgres://" + user + ":" + password + "@" + purl + ":" + port + "/" + database

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &LedgerDB{pool, logger}, nil
}

func (l *LedgerDB) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, ledgerSchema)
	return pgErr(err)
}

func (l *LedgerDB) Close() {
	l.pool.Close()
}

func pgErr(err error) error {
	if err == nil {
		return nil
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return err
}

func insertPairQuery(p model.PairRecord) (string, []any, error) {
	return sq.Insert("pairs").
		Columns("id", "member_id", "pair_number", "left_member_id", "right_member_id", "amount", "completed_at").
		Values(p.UUID, p.MemberID, p.PairNumber, p.LeftMemberID, p.RightMemberID, p.Amount, p.CompletedAt).
		Suffix("ON CONFLICT (member_id, pair_number) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func insertEarningQuery(e model.Earning) (string, []any, error) {
	var note any
	if e.Note != "" {
		note = e.Note
	}
	return sq.Insert("earnings").
		Columns("id", "member_id", "source_type", "source_id", "amount", "currency", "note", "created_at").
		Values(e.UUID, e.MemberID, string(e.SourceType), e.SourceID, e.Amount, e.Currency, note, e.CreatedAt).
		Suffix("ON CONFLICT (member_id, source_type, source_id) DO NOTHING").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// вставка с ON CONFLICT DO NOTHING: 0 строк - запись уже есть
func (l *LedgerDB) insert(ctx context.Context, sql string, args []any) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return pgErr(err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		l.logger.Error("SQL error",
			zap.Error(err),
			zap.String("query", sql),
			zap.Any("args", args),
		)
		return pgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLedgerConflict
	}
	return nil
}

// Закрытая пара
func (l *LedgerDB) InsertPair(ctx context.Context, pair model.PairRecord) error {
	if pair.UUID == uuid.Nil {
		pair.UUID = uuid.New()
	}
	if pair.CompletedAt.IsZero() {
		pair.CompletedAt = time.Now()
	}
	sql, args, err := insertPairQuery(pair)
	if err != nil {
		return err
	}
	return l.insert(ctx, sql, args)
}

// Начисление
func (l *LedgerDB) InsertEarning(ctx context.Context, earning model.Earning) error {
	if earning.UUID == uuid.Nil {
		earning.UUID = uuid.New()
	}
	if earning.CreatedAt.IsZero() {
		earning.CreatedAt = time.Now()
	}
	sql, args, err := insertEarningQuery(earning)
	if err != nil {
		return err
	}
	return l.insert(ctx, sql, args)
}

func hasEarningQuery(memberID string, source model.SourceType, sourceID string) (string, []any, error) {
	return sq.Select("1").
		Prefix("SELECT EXISTS (").
		From("earnings").
		Where(sq.And{
			sq.Eq{"member_id": memberID},
			sq.Eq{"source_type": string(source)},
			sq.Eq{"source_id": sourceID},
		}).
		Suffix(")").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// Начисление по ключу уже есть в журнале
func (l *LedgerDB) HasEarning(ctx context.Context, memberID string, source model.SourceType, sourceID string) (bool, error) {
	sql, args, err := hasEarningQuery(memberID, source, sourceID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := l.pool.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, pgErr(err)
	}
	return exists, nil
}

func selectPairsQuery(memberID string) (string, []any, error) {
	return sq.Select("id", "member_id", "pair_number", "left_member_id", "right_member_id", "amount", "completed_at").
		From("pairs").
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("pair_number").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func selectEarningsQuery(memberID string) (string, []any, error) {
	return sq.Select("id", "member_id", "source_type", "source_id", "amount", "currency", "note", "created_at").
		From("earnings").
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

func (l *LedgerDB) GetPairs(ctx context.Context, memberID string) (pairs []model.PairRecord, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, pgErr(err)
	}
	defer conn.Release()

	sql, args, err := selectPairsQuery(memberID)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	var id pgtype.UUID
	var left, right pgtype.Text
	for rows.Next() {
		var p model.PairRecord
		err = rows.Scan(&id, &p.MemberID, &p.PairNumber, &left, &right, &p.Amount, &p.CompletedAt)
		if err != nil {
			return nil, err
		}
		p.UUID, _ = uuid.FromBytes(id.Bytes[:])
		p.LeftMemberID = left.String
		p.RightMemberID = right.String
		pairs = append(pairs, p)
	}
	return pairs, pgErr(rows.Err())
}

func (l *LedgerDB) GetEarnings(ctx context.Context, memberID string) (earnings []model.Earning, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, pgErr(err)
	}
	defer conn.Release()

	sql, args, err := selectEarningsQuery(memberID)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, pgErr(err)
	}
	defer rows.Close()

	var id pgtype.UUID
	var sourceType string
	var note pgtype.Text
	for rows.Next() {
		var e model.Earning
		err = rows.Scan(&id, &e.MemberID, &sourceType, &e.SourceID, &e.Amount, &e.Currency, &note, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.UUID, _ = uuid.FromBytes(id.Bytes[:])
		e.SourceType = model.SourceType(sourceType)
		e.Note = note.String
		earnings = append(earnings, e)
	}
	return earnings, pgErr(rows.Err())
}
