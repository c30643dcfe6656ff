package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ProductRanker/internal/domain"
	"ProductRanker/internal/ports"
)

// PostgresRepository persists completed rankings into Postgres. Each
// category keeps exactly one current ranking; saving replaces the previous
// one atomically.
type PostgresRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.RankingRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRanking stores the run summary and its entries in one transaction.
func (r *PostgresRepository) SaveRanking(ctx context.Context, ranking domain.Ranking) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	run := r.sb.Insert("ranking_runs").
		Columns("category", "products", "reviews", "skipped", "generated_at").
		Values(ranking.Category, ranking.Products, ranking.Reviews, ranking.Skipped.Total, ranking.GeneratedAt).
		Suffix(`ON CONFLICT (category) DO UPDATE
                SET products = EXCLUDED.products,
                    reviews = EXCLUDED.reviews,
                    skipped = EXCLUDED.skipped,
                    generated_at = EXCLUDED.generated_at`)

	if err := execContext(ctx, tx, run); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	del := r.sb.Delete("ranking_entries").Where(sq.Eq{"category": ranking.Category})
	if err := execContext(ctx, tx, del); err != nil {
		return fmt.Errorf("clear previous entries: %w", err)
	}

	if len(ranking.Entries) > 0 {
		ins := r.sb.Insert("ranking_entries").
			Columns("category", "position", "product_id", "score")
		for i, entry := range ranking.Entries {
			ins = ins.Values(ranking.Category, i+1, entry.ProductID, entry.Score)
		}
		if err := execContext(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ranking: %w", err)
	}
	return nil
}

// LatestRanking loads the stored ranking for a category, or a zero-valued
// one when none exists.
func (r *PostgresRepository) LatestRanking(ctx context.Context, category string) (domain.Ranking, error) {
	ranking := domain.Ranking{Category: category}
	if r.db == nil {
		return ranking, nil
	}

	run := r.sb.Select("products", "reviews", "skipped", "generated_at").
		From("ranking_runs").
		Where(sq.Eq{"category": category})

	query, args, err := run.ToSql()
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("build run query: %w", err)
	}

	var skipped int64
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&ranking.Products, &ranking.Reviews, &skipped, &ranking.GeneratedAt)
	if err == sql.ErrNoRows {
		return ranking, nil
	}
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("load run: %w", err)
	}
	ranking.Skipped.Total = skipped

	entries := r.sb.Select("product_id", "score").
		From("ranking_entries").
		Where(sq.Eq{"category": category}).
		OrderBy("position")

	query, args, err = entries.ToSql()
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("build entries query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Ranking{}, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.ScoredProduct
		if err := rows.Scan(&entry.ProductID, &entry.Score); err != nil {
			return domain.Ranking{}, fmt.Errorf("scan entry: %w", err)
		}
		ranking.Entries = append(ranking.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.Ranking{}, fmt.Errorf("rows iteration: %w", err)
	}

	return ranking, nil
}

type sqlizer interface {
	ToSql() (string, []interface{}, error)
}

func execContext(ctx context.Context, tx *sql.Tx, builder sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return nil
}
