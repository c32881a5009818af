package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/dberrors"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

const documentsTable = "documents"

// PostgresStore keeps every collection in one JSONB table keyed by
// (collection, id). Equality lookups use JSONB containment so the GIN index
// on data serves them.
type PostgresStore struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostgresStore creates a PostgresStore over an open pool
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindBy implements Store
func (s *PostgresStore) FindBy(ctx context.Context, collection, field string, value any) ([]Document, error) {
	filter, err := json.Marshal(map[string]any{field: value})
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter for %s.%s: %w", collection, field, err)
	}

	query := s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		Where("data @> ?::jsonb", string(filter)).
		OrderBy("created_at", "id")

	return s.query(ctx, query, "find "+collection)
}

// All implements Store
func (s *PostgresStore) All(ctx context.Context, collection string) ([]Document, error) {
	query := s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection}).
		OrderBy("created_at", "id")

	return s.query(ctx, query, "list "+collection)
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	sql, args, err := s.sb.Select("id", "data").
		From(documentsTable).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get query: %w", err)
	}

	var (
		docID string
		raw   []byte
	)
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&docID, &raw); err != nil {
		return nil, dberrors.Translate(err, fmt.Sprintf("get %s/%s", collection, id))
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, err)
	}
	return &Document{ID: docID, Data: data}, nil
}

// Add implements Store
func (s *PostgresStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s document: %w", collection, err)
	}

	id := uuid.NewString()
	sql, args, err := s.sb.Insert(documentsTable).
		Columns("collection", "id", "data").
		Values(collection, id, squirrel.Expr("?::jsonb", string(payload))).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("collection", collection).Msg("Error inserting document")
		return "", dberrors.Translate(err, "add "+collection)
	}
	return id, nil
}

// Update implements Store
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode %s update: %w", collection, err)
	}

	sql, args, err := s.sb.Update(documentsTable).
		Set("data", squirrel.Expr("data || ?::jsonb", string(payload))).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("collection", collection).Str("id", id).Msg("Error updating document")
		return dberrors.Translate(err, fmt.Sprintf("update %s/%s", collection, id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, apperrors.ErrResourceNotFound)
	}
	return nil
}

// Close implements Store. The pool is owned by the caller.
func (s *PostgresStore) Close(context.Context) error {
	return nil
}

func (s *PostgresStore) query(ctx context.Context, builder squirrel.SelectBuilder, op string) ([]Document, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error querying documents")
		return nil, dberrors.Translate(err, op)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, dberrors.Translate(err, op)
		}
		data, err := decodeJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: document %s: %w", op, id, err)
		}
		docs = append(docs, Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, dberrors.Translate(err, op)
	}
	return docs, nil
}

func decodeJSON(raw []byte) (map[string]any, error) {
	data := make(map[string]any)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDataIntegrity, err)
	}
	return data, nil
}
