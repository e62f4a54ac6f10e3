// internal/store/postgres/table.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/store"
)

const uniqueViolation = "23505"

// table maps one entity type T with filter F onto a table whose rows scan into R.
// Every method runs a single statement.
type table[T any, F any, R any] struct {
	db      *sqlx.DB
	tracer  trace.Tracer
	name    string
	id      func(*T) uuid.UUID
	toRow   func(*T) *R
	fromRow func(*R) *T
	where   func(F) []exp.Expression
	// sorts maps sortable fields to columns.
	sorts map[string]string
}

func (t *table[T, F, R]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.table", t.name))
	return t.tracer.Start(ctx, "store."+t.name+"."+op, trace.WithAttributes(attrs...))
}

func (t *table[T, F, R]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	ctx, span := t.start(ctx, "find_by_id", attribute.String("entity.id", id.String()))
	defer span.End()

	query, args, err := dialect.From(t.name).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.name, err)
	}
	return t.get(ctx, query, args)
}

// FindOne returns the earliest stored match when several rows qualify.
func (t *table[T, F, R]) FindOne(ctx context.Context, filter F) (*T, error) {
	ctx, span := t.start(ctx, "find_one")
	defer span.End()

	ds := dialect.From(t.name).Where(t.where(filter)...).Limit(1)
	if col, ok := t.sorts[model.SortByCreatedAt]; ok {
		ds = ds.Order(goqu.I(col).Asc())
	} else if col, ok := t.sorts[model.SortByRequestedAt]; ok {
		ds = ds.Order(goqu.I(col).Asc())
	}
	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.name, err)
	}
	return t.get(ctx, query, args)
}

func (t *table[T, F, R]) get(ctx context.Context, query string, args []any) (*T, error) {
	row := new(R)
	if err := t.db.GetContext(ctx, row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}
	return t.fromRow(row), nil
}

func (t *table[T, F, R]) Find(ctx context.Context, filter F, sort model.Sort) ([]*T, error) {
	ctx, span := t.start(ctx, "find", attribute.String("sort.field", sort.Field), attribute.Bool("sort.desc", sort.Desc))
	defer span.End()

	ds := dialect.From(t.name).Where(t.where(filter)...)
	if sort.Field != "" {
		col, ok := t.sorts[sort.Field]
		if !ok {
			return nil, store.ErrUnsupportedSort
		}
		order := goqu.I(col).Asc().NullsLast()
		if sort.Desc {
			order = goqu.I(col).Desc().NullsLast()
		}
		ds = ds.Order(order, goqu.I("id").Asc())
	}

	query, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.name, err)
	}

	var rows []R
	if err := t.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query %s: %w", t.name, err)
	}

	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = t.fromRow(&rows[i])
	}
	span.SetAttributes(attribute.Int("rows.loaded", len(out)))
	return out, nil
}

func (t *table[T, F, R]) Insert(ctx context.Context, entity *T) error {
	ctx, span := t.start(ctx, "insert", attribute.String("entity.id", t.id(entity).String()))
	defer span.End()

	query, args, err := dialect.Insert(t.name).Rows(t.toRow(entity)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build %s insert: %w", t.name, err)
	}
	if _, err := t.db.ExecContext(ctx, query, args...); err != nil {
		return t.mapWriteErr(err)
	}
	return nil
}

func (t *table[T, F, R]) Save(ctx context.Context, entity *T) error {
	id := t.id(entity)
	ctx, span := t.start(ctx, "save", attribute.String("entity.id", id.String()))
	defer span.End()

	query, args, err := dialect.Update(t.name).Set(t.toRow(entity)).Where(goqu.C("id").Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("build %s update: %w", t.name, err)
	}
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return t.mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", t.name, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *table[T, F, R]) DeleteMany(ctx context.Context, filter F) (int64, error) {
	ctx, span := t.start(ctx, "delete_many")
	defer span.End()

	where := t.where(filter)
	if len(where) == 0 {
		return 0, store.ErrEmptyFilter
	}

	query, args, err := dialect.Delete(t.name).Where(where...).Prepared(true).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build %s delete: %w", t.name, err)
	}
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", t.name, err)
	}
	span.SetAttributes(attribute.Int64("rows.deleted", n))
	return n, nil
}

func (t *table[T, F, R]) mapWriteErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return fmt.Errorf("write %s: %w", t.name, err)
}
