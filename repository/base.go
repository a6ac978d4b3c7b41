/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomoncle/pgclient/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type bunRepository[T any] struct {
	db bun.IDB
}

// NewRepository returns a repository for T running on db.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &bunRepository[T]{db: db}
}

func (r *bunRepository[T]) DB() bun.IDB { return r.db }

func (r *bunRepository[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *bunRepository[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect().Model((*T)(nil)) }

func (r *bunRepository[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *bunRepository[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *bunRepository[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *bunRepository[T]) WithTx(tx bun.Tx) Repository[T] {
	return &bunRepository[T]{db: tx}
}

func (r *bunRepository[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.WithTx(tx))
	})
}

func (r *bunRepository[T]) Get(ctx context.Context, id any) (*T, error) {
	entity := new(T)
	if err := r.db.NewSelect().Model(entity).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *bunRepository[T]) All(ctx context.Context) ([]*T, error) {
	return r.List(ctx, nil)
}

func (r *bunRepository[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	if err := applyFilter(r.db.NewSelect().Model(&entities), filter).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *bunRepository[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	entities := make([]*T, 0)
	if err := r.db.NewRaw(query, args...).Scan(ctx, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *bunRepository[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return applyFilter(r.db.NewSelect().Model((*T)(nil)), filter).Count(ctx)
}

func (r *bunRepository[T]) Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error) {
	if req == nil {
		req = types.NewPageRequest(1, types.DefaultPageSize, nil)
	}
	pagination := types.NewPagination[T](req)

	total, err := r.Count(ctx, req.GetFilter())
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}

	entities := make([]*T, 0, req.GetPageSize())
	err = applyFilter(r.db.NewSelect().Model(&entities), req.GetFilter()).
		Order(req.GetOrders()...).
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *bunRepository[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	_, err := r.db.NewInsert().Model(&entity).Exec(ctx)
	return err
}

func (r *bunRepository[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *bunRepository[T]) Delete(ctx context.Context, id any) error {
	_, err := r.db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *bunRepository[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}

	features := r.db.Dialect().Features()
	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, fields, duplicateKeys, entity)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, fields, entity)
	default:
		return r.upsertFallback(ctx, entity)
	}
}

// postgres and sqlite
func (r *bunRepository[T]) upsertOnConflict(ctx context.Context, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{"id"}
	}
	keys := make([]string, len(duplicateKeys))
	for i, key := range duplicateKeys {
		keys[i] = string(dialect.AppendIdent(nil, key, r.db.Dialect().IdentQuote()))
	}

	query := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE")
	for _, field := range fields {
		query = query.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *bunRepository[T]) upsertOnDuplicateKey(ctx context.Context, fields []string, entities []*T) error {
	query := r.db.NewInsert().
		Model(&entities).
		On("DUPLICATE KEY UPDATE")
	for _, field := range fields {
		query = query.Set("? = VALUES(?)", bun.Ident(field), bun.Ident(field))
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *bunRepository[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}

func applyFilter(query *bun.SelectQuery, filter *types.QueryFilter) *bun.SelectQuery {
	if filter == nil || filter.Schema == "" {
		return query
	}
	return query.Where(filter.Schema, filter.Args...)
}
