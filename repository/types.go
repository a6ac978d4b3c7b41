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

	"github.com/tomoncle/pgclient/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Repository is a generic data-access object for one Bun model type.
// A repository runs against a *bun.DB, or against a bun.Tx once bound
// through WithTx or RunInTx.
type Repository[T any] interface {
	// Get returns the entity whose id column equals id.
	Get(ctx context.Context, id any) (*T, error)

	All(ctx context.Context) ([]*T, error)

	// List returns entities matching filter; a nil filter returns all.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Query runs a raw SQL query and scans rows into entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Page(ctx context.Context, req *types.PageRequest) (*types.Pagination[T], error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	Create(ctx context.Context, entity ...*T) error

	// Upsert inserts entities, updating fields when duplicateKeys conflict.
	// duplicateKeys defaults to "id" and is ignored by MySQL, which resolves
	// conflicts on any unique key.
	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	// Update writes entity by primary key.
	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error

	// WithTx returns a repository bound to tx.
	WithTx(tx bun.Tx) Repository[T]

	// RunInTx runs fn with a transaction-bound repository, committing when
	// fn returns nil and rolling back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error

	DB() bun.IDB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
