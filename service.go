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

package pgclient

import (
	"context"

	"github.com/tomoncle/pgclient/database"
	"github.com/tomoncle/pgclient/repository"
	"github.com/tomoncle/pgclient/types"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Query executes a raw query and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	Update(ctx context.Context, model *T) error

	Delete(ctx context.Context, id any) error

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// WithTx returns a service whose operations run inside tx.
	WithTx(tx bun.Tx) Service[T]

	// Transaction runs fn inside a transaction that is committed when fn
	// returns nil.
	Transaction(ctx context.Context, fn func(ctx context.Context, svc Service[T]) error) error

	SelectBuilder() *bun.SelectQuery
	InsertBuilder() *bun.InsertQuery
	UpdateBuilder() *bun.UpdateQuery
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
}

// NewService returns a Service for T backed by client's Bun handle.
func NewService[T any](client *database.Client) Service[T] {
	return NewServiceFor[T](client.DB())
}

// NewServiceFor returns a Service for T running on any Bun handle,
// including a transaction.
func NewServiceFor[T any](db bun.IDB) Service[T] {
	return &baseServiceImpl[T]{repo: repository.NewRepository[T](db)}
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.repo.Create(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.repo.Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.repo.Get(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.repo.All(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.repo.List(ctx, filter)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return s.repo.Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T) error {
	return s.repo.Update(ctx, model)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.repo.Delete(ctx, id)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo.Page(ctx, page)
}

func (s *baseServiceImpl[T]) WithTx(tx bun.Tx) Service[T] {
	return &baseServiceImpl[T]{repo: s.repo.WithTx(tx)}
}

func (s *baseServiceImpl[T]) Transaction(ctx context.Context, fn func(ctx context.Context, svc Service[T]) error) error {
	return s.repo.RunInTx(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		return fn(ctx, &baseServiceImpl[T]{repo: repo})
	})
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.repo.NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.repo.NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.repo.NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.repo.NewDelete()
}
