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

// Package pgclient bootstraps a pooled Bun database client from the process
// environment and exposes the ORM surface a host application needs.
//
// A typical host keeps one Slot for the lifetime of the process and builds a
// Provider on every (re)load:
//
//	slot := pgclient.NewSlot()
//	client, err := pgclient.Connect(ctx, config.Environ(), slot)
//	...
//	defer slot.Close()
package pgclient

import (
	"context"

	"github.com/tomoncle/pgclient/config"
	"github.com/tomoncle/pgclient/database"
	"github.com/uptrace/bun"
)

type (
	DB        = bun.DB
	Tx        = bun.Tx
	IDB       = bun.IDB
	BaseModel = bun.BaseModel
	Ident     = bun.Ident
	Safe      = bun.Safe

	Client   = database.Client
	Provider = database.Provider
	Slot     = database.Slot
)

// NewSlot returns an empty holder for retaining a client across reloads.
func NewSlot() *Slot {
	return database.NewSlot()
}

// Connect resolves the connection string and execution mode from env and
// returns the client held by slot, opening one when the slot is empty.
// A nil slot disables retention.
func Connect(ctx context.Context, env config.Env, slot *Slot) (*Client, error) {
	return database.NewProviderFromEnv(env, slot).Client(ctx)
}
