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
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/pgclient/config"
	"github.com/tomoncle/pgclient/types"
)

type SystemConfig struct {
	BaseModel `bun:"table:system_config,alias:sc"`

	ID          int64  `bun:"id,pk,autoincrement" json:"id"`
	ConfigKey   string `bun:"config_key,notnull,unique" json:"config_key"`
	ConfigValue string `bun:"config_value" json:"config_value"`
}

func testEnv(t *testing.T) config.Env {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return config.EnvFrom(map[string]string{
		config.EnvDatabaseURL:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		config.EnvExecutionMode: "test",
		"DB_LAZY_CONNECT":       "false",
	})
}

func connectService(t *testing.T) Service[SystemConfig] {
	t.Helper()
	ctx := context.Background()
	client, err := Connect(ctx, testEnv(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	_, err = client.DB().NewCreateTable().Model((*SystemConfig)(nil)).Exec(ctx)
	require.NoError(t, err)
	return NewService[SystemConfig](client)
}

func TestConnectSharesClientThroughSlot(t *testing.T) {
	ctx := context.Background()
	slot := NewSlot()
	env := testEnv(t)

	first, err := Connect(ctx, env, slot)
	require.NoError(t, err)
	defer func() { _ = slot.Close() }()

	second, err := Connect(ctx, env, slot)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, slot.Load())
}

func TestServiceSaveAndQuery(t *testing.T) {
	ctx := context.Background()
	svc := connectService(t)

	require.NoError(t, svc.Save(ctx,
		&SystemConfig{ConfigKey: "site.name", ConfigValue: "pgclient"},
		&SystemConfig{ConfigKey: "site.lang", ConfigValue: "en"},
	))

	list, err := svc.List(ctx, types.NewQueryFilter("config_key LIKE ?", "site.%"))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	var row SystemConfig
	err = svc.SelectBuilder().Where("config_key = ?", "site.lang").Scan(ctx, &row)
	require.NoError(t, err)
	assert.Equal(t, "en", row.ConfigValue)

	page, err := svc.Page(ctx, types.NewPageRequest(1, 1, nil, "id DESC"))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "site.lang", page.Items[0].ConfigKey)
}

func TestServiceTransaction(t *testing.T) {
	ctx := context.Background()
	svc := connectService(t)

	rollback := errors.New("rollback")
	err := svc.Transaction(ctx, func(ctx context.Context, tx Service[SystemConfig]) error {
		if err := tx.Save(ctx, &SystemConfig{ConfigKey: "tmp"}); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	count, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}
