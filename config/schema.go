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

package config

import (
	"encoding/json"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvSchemaPath overrides the schema file location.
const EnvSchemaPath = "SCHEMA_PATH"

// DefaultSchemaPath is where the schema toolchain expects the built schema.
var DefaultSchemaPath = filepath.Join("dist", "schema.prisma")

// Datasource points the schema toolchain at a database.
type Datasource struct {
	URL string `json:"url" yaml:"url"`
}

// SchemaConfig is handed to the schema/migration toolchain.
type SchemaConfig struct {
	Schema     string     `json:"schema" yaml:"schema"`
	Datasource Datasource `json:"datasource" yaml:"datasource"`
}

// NewSchemaConfig builds the toolchain config from the snapshot, using the
// same URL precedence as the runtime client.
func NewSchemaConfig(env Env) SchemaConfig {
	schema := env.Get(EnvSchemaPath)
	if schema == "" {
		schema = DefaultSchemaPath
	}
	return SchemaConfig{
		Schema:     schema,
		Datasource: Datasource{URL: DatabaseURL(env)},
	}
}

// Redacted returns a copy with the datasource password masked.
func (c SchemaConfig) Redacted() SchemaConfig {
	c.Datasource.URL = RedactURL(c.Datasource.URL)
	return c
}

func (c SchemaConfig) YAML() ([]byte, error) {
	return yaml.Marshal(&c)
}

func (c SchemaConfig) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
