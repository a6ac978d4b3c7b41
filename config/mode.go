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

import "strings"

// EnvExecutionMode selects the execution mode.
const EnvExecutionMode = "NODE_ENV"

// Mode is the execution mode. It controls query log verbosity and whether a
// client is retained across provider re-creation.
type Mode int

const (
	ModeOther Mode = iota
	ModeDevelopment
	ModeProduction
)

// ParseMode maps "development" and "production" to their modes; anything
// else, including the empty string, is ModeOther.
func ParseMode(s string) Mode {
	switch strings.TrimSpace(s) {
	case "development":
		return ModeDevelopment
	case "production":
		return ModeProduction
	default:
		return ModeOther
	}
}

// ModeFrom reads NODE_ENV from the snapshot.
func ModeFrom(env Env) Mode {
	return ParseMode(env.Get(EnvExecutionMode))
}

func (m Mode) IsDevelopment() bool { return m == ModeDevelopment }

func (m Mode) IsProduction() bool { return m == ModeProduction }

func (m Mode) String() string {
	switch m {
	case ModeDevelopment:
		return "development"
	case ModeProduction:
		return "production"
	default:
		return "other"
	}
}
