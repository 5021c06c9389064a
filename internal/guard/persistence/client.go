// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package persistence

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// GoRedisAdapter wraps a *redis.Client (github.com/redis/go-redis/v9) to
// satisfy RedisPusher, so RedisSink never depends on the concrete client
// type directly.
type GoRedisAdapter struct {
	client *redis.Client
}

// NewGoRedisAdapter wraps client for use as a RedisSink backend.
func NewGoRedisAdapter(client *redis.Client) *GoRedisAdapter {
	return &GoRedisAdapter{client: client}
}

func (a *GoRedisAdapter) LPush(ctx context.Context, key string, values ...interface{}) error {
	return a.client.LPush(ctx, key, values...).Err()
}

func (a *GoRedisAdapter) LTrim(ctx context.Context, key string, start, stop int64) error {
	return a.client.LTrim(ctx, key, start, stop).Err()
}
