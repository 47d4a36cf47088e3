/*
Copyright 2019 Authors of OSM Autoscaler.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/interfaces/store"
	"github.com/5GinFIRE/osm-autoscaler/metrics-manager/pkg/common-lib/types"

	"github.com/go-redis/redis/v8"
)

type Goredis struct {
	client *redis.Client
}

// Initialize Redis Client and check the server is reachable
//
func NewRedisClient(ctx context.Context, addr string, db int) (*Goredis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     100,
		PoolTimeout:  30 * time.Second,
		IdleTimeout:  10 * time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		Password:     "", //no password set
		DB:           db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return &Goredis{
		client: client,
	}, nil
}

func descriptorKey(key types.GroupKey) string {
	return fmt.Sprintf("%s:%s:%d", store.Preserve_Descriptor_KeyPrefix, key.NsId, key.VnfMemberIndex)
}

// Use Redis data type - String to store a descriptor name, without expiry
//
func (gr *Goredis) PersistDescriptor(ctx context.Context, key types.GroupKey, descriptorName string) error {
	if len(key.NsId) == 0 || len(descriptorName) == 0 {
		return fmt.Errorf("the ns id or descriptor name is blank")
	}

	err := gr.client.Set(ctx, descriptorKey(key), descriptorName, 0).Err()
	if err != nil {
		klog.Errorf("Error to persist descriptor of %v to Redis Store. error %v", key, err)
		return err
	}

	return nil
}

func (gr *Goredis) GetDescriptor(ctx context.Context, key types.GroupKey) (string, bool, error) {
	value, err := gr.client.Get(ctx, descriptorKey(key)).Result()

	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		klog.Errorf("Error to get descriptor of %v from Redis Store. error %v", key, err)
		return "", false, err
	}

	return value, true, nil
}

func (gr *Goredis) Close() error {
	return gr.client.Close()
}

var _ store.DescriptorStore = (*Goredis)(nil)
