// Copyright 2024 The planboard authors
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

package internal

import (
	"sync"

	"github.com/goccy/go-json"
	"github.com/open-planboard/planboard/pkg/datamodel"
	"go.uber.org/zap"
)

// ChangeFeedChannel is the redis pub/sub channel carrying one ChangeEvent per
// successful mutation. Connected clients and other API instances subscribe to
// it to keep their caches eventually consistent; delivery is at-most-once and
// cache TTLs bound the staleness when an event is missed.
const ChangeFeedChannel = "planboard:changes"

var changeHandlersLock sync.RWMutex
var changeHandlers []func(datamodel.ChangeEvent)
var subscriberStarted bool

// OnChange registers a handler that runs for every change event, local or
// remote. Handlers must be fast; they run on the feed dispatch goroutine.
func OnChange(handler func(datamodel.ChangeEvent)) {
	changeHandlersLock.Lock()
	defer changeHandlersLock.Unlock()
	changeHandlers = append(changeHandlers, handler)
}

// PublishChange announces a mutation on the change feed. Without redis the
// event is dispatched to local handlers only, so a single-instance deployment
// still invalidates its caches.
func PublishChange(event datamodel.ChangeEvent) {
	if !redisInitialized {
		dispatchChange(event)
		return
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		zap.S().Errorf("Failed to encode change event for %s %d: %s", event.Entity, event.Id, err)
		return
	}

	err = rdb.Publish(ctx, ChangeFeedChannel, encoded).Err()
	if err != nil {
		zap.S().Warnf("Failed to publish change event for %s %d: %s", event.Entity, event.Id, err)
		// the local handlers still need to run, otherwise our own cache goes stale
		dispatchChange(event)
	}
}

// StartChangeFeedSubscriber starts the dispatch goroutine for remote change
// events. Safe to call once during startup; a no-op without redis because
// PublishChange already dispatches locally.
func StartChangeFeedSubscriber() {
	if !redisInitialized || subscriberStarted {
		return
	}
	subscriberStarted = true

	pubsub := rdb.Subscribe(ctx, ChangeFeedChannel)
	go func() {
		for message := range pubsub.Channel() {
			var event datamodel.ChangeEvent
			err := json.Unmarshal([]byte(message.Payload), &event)
			if err != nil {
				zap.S().Warnf("Dropping malformed change event: %s", err)
				continue
			}
			dispatchChange(event)
		}
	}()
}

func dispatchChange(event datamodel.ChangeEvent) {
	changeHandlersLock.RLock()
	defer changeHandlersLock.RUnlock()
	for _, handler := range changeHandlers {
		handler(event)
	}
}
