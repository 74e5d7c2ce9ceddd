/*
 * Copyright (c) 2025, Brokkr Project (https://github.com/brokkr-id).
 *
 * Brokkr Project licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import "sync"

// BrokkrRuntime holds the runtime configuration for the Brokkr server.
type BrokkrRuntime struct {
	BrokkrHome string `yaml:"brokkr_home"`
	Config     Config `yaml:"config"`
}

var (
	runtimeConfig *BrokkrRuntime
	once          sync.Once
)

// InitializeBrokkrRuntime initializes the BrokkrRuntime configuration.
func InitializeBrokkrRuntime(brokkrHome string, config *Config) error {
	once.Do(func() {
		runtimeConfig = &BrokkrRuntime{
			BrokkrHome: brokkrHome,
			Config:     *config,
		}
	})

	return nil
}

// GetBrokkrRuntime returns the BrokkrRuntime configuration.
func GetBrokkrRuntime() *BrokkrRuntime {
	if runtimeConfig == nil {
		panic("BrokkrRuntime is not initialized")
	}
	return runtimeConfig
}

// ResetBrokkrRuntime resets the BrokkrRuntime.
// This should only be used in tests to reset the singleton state.
func ResetBrokkrRuntime() {
	runtimeConfig = nil
	once = sync.Once{}
}
