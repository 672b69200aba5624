// Copyright 2025 Poiesic Systems
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


package badger

import "github.com/poiesic/conceptmatch/storage"

// NewMemoryBackend creates a writable in-memory backend for testing.
// Caller must close the backend when done.
func NewMemoryBackend() (*Backend, error) {
	return OpenBackend("", InMemory())
}

// Populate writes entries into table of a writable backend and flushes them.
// It is intended for test fixtures.
func Populate(b *Backend, table storage.Table, entries map[string][]byte) error {
	w, err := b.NewWriter()
	if err != nil {
		return err
	}
	for key, value := range entries {
		if err := w.Put(table, []byte(key), value); err != nil {
			w.Cancel()
			return err
		}
	}
	return w.Flush()
}
