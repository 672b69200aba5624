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


// Package dictionary provides read access to a precompiled concept dictionary.
//
// A dictionary lives in a storage.Store and consists of:
//   - The term store, mapping term strings to stable integer ids
//   - The exact phrase index, keyed by surface text
//   - The lowercase phrase index, keyed by lower-cased surface text
//   - The norms index, keyed by encoded term bags
//   - The source registry, mapping source ids to vocabulary names
//
// TermStore and Dictionary are immutable once opened and safe for any number
// of concurrent readers. Lookups distinguish "no entry" (a nil result) from
// store failures, which are returned as errors wrapping storage.ErrStoreIO or
// storage.ErrFormat.
//
// The Builder writes prepared entries into a writable store. It is used to
// produce fixtures and to load dictionaries that were prepared elsewhere.
package dictionary
