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


// Package storage provides the storage abstraction layer for conceptmatch.
//
// The dictionary is a set of read-only byte-keyed tables. This package defines
// the Store capability the dictionary is written against, so the physical
// storage engine can change without touching the matching algorithm:
//
//	backend, err := badger.OpenBackend("/path/to/dictionary", badger.ReadOnly())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Tables
//
//   - phrases: exact surface phrase -> packed concept records
//   - lowercase: lower-cased phrase -> packed concept records
//   - norms: encoded term bag -> packed concept records
//   - terms: term string -> 4-byte big-endian term id
//   - sources: 4-byte big-endian source id -> source name
//   - meta: record layout and other build metadata
//
// # Serialization
//
// Concept records are fixed width: three NUL-padded identifier fields whose
// widths are described by a RecordLayout, followed by a 4-byte big-endian
// source id. A value is a back-to-back run of records with no length prefix.
// Source names and the layout itself are encoded with mus-go.
//
// # Errors
//
// A missing key is reported as ErrNotFound and is ordinary control flow.
// ErrStoreIO and ErrFormat are fatal for the document being processed.
//
// # Thread Safety
//
// Store implementations must support unlimited concurrent readers.
package storage
