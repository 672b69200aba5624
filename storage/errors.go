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


package storage

import "errors"

var (
	// ErrNotFound indicates that the requested key was not found.
	ErrNotFound = errors.New("key not found")

	// ErrStoreIO indicates that the underlying store failed to open or read.
	ErrStoreIO = errors.New("store i/o failure")

	// ErrFormat indicates stored bytes that cannot be decoded, such as a value
	// blob whose length is not a multiple of the record width.
	ErrFormat = errors.New("malformed dictionary data")

	// ErrIdentifierTooLong indicates an identifier wider than its record field.
	ErrIdentifierTooLong = errors.New("identifier exceeds record field width")

	// ErrReadOnly indicates a write against a store opened read-only.
	ErrReadOnly = errors.New("store is read-only")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrUnknownTable indicates a table name the store does not know.
	ErrUnknownTable = errors.New("unknown table")
)
