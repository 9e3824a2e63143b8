/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the lesson library as a small key/value store.
// Each key holds one JSON table. Backends: FileKV (one file per key with
// transactional writes and timestamped backups), SQLiteKV (embedded
// database with a full-text lesson index, revisions and a thumbnail cache)
// and MemoryKV for tests. Quota caps the total stored size.
package storage
