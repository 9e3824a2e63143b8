/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package games

import (
	"errors"

	"mapleprep/internal/domain"
)

var (
	ErrNoItem   = errors.New("item is not in the pool")
	ErrNoBucket = errors.New("no such bucket")
)

// Sorting feedback lines.
const (
	SortCorrect = "Correct!"
	SortWrong   = "Not quite! Try the other side."
)

// Sorting drops items into one of two category buckets. Items dropped in
// the wrong bucket stay in the pool.
type Sorting struct {
	categories []string
	pool       []domain.SortingItem
	buckets    [][]domain.SortingItem
	score      int
	mistakes   int
	feedback   string
}

// NewSorting requires two named categories and at least one item per
// category.
func NewSorting(data domain.SortingGameData) (*Sorting, error) {
	if len(data.Categories) != 2 {
		return nil, loadErr(NameSorting, "need 2 categories, got %d", len(data.Categories))
	}
	for i, c := range data.Categories {
		if c == "" {
			return nil, loadErr(NameSorting, "category %d has no name", i)
		}
	}
	seen := make(map[string]bool, len(data.Items))
	per := make([]int, len(data.Categories))
	for i, it := range data.Items {
		if it.ID == "" || it.Text == "" {
			return nil, loadErr(NameSorting, "item %d is incomplete", i)
		}
		if seen[it.ID] {
			return nil, loadErr(NameSorting, "duplicate item id %q", it.ID)
		}
		if it.CategoryIndex < 0 || it.CategoryIndex >= len(data.Categories) {
			return nil, loadErr(NameSorting, "item %q has category %d", it.ID, it.CategoryIndex)
		}
		seen[it.ID] = true
		per[it.CategoryIndex]++
	}
	for i, n := range per {
		if n == 0 {
			return nil, loadErr(NameSorting, "category %q has no items", data.Categories[i])
		}
	}
	return &Sorting{
		categories: append([]string(nil), data.Categories...),
		pool:       append([]domain.SortingItem(nil), data.Items...),
		buckets:    make([][]domain.SortingItem, len(data.Categories)),
	}, nil
}

// Drop places the pool item itemID into bucket. It reports whether the
// bucket was the item's category; a wrong drop leaves the item in place.
func (s *Sorting) Drop(itemID string, bucket int) (bool, error) {
	if bucket < 0 || bucket >= len(s.buckets) {
		return false, ErrNoBucket
	}
	idx := -1
	for i, it := range s.pool {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, ErrNoItem
	}
	it := s.pool[idx]
	if it.CategoryIndex != bucket {
		s.mistakes++
		s.feedback = SortWrong
		return false, nil
	}
	s.pool = append(s.pool[:idx], s.pool[idx+1:]...)
	s.buckets[bucket] = append(s.buckets[bucket], it)
	s.score++
	s.feedback = SortCorrect
	return true, nil
}

// Next returns the item on top of the pool.
func (s *Sorting) Next() (domain.SortingItem, bool) {
	if len(s.pool) == 0 {
		return domain.SortingItem{}, false
	}
	return s.pool[0], true
}

func (s *Sorting) Categories() []string { return append([]string(nil), s.categories...) }

// Bucket returns the items sorted into bucket i.
func (s *Sorting) Bucket(i int) []domain.SortingItem {
	if i < 0 || i >= len(s.buckets) {
		return nil
	}
	return append([]domain.SortingItem(nil), s.buckets[i]...)
}

func (s *Sorting) Remaining() int   { return len(s.pool) }
func (s *Sorting) Score() int       { return s.score }
func (s *Sorting) Mistakes() int    { return s.mistakes }
func (s *Sorting) Feedback() string { return s.feedback }
func (s *Sorting) Done() bool       { return len(s.pool) == 0 }
