// go-mfrc522
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package attendance

// DefaultCapacity is the number of cards remembered by a Cache.
const DefaultCapacity = 16

// Entry is the local state kept for one card.
type Entry struct {
	UID  string
	Name string
	Next Direction
	used bool
}

func (e *Entry) reset(uid string) {
	e.UID = uid
	e.Name = ""
	e.Next = DirectionEntry
	e.used = true
}

// EvictionPolicy picks the slot to overwrite when every slot is in use.
type EvictionPolicy interface {
	Victim(entries []*Entry) int
}

// FirstSlot always evicts slot 0.
type FirstSlot struct{}

// Victim implements EvictionPolicy.
func (FirstSlot) Victim([]*Entry) int { return 0 }

// Cache is a fixed size table of card entries with linear lookup.
// It is owned by a single goroutine and is not safe for concurrent use.
type Cache struct {
	policy  EvictionPolicy
	entries []*Entry
}

// NewCache creates a cache with the given number of slots. A capacity below 1
// uses DefaultCapacity and a nil policy uses FirstSlot.
func NewCache(capacity int, policy EvictionPolicy) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if policy == nil {
		policy = FirstSlot{}
	}
	entries := make([]*Entry, capacity)
	for i := range entries {
		entries[i] = &Entry{}
	}
	return &Cache{policy: policy, entries: entries}
}

// LookupOrCreate returns the entry for uid, claiming a free slot for a new
// card. When the table is full the policy's victim is overwritten in place.
// A new or overwritten entry has an empty Name and Next set to entry.
func (c *Cache) LookupOrCreate(uid string) *Entry {
	for _, e := range c.entries {
		if e.used && e.UID == uid {
			return e
		}
	}
	for _, e := range c.entries {
		if !e.used {
			e.reset(uid)
			return e
		}
	}

	victim := c.policy.Victim(c.entries)
	if victim < 0 || victim >= len(c.entries) {
		victim = 0
	}
	e := c.entries[victim]
	e.reset(uid)
	return e
}

// Slot returns the entry stored in slot i, or nil if the slot is free or out of range.
func (c *Cache) Slot(i int) *Entry {
	if i < 0 || i >= len(c.entries) || !c.entries[i].used {
		return nil
	}
	return c.entries[i]
}

// Len returns the number of slots in use.
func (c *Cache) Len() int {
	n := 0
	for _, e := range c.entries {
		if e.used {
			n++
		}
	}
	return n
}

// Capacity returns the number of slots.
func (c *Cache) Capacity() int {
	return len(c.entries)
}
