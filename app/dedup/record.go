package dedup

import "sync"

// Record maps a feed URL to the entry IDs already processed for that feed.
// Each feed keeps its IDs in insertion order so the oldest can be evicted
// once the per-feed cap is reached.
type Record struct {
	mu             sync.RWMutex
	feeds          map[string]*seenList
	maxSeenPerFeed int
}

type seenList struct {
	order []string
	index map[string]struct{}
}

// NewRecord creates an empty record. maxSeenPerFeed <= 0 disables eviction.
func NewRecord(maxSeenPerFeed int) *Record {
	return &Record{
		feeds:          make(map[string]*seenList),
		maxSeenPerFeed: maxSeenPerFeed,
	}
}

// FromMap builds a record from the serialized form, dropping duplicate IDs
// and applying the eviction cap.
func FromMap(data map[string][]string, maxSeenPerFeed int) *Record {
	r := NewRecord(maxSeenPerFeed)
	for feedURL, ids := range data {
		for _, id := range ids {
			r.markSeen(feedURL, id)
		}
	}
	return r
}

func (r *Record) Seen(feedURL, entryID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.feeds[feedURL]
	if !ok {
		return false
	}
	_, ok = list.index[entryID]
	return ok
}

// MarkSeen inserts entryID for feedURL. Repeated calls are no-ops.
func (r *Record) MarkSeen(feedURL, entryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markSeen(feedURL, entryID)
}

func (r *Record) markSeen(feedURL, entryID string) {
	list, ok := r.feeds[feedURL]
	if !ok {
		list = &seenList{index: make(map[string]struct{})}
		r.feeds[feedURL] = list
	}

	if _, exists := list.index[entryID]; exists {
		return
	}

	list.order = append(list.order, entryID)
	list.index[entryID] = struct{}{}

	if r.maxSeenPerFeed > 0 && len(list.order) > r.maxSeenPerFeed {
		evict := len(list.order) - r.maxSeenPerFeed
		for _, id := range list.order[:evict] {
			delete(list.index, id)
		}
		list.order = append([]string(nil), list.order[evict:]...)
	}
}

// ToMap returns a copy of the record in its serialized form.
func (r *Record) ToMap() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := make(map[string][]string, len(r.feeds))
	for feedURL, list := range r.feeds {
		data[feedURL] = append([]string{}, list.order...)
	}
	return data
}

// Len returns the number of IDs stored for feedURL.
func (r *Record) Len(feedURL string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list, ok := r.feeds[feedURL]; ok {
		return len(list.order)
	}
	return 0
}

// Total returns the number of IDs stored across all feeds.
func (r *Record) Total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, list := range r.feeds {
		total += len(list.order)
	}
	return total
}

func (r *Record) FeedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feeds)
}

func (r *Record) MaxSeenPerFeed() int {
	return r.maxSeenPerFeed
}
