package notify

import (
	"sync"
	"time"
)

// DeDup registers dates reminders sent for, in order to prevent sending them twice a day.
// Only the last registered date is kept.
type DeDup struct {
	sent    map[string]time.Time
	lock    sync.Mutex
	enabled bool
}

// NewDeDup creates DeDup, disabled one passes every date
func NewDeDup(enabled bool) *DeDup {
	return &DeDup{sent: make(map[string]time.Time), enabled: enabled}
}

// Add date to the map, fail if already in
func (d *DeDup) Add(date string) bool {
	if !d.enabled {
		return true
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	if _, found := d.sent[date]; found {
		return false
	}
	clear(d.sent)
	d.sent[date] = time.Now()
	return true
}

// Remove date from the map, i.e. after failed send. Safe to call multiple times
func (d *DeDup) Remove(date string) {
	if !d.enabled {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	delete(d.sent, date)
}
