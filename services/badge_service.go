package services

import (
	"context"
	"log"
	"sync"
	"time"

	"hotel-booking/models"
	"hotel-booking/store"
)

// BadgeService is the unread-ticket counter shared by the navigation bar
// and the order screen. It is an explicit observable owned by the
// application wiring and injected where needed, not ambient state: watchers
// are pushed a fresh count on every ledger change and on a refresh tick.
type BadgeService struct {
	ledger *LedgerService

	mu       sync.Mutex
	lastSeen map[string]time.Time
	watchers map[string]map[int]func(int)
	feeds    map[string]store.Unsubscribe
	nextID   int
}

func NewBadgeService(ledger *LedgerService) *BadgeService {
	return &BadgeService{
		ledger:   ledger,
		lastSeen: make(map[string]time.Time),
		watchers: make(map[string]map[int]func(int)),
		feeds:    make(map[string]store.Unsubscribe),
	}
}

// Unread counts the owner's tickets issued since they last opened the order
// screen.
func (b *BadgeService) Unread(ctx context.Context, ownerID string) (int, error) {
	tickets, err := b.ledger.ListTickets(ctx, ownerID)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	seen := b.lastSeen[ownerID]
	b.mu.Unlock()

	return countUnread(tickets, seen), nil
}

// MarkSeen resets the owner's badge, as navigating to the order screen does.
func (b *BadgeService) MarkSeen(ownerID string) {
	b.mu.Lock()
	b.lastSeen[ownerID] = time.Now()
	b.mu.Unlock()
}

// Watch pushes the owner's unread count to fn now and on every ledger
// change. The first watcher per owner opens the underlying ledger
// subscription; the last one leaving closes it.
func (b *BadgeService) Watch(ctx context.Context, ownerID string, fn func(int)) (func(), error) {
	b.mu.Lock()
	if b.watchers[ownerID] == nil {
		b.watchers[ownerID] = make(map[int]func(int))
	}
	b.nextID++
	id := b.nextID
	b.watchers[ownerID][id] = fn
	needsFeed := b.feeds[ownerID] == nil
	b.mu.Unlock()

	if needsFeed {
		unsub, err := b.ledger.Subscribe(ctx, ownerID, func(tickets []models.Ticket) {
			b.push(ownerID, tickets)
		})
		if err != nil {
			b.mu.Lock()
			delete(b.watchers[ownerID], id)
			b.mu.Unlock()
			return nil, err
		}

		b.mu.Lock()
		if b.feeds[ownerID] == nil {
			b.feeds[ownerID] = unsub
			unsub = nil
		}
		b.mu.Unlock()

		// A concurrent first watcher already installed a feed; release
		// the duplicate subscription instead of leaking it.
		if unsub != nil {
			unsub()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers[ownerID], id)
			var unsub store.Unsubscribe
			if len(b.watchers[ownerID]) == 0 {
				unsub = b.feeds[ownerID]
				delete(b.feeds, ownerID)
			}
			b.mu.Unlock()

			if unsub != nil {
				unsub()
			}
		})
	}, nil
}

// RefreshLoop re-pushes counts for all watched owners on a timer, covering
// lastSeen changes that happen without a ledger write.
func (b *BadgeService) RefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ownerID := range b.watchedOwners() {
				tickets, err := b.ledger.ListTickets(ctx, ownerID)
				if err != nil {
					log.Printf("Error refreshing badge for %s: %v", ownerID, err)
					continue
				}
				b.push(ownerID, tickets)
			}
		}
	}
}

func (b *BadgeService) push(ownerID string, tickets []models.Ticket) {
	b.mu.Lock()
	seen := b.lastSeen[ownerID]
	fns := make([]func(int), 0, len(b.watchers[ownerID]))
	for _, fn := range b.watchers[ownerID] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	count := countUnread(tickets, seen)
	for _, fn := range fns {
		fn(count)
	}
}

func (b *BadgeService) watchedOwners() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	owners := make([]string, 0, len(b.watchers))
	for ownerID, fns := range b.watchers {
		if len(fns) > 0 {
			owners = append(owners, ownerID)
		}
	}
	return owners
}

func countUnread(tickets []models.Ticket, seen time.Time) int {
	count := 0
	for _, ticket := range tickets {
		if ticket.CreatedAt.After(seen) {
			count++
		}
	}
	return count
}
