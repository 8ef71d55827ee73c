package database

import (
	"errors"
	"sync"
	"time"

	"github.com/koustreak/mydb/internal/logger"
)

// Pool registry errors.
var (
	ErrPoolEntryExists   = errors.New("pool entry already exists")
	ErrPoolEntryNotFound = errors.New("pool entry not found")
)

// DefaultCheckInterval is how often Get re-probes an entry's liveness.
const DefaultCheckInterval = 10 * time.Minute

// Pool is a registry of named Db handles. It optionally keeps entries
// alive: when an entry's recheck interval has elapsed, Get probes the
// connection and reconnects before handing it out. The registry mutex
// guards only the map; probes run under a per-entry lock, so one entry's
// slow reconnect never stalls a Get for another. The Db handles themselves
// keep their single-caller contract.
type Pool struct {
	mu      sync.Mutex
	entries map[string]*poolEntry
	log     *logger.Logger

	// now is swapped out in tests.
	now func() time.Time
}

type poolEntry struct {
	mu          sync.Mutex // serializes probes of this entry
	db          *Db
	checkEvery  time.Duration // negative disables rechecking
	lastChecked time.Time
}

// NewPool creates an empty pool. A nil log discards all output.
func NewPool(log *logger.Logger) *Pool {
	if log == nil {
		log = logger.Nop()
	}
	return &Pool{
		entries: make(map[string]*poolEntry),
		log:     log,
		now:     time.Now,
	}
}

// Add registers db under name. checkEvery sets how often Get re-probes the
// connection; zero picks DefaultCheckInterval and a negative value disables
// rechecking. Returns ErrPoolEntryExists if the name is taken.
func (p *Pool) Add(name string, db *Db, checkEvery time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.entries[name]; ok {
		return ErrPoolEntryExists
	}
	if checkEvery == 0 {
		checkEvery = DefaultCheckInterval
	}
	p.entries[name] = &poolEntry{db: db, checkEvery: checkEvery}
	return nil
}

// Remove drops the entry for name, if any. The Db is not disconnected;
// the caller owns its lifecycle.
func (p *Pool) Remove(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, name)
}

// Get returns the Db registered under name, re-probing and reconnecting
// first when the entry's recheck interval has elapsed. Returns
// ErrPoolEntryNotFound for an unknown name.
func (p *Pool) Get(name string) (*Db, error) {
	p.mu.Lock()
	e, ok := p.entries[name]
	p.mu.Unlock()
	if !ok {
		return nil, ErrPoolEntryNotFound
	}
	if e.checkEvery < 0 {
		return e.db, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if p.now().Sub(e.lastChecked) > e.checkEvery {
		p.log.Debugf("checking connection for %q before handing it out", name)
		ok, err := e.db.IsConnected()
		if err != nil {
			return nil, err
		}
		if !ok {
			p.log.Debugf("attempting to reconnect for %q", name)
			if err := e.db.Connect(""); err != nil {
				return nil, err
			}
		}
		e.lastChecked = p.now()
	}
	return e.db, nil
}
