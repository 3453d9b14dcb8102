// Package calllog turns phone call records into Call interactions. No
// platform source ships with bondvault, so Sync reports ErrUnavailable
// unless a Source is supplied.
package calllog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/bondvault/internal/store"
)

var ErrUnavailable = errors.New("call log sync is not available on this platform")

// Call is one entry of a device call log.
type Call struct {
	Number   string
	At       time.Time
	Duration time.Duration
	Incoming bool
}

// Source reads call records newer than since.
type Source interface {
	Calls(ctx context.Context, since time.Time) ([]Call, error)
}

// Store is the part of the store used by Sync.
type Store interface {
	ListAllContacts() ([]store.Contact, error)
	CreateInteraction(in store.InteractionInput) (*store.Interaction, error)
	LastCallLogSync() (int64, error)
	SetLastCallLogSync(unix int64) error
}

type Result struct {
	Synced int
	Errors int
}

type Syncer struct {
	src Source
	st  Store
	now func() time.Time
}

// New returns a syncer. src may be nil.
func New(src Source, st Store) *Syncer {
	return &Syncer{src: src, st: st, now: time.Now}
}

func (s *Syncer) Available() bool { return s.src != nil }

// Sync logs one Call interaction per record whose number matches a contact,
// then advances the last-sync timestamp.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	var res Result
	if s.src == nil {
		return res, ErrUnavailable
	}

	last, err := s.st.LastCallLogSync()
	if err != nil {
		return res, err
	}
	started := s.now()

	calls, err := s.src.Calls(ctx, time.Unix(last, 0))
	if err != nil {
		return res, fmt.Errorf("read call log: %w", err)
	}
	contacts, err := s.st.ListAllContacts()
	if err != nil {
		return res, err
	}
	byNumber := make(map[string]int64, len(contacts))
	for _, c := range contacts {
		if k := numberKey(c.MobileNumber); k != "" {
			byNumber[k] = c.ID
		}
	}

	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		id, ok := byNumber[numberKey(call.Number)]
		if !ok {
			continue
		}
		_, err := s.st.CreateInteraction(store.InteractionInput{
			ContactID: id,
			Type:      store.InteractionCall,
			Notes:     describe(call),
			Date:      call.At,
		})
		if err != nil {
			res.Errors++
			continue
		}
		res.Synced++
	}

	if err := s.st.SetLastCallLogSync(started.Unix()); err != nil {
		return res, err
	}
	return res, nil
}

// numberKey keeps the last nine digits so local and international forms of
// the same number match.
func numberKey(n string) string {
	var b strings.Builder
	for _, r := range n {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) > 9 {
		d = d[len(d)-9:]
	}
	return d
}

func describe(c Call) string {
	dir := "Outgoing"
	if c.Incoming {
		dir = "Incoming"
	}
	if c.Duration <= 0 {
		return dir + " call (missed)"
	}
	return fmt.Sprintf("%s call (%s)", dir, c.Duration.Round(time.Second))
}
