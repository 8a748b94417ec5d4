package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/transport"
)

// Introspector periodically asks the provider whether the stored token
// is still valid and clears the session when it is not. This is how a
// server-side revocation reaches a long-lived gateway session between
// requests.
type Introspector struct {
	store *sessionstore.Store
	api   *transport.Client

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

// NewIntrospector creates an introspector that runs on the given cron
// schedule (standard five-field syntax or @every intervals).
func NewIntrospector(store *sessionstore.Store, api *transport.Client) *Introspector {
	return &Introspector{
		store: store,
		api:   api,
		cron:  cron.New(),
	}
}

// Start schedules the introspection job. Calling Start on a running
// introspector is a no-op.
func (i *Introspector) Start(schedule string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.isRunning {
		return nil
	}

	entryID, err := i.cron.AddFunc(schedule, func() {
		i.runOnce()
	})
	if err != nil {
		return err
	}
	i.entryID = entryID

	i.cron.Start()
	i.isRunning = true
	log.Printf("token introspection: started with schedule %q", schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight check to finish.
func (i *Introspector) Stop() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning {
		return
	}

	ctx := i.cron.Stop()
	<-ctx.Done()
	i.isRunning = false
	log.Printf("token introspection: stopped")
}

func (i *Introspector) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	i.Check(ctx)
}

// Check performs one introspection round. It does nothing when no
// session is stored, and clears the session when the provider reports
// the token invalid. Network failures leave the session alone.
func (i *Introspector) Check(ctx context.Context) {
	snap := i.store.Get()
	if !snap.IsAuthenticated {
		return
	}

	var payload struct {
		Active bool `json:"active"`
	}
	err := i.api.Do(ctx, http.MethodPost, introspectPath, nil, map[string]string{"token": snap.Token}, &payload)
	if err != nil {
		if errors.Is(err, transport.ErrUnauthorized) {
			// The transport hook already cleared the store; nothing
			// to do beyond logging.
			log.Printf("token introspection: token rejected, session cleared")
			return
		}
		log.Printf("token introspection: check failed, keeping session: %v", err)
		return
	}

	if !payload.Active {
		log.Printf("token introspection: token no longer active, clearing session")
		i.store.Clear()
	}
}
