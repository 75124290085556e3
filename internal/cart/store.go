package cart

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/smehta-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/smehta-dev/storefront-backend/pkg/errors"
	"github.com/smehta-dev/storefront-backend/pkg/logger"
	"github.com/smehta-dev/storefront-backend/pkg/types"
)

// Store is the single source of truth for one session's cart. All mutation
// funnels through its methods; the persister is invoked after every
// successful mutation and its failures never block the in-memory cart.
type Store struct {
	mu        sync.Mutex
	sessionID string
	state     State
	persister Persister
	logg      *logger.Logger
}

// NewStore wraps existing state for a session.
func NewStore(sessionID string, state State, persister Persister, logg *logger.Logger) *Store {
	if state.Items == nil {
		state.Items = []LineItem{}
	}
	return &Store{
		sessionID: sessionID,
		state:     state,
		persister: persister,
		logg:      logg,
	}
}

// SessionID returns the session this store belongs to.
func (s *Store) SessionID() string {
	return s.sessionID
}

// AddItem inserts a product or replaces its quantity when already present.
// The quantity is clamped to [1, CountInStock] rather than rejected.
func (s *Store) AddItem(ctx context.Context, snapshot ProductSnapshot, quantity int) error {
	if strings.TrimSpace(snapshot.ProductID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if snapshot.Price.LessThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "product price cannot be negative")
	}
	if snapshot.CountInStock < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}

	if quantity < 1 {
		quantity = 1
	}
	if quantity > snapshot.CountInStock {
		quantity = snapshot.CountInStock
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.state.Items {
		if s.state.Items[i].ProductID == snapshot.ProductID {
			s.state.Items[i] = LineItem{ProductSnapshot: snapshot, Quantity: quantity}
			replaced = true
			break
		}
	}
	if !replaced {
		s.state.Items = append(s.state.Items, LineItem{ProductSnapshot: snapshot, Quantity: quantity})
	}

	s.persistLocked(ctx)
	return nil
}

// RemoveItem drops the line item with the given product ID. Absent IDs are a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Items {
		if s.state.Items[i].ProductID == productID {
			s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
			s.persistLocked(ctx)
			return
		}
	}
}

// SetShippingAddress replaces the checkout destination.
func (s *Store) SetShippingAddress(ctx context.Context, address types.ShippingAddress) error {
	if missing := address.MissingFields(); len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete").
			WithDetails(map[string]any{"missing": missing})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ShippingAddress = address
	s.persistLocked(ctx)
	return nil
}

// SetPaymentMethod selects one of the supported payment methods.
func (s *Store) SetPaymentMethod(ctx context.Context, method string) error {
	parsed, err := enums.ParsePaymentMethod(strings.TrimSpace(method))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unsupported payment method")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentMethod = parsed
	s.persistLocked(ctx)
	return nil
}

// Clear empties the line items after a successful order. The shipping address
// and payment method survive so a repeat purchase skips re-entry. Items added
// between the order snapshot and this call are dropped with the rest.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = []LineItem{}
	s.persistLocked(ctx)
}

// Reset wipes the whole cart, address and payment method included.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Items: []LineItem{}}
	if s.persister == nil {
		return
	}
	if err := s.persister.Delete(ctx, s.sessionID); err != nil {
		s.warnPersist(ctx, err)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// TotalQuantity sums quantities across items, for badge counts.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.TotalQuantity()
}

// ItemsPrice totals the cart, rounding once after summation.
func (s *Store) ItemsPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ItemsPrice()
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.sessionID, s.state.Clone()); err != nil {
		s.warnPersist(ctx, err)
	}
}

// Persistence failure must never block the in-memory cart; log and move on.
func (s *Store) warnPersist(ctx context.Context, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithSessionID(ctx, s.sessionID)
	s.logg.Error(ctx, "cart.persist_failed", pkgerrors.Wrap(pkgerrors.CodeStorage, err, "persist cart state"))
}
