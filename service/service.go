package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/blee0617/nd035-c4-Security-and-DevOps/auth"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/cache"
	models "github.com/blee0617/nd035-c4-Security-and-DevOps/model"
	"github.com/blee0617/nd035-c4-Security-and-DevOps/store"
)

const DefaultMinPasswordLength = 7

type Service struct {
	store  store.Store
	tokens *auth.TokenIssuer
	items  cache.ItemCache
	sfg    singleflight.Group

	minPasswordLength int
	bcryptCost        int
}

var _ ServiceInterface = (*Service)(nil)

type Option func(*Service)

// WithItemCache puts a read-through cache in front of item lookups by id.
func WithItemCache(c cache.ItemCache) Option {
	return func(s *Service) { s.items = c }
}

func WithMinPasswordLength(n int) Option {
	return func(s *Service) { s.minPasswordLength = n }
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func NewService(s store.Store, tokens *auth.TokenIssuer, opts ...Option) *Service {
	svc := &Service{
		store:             s,
		tokens:            tokens,
		items:             cache.Noop{},
		minPasswordLength: DefaultMinPasswordLength,
		bcryptCost:        bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RegisterUser validates the request, hashes the password and stores the
// user together with an empty cart.
func (s *Service) RegisterUser(ctx context.Context, username, password, confirmPassword string) (*models.User, error) {
	logger := zerolog.Ctx(ctx).With().Str("username", username).Logger()

	if err := s.validateRegistration(username, password, confirmPassword); err != nil {
		logger.Warn().Err(err).Msg("user creation failed")
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		logger.Error().Err(err).Msg("user creation failed: hashing password")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{Username: username, Password: hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			err = fmt.Errorf("%w: username %q is taken", ErrConflict, username)
			logger.Warn().Err(err).Msg("user creation failed")
			return nil, err
		}
		logger.Error().Err(err).Msg("user creation failed")
		return nil, err
	}

	logger.Info().Int64("user_id", u.ID).Msg("user created")
	return u, nil
}

func (s *Service) validateRegistration(username, password, confirmPassword string) error {
	if strings.TrimSpace(username) == "" {
		return invalid("username is required")
	}
	if len(password) < s.minPasswordLength {
		return invalid("password must be at least %d characters", s.minPasswordLength)
	}
	if password != confirmPassword {
		return invalid("password and confirmPassword do not match")
	}
	return nil
}

func (s *Service) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "user %q", username)
	}
	return u, nil
}

func (s *Service) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user %d", id)
	}
	return u, nil
}

// Login checks the credentials and returns a signed token for the user.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	logger := zerolog.Ctx(ctx).With().Str("username", username).Logger()

	u, err := s.store.FindUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	if u == nil || !auth.CheckPassword(u.Password, password) {
		logger.Warn().Msg("login failed")
		return "", ErrUnauthorized
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return "", err
	}
	logger.Info().Msg("login succeeded")
	return token, nil
}

func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

// GetItem reads through the item cache. Concurrent misses for the same id
// share one store lookup. The shared lookup is detached from the caller that
// started it, and each caller only waits on its own context.
func (s *Service) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	flight := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		return s.lookupItem(flight, id)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// callers of one flight share the pointer
		item := *res.Val.(*models.Item)
		return &item, nil
	}
}

func (s *Service) lookupItem(ctx context.Context, id int64) (*models.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("item_id", id).Msg("item cache get failed")
	}

	item, err = s.store.FindItemByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "item %d", id)
	}
	if err := s.items.Set(ctx, item); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("item_id", id).Msg("item cache set failed")
	}
	return item, nil
}

// FindItemsByName treats an empty match as not found.
func (s *Service) FindItemsByName(ctx context.Context, name string) ([]models.Item, error) {
	items, err := s.store.FindItemsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no items named %q", ErrNotFound, name)
	}
	return items, nil
}

func (s *Service) AddToCart(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	u, item, err := s.cartTarget(ctx, username, itemID, quantity)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("username", username).Int64("item_id", itemID).Msg("add to cart failed")
		return nil, err
	}

	u.Cart.AddItem(*item, quantity)
	if err := s.store.SaveCart(ctx, u.Cart); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("username", username).Msg("add to cart failed: saving cart")
		return nil, notFoundOr(err, "cart of %q", username)
	}
	return u.Cart, nil
}

// RemoveFromCart removes up to quantity units of the item. Units that are not
// in the cart are ignored.
func (s *Service) RemoveFromCart(ctx context.Context, username string, itemID int64, quantity int) (*models.Cart, error) {
	u, item, err := s.cartTarget(ctx, username, itemID, quantity)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("username", username).Int64("item_id", itemID).Msg("remove from cart failed")
		return nil, err
	}

	u.Cart.RemoveItem(*item, quantity)
	if err := s.store.SaveCart(ctx, u.Cart); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("username", username).Msg("remove from cart failed: saving cart")
		return nil, notFoundOr(err, "cart of %q", username)
	}
	return u.Cart, nil
}

// cartTarget resolves the user and item of a cart modification. The user is
// looked up first.
func (s *Service) cartTarget(ctx context.Context, username string, itemID int64, quantity int) (*models.User, *models.Item, error) {
	if quantity <= 0 {
		return nil, nil, invalid("quantity must be > 0")
	}
	u, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	if u.Cart == nil {
		return nil, nil, fmt.Errorf("%w: cart of %q", ErrNotFound, username)
	}
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return u, item, nil
}

// SubmitOrder snapshots the user's cart into a new order. The cart is left as
// it is.
func (s *Service) SubmitOrder(ctx context.Context, username string) (*models.UserOrder, error) {
	logger := zerolog.Ctx(ctx).With().Str("username", username).Logger()

	u, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		logger.Warn().Err(err).Msg("order submission failed")
		return nil, err
	}
	cart := u.Cart
	if cart == nil {
		cart = models.NewCart(u.ID)
	}

	order := models.NewOrderFromCart(u, cart)
	if err := s.store.CreateOrder(ctx, order); err != nil {
		logger.Error().Err(err).Msg("order submission failed")
		return nil, err
	}

	logger.Info().
		Int64("order_id", order.ID).
		Int("items", len(order.Items)).
		Str("total", order.Total.StringFixed(2)).
		Msg("order submitted")
	return order, nil
}

// OrderHistory lists the user's orders oldest first.
func (s *Service) OrderHistory(ctx context.Context, username string) ([]models.UserOrder, error) {
	u, err := s.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	orders, err := s.store.ListOrdersByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Username = u.Username
	}
	return orders, nil
}
