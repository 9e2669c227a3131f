package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/benderoz/BUH-uchet/pkg/db"

	"github.com/go-pg/pg/v10"
	"github.com/vmkteam/embedlog"
)

// Manager is the ledger domain service. Every logical operation runs as one
// transaction: rolled back fully on failure, committed exactly once on success.
type Manager struct {
	cr    db.CommonRepo
	db    db.DB
	clock Clock
	log   embedlog.Logger
}

func NewManager(dbc db.DB, clock Clock, log embedlog.Logger) *Manager {
	return &Manager{
		cr:    db.NewCommonRepo(dbc),
		db:    dbc,
		clock: clock,
		log:   log,
	}
}

// Clock returns the reference clock of the manager.
func (m *Manager) Clock() Clock {
	return m.clock
}

// User methods

// EnsureUser creates a user on first observed message or refreshes the
// display name of an existing one.
func (m *Manager) EnsureUser(ctx context.Context, tgUserID int64, username string) error {
	return m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		cr := m.cr.WithTransaction(tx)

		user, err := cr.UserByTgID(ctx, tgUserID)
		if err != nil {
			return fmt.Errorf("failed to search user: %w", err)
		}

		if user != nil {
			if username == "" || (user.Username != nil && *user.Username == username) {
				return nil
			}
			user.Username = &username
			if _, err := cr.UpdateUsername(ctx, user); err != nil {
				return fmt.Errorf("failed to update username: %w", err)
			}
			return nil
		}

		newUser := &db.User{TgUserID: tgUserID}
		if username != "" {
			newUser.Username = &username
		}
		if _, err := cr.AddUser(ctx, newUser); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		m.log.Print(ctx, "new user created", "tg_user_id", tgUserID, "username", username)

		return nil
	})
}

// UsernamesByTgIDs returns a tg user id -> display name map for known users.
func (m *Manager) UsernamesByTgIDs(ctx context.Context, tgUserIDs []int64) (map[int64]string, error) {
	users, err := m.cr.UsersByTgIDs(ctx, tgUserIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	names := make(map[int64]string, len(users))
	for _, u := range users {
		if u.Username != nil {
			names[u.TgUserID] = *u.Username
		}
	}

	return names, nil
}

// Parsing

// Parse parses a message against the merged built-in and persisted alias
// table. The bool result is false for non-expense messages.
func (m *Manager) Parse(ctx context.Context, text string) (*ParsedMessage, bool, error) {
	categories, err := m.cr.Categories(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get categories: %w", err)
	}

	parsed, ok := ParseMessage(text, BuildAliasMap(categories))

	return parsed, ok, nil
}

// Expense methods

// AddExpense records a parsed expense for the user in the chat. The amount is
// stored with 2-place precision and must be positive; the category was
// resolved at parse time and is never re-resolved.
func (m *Manager) AddExpense(ctx context.Context, tgUserID, chatID int64, parsed *ParsedMessage) (*db.Expense, error) {
	amount := math.Round(parsed.Amount*100) / 100
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %v", parsed.Amount)
	}

	expense := &db.Expense{
		TgUserID: tgUserID,
		ChatID:   chatID,
		Amount:   amount,
		Currency: parsed.Currency,
		Category: parsed.Category,
	}
	if parsed.Note != "" {
		note := parsed.Note
		expense.Note = &note
	}

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		_, err := m.cr.WithTransaction(tx).AddExpense(ctx, expense)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	m.log.Print(ctx, "expense created",
		"expense_id", expense.ID,
		"tg_user_id", tgUserID,
		"chat_id", chatID,
		"amount", amount,
		"category", parsed.Category,
	)

	return expense, nil
}

// CountExpenses returns the total number of stored expenses across all chats.
func (m *Manager) CountExpenses(ctx context.Context) (int, error) {
	return m.cr.CountExpenses(ctx)
}

// UndoLastToday deletes the caller's newest expense created since the local
// day start. Returns false when there is nothing to undo. Selection and
// deletion happen in one transaction, so a concurrent undo finds nothing and
// reports a no-op instead of double-deleting.
func (m *Manager) UndoLastToday(ctx context.Context, tgUserID int64) (bool, error) {
	var undone bool

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		cr := m.cr.WithTransaction(tx)

		last, err := cr.LastExpenseSince(ctx, tgUserID, m.clock.DayStart())
		if err != nil {
			return fmt.Errorf("failed to find last expense: %w", err)
		}
		if last == nil {
			return nil
		}

		undone, err = cr.DeleteExpense(ctx, last.ID)
		if err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}

		return nil
	})

	return undone, err
}

// PurgeChat deletes every expense of a chat and returns the removed count.
func (m *Manager) PurgeChat(ctx context.Context, chatID int64) (int, error) {
	var purged int

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		var err error
		purged, err = m.cr.WithTransaction(tx).DeleteChatExpenses(ctx, chatID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge chat: %w", err)
	}

	m.log.Print(ctx, "chat purged", "chat_id", chatID, "expenses", purged)

	return purged, nil
}

// Category methods

// Categories returns all persisted categories.
func (m *Manager) Categories(ctx context.Context) ([]db.Category, error) {
	return m.cr.Categories(ctx)
}

// ReplaceCategory sets the complete alias list of a category, creating the
// category when absent. The list is sorted and deduplicated; an empty list is
// stored as absent.
func (m *Manager) ReplaceCategory(ctx context.Context, name string, aliases []string) error {
	aliasStr := normalizeAliases(aliases)

	return m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		cr := m.cr.WithTransaction(tx)

		category, err := cr.CategoryByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to search category: %w", err)
		}

		if category != nil {
			category.Aliases = aliasStr
			if _, err := cr.UpdateCategoryAliases(ctx, category); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}
			return nil
		}

		if _, err := cr.AddCategory(ctx, &db.Category{Name: name, Aliases: aliasStr}); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		return nil
	})
}

// AppendAliases merges aliases into a category. An alias already bound to a
// different category (built-in or persisted) is rejected; the method reports
// which aliases were added and which were rejected.
func (m *Manager) AppendAliases(ctx context.Context, name string, aliases []string) (added, rejected []string, err error) {
	err = m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		cr := m.cr.WithTransaction(tx)

		categories, err := cr.Categories(ctx)
		if err != nil {
			return fmt.Errorf("failed to get categories: %w", err)
		}
		aliasMap := BuildAliasMap(categories)

		category, err := cr.CategoryByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to search category: %w", err)
		}
		if category == nil {
			category, err = cr.AddCategory(ctx, &db.Category{Name: name})
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}
		}

		var merged *string
		merged, added, rejected = mergeAliases(category.Aliases, aliases, category.Name, aliasMap)
		if len(added) == 0 {
			return nil
		}

		category.Aliases = merged
		if _, err := cr.UpdateCategoryAliases(ctx, category); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		return nil
	})

	return added, rejected, err
}

// BotState methods

// StateValue returns the chat-scoped value stored under key, empty when absent.
func (m *Manager) StateValue(ctx context.Context, chatID int64, key string) (string, error) {
	return m.cr.StateValue(ctx, chatID, key)
}

// SetStateValue stores the chat-scoped value under key, last write wins.
func (m *Manager) SetStateValue(ctx context.Context, chatID int64, key, value string) error {
	return m.cr.SetStateValue(ctx, chatID, key, value)
}

// Wishlist methods

// AddWish appends a free-text item to the user's wishlist.
func (m *Manager) AddWish(ctx context.Context, tgUserID int64, title string) (*db.WishlistItem, error) {
	item := &db.WishlistItem{TgUserID: tgUserID, Title: title}

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		_, err := m.cr.WithTransaction(tx).AddWishlistItem(ctx, item)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return item, nil
}

// Wishlist returns the user's wishlist, oldest first.
func (m *Manager) Wishlist(ctx context.Context, tgUserID int64) ([]db.WishlistItem, error) {
	return m.cr.WishlistByUser(ctx, tgUserID)
}

// RemoveWish deletes a wishlist item by position (1-based) in the user's list.
func (m *Manager) RemoveWish(ctx context.Context, tgUserID int64, position int) (bool, error) {
	var removed bool

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		cr := m.cr.WithTransaction(tx)

		items, err := cr.WishlistByUser(ctx, tgUserID)
		if err != nil {
			return fmt.Errorf("failed to get wishlist: %w", err)
		}
		if position < 1 || position > len(items) {
			return nil
		}

		removed, err = cr.DeleteWishlistItem(ctx, tgUserID, items[position-1].ID)
		return err
	})

	return removed, err
}

// RandomWish returns a random wishlist item of the user or nil.
func (m *Manager) RandomWish(ctx context.Context, tgUserID int64) (*db.WishlistItem, error) {
	return m.cr.RandomWishlistItem(ctx, tgUserID)
}

// RefPhoto methods

// AddRefPhoto stores a reference photo file id for the user.
func (m *Manager) AddRefPhoto(ctx context.Context, tgUserID int64, fileID string) error {
	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		_, err := m.cr.WithTransaction(tx).AddRefPhoto(ctx, &db.RefPhoto{TgUserID: tgUserID, FileID: fileID})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to add ref photo: %w", err)
	}

	return nil
}

// RefPhotos returns the user's reference photos, newest first.
func (m *Manager) RefPhotos(ctx context.Context, tgUserID int64) ([]db.RefPhoto, error) {
	return m.cr.RefPhotosByUser(ctx, tgUserID)
}

// ClearRefPhotos removes all reference photos of the user.
func (m *Manager) ClearRefPhotos(ctx context.Context, tgUserID int64) (int, error) {
	var cleared int

	err := m.db.RunInTx(ctx, func(tx *pg.Tx) error {
		var err error
		cleared, err = m.cr.WithTransaction(tx).DeleteRefPhotos(ctx, tgUserID)
		return err
	})

	return cleared, err
}
