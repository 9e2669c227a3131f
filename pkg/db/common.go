package db

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

type CommonRepo struct {
	db orm.DB
}

// NewCommonRepo returns new repository
func NewCommonRepo(db orm.DB) CommonRepo {
	return CommonRepo{db: db}
}

// WithTransaction is a function that wraps CommonRepo with pg.Tx transaction.
func (cr CommonRepo) WithTransaction(tx *pg.Tx) CommonRepo {
	cr.db = tx
	return cr
}

/*** User ***/

// UserByTgID is a function that returns User by Telegram ID or nil.
func (cr CommonRepo) UserByTgID(ctx context.Context, tgUserID int64) (*User, error) {
	user := &User{}
	err := cr.db.ModelContext(ctx, user).Where("tg_user_id = ?", tgUserID).Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return user, err
}

// UsersByTgIDs returns User list for the given Telegram IDs.
func (cr CommonRepo) UsersByTgIDs(ctx context.Context, tgUserIDs []int64) (users []User, err error) {
	if len(tgUserIDs) == 0 {
		return nil, nil
	}
	err = cr.db.ModelContext(ctx, &users).Where("tg_user_id in (?)", pg.In(tgUserIDs)).Select()
	return
}

// AddUser adds User to DB.
func (cr CommonRepo) AddUser(ctx context.Context, user *User) (*User, error) {
	_, err := cr.db.ModelContext(ctx, user).ExcludeColumn("first_seen_at").Insert()
	return user, err
}

// UpdateUsername updates the display name of an existing User.
func (cr CommonRepo) UpdateUsername(ctx context.Context, user *User) (bool, error) {
	res, err := cr.db.ModelContext(ctx, user).WherePK().Column("username").Update()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

/*** Expense ***/

// AddExpense adds Expense to DB.
func (cr CommonRepo) AddExpense(ctx context.Context, expense *Expense) (*Expense, error) {
	_, err := cr.db.ModelContext(ctx, expense).ExcludeColumn("created_at").Insert()
	return expense, err
}

// LastExpenseSince returns the newest Expense of the user created at or after
// the given moment, or nil.
func (cr CommonRepo) LastExpenseSince(ctx context.Context, tgUserID int64, since time.Time) (*Expense, error) {
	expense := &Expense{}
	err := cr.db.ModelContext(ctx, expense).
		Where("tg_user_id = ?", tgUserID).
		Where("created_at >= ?", since).
		Order("id DESC").
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return expense, err
}

// DeleteExpense deletes Expense by ID.
func (cr CommonRepo) DeleteExpense(ctx context.Context, id int) (bool, error) {
	res, err := cr.db.ModelContext(ctx, &Expense{ID: id}).WherePK().Delete()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// DeleteChatExpenses deletes all Expenses of a chat and returns their count.
func (cr CommonRepo) DeleteChatExpenses(ctx context.Context, chatID int64) (int, error) {
	res, err := cr.db.ModelContext(ctx, (*Expense)(nil)).Where("chat_id = ?", chatID).Delete()
	if err != nil {
		return 0, err
	}

	return res.RowsAffected(), nil
}

// CountExpenses returns the total number of stored Expenses.
func (cr CommonRepo) CountExpenses(ctx context.Context) (int, error) {
	return cr.db.ModelContext(ctx, (*Expense)(nil)).Count()
}

// SumExpenses returns the expense sum of a chat in [from, to], zero when no rows.
func (cr CommonRepo) SumExpenses(ctx context.Context, chatID int64, from, to time.Time) (float64, error) {
	var total float64
	err := cr.db.ModelContext(ctx, (*Expense)(nil)).
		ColumnExpr("coalesce(sum(amount), 0)").
		Where("chat_id = ?", chatID).
		Where("created_at >= ?", from).
		Where("created_at <= ?", to).
		Select(pg.Scan(&total))

	return total, err
}

// SumExpensesByUser returns per-user expense sums of a chat in [from, to].
// Users without expenses in the window are absent.
func (cr CommonRepo) SumExpensesByUser(ctx context.Context, chatID int64, from, to time.Time) (totals []UserTotal, err error) {
	err = cr.db.ModelContext(ctx, (*Expense)(nil)).
		Column("tg_user_id").
		ColumnExpr("coalesce(sum(amount), 0) AS total").
		Where("chat_id = ?", chatID).
		Where("created_at >= ?", from).
		Where("created_at <= ?", to).
		Group("tg_user_id").
		Select(&totals)
	return
}

// SumExpensesByCategory returns per-category expense sums of a chat in
// [from, to], largest first, ties broken by category name.
func (cr CommonRepo) SumExpensesByCategory(ctx context.Context, chatID int64, from, to time.Time, limit int) (totals []CategoryTotal, err error) {
	err = cr.db.ModelContext(ctx, (*Expense)(nil)).
		Column("category").
		ColumnExpr("coalesce(sum(amount), 0) AS total").
		Where("chat_id = ?", chatID).
		Where("created_at >= ?", from).
		Where("created_at <= ?", to).
		Group("category").
		OrderExpr("total DESC").
		Order("category ASC").
		Limit(limit).
		Select(&totals)
	return
}

/*** Category ***/

// CategoryByName is a function that returns Category by name or nil.
func (cr CommonRepo) CategoryByName(ctx context.Context, name string) (*Category, error) {
	category := &Category{}
	err := cr.db.ModelContext(ctx, category).Where("name = ?", name).Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return category, err
}

// Categories returns all persisted Categories.
func (cr CommonRepo) Categories(ctx context.Context) (categories []Category, err error) {
	err = cr.db.ModelContext(ctx, &categories).Order("name ASC").Select()
	return
}

// AddCategory adds Category to DB.
func (cr CommonRepo) AddCategory(ctx context.Context, category *Category) (*Category, error) {
	_, err := cr.db.ModelContext(ctx, category).Insert()
	return category, err
}

// UpdateCategoryAliases updates the alias list of a Category.
func (cr CommonRepo) UpdateCategoryAliases(ctx context.Context, category *Category) (bool, error) {
	res, err := cr.db.ModelContext(ctx, category).WherePK().Column("aliases").Update()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

/*** BotState ***/

// StateValue returns the value stored under (chatID, key), empty when absent.
func (cr CommonRepo) StateValue(ctx context.Context, chatID int64, key string) (string, error) {
	state := &BotState{}
	err := cr.db.ModelContext(ctx, state).
		Where("chat_id = ?", chatID).
		Where("key = ?", key).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return state.Value, nil
}

// SetStateValue upserts the value under (chatID, key), last write wins.
func (cr CommonRepo) SetStateValue(ctx context.Context, chatID int64, key, value string) error {
	state := &BotState{ChatID: chatID, Key: key, Value: value, UpdatedAt: time.Now()}
	_, err := cr.db.ModelContext(ctx, state).
		OnConflict("(chat_id, key) DO UPDATE").
		Set("value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		Insert()

	return err
}

/*** WishlistItem ***/

// AddWishlistItem adds WishlistItem to DB.
func (cr CommonRepo) AddWishlistItem(ctx context.Context, item *WishlistItem) (*WishlistItem, error) {
	_, err := cr.db.ModelContext(ctx, item).ExcludeColumn("created_at").Insert()
	return item, err
}

// WishlistByUser returns all WishlistItems of a user, oldest first.
func (cr CommonRepo) WishlistByUser(ctx context.Context, tgUserID int64) (items []WishlistItem, err error) {
	err = cr.db.ModelContext(ctx, &items).Where("tg_user_id = ?", tgUserID).Order("id ASC").Select()
	return
}

// DeleteWishlistItem deletes a WishlistItem owned by the user.
func (cr CommonRepo) DeleteWishlistItem(ctx context.Context, tgUserID int64, id int) (bool, error) {
	res, err := cr.db.ModelContext(ctx, (*WishlistItem)(nil)).
		Where("id = ?", id).
		Where("tg_user_id = ?", tgUserID).
		Delete()
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

// RandomWishlistItem returns a random WishlistItem of a user or nil.
func (cr CommonRepo) RandomWishlistItem(ctx context.Context, tgUserID int64) (*WishlistItem, error) {
	item := &WishlistItem{}
	err := cr.db.ModelContext(ctx, item).
		Where("tg_user_id = ?", tgUserID).
		OrderExpr("random()").
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}

	return item, err
}

/*** RefPhoto ***/

// AddRefPhoto adds RefPhoto to DB.
func (cr CommonRepo) AddRefPhoto(ctx context.Context, photo *RefPhoto) (*RefPhoto, error) {
	_, err := cr.db.ModelContext(ctx, photo).ExcludeColumn("added_at").Insert()
	return photo, err
}

// RefPhotosByUser returns all RefPhotos of a user, newest first.
func (cr CommonRepo) RefPhotosByUser(ctx context.Context, tgUserID int64) (photos []RefPhoto, err error) {
	err = cr.db.ModelContext(ctx, &photos).Where("tg_user_id = ?", tgUserID).Order("id DESC").Select()
	return
}

// DeleteRefPhotos deletes all RefPhotos of a user and returns their count.
func (cr CommonRepo) DeleteRefPhotos(ctx context.Context, tgUserID int64) (int, error) {
	res, err := cr.db.ModelContext(ctx, (*RefPhoto)(nil)).Where("tg_user_id = ?", tgUserID).Delete()
	if err != nil {
		return 0, err
	}

	return res.RowsAffected(), nil
}
