package db

import "time"

// User is a chat member known to the bot. Created on first observed message,
// never deleted; only the username is refreshed afterwards.
type User struct {
	tableName struct{} `pg:"users,alias:t"`

	ID          int       `pg:"id,pk"`
	TgUserID    int64     `pg:"tg_user_id,unique,use_zero"`
	Username    *string   `pg:"username"`
	FirstSeenAt time.Time `pg:"first_seen_at,default:now()"`
}

// Expense is one recorded spending event. Immutable once created except for
// deletion via undo or a chat purge.
type Expense struct {
	tableName struct{} `pg:"expenses,alias:t"`

	ID        int       `pg:"id,pk"`
	TgUserID  int64     `pg:"tg_user_id,use_zero"`
	ChatID    int64     `pg:"chat_id,use_zero"`
	Amount    float64   `pg:"amount,use_zero"`
	Currency  string    `pg:"currency,use_zero"`
	Category  string    `pg:"category,use_zero"`
	Note      *string   `pg:"note"`
	CreatedAt time.Time `pg:"created_at,default:now()"`
}

// Category maps a canonical name to a pipe-delimited alias list.
// Aliases is nil when the category has no extra aliases.
type Category struct {
	tableName struct{} `pg:"categories,alias:t"`

	ID      int     `pg:"id,pk"`
	Name    string  `pg:"name,unique,use_zero"`
	Aliases *string `pg:"aliases"`
}

// BotState is a chat-scoped key-value pair, last write wins. Used for
// cross-call memory such as recently suggested purchase ideas.
type BotState struct {
	tableName struct{} `pg:"bot_states,alias:t"`

	ChatID    int64     `pg:"chat_id,pk,use_zero"`
	Key       string    `pg:"key,pk,use_zero"`
	Value     string    `pg:"value,use_zero"`
	UpdatedAt time.Time `pg:"updated_at,default:now()"`
}

// WishlistItem is a free-text wish owned by a single user.
type WishlistItem struct {
	tableName struct{} `pg:"wishlist_items,alias:t"`

	ID        int       `pg:"id,pk"`
	TgUserID  int64     `pg:"tg_user_id,use_zero"`
	Title     string    `pg:"title,use_zero"`
	CreatedAt time.Time `pg:"created_at,default:now()"`
}

// RefPhoto is a Telegram file id of a user reference photo passed to the
// image generator alongside the prompt.
type RefPhoto struct {
	tableName struct{} `pg:"ref_photos,alias:t"`

	ID       int       `pg:"id,pk"`
	TgUserID int64     `pg:"tg_user_id,use_zero"`
	FileID   string    `pg:"file_id,use_zero"`
	AddedAt  time.Time `pg:"added_at,default:now()"`
}

// UserTotal is a per-user aggregation row.
type UserTotal struct {
	TgUserID int64   `pg:"tg_user_id"`
	Total    float64 `pg:"total"`
}

// CategoryTotal is a per-category aggregation row.
type CategoryTotal struct {
	Category string  `pg:"category"`
	Total    float64 `pg:"total"`
}
