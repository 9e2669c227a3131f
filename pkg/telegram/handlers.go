package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benderoz/BUH-uchet/pkg/ledger"
	"github.com/benderoz/BUH-uchet/pkg/services"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// maxRefPhotos caps how many reference photos are attached to an image prompt.
const maxRefPhotos = 3

// handleStart handles /start - registers the user and greets the chat
func (b *Bot) handleStart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("start").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}

	user := update.Message.From
	if err := b.ledger.EnsureUser(ctx, user.ID, user.Username); err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to ensure user", "err", err, "tg_user_id", user.ID)
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Я считаю траты этого чата. Просто пишите суммы в чат:\n"+
			"<code>500 бар</code>, <code>1 500,50 продукты</code>, <code>300р такси домой</code>\n\n"+
			"Команды: /help",
		user.FirstName,
	)

	b.reply(ctx, botAPI, update.Message.Chat.ID, text)
}

// handleHelp handles /help
func (b *Bot) handleHelp(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("help").Inc()
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}

	helpText := `📚 <b>Команды:</b>

Любое сообщение с суммой записывается как трата: <code>500 бар пиво</code>

/stats - сводка: неделя, месяц, всё время, кто сколько, топ категорий
/week /month /all - суммы за период
/me - мои траты за месяц
/undo - отменить мою последнюю трату за сегодня
/chart - график по категориям за месяц

/categories - категории и их ключевые слова
/addcat имя | слово | слово - заменить ключевые слова (админ)
/addcat +имя | слово - дописать ключевые слова (админ)

/wishlist - список хотелок
/wish [текст] - добавить хотелку
/wishdel N - удалить хотелку по номеру
/wishrandom - случайная хотелка

/style - стиль комментариев
/refphoto - ответом на фото: сохранить референс (админ)
/purge - удалить все траты чата (админ)`

	b.reply(ctx, botAPI, update.Message.Chat.ID, helpText)
}

// handleStats handles /stats - the full summary
func (b *Bot) handleStats(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("stats").Inc()
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	week, err := b.ledger.SumByPeriod(ctx, chatID, ledger.PeriodWeek)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	month, err := b.ledger.SumByPeriod(ctx, chatID, ledger.PeriodMonth)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	total, err := b.ledger.TotalAllTime(ctx, chatID)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	byUser, err := b.ledger.SumByUser(ctx, chatID, ledger.PeriodMonth)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	ids := make([]int64, 0, len(byUser))
	for id := range byUser {
		ids = append(ids, id)
	}
	names, err := b.ledger.UsernamesByTgIDs(ctx, ids)
	if err != nil {
		b.logger.Error(ctx, "failed to get usernames", "err", err)
		names = map[int64]string{}
	}

	topCats, err := b.ledger.TopCategories(ctx, chatID, ledger.PeriodMonth, 5)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	text := "📊 <b>Сводка:</b>\n\n"
	text += fmt.Sprintf("За неделю: <b>%s</b>\n", formatMoney(week, b.currency))
	text += fmt.Sprintf("За месяц: <b>%s</b>\n", formatMoney(month, b.currency))
	text += fmt.Sprintf("За всё время: <b>%s</b>\n", formatMoney(total, b.currency))

	if len(byUser) > 0 {
		text += "\n👥 <b>За месяц по людям:</b>\n"
		text += formatUserTotals(byUser, names, b.currency)
	}

	if len(topCats) > 0 {
		text += "\n🏷 <b>Топ категорий за месяц:</b>\n"
		for _, c := range topCats {
			text += fmt.Sprintf("• %s: %s\n", c.Category, formatMoney(c.Total, b.currency))
		}
	}

	b.reply(ctx, botAPI, chatID, text)
}

func (b *Bot) handleWeek(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("week").Inc()
	b.handlePeriodTotal(ctx, botAPI, update, ledger.PeriodWeek, "За неделю")
}

func (b *Bot) handleMonth(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("month").Inc()
	b.handlePeriodTotal(ctx, botAPI, update, ledger.PeriodMonth, "За месяц")
}

func (b *Bot) handleAll(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("all").Inc()
	b.handlePeriodTotal(ctx, botAPI, update, ledger.PeriodAll, "За всё время")
}

// handlePeriodTotal is the shared body of /week, /month and /all
func (b *Bot) handlePeriodTotal(ctx context.Context, botAPI *bot.Bot, update *models.Update, period ledger.Period, title string) {
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	total, err := b.ledger.SumByPeriod(ctx, chatID, period)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	b.reply(ctx, botAPI, chatID, fmt.Sprintf("💰 %s: <b>%s</b>", title, formatMoney(total, b.currency)))
}

// handleMe handles /me - the caller's month total
func (b *Bot) handleMe(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("me").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	byUser, err := b.ledger.SumByUser(ctx, chatID, ledger.PeriodMonth)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	total := byUser[update.Message.From.ID]
	b.reply(ctx, botAPI, chatID, fmt.Sprintf("💸 Твои траты за месяц: <b>%s</b>", formatMoney(total, b.currency)))
}

// handleUndo handles /undo - removes the caller's last expense of today
func (b *Bot) handleUndo(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("undo").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	undone, err := b.ledger.UndoLastToday(ctx, update.Message.From.ID)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	if undone {
		b.reply(ctx, botAPI, chatID, "↩️ Последняя трата за сегодня удалена.")
	} else {
		b.reply(ctx, botAPI, chatID, "Сегодня нечего отменять.")
	}
}

// handleCategories handles /categories - the merged alias table
func (b *Bot) handleCategories(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("categories").Inc()
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	categories, err := b.ledger.Categories(ctx)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	b.reply(ctx, botAPI, chatID, formatCategories(categories))
}

// handleAddCat handles /addcat with arguments (admin)
func (b *Bot) handleAddCat(ctx context.Context, botAPI *bot.Bot, chatID, tgUserID int64, args string) {
	commandsProcessed.WithLabelValues("addcat").Inc()
	if !b.isAdmin(tgUserID) {
		b.reply(ctx, botAPI, chatID, "Только для админов.")
		return
	}

	name, aliases, appendMode, err := parseAddCatArgs(args)
	if err != nil {
		b.reply(ctx, botAPI, chatID, "Формат: /addcat имя | слово | слово\nили /addcat +имя | слово")
		return
	}

	if appendMode {
		added, rejected, err := b.ledger.AppendAliases(ctx, name, aliases)
		if err != nil {
			b.replyDBError(ctx, botAPI, chatID, err)
			return
		}

		text := fmt.Sprintf("🏷 <b>%s</b>\n", name)
		if len(added) > 0 {
			text += "Добавлено: " + strings.Join(added, ", ") + "\n"
		}
		if len(rejected) > 0 {
			text += "Занято другими категориями: " + strings.Join(rejected, ", ") + "\n"
		}
		if len(added) == 0 && len(rejected) == 0 {
			text += "Ничего нового.\n"
		}
		b.reply(ctx, botAPI, chatID, text)
		return
	}

	if err := b.ledger.ReplaceCategory(ctx, name, aliases); err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	b.reply(ctx, botAPI, chatID, fmt.Sprintf("🏷 Категория <b>%s</b> обновлена.", name))
}

// handlePurge handles /purge (admin) - asks for confirmation
func (b *Bot) handlePurge(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("purge").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	if !b.isAdmin(update.Message.From.ID) {
		b.reply(ctx, botAPI, chatID, "Только для админов.")
		return
	}

	_, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "⚠️ Удалить <b>все</b> траты этого чата? Это необратимо.",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: purgeConfirmKeyboard(),
	})
	if err != nil {
		errorsTotal.WithLabelValues("send_message").Inc()
		b.logger.Error(ctx, "failed to send message", "err", err)
	}
}

// handleChart handles /chart - top categories of the month as a bar chart
func (b *Bot) handleChart(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("chart").Inc()
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	topCats, err := b.ledger.TopCategories(ctx, chatID, ledger.PeriodMonth, 8)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	if len(topCats) == 0 {
		b.reply(ctx, botAPI, chatID, "За месяц пока нет трат.")
		return
	}

	entries := make([]services.ChartEntry, len(topCats))
	for i, c := range topCats {
		entries[i] = services.ChartEntry{Label: c.Category, Value: c.Total}
	}

	png, err := services.CategoryChart("Категории за месяц", entries)
	if err != nil {
		errorsTotal.WithLabelValues("chart").Inc()
		b.logger.Error(ctx, "failed to render chart", "err", err)
		b.reply(ctx, botAPI, chatID, "Не получилось построить график.")
		return
	}

	b.sendPhoto(ctx, botAPI, chatID, "chart.png", png, "")
}

// handleWishlist handles /wishlist
func (b *Bot) handleWishlist(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("wishlist").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	items, err := b.ledger.Wishlist(ctx, update.Message.From.ID)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, botAPI, chatID, "Хотелок пока нет. Добавь через /wish")
		return
	}

	text := "🎁 <b>Хотелки:</b>\n"
	for i, item := range items {
		text += fmt.Sprintf("%d. %s\n", i+1, item.Title)
	}
	b.reply(ctx, botAPI, chatID, text)
}

// handleWishPrompt handles bare /wish - the next text message becomes the item
func (b *Bot) handleWishPrompt(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("wish").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}

	b.stateManager.SetAwaitingWish(update.Message.From.ID)
	b.reply(ctx, botAPI, update.Message.Chat.ID, "Что хочешь? Напиши следующим сообщением.")
}

// handleWishAdd stores a wishlist item given inline: /wish текст
func (b *Bot) handleWishAdd(ctx context.Context, botAPI *bot.Bot, chatID, tgUserID int64, title string) {
	commandsProcessed.WithLabelValues("wish").Inc()

	if _, err := b.ledger.AddWish(ctx, tgUserID, title); err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	b.reply(ctx, botAPI, chatID, fmt.Sprintf("🎁 Записал: %s", title))
}

// handleWishDel handles /wishdel N
func (b *Bot) handleWishDel(ctx context.Context, botAPI *bot.Bot, chatID, tgUserID int64, args string) {
	commandsProcessed.WithLabelValues("wishdel").Inc()

	position, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || position < 1 {
		b.reply(ctx, botAPI, chatID, "Формат: /wishdel N (номер из /wishlist)")
		return
	}

	removed, err := b.ledger.RemoveWish(ctx, tgUserID, position)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	if !removed {
		b.reply(ctx, botAPI, chatID, "Нет хотелки с таким номером.")
		return
	}

	b.reply(ctx, botAPI, chatID, "🗑 Удалил.")
}

// handleWishRandom handles /wishrandom
func (b *Bot) handleWishRandom(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("wishrandom").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	item, err := b.ledger.RandomWish(ctx, update.Message.From.ID)
	if err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}
	if item == nil {
		b.reply(ctx, botAPI, chatID, "Хотелок пока нет. Добавь через /wish")
		return
	}

	b.reply(ctx, botAPI, chatID, fmt.Sprintf("🎲 Может, пора: <b>%s</b>?", item.Title))
}

// handleStyle handles /style - commentary style selection
func (b *Bot) handleStyle(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("style").Inc()
	if update.Message == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}

	_, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        "🎭 Выбери стиль комментариев:",
		ReplyMarkup: styleKeyboard(),
	})
	if err != nil {
		errorsTotal.WithLabelValues("send_message").Inc()
		b.logger.Error(ctx, "failed to send message", "err", err)
	}
}

// handleRefPhoto handles /refphoto (admin) sent as a reply to a photo: the
// largest size of the replied photo becomes a reference for its sender.
func (b *Bot) handleRefPhoto(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	commandsProcessed.WithLabelValues("refphoto").Inc()
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}
	chatID := update.Message.Chat.ID

	if !b.isAdmin(update.Message.From.ID) {
		b.reply(ctx, botAPI, chatID, "Только для админов.")
		return
	}

	replied := update.Message.ReplyToMessage
	if replied == nil || len(replied.Photo) == 0 || replied.From == nil {
		b.reply(ctx, botAPI, chatID, "Ответь командой на сообщение с фото.")
		return
	}

	// Photo sizes come smallest first.
	fileID := replied.Photo[len(replied.Photo)-1].FileID
	if err := b.ledger.AddRefPhoto(ctx, replied.From.ID, fileID); err != nil {
		b.replyDBError(ctx, botAPI, chatID, err)
		return
	}

	b.reply(ctx, botAPI, chatID, fmt.Sprintf("📸 Референс для %s сохранён.", replied.From.FirstName))
}

// handleMessage is the catch-all: commands with arguments, pending wishlist
// input and the free-text expense pipeline.
func (b *Bot) handleMessage(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || !b.allowed(update.Message.Chat.ID) {
		return
	}

	chatID := update.Message.Chat.ID
	tgUserID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "" {
		return
	}

	// Commands with arguments land here because they fail the exact match.
	if strings.HasPrefix(text, "/") {
		cmd, args, _ := strings.Cut(text, " ")
		if at := strings.Index(cmd, "@"); at > 0 {
			cmd = cmd[:at]
		}
		args = strings.TrimSpace(args)

		switch cmd {
		case "/addcat":
			b.handleAddCat(ctx, botAPI, chatID, tgUserID, args)
		case "/wish":
			b.handleWishAdd(ctx, botAPI, chatID, tgUserID, args)
		case "/wishdel":
			b.handleWishDel(ctx, botAPI, chatID, tgUserID, args)
		default:
			b.logger.Print(ctx, "unknown command", "text", text, "from", update.Message.From.Username)
			b.reply(ctx, botAPI, chatID, "Не знаю такую команду. Смотри /help")
		}
		return
	}

	// A pending /wish consumes the next text message.
	if b.stateManager.TakeAwaitingWish(tgUserID) {
		messagesProcessed.WithLabelValues("wish").Inc()
		b.handleWishAdd(ctx, botAPI, chatID, tgUserID, text)
		return
	}

	b.handleExpenseText(ctx, botAPI, update, text)
}

// handleExpenseText runs the expense pipeline: parse, store, comment, picture.
// Messages without an amount are ignored silently, the chat stays quiet.
func (b *Bot) handleExpenseText(ctx context.Context, botAPI *bot.Bot, update *models.Update, text string) {
	chatID := update.Message.Chat.ID
	user := update.Message.From

	if err := b.ledger.EnsureUser(ctx, user.ID, user.Username); err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to ensure user", "err", err, "tg_user_id", user.ID)
	}

	parsed, ok, err := b.ledger.Parse(ctx, text)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to parse message", "err", err)
		return
	}
	if !ok {
		messagesProcessed.WithLabelValues("ignored").Inc()
		return
	}
	messagesProcessed.WithLabelValues("expense").Inc()

	expense, err := b.ledger.AddExpense(ctx, user.ID, chatID, parsed)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to add expense", "err", err)
		b.reply(ctx, botAPI, chatID, "Не получилось сохранить трату.")
		return
	}
	expensesCreated.Inc()

	total, err := b.ledger.TotalAllTime(ctx, chatID)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to get total", "err", err)
		total = expense.Amount
	}

	startTime := time.Now()
	quip := b.commentary.Motivation(ctx, services.MotivationRequest{
		ChatID:       chatID,
		Total:        total,
		LastAmount:   expense.Amount,
		LastCategory: expense.Category,
		Style:        b.stateManager.Style(chatID),
	})
	textGenDuration.Observe(time.Since(startTime).Seconds())

	reply := fmt.Sprintf("➕ <b>%s</b>: %s\n💰 Всего: <b>%s</b>\n\n%s",
		expense.Category, formatMoney(expense.Amount, expense.Currency),
		formatMoney(total, b.currency), quip.Text)
	b.reply(ctx, botAPI, chatID, reply)

	b.sendQuipImage(ctx, botAPI, chatID, user.ID, quip, total)
}

// sendQuipImage generates and sends the illustration for a quip. Failures end
// in the local banner, never in a user-visible error.
func (b *Bot) sendQuipImage(ctx context.Context, botAPI *bot.Bot, chatID, tgUserID int64, quip services.Quip, total float64) {
	prompt := fmt.Sprintf(
		"Сатирическая иллюстрация: человек мечтает о покупке «%s», но деньги уже потрачены. "+
			"Яркий мультяшный стиль, без текста на картинке.", quip.Item)

	refs := b.refPhotoBytes(ctx, botAPI, tgUserID)

	top := fmt.Sprintf("TOTAL: %.0f", total)
	bottom := "generated image unavailable"

	startTime := time.Now()
	img := b.images.Generate(ctx, prompt, refs, top, bottom)
	imageGenDuration.Observe(time.Since(startTime).Seconds())

	if img.Fallback {
		b.logger.Print(ctx, "sending fallback banner", "chat_id", chatID)
	}

	b.sendPhoto(ctx, botAPI, chatID, "quip.png", img.PNG, quip.Item)
}

// refPhotoBytes downloads up to maxRefPhotos stored reference photos of a user.
func (b *Bot) refPhotoBytes(ctx context.Context, botAPI *bot.Bot, tgUserID int64) [][]byte {
	photos, err := b.ledger.RefPhotos(ctx, tgUserID)
	if err != nil {
		b.logger.Error(ctx, "failed to get ref photos", "err", err)
		return nil
	}

	var refs [][]byte
	for _, p := range photos {
		if len(refs) == maxRefPhotos {
			break
		}
		data, err := b.downloadTgFile(ctx, botAPI, p.FileID)
		if err != nil {
			errorsTotal.WithLabelValues("download_file").Inc()
			b.logger.Error(ctx, "failed to download ref photo", "err", err, "file_id", p.FileID)
			continue
		}
		refs = append(refs, data)
	}

	return refs
}

// downloadTgFile downloads a Telegram file by file ID
func (b *Bot) downloadTgFile(ctx context.Context, botAPI *bot.Bot, fileID string) ([]byte, error) {
	file, err := botAPI.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	fileURL := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", botAPI.Token(), file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// handleCallback handles callback queries from inline keyboards
func (b *Bot) handleCallback(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	userID := callback.From.ID

	var chatID int64
	if msg := callback.Message.Message; msg != nil {
		chatID = msg.Chat.ID
	} else {
		b.logger.Error(ctx, "callback message is nil")
		return
	}
	if !b.allowed(chatID) {
		return
	}

	b.logger.Print(ctx, "callback received", "data", callback.Data, "from", callback.From.Username)

	action, value, ok := strings.Cut(callback.Data, ":")
	if !ok {
		return
	}

	switch action {
	case "purge":
		callbacksProcessed.WithLabelValues("purge").Inc()
		b.handlePurgeAction(ctx, botAPI, callback, chatID, userID, value)
	case "style":
		callbacksProcessed.WithLabelValues("style").Inc()
		b.handleStyleAction(ctx, botAPI, callback, chatID, value)
	default:
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            "Неизвестное действие",
		})
	}
}

// handlePurgeAction finishes /purge after the confirmation keyboard
func (b *Bot) handlePurgeAction(ctx context.Context, botAPI *bot.Bot, callback *models.CallbackQuery, chatID, userID int64, action string) {
	if !b.isAdmin(userID) {
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            "Только для админов",
			ShowAlert:       true,
		})
		return
	}

	if action == "cancel" {
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callback.ID})
		b.reply(ctx, botAPI, chatID, "Отменено.")
		return
	}
	if action != "confirm" {
		return
	}

	purged, err := b.ledger.PurgeChat(ctx, chatID)
	if err != nil {
		errorsTotal.WithLabelValues("database").Inc()
		b.logger.Error(ctx, "failed to purge chat", "err", err)
		_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: callback.ID,
			Text:            "Ошибка удаления",
			ShowAlert:       true,
		})
		return
	}

	_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callback.ID})
	b.reply(ctx, botAPI, chatID, fmt.Sprintf("🧹 Удалено трат: %d. Начинаем с чистого листа.", purged))
}

// handleStyleAction stores the picked commentary style for the chat
func (b *Bot) handleStyleAction(ctx context.Context, botAPI *bot.Bot, callback *models.CallbackQuery, chatID int64, value string) {
	idx, err := strconv.Atoi(value)
	if err != nil || idx < 0 || idx >= len(styleOptions) {
		return
	}

	style := styleOptions[idx]
	b.stateManager.SetStyle(chatID, style)

	_, _ = botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callback.ID,
		Text:            "Стиль сохранён",
	})
	b.reply(ctx, botAPI, chatID, fmt.Sprintf("🎭 Теперь комментирую в стиле: <b>%s</b>", style))
}

// reply sends an HTML-formatted message to the chat
func (b *Bot) reply(ctx context.Context, botAPI *bot.Bot, chatID int64, text string) {
	_, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		errorsTotal.WithLabelValues("send_message").Inc()
		b.logger.Error(ctx, "failed to send message", "err", err, "chat_id", chatID)
	}
}

// replyDBError logs a storage failure and sends the generic error reply
func (b *Bot) replyDBError(ctx context.Context, botAPI *bot.Bot, chatID int64, err error) {
	errorsTotal.WithLabelValues("database").Inc()
	b.logger.Error(ctx, "database error", "err", err, "chat_id", chatID)
	b.reply(ctx, botAPI, chatID, "Что-то сломалось, попробуйте ещё раз.")
}

// sendPhoto uploads a PNG to the chat
func (b *Bot) sendPhoto(ctx context.Context, botAPI *bot.Bot, chatID int64, filename string, data []byte, caption string) {
	_, err := botAPI.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  chatID,
		Photo:   &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption: caption,
	})
	if err != nil {
		errorsTotal.WithLabelValues("send_message").Inc()
		b.logger.Error(ctx, "failed to send photo", "err", err, "chat_id", chatID)
	}
}
