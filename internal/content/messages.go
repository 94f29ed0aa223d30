package content

import "fmt"

// User-facing messages for outcomes that carry no movie data.
const (
	MsgSourcesDisabled  = "🔎 Все источники поиска отключены. Включите хотя бы один источник в настройках."
	MsgLinksUnavailable = "ℹ Прямых ссылок на просмотр для этого фильма не найдено."
	MsgNoMetadata       = "ℹ Информация о фильме не найдена."
)

// NothingFound is the reply when every enabled source came back empty.
func NothingFound(query string) string {
	return fmt.Sprintf("😔 По запросу «%s» ничего не найдено.", query)
}

// LooksLikeCommand is the reply for queries that match a command keyword.
func LooksLikeCommand(query string) string {
	return fmt.Sprintf("Похоже, вы пытались ввести команду, но забыли добавить слеш (/). Попробуйте: /%s", query)
}
