package report

import (
	"context"
	"errors"

	"github.com/zvonler/adminreport/model"
	"github.com/zvonler/adminreport/relay"
)

// StatusMessage turns an error into the short status line shown to report
// consumers. Raw error text never leaves this package.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return "Готово"
	case errors.Is(err, model.ErrNotAuthorized):
		return "Нет доступа к форуму: требуется вход в аккаунт"
	case errors.Is(err, model.ErrPeriodNotFound):
		return "Не удалось определить период отчёта"
	case errors.Is(err, model.ErrConfigUnavailable):
		return "Настройки форумов недоступны"
	case errors.Is(err, model.ErrInvalidResponse):
		return "Некорректный ответ сервера"
	case errors.Is(err, relay.ErrRelayUnavailable):
		return "Сервис запросов недоступен"
	case errors.Is(err, context.DeadlineExceeded):
		return "Превышено время ожидания ответа"
	case errors.Is(err, context.Canceled):
		return "Запрос отменён"
	default:
		return "Неизвестная ошибка"
	}
}
