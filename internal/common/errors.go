// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки экономики (кошельки, переводы)
var (
	// ErrInsufficientFunds — недостаточно средств на счёте
	ErrInsufficientFunds = errors.New("недостаточно средств на счёте")
	// ErrSelfTransfer — попытка перевести монеты самому себе
	ErrSelfTransfer = errors.New("нельзя переводить монеты самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrNotFound — запись не найдена в базе
	ErrNotFound = errors.New("запись не найдена")
)

// Ошибки реестра валют
var (
	// ErrCurrencyNotFound — валюта не зарегистрирована на сервере
	ErrCurrencyNotFound = errors.New("валюта не найдена")
	// ErrCurrencyExists — валюта с таким именем уже существует
	ErrCurrencyExists = errors.New("валюта с таким именем уже существует")
	// ErrNoCurrencyConfigured — на сервере не настроена ни одна валюта
	ErrNoCurrencyConfigured = errors.New("на сервере не настроена ни одна валюта")
)

// Ошибки таймерных действий (работа, кража)
var (
	// ErrInvalidTarget — попытка применить PvP-действие к самому себе
	ErrInvalidTarget = errors.New("нельзя выбрать целью самого себя")
	// ErrNothingToSteal — у жертвы нет ни одной валюты с положительным балансом
	ErrNothingToSteal = errors.New("у цели нечего красть")
)

// Ошибки долгов и займов
var (
	// ErrNoDebt — долга по этой валюте нет
	ErrNoDebt = errors.New("долга по этой валюте нет")
	// ErrDebtExists — по этой валюте уже есть непогашенный займ
	ErrDebtExists = errors.New("по этой валюте уже есть непогашенный займ")
	// ErrOverpayment — сумма погашения превышает остаток долга
	ErrOverpayment = errors.New("сумма погашения превышает остаток долга")
)

// Ошибки комерций и персонажей
var (
	// ErrShopLimit — достигнут лимит комерций (3 на пользователя)
	ErrShopLimit = errors.New("достигнут лимит комерций")
	// ErrCharacterLimit — достигнут лимит персонажей (3 на пользователя)
	ErrCharacterLimit = errors.New("достигнут лимит персонажей")
)

// CooldownError — таймерное действие вызвано до истечения кулдауна.
// Несёт остаток времени до следующей попытки, чтобы обработчик
// мог показать его пользователю.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("действие на кулдауне, осталось %s", e.Remaining)
}

// NewCooldownError создаёт ошибку кулдауна с остатком времени.
func NewCooldownError(remaining time.Duration) *CooldownError {
	return &CooldownError{Remaining: remaining}
}
