// Package jitter добавляет случайность в интервалы повторов, чтобы клиенты
// не приходили к сервису синхронно после общего сбоя.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultFactor - стандартный коэффициент джиттера (50%).
const DefaultFactor = 0.5

// Duration возвращает d с джиттером: результат лежит в [d, d*(1+factor)].
func Duration(d time.Duration, factor float64) time.Duration {
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// Backoff описывает экспоненциальную задержку между попытками.
type Backoff struct {
	Base   time.Duration // задержка перед первым повтором
	Max    time.Duration // верхняя граница без учёта джиттера
	Factor float64       // коэффициент джиттера
}

// Delay возвращает задержку перед повтором attempt (нумерация с нуля).
func (b Backoff) Delay(attempt int) time.Duration {
	return Duration(b.raw(attempt), b.Factor)
}

func (b Backoff) raw(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}

	return d
}
