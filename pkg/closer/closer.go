// Package closer закрывает ресурсы приложения в обратном порядке регистрации.
package closer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultForcedTimeout = 2 * time.Second

// Func - функция закрытия ресурса.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer потокобезопасно копит функции закрытия и выполняет их один раз (LIFO).
type Closer struct {
	mu            sync.Mutex
	resources     []resource
	once          sync.Once
	forcedTimeout time.Duration
}

// NewCloser создаёт Closer. forcedTimeout - время на принудительное закрытие
// ресурсов, не успевших закрыться до отмены контекста Close.
func NewCloser(forcedTimeout time.Duration) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{forcedTimeout: forcedTimeout}
}

// Add регистрирует функцию закрытия ресурса name.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource{name: name, close: f})
}

// AddFunc регистрирует закрытие, не принимающее контекст (io.Closer и подобные).
func (c *Closer) AddFunc(name string, f func() error) {
	c.Add(name, func(context.Context) error { return f() })
}

// Close закрывает ресурсы в порядке LIFO. Если ctx отменяется раньше,
// оставшиеся ресурсы закрываются параллельно с собственным таймаутом.
// Повторные вызовы ничего не делают и возвращают nil.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		resources := c.resources
		c.mu.Unlock()

		remaining, errs := c.gracefulClose(ctx, resources)
		if remaining == 0 {
			err = errors.Join(errs...)
			return
		}

		errs = append(errs, c.forcedClose(resources[:remaining])...)
		err = fmt.Errorf("shutdown interrupted, %d/%d resources closed gracefully: %w",
			len(resources)-remaining, len(resources), errors.Join(errs...))
	})

	return err
}

// gracefulClose возвращает количество ещё не закрытых ресурсов (с начала списка).
func (c *Closer) gracefulClose(ctx context.Context, resources []resource) (int, []error) {
	var errs []error
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		done := make(chan error, 1)

		go func() {
			done <- r.close(ctx)
		}()

		select {
		case err := <-done:
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
			}
		case <-ctx.Done():
			// Текущий ресурс тоже считается незакрытым.
			return i + 1, errs
		}
	}

	return 0, errs
}

func (c *Closer) forcedClose(resources []resource) []error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	for _, r := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.close(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s (forced): %w", r.name, err))
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	return errs
}
