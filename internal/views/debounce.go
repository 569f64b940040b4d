package views

import (
	"sync"
	"time"
)

// DefaultDebounce — опорный интервал тишины для поиска по мере набора.
const DefaultDebounce = 500 * time.Millisecond

// Debounce — планировочная обёртка для презентационного слоя: fn
// вызывается не чаще одного раза за период тишины, с последним значением.
// Сами функции фильтрации синхронны и чисты, это только про отзывчивость.
func Debounce(interval time.Duration, fn func(query string)) func(query string) {
	var mtx sync.Mutex
	var timer *time.Timer

	return func(query string) {
		mtx.Lock()
		defer mtx.Unlock()

		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(interval, func() {
			fn(query)
		})
	}
}
