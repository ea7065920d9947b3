package store

import "pharmacy-admin-console/internal/core/domain"

// PageCounter строит функцию постраничной статистики из именованных
// предикатов: каждому имени соответствует счётчик элементов страницы,
// для которых предикат истинен.
func PageCounter[T domain.Entity](predicates map[string]func(T) bool) func(items []T) domain.Stats {
	return func(items []T) domain.Stats {
		stats := make(domain.Stats, len(predicates))
		for name := range predicates {
			stats[name] = 0
		}
		for _, item := range items {
			for name, pred := range predicates {
				if pred(item) {
					stats[name]++
				}
			}
		}
		return stats
	}
}
